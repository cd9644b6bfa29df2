package modules

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/peoplehub/services/automation/internal/models"
)

// ErrAlreadyApplied is returned when a budget movement with the same
// reference has already been recorded. Callers use it to detect
// redelivered events.
var ErrAlreadyApplied = errors.New("budget movement already applied for reference")

// BudgetService is the budget ledger's write API. Every movement is
// recorded as a BudgetTransaction with a unique reference, which makes
// charges and holds safe under redelivery and concurrent approvals.
type BudgetService struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewBudgetService creates a new budget service
func NewBudgetService(db *gorm.DB, readOnlyDB *gorm.DB) *BudgetService {
	return &BudgetService{db: db, readOnlyDB: readOnlyDB}
}

// Charge decrements available budget for a cost center
func (s *BudgetService) Charge(ctx context.Context, costCenter string, amount float64, reference string) error {
	return s.apply(ctx, costCenter, amount, models.BudgetTxCharge, reference, func(tx *gorm.DB) error {
		return tx.Model(&models.BudgetAllocation{}).
			Where("cost_center = ?", costCenter).
			Update("available", gorm.Expr("available - ?", amount)).Error
	})
}

// Hold places a provisional hold: the amount moves from available to held
func (s *BudgetService) Hold(ctx context.Context, costCenter string, amount float64, reference string) error {
	return s.apply(ctx, costCenter, amount, models.BudgetTxHold, reference, func(tx *gorm.DB) error {
		return tx.Model(&models.BudgetAllocation{}).
			Where("cost_center = ?", costCenter).
			Updates(map[string]interface{}{
				"available": gorm.Expr("available - ?", amount),
				"held":      gorm.Expr("held + ?", amount),
			}).Error
	})
}

// Release returns a previously held amount to available. Releasing a
// reference that was never held, or one already released, is a no-op.
func (s *BudgetService) Release(ctx context.Context, reference string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hold models.BudgetTransaction
		err := tx.Where("reference = ? AND kind = ?", reference, models.BudgetTxHold).
			First(&hold).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug().Str("reference", reference).Msg("No hold to release")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to look up hold")
		}

		var count int64
		if err := tx.Model(&models.BudgetTransaction{}).
			Where("reference = ? AND kind = ?", reference+":release", models.BudgetTxRelease).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check for prior release")
		}
		if count > 0 {
			return nil
		}

		movement := models.BudgetTransaction{
			ID:         uuid.New(),
			CostCenter: hold.CostCenter,
			Amount:     hold.Amount,
			Kind:       models.BudgetTxRelease,
			Reference:  reference + ":release",
		}
		if err := tx.Create(&movement).Error; err != nil {
			return errors.Wrap(err, "failed to record release")
		}

		return tx.Model(&models.BudgetAllocation{}).
			Where("cost_center = ?", hold.CostCenter).
			Updates(map[string]interface{}{
				"available": gorm.Expr("available + ?", hold.Amount),
				"held":      gorm.Expr("held - ?", hold.Amount),
			}).Error
	})
}

// apply records a movement and mutates the allocation in one transaction
func (s *BudgetService) apply(ctx context.Context, costCenter string, amount float64, kind, reference string, mutate func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BudgetTransaction{}).
			Where("reference = ?", reference).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check budget reference")
		}
		if count > 0 {
			return ErrAlreadyApplied
		}

		movement := models.BudgetTransaction{
			ID:         uuid.New(),
			CostCenter: costCenter,
			Amount:     amount,
			Kind:       kind,
			Reference:  reference,
		}
		if err := tx.Create(&movement).Error; err != nil {
			// The unique index backs up the check above under races
			return errors.Wrap(err, "failed to record budget movement")
		}

		if err := mutate(tx); err != nil {
			return errors.Wrap(err, "failed to update allocation")
		}

		log.Info().
			Str("cost_center", costCenter).
			Str("kind", kind).
			Str("reference", reference).
			Float64("amount", amount).
			Msg("Budget movement applied")
		return nil
	})
}

// Available returns the available budget for a cost center; a cost
// center without an allocation row has zero budget
func (s *BudgetService) Available(ctx context.Context, costCenter string) (float64, error) {
	var allocation models.BudgetAllocation
	err := s.readOnlyDB.WithContext(ctx).
		Where("cost_center = ?", costCenter).
		First(&allocation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to load budget allocation")
	}
	return allocation.Available, nil
}

// IsCharged reports whether a charge with this reference already ran
func (s *BudgetService) IsCharged(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := s.readOnlyDB.WithContext(ctx).
		Model(&models.BudgetTransaction{}).
		Where("reference = ? AND kind = ?", reference, models.BudgetTxCharge).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check charge reference")
	}
	return count > 0, nil
}
