package modules

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/peoplehub/services/automation/internal/models"
)

// AbsenceService is the absence ledger's write API
type AbsenceService struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewAbsenceService creates a new absence ledger service
func NewAbsenceService(db *gorm.DB, readOnlyDB *gorm.DB) *AbsenceService {
	return &AbsenceService{db: db, readOnlyDB: readOnlyDB}
}

// CreateRecord registers an absence. The reference keeps redelivered
// events from producing duplicate ledger rows.
func (s *AbsenceService) CreateRecord(ctx context.Context, userID uuid.UUID, absenceType string, start, end time.Time, reference string) error {
	record := models.AbsenceRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      absenceType,
		Start:     start,
		End:       end,
		Reference: reference,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(&record).Error
	if err != nil {
		return errors.Wrap(err, "failed to create absence record")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("type", absenceType).
		Str("reference", reference).
		Msg("Absence record created")
	return nil
}

// FindOverlapping returns absences for a user overlapping the interval,
// read by the shift-plan handler to detect conflicts
func (s *AbsenceService) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.AbsenceRecord, error) {
	var records []models.AbsenceRecord
	err := s.readOnlyDB.WithContext(ctx).
		Where("user_id = ? AND start < ? AND \"end\" > ?", userID, end, start).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find overlapping absences")
	}
	return records, nil
}
