package modules

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/peoplehub/services/automation/internal/models"
)

// ApprovalService is the approval queue's write API
type ApprovalService struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewApprovalService creates a new approval service
func NewApprovalService(db *gorm.DB, readOnlyDB *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db, readOnlyDB: readOnlyDB}
}

// CreateRequest routes a request into an approval queue. Requests are
// keyed by reference, so a redelivered event does not open a second
// request for the same subject.
func (s *ApprovalService) CreateRequest(ctx context.Context, queue string, requester, approver uuid.UUID, subject, reference string) error {
	request := models.ApprovalRequest{
		ID:          uuid.New(),
		Queue:       queue,
		RequesterID: requester,
		ApproverID:  approver,
		Subject:     subject,
		Status:      models.ApprovalStatusOpen,
		Reference:   reference,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(&request).Error
	if err != nil {
		return errors.Wrap(err, "failed to create approval request")
	}

	log.Info().
		Str("queue", queue).
		Str("subject", subject).
		Str("reference", reference).
		Msg("Approval request created")
	return nil
}

// HasOpenRequest reports whether an open request exists for a reference
func (s *ApprovalService) HasOpenRequest(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := s.readOnlyDB.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("reference = ? AND status = ?", reference, models.ApprovalStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check open approval requests")
	}
	return count > 0, nil
}
