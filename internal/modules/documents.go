package modules

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/peoplehub/services/automation/internal/models"
)

// DocumentService is the document module's write API
type DocumentService struct {
	db *gorm.DB
}

// NewDocumentService creates a new document service
func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

// Tag records the inferred category on a document
func (s *DocumentService) Tag(ctx context.Context, documentID uuid.UUID, category string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", documentID).
		Update("category", category).Error
	if err != nil {
		return errors.Wrap(err, "failed to tag document")
	}

	log.Info().
		Str("document_id", documentID.String()).
		Str("category", category).
		Msg("Document tagged")
	return nil
}
