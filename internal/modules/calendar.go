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

// CalendarService is the calendar module's write API. Blocks are keyed
// by reference so re-syncing the same block updates it in place.
type CalendarService struct {
	db *gorm.DB
}

// NewCalendarService creates a new calendar service
func NewCalendarService(db *gorm.DB) *CalendarService {
	return &CalendarService{db: db}
}

// SyncBlock creates or updates a calendar block for a user
func (s *CalendarService) SyncBlock(ctx context.Context, userID uuid.UUID, title string, start, end time.Time, reference string) error {
	block := models.CalendarBlock{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Start:     start,
		End:       end,
		Reference: reference,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "start", "end", "updated_at"}),
		}).
		Create(&block).Error
	if err != nil {
		return errors.Wrap(err, "failed to sync calendar block")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("reference", reference).
		Msg("Calendar block synced")
	return nil
}
