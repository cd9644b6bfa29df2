package modules

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/peoplehub/services/automation/internal/models"
	"example.com/peoplehub/services/automation/internal/repositories"
)

// ShiftService is the shift planning module's write API, backed by the
// shift repository
type ShiftService struct {
	shifts *repositories.ShiftRepository
}

// NewShiftService creates a new shift service
func NewShiftService(shifts *repositories.ShiftRepository) *ShiftService {
	return &ShiftService{shifts: shifts}
}

// FlagCoverage marks a shift as needing coverage
func (s *ShiftService) FlagCoverage(ctx context.Context, shiftID, userID uuid.UUID, reason string) error {
	return s.shifts.FlagCoverage(ctx, shiftID, reason)
}

// FindOverlapping returns a user's shifts overlapping the interval
func (s *ShiftService) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ShiftAssignment, error) {
	return s.shifts.FindOverlapping(ctx, userID, start, end)
}
