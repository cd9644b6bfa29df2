package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/internal/engine"
)

// ShiftPlanHandler runs the shift plan update workflow. Fired by a
// manual trigger after a plan changes, it cross-checks every newly
// assigned shift against the absence ledger, flags conflicting shifts
// for coverage and notifies the affected employees.
type ShiftPlanHandler struct {
	absences AbsenceReader
}

// NewShiftPlanHandler creates the shift plan handler
func NewShiftPlanHandler(absences AbsenceReader) *ShiftPlanHandler {
	return &ShiftPlanHandler{absences: absences}
}

func (h *ShiftPlanHandler) Name() string { return NameShiftPlanUpdate }

func (h *ShiftPlanHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	rawShifts, ok := event.New["shifts"].([]interface{})
	if !ok || len(rawShifts) == 0 {
		return engine.Decision{}, errors.New("shift plan trigger carries no shifts")
	}

	var decision engine.Decision
	decision.Category = "shift_plan"

	for _, raw := range rawShifts {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		shift := engine.Record(fields)

		shiftID := shift.UUID("id")
		userID := shift.UUID("user_id")
		start := shift.Time("start")
		end := shift.Time("end")
		if shiftID == uuid.Nil || userID == uuid.Nil || start.IsZero() || end.IsZero() {
			log.Warn().Interface("shift", fields).Msg("Skipping malformed shift in plan update")
			continue
		}

		overlapping, err := h.absences.FindOverlapping(ctx, userID, start, end)
		if err != nil {
			return engine.Decision{}, errors.Wrap(err, "failed to check absences for shift")
		}
		if len(overlapping) > 0 {
			decision.Actions = append(decision.Actions, engine.ShiftCoverageFlag{
				ShiftID: shiftID,
				UserID:  userID,
				Reason:  "absence_conflict",
			})
			continue
		}

		decision.Actions = append(decision.Actions, engine.NotificationSend{
			Recipient: userID,
			Audience:  "employee",
			Title:     "Shift assigned",
			Body:      "You are scheduled from " + start.Format("2006-01-02 15:04") + " to " + end.Format("2006-01-02 15:04"),
		})
	}

	return decision, nil
}
