package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/internal/engine"
)

// SickLeaveHandler reacts to a new sick-leave absence request: it
// registers the absence in the ledger, notifies the manager and flags
// any shift assignment the leave overlaps.
type SickLeaveHandler struct {
	employees EmployeeReader
	shifts    ShiftReader
}

// NewSickLeaveHandler creates the sick leave handler
func NewSickLeaveHandler(employees EmployeeReader, shifts ShiftReader) *SickLeaveHandler {
	return &SickLeaveHandler{employees: employees, shifts: shifts}
}

func (h *SickLeaveHandler) Name() string { return NameSickLeaveCreated }

func (h *SickLeaveHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	requestID := event.New.String("id")
	userID := event.New.UUID("user_id")
	start := event.New.Time("start_date")
	end := event.New.Time("end_date")
	if requestID == "" || userID == uuid.Nil || start.IsZero() || end.IsZero() {
		return engine.Decision{}, errors.New("sick leave event is missing id, user_id or dates")
	}

	employee, err := h.employees.GetByID(ctx, userID)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to resolve employee for sick leave")
	}

	var decision engine.Decision
	decision.Actions = append(decision.Actions, engine.AbsenceRecordCreate{
		UserID:    userID,
		Type:      "sick_leave",
		Start:     start,
		End:       end,
		Reference: "absence_request:" + requestID,
	})

	notification := engine.NotificationSend{
		Audience: "team",
		Title:    "Sick leave reported",
		Body:     fmt.Sprintf("%s is on sick leave from %s to %s", employee.Name, start.Format("2006-01-02"), end.Format("2006-01-02")),
	}
	if employee.ManagerID != nil {
		notification.Recipient = *employee.ManagerID
		notification.Audience = "manager"
	}
	decision.Actions = append(decision.Actions, notification)

	overlapping, err := h.shifts.FindOverlapping(ctx, userID, start, end)
	if err != nil {
		// Coverage detection is additive; the ledger entry and the
		// notification must not be lost to a shift lookup failure
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to check shift overlap for sick leave")
	}
	for _, shift := range overlapping {
		decision.Actions = append(decision.Actions, engine.ShiftCoverageFlag{
			ShiftID: shift.ID,
			UserID:  userID,
			Reason:  "sick_leave",
		})
	}

	return decision, nil
}
