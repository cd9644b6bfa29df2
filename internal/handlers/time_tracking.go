package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/repositories"
)

// TimeTrackingHandler reacts to a completed time entry: when the entry
// pushes the employee over the daily or weekly overtime threshold it
// opens an overtime approval request addressed to the manager. Entries
// under the threshold warrant no action.
type TimeTrackingHandler struct {
	entries     TimeReader
	employees   EmployeeReader
	approvals   ApprovalReader
	dailyLimit  float64
	weeklyLimit float64
}

// NewTimeTrackingHandler creates the time tracking handler
func NewTimeTrackingHandler(entries TimeReader, employees EmployeeReader, approvals ApprovalReader, dailyLimit, weeklyLimit float64) *TimeTrackingHandler {
	if dailyLimit <= 0 {
		dailyLimit = 10
	}
	if weeklyLimit <= 0 {
		weeklyLimit = 48
	}
	return &TimeTrackingHandler{
		entries:     entries,
		employees:   employees,
		approvals:   approvals,
		dailyLimit:  dailyLimit,
		weeklyLimit: weeklyLimit,
	}
}

func (h *TimeTrackingHandler) Name() string { return NameTimeTrackingCompleted }

func (h *TimeTrackingHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	userID := event.New.UUID("user_id")
	day := event.New.Time("date")
	if userID == uuid.Nil || day.IsZero() {
		return engine.Decision{}, errors.New("time entry event is missing user_id or date")
	}

	// The event fires after the entry committed, so the sums include it
	daily, err := h.entries.HoursForDay(ctx, userID, day)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to sum daily hours")
	}
	weekly, err := h.entries.HoursForWeek(ctx, userID, day)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to sum weekly hours")
	}

	if daily <= h.dailyLimit && weekly <= h.weeklyLimit {
		return engine.Decision{}, nil
	}

	// One request per employee and week, regardless of how many entries
	// cross the threshold
	weekStart := repositories.StartOfWeek(day)
	reference := fmt.Sprintf("overtime:%s:%s", userID, weekStart.Format("2006-01-02"))

	open, err := h.approvals.HasOpenRequest(ctx, reference)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to check for open overtime request")
	}
	if open {
		return engine.Decision{}, nil
	}

	employee, err := h.employees.GetByID(ctx, userID)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to resolve employee for overtime request")
	}

	var approver uuid.UUID
	if employee.ManagerID != nil {
		approver = *employee.ManagerID
	}

	return engine.Decision{
		Actions: []engine.Action{
			engine.ApprovalRequestCreate{
				Queue:       engine.ApprovalOvertime,
				RequesterID: userID,
				ApproverID:  approver,
				Subject:     fmt.Sprintf("Overtime for %s: %.1fh this day, %.1fh this week", employee.Name, daily, weekly),
				Reference:   reference,
			},
		},
	}, nil
}
