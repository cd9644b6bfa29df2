package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/peoplehub/services/automation/internal/engine"
)

// OnboardingHandler runs the employee onboarding workflow. It is fired
// by a manual trigger rather than a change event and prepares the
// surrounding modules for a new hire: an equipment approval request, a
// first-day calendar block and welcome notifications.
type OnboardingHandler struct{}

// NewOnboardingHandler creates the onboarding handler
func NewOnboardingHandler() *OnboardingHandler {
	return &OnboardingHandler{}
}

func (h *OnboardingHandler) Name() string { return NameEmployeeOnboarding }

func (h *OnboardingHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	employeeID := event.New.UUID("employee_id")
	startDate := event.New.Time("start_date")
	if employeeID == uuid.Nil || startDate.IsZero() {
		return engine.Decision{}, errors.New("onboarding trigger is missing employee_id or start_date")
	}

	name := event.New.String("name")
	managerID := event.New.UUID("manager_id")

	actions := []engine.Action{
		engine.ApprovalRequestCreate{
			Queue:       engine.ApprovalEquipment,
			RequesterID: employeeID,
			ApproverID:  managerID,
			Subject:     "Workplace equipment for " + name,
			Reference:   "onboarding:" + employeeID.String() + ":equipment",
		},
		engine.CalendarSync{
			UserID:    employeeID,
			Title:     "First day: " + name,
			Start:     startDate,
			End:       startDate.AddDate(0, 0, 1),
			Reference: "onboarding:" + employeeID.String() + ":first_day",
		},
		engine.NotificationSend{
			Recipient: employeeID,
			Audience:  "employee",
			Title:     "Welcome aboard",
			Body:      "Your onboarding starts on " + startDate.Format("2006-01-02"),
		},
		engine.NotificationSend{
			Audience: "it",
			Title:    "Account provisioning needed",
			Body:     "Prepare accounts and access for " + name + " starting " + startDate.Format("2006-01-02"),
		},
	}

	if managerID != uuid.Nil {
		actions = append(actions, engine.NotificationSend{
			Recipient: managerID,
			Audience:  "manager",
			Title:     "New team member",
			Body:      name + " joins your team on " + startDate.Format("2006-01-02"),
		})
	}

	return engine.Decision{Category: "onboarding", Actions: actions}, nil
}
