package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/peoplehub/services/automation/internal/engine"
)

// TripCreatedHandler reacts to a newly requested business trip: when
// the estimated cost fits into the cost center's available budget it
// places a provisional hold and notifies the requester, otherwise it
// routes the trip into the budget review queue.
type TripCreatedHandler struct {
	budget    BudgetReader
	employees EmployeeReader
}

// NewTripCreatedHandler creates the trip creation handler
func NewTripCreatedHandler(budget BudgetReader, employees EmployeeReader) *TripCreatedHandler {
	return &TripCreatedHandler{budget: budget, employees: employees}
}

func (h *TripCreatedHandler) Name() string { return NameBusinessTripCreated }

func (h *TripCreatedHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	tripID := event.New.String("id")
	userID := event.New.UUID("user_id")
	estimatedCost := event.New.Float("estimated_cost")
	if tripID == "" || userID == uuid.Nil {
		return engine.Decision{}, errors.New("business trip event is missing id or user_id")
	}

	employee, err := h.employees.GetByID(ctx, userID)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to resolve employee for business trip")
	}

	available, err := h.budget.Available(ctx, employee.CostCenter)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to read available budget")
	}

	destination := event.New.String("destination")

	if estimatedCost > 0 && estimatedCost <= available {
		return engine.Decision{
			Category: "within_budget",
			Actions: []engine.Action{
				engine.BudgetHold{
					CostCenter: employee.CostCenter,
					Amount:     estimatedCost,
					Reference:  "business_trip:" + tripID + ":hold",
				},
				engine.NotificationSend{
					Recipient: userID,
					Audience:  "employee",
					Title:     "Business trip budget reserved",
					Body:      fmt.Sprintf("Estimated cost %.2f for the trip to %s was reserved against %s", estimatedCost, destination, employee.CostCenter),
				},
			},
		}, nil
	}

	var approver uuid.UUID
	if employee.ManagerID != nil {
		approver = *employee.ManagerID
	}

	return engine.Decision{
		Category: "budget_review",
		Actions: []engine.Action{
			engine.ApprovalRequestCreate{
				Queue:       engine.ApprovalBudgetReview,
				RequesterID: userID,
				ApproverID:  approver,
				Subject:     fmt.Sprintf("Trip to %s: estimated %.2f exceeds available %.2f on %s", destination, estimatedCost, available, employee.CostCenter),
				Reference:   "business_trip:" + tripID + ":review",
			},
		},
	}, nil
}

// TripApprovedHandler reacts to a trip entering the approved status. It
// charges the budget, creates a calendar block and registers the
// absence. The handler checks the budget ledger first so a redelivered
// approval event results in zero new actions.
type TripApprovedHandler struct {
	budget BudgetReader
}

// NewTripApprovedHandler creates the trip approval handler
func NewTripApprovedHandler(budget BudgetReader) *TripApprovedHandler {
	return &TripApprovedHandler{budget: budget}
}

func (h *TripApprovedHandler) Name() string { return NameBusinessTripApproved }

func (h *TripApprovedHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	tripID := event.New.String("id")
	userID := event.New.UUID("user_id")
	start := event.New.Time("start_date")
	end := event.New.Time("end_date")
	if tripID == "" || userID == uuid.Nil || start.IsZero() || end.IsZero() {
		return engine.Decision{}, errors.New("business trip event is missing id, user_id or dates")
	}

	reference := "business_trip:" + tripID + ":approval"

	charged, err := h.budget.IsCharged(ctx, reference)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to check existing trip charge")
	}
	if charged {
		return engine.Decision{}, nil
	}

	destination := event.New.String("destination")
	cost := event.New.Float("estimated_cost")
	costCenter := event.New.String("cost_center")

	return engine.Decision{
		Actions: []engine.Action{
			engine.BudgetCharge{
				CostCenter: costCenter,
				Amount:     cost,
				Reference:  reference,
			},
			engine.CalendarSync{
				UserID:    userID,
				Title:     "Business trip: " + destination,
				Start:     start,
				End:       end,
				Reference: "business_trip:" + tripID,
			},
			engine.AbsenceRecordCreate{
				UserID:    userID,
				Type:      "business_trip",
				Start:     start,
				End:       end,
				Reference: "business_trip:" + tripID,
			},
		},
	}, nil
}

// TripCompletedHandler reacts to a trip entering the completed status:
// it releases the provisional hold from the creation phase and reminds
// the traveler to submit expenses.
type TripCompletedHandler struct{}

// NewTripCompletedHandler creates the trip completion handler
func NewTripCompletedHandler() *TripCompletedHandler {
	return &TripCompletedHandler{}
}

func (h *TripCompletedHandler) Name() string { return NameBusinessTripCompleted }

func (h *TripCompletedHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	tripID := event.New.String("id")
	userID := event.New.UUID("user_id")
	if tripID == "" || userID == uuid.Nil {
		return engine.Decision{}, errors.New("business trip event is missing id or user_id")
	}

	destination := event.New.String("destination")

	return engine.Decision{
		Actions: []engine.Action{
			engine.BudgetRelease{
				Reference: "business_trip:" + tripID + ":hold",
			},
			engine.NotificationSend{
				Recipient: userID,
				Audience:  "employee",
				Title:     "Submit your trip expenses",
				Body:      fmt.Sprintf("Your trip to %s is completed, please submit outstanding expenses", destination),
			},
		},
	}, nil
}
