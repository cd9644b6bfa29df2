package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/peoplehub/services/automation/internal/engine"
)

// Expense categories inferred from the description
const (
	ExpenseTravel        = "travel"
	ExpenseAccommodation = "accommodation"
	ExpenseMeals         = "meals"
	ExpenseOther         = "other"
)

// ExpenseHandler reacts to a submitted business trip expense: it
// classifies the expense from its description and routes it into the
// expense approval queue addressed to the submitter's manager.
type ExpenseHandler struct {
	employees EmployeeReader
}

// NewExpenseHandler creates the expense handler
func NewExpenseHandler(employees EmployeeReader) *ExpenseHandler {
	return &ExpenseHandler{employees: employees}
}

func (h *ExpenseHandler) Name() string { return NameExpenseSubmitted }

func (h *ExpenseHandler) Handle(ctx context.Context, event engine.ChangeEvent) (engine.Decision, error) {
	expenseID := event.New.String("id")
	userID := event.New.UUID("user_id")
	amount := event.New.Float("amount")
	if expenseID == "" || userID == uuid.Nil {
		return engine.Decision{}, errors.New("expense event is missing id or user_id")
	}

	employee, err := h.employees.GetByID(ctx, userID)
	if err != nil {
		return engine.Decision{}, errors.Wrap(err, "failed to resolve employee for expense")
	}

	var approver uuid.UUID
	if employee.ManagerID != nil {
		approver = *employee.ManagerID
	}

	category := ClassifyExpense(event.New.String("description"))

	return engine.Decision{
		Category: category,
		Actions: []engine.Action{
			engine.ApprovalRequestCreate{
				Queue:       engine.ApprovalExpense,
				RequesterID: userID,
				ApproverID:  approver,
				Subject:     fmt.Sprintf("%s expense of %.2f from %s", category, amount, employee.Name),
				Reference:   "expense:" + expenseID,
			},
		},
	}, nil
}

// ClassifyExpense infers an expense category from its description
func ClassifyExpense(description string) string {
	text := strings.ToLower(description)
	switch {
	case containsAny(text, "flight", "train", "taxi", "mileage", "fuel", "parking"):
		return ExpenseTravel
	case containsAny(text, "hotel", "accommodation", "lodging", "airbnb"):
		return ExpenseAccommodation
	case containsAny(text, "meal", "dinner", "lunch", "breakfast", "restaurant"):
		return ExpenseMeals
	default:
		return ExpenseOther
	}
}
