// Package handlers contains the per-(entity, transition) business
// rules of the automation engine. Each handler inspects one change
// event and declares the cross-module actions it warrants; the action
// executor performs them. Handlers never write to modules directly, so
// the returned action list is a complete audit trail.
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/models"
)

// Handler names, also used as manual trigger identifiers
const (
	NameSickLeaveCreated      = "sick_leave_created"
	NameDocumentUploaded      = "document_uploaded"
	NameTimeTrackingCompleted = "time_tracking_completed"
	NameBusinessTripCreated   = "business_trip_created"
	NameBusinessTripApproved  = "business_trip_approved"
	NameBusinessTripCompleted = "business_trip_completed"
	NameExpenseSubmitted      = "expense_submitted"
	NameEmployeeOnboarding    = "employee_onboarding"
	NameShiftPlanUpdate       = "shift_plan_update"
)

// Read-side dependencies. Handlers only read other modules; all writes
// go through declared actions.

// EmployeeReader resolves employees, managers and cost centers
type EmployeeReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// TimeReader sums recorded working hours
type TimeReader interface {
	HoursForDay(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error)
	HoursForWeek(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error)
}

// ShiftReader finds shift assignments overlapping an interval
type ShiftReader interface {
	FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ShiftAssignment, error)
}

// BudgetReader exposes the budget ledger's read side
type BudgetReader interface {
	Available(ctx context.Context, costCenter string) (float64, error)
	IsCharged(ctx context.Context, reference string) (bool, error)
}

// ApprovalReader checks for already-open approval requests
type ApprovalReader interface {
	HasOpenRequest(ctx context.Context, reference string) (bool, error)
}

// AbsenceReader finds recorded absences overlapping an interval
type AbsenceReader interface {
	FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.AbsenceRecord, error)
}

// Deps bundles the read-side dependencies shared by the handlers
type Deps struct {
	Employees EmployeeReader
	Time      TimeReader
	Shifts    ShiftReader
	Budget    BudgetReader
	Approvals ApprovalReader
	Absences  AbsenceReader

	OvertimeDailyHours  float64
	OvertimeWeeklyHours float64
}

// RegisterAll populates the registry with the fixed subscription set.
// The two manual workflows are registered under synthetic entities so
// the trigger entry points resolve them through the same registry.
func RegisterAll(registry *engine.Registry, deps Deps) {
	registry.Register(engine.Subscription{
		Entity:    engine.EntityAbsenceRequests,
		Operation: engine.OperationInserted,
		Predicate: engine.FieldEquals{Field: "type", Value: "sick_leave"},
		Handler:   NewSickLeaveHandler(deps.Employees, deps.Shifts),
	})
	registry.Register(engine.Subscription{
		Entity:    engine.EntityDocuments,
		Operation: engine.OperationInserted,
		Handler:   NewDocumentHandler(),
	})
	registry.Register(engine.Subscription{
		Entity:    engine.EntityTimeEntries,
		Operation: engine.OperationInserted,
		Handler:   NewTimeTrackingHandler(deps.Time, deps.Employees, deps.Approvals, deps.OvertimeDailyHours, deps.OvertimeWeeklyHours),
	})
	registry.Register(engine.Subscription{
		Entity:    engine.EntityBusinessTrips,
		Operation: engine.OperationInserted,
		Handler:   NewTripCreatedHandler(deps.Budget, deps.Employees),
	})
	registry.Register(engine.Subscription{
		Entity:    engine.EntityBusinessTrips,
		Operation: engine.OperationUpdated,
		Predicate: engine.StatusTransition{Field: "status", To: "approved"},
		Handler:   NewTripApprovedHandler(deps.Budget),
	})
	registry.Register(engine.Subscription{
		Entity:    engine.EntityBusinessTrips,
		Operation: engine.OperationUpdated,
		Predicate: engine.StatusTransition{Field: "status", To: "completed"},
		Handler:   NewTripCompletedHandler(),
	})
	registry.Register(engine.Subscription{
		Entity:    engine.EntityBusinessTripExpenses,
		Operation: engine.OperationInserted,
		Handler:   NewExpenseHandler(deps.Employees),
	})

	// Manual trigger workflows
	registry.Register(engine.Subscription{
		Entity:    "manual:" + NameEmployeeOnboarding,
		Operation: engine.OperationInserted,
		Handler:   NewOnboardingHandler(),
	})
	registry.Register(engine.Subscription{
		Entity:    "manual:" + NameShiftPlanUpdate,
		Operation: engine.OperationInserted,
		Handler:   NewShiftPlanHandler(deps.Absences),
	})
}
