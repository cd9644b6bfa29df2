package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Write interfaces for the target modules. The executor owns the
// mapping from action kind to module API; it carries no business rules.

// BudgetWriter is the budget ledger's write API
type BudgetWriter interface {
	Charge(ctx context.Context, costCenter string, amount float64, reference string) error
	Hold(ctx context.Context, costCenter string, amount float64, reference string) error
	Release(ctx context.Context, reference string) error
}

// CalendarWriter is the calendar module's write API
type CalendarWriter interface {
	SyncBlock(ctx context.Context, userID uuid.UUID, title string, start, end time.Time, reference string) error
}

// AbsenceWriter is the absence ledger's write API
type AbsenceWriter interface {
	CreateRecord(ctx context.Context, userID uuid.UUID, absenceType string, start, end time.Time, reference string) error
}

// Notifier is the notification channel's write API
type Notifier interface {
	Send(ctx context.Context, recipient uuid.UUID, audience, title, body string) error
}

// ApprovalWriter is the approval queue's write API
type ApprovalWriter interface {
	CreateRequest(ctx context.Context, queue string, requester, approver uuid.UUID, subject, reference string) error
}

// DocumentWriter is the document module's write API
type DocumentWriter interface {
	Tag(ctx context.Context, documentID uuid.UUID, category string) error
}

// ShiftWriter is the shift planning module's write API
type ShiftWriter interface {
	FlagCoverage(ctx context.Context, shiftID, userID uuid.UUID, reason string) error
}

// Executor carries out a handler's declared actions against the target
// modules. Exactly one external write per action, no retries; actions
// are independent, so an error on one never prevents attempting the
// rest. Execution preserves declared order for deterministic logs.
type Executor struct {
	budget    BudgetWriter
	calendar  CalendarWriter
	absences  AbsenceWriter
	notifier  Notifier
	approvals ApprovalWriter
	documents DocumentWriter
	shifts    ShiftWriter
}

// NewExecutor creates the action executor over the module write APIs
func NewExecutor(
	budget BudgetWriter,
	calendar CalendarWriter,
	absences AbsenceWriter,
	notifier Notifier,
	approvals ApprovalWriter,
	documents DocumentWriter,
	shifts ShiftWriter,
) *Executor {
	return &Executor{
		budget:    budget,
		calendar:  calendar,
		absences:  absences,
		notifier:  notifier,
		approvals: approvals,
		documents: documents,
		shifts:    shifts,
	}
}

// Execute performs each action in declared order and returns one
// outcome per action
func (e *Executor) Execute(ctx context.Context, actions []Action) []ActionOutcome {
	outcomes := make([]ActionOutcome, 0, len(actions))
	for _, action := range actions {
		err := e.execute(ctx, action)
		if err != nil {
			log.Warn().
				Err(err).
				Str("target", action.Target()).
				Str("label", action.Label()).
				Msg("Action execution failed")
		}
		outcomes = append(outcomes, ActionOutcome{Action: action, Err: err})
	}
	return outcomes
}

func (e *Executor) execute(ctx context.Context, action Action) error {
	switch a := action.(type) {
	case BudgetCharge:
		return e.budget.Charge(ctx, a.CostCenter, a.Amount, a.Reference)
	case BudgetHold:
		return e.budget.Hold(ctx, a.CostCenter, a.Amount, a.Reference)
	case BudgetRelease:
		return e.budget.Release(ctx, a.Reference)
	case CalendarSync:
		return e.calendar.SyncBlock(ctx, a.UserID, a.Title, a.Start, a.End, a.Reference)
	case AbsenceRecordCreate:
		return e.absences.CreateRecord(ctx, a.UserID, a.Type, a.Start, a.End, a.Reference)
	case NotificationSend:
		return e.notifier.Send(ctx, a.Recipient, a.Audience, a.Title, a.Body)
	case ApprovalRequestCreate:
		return e.approvals.CreateRequest(ctx, a.Queue, a.RequesterID, a.ApproverID, a.Subject, a.Reference)
	case DocumentTag:
		return e.documents.Tag(ctx, a.DocumentID, a.Category)
	case ShiftCoverageFlag:
		return e.shifts.FlagCoverage(ctx, a.ShiftID, a.UserID, a.Reason)
	default:
		return errors.Errorf("no module mapping for action %T", action)
	}
}
