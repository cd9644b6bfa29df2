package engine

import (
	"time"

	"github.com/google/uuid"
)

// Target module identifiers for the audit trail
const (
	TargetBudget        = "budget"
	TargetCalendar      = "calendar"
	TargetAbsenceLedger = "absence_ledger"
	TargetNotifications = "notifications"
	TargetApprovals     = "approvals"
	TargetDocuments     = "documents"
	TargetShifts        = "shifts"
)

// Action is a single externally observable effect against a target
// module. Actions are tagged variants so the executor's dispatch table
// stays exhaustive and statically checkable.
type Action interface {
	// Target names the module the action writes to
	Target() string
	// Label is the short effect string recorded in the audit trail,
	// e.g. budget_updated or overtime_approval_requested
	Label() string
}

// BudgetCharge decrements available budget for a cost center. Reference
// makes the charge idempotent: the budget module rejects a reference it
// has already applied.
type BudgetCharge struct {
	CostCenter string
	Amount     float64
	Reference  string
}

func (BudgetCharge) Target() string { return TargetBudget }
func (BudgetCharge) Label() string  { return "budget_updated" }

// BudgetRelease releases a provisional hold previously placed under
// Reference. The budget module resolves the cost center from the
// recorded hold, so the reference alone identifies it.
type BudgetRelease struct {
	Reference string
}

func (BudgetRelease) Target() string { return TargetBudget }
func (BudgetRelease) Label() string  { return "budget_released" }

// BudgetHold places a provisional hold against a cost center
type BudgetHold struct {
	CostCenter string
	Amount     float64
	Reference  string
}

func (BudgetHold) Target() string { return TargetBudget }
func (BudgetHold) Label() string  { return "budget_hold_placed" }

// CalendarSync creates or updates a calendar block for a user
type CalendarSync struct {
	UserID    uuid.UUID
	Title     string
	Start     time.Time
	End       time.Time
	Reference string
}

func (CalendarSync) Target() string { return TargetCalendar }
func (CalendarSync) Label() string  { return "calendar_synced" }

// AbsenceRecordCreate registers an absence in the absence ledger
type AbsenceRecordCreate struct {
	UserID    uuid.UUID
	Type      string
	Start     time.Time
	End       time.Time
	Reference string
}

func (AbsenceRecordCreate) Target() string { return TargetAbsenceLedger }
func (AbsenceRecordCreate) Label() string  { return "absence_record_created" }

// NotificationSend dispatches a notification to a recipient
type NotificationSend struct {
	Recipient uuid.UUID
	Audience  string // manager, team, payroll, it, employee
	Title     string
	Body      string
}

func (NotificationSend) Target() string { return TargetNotifications }
func (NotificationSend) Label() string  { return "notification_sent" }

// Approval request kinds; the label carries the kind so the audit trail
// distinguishes an overtime request from a budget review
const (
	ApprovalOvertime     = "overtime"
	ApprovalBudgetReview = "budget_review"
	ApprovalExpense      = "expense"
	ApprovalEquipment    = "equipment"
)

// ApprovalRequestCreate routes a request into an approval queue
type ApprovalRequestCreate struct {
	Queue       string
	RequesterID uuid.UUID
	ApproverID  uuid.UUID
	Subject     string
	Reference   string
}

func (ApprovalRequestCreate) Target() string { return TargetApprovals }

func (a ApprovalRequestCreate) Label() string {
	return a.Queue + "_approval_requested"
}

// DocumentTag records the inferred category on a document
type DocumentTag struct {
	DocumentID uuid.UUID
	Category   string
}

func (DocumentTag) Target() string { return TargetDocuments }
func (DocumentTag) Label() string  { return "document_categorized" }

// ShiftCoverageFlag marks a shift as needing coverage
type ShiftCoverageFlag struct {
	ShiftID uuid.UUID
	UserID  uuid.UUID
	Reason  string
}

func (ShiftCoverageFlag) Target() string { return TargetShifts }
func (ShiftCoverageFlag) Label() string  { return "shift_coverage_flagged" }
