package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Employee represents an employee record, read by handlers to resolve
// managers and cost centers
type Employee struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Name       string         `gorm:"not null" json:"name"`
	Email      string         `gorm:"not null" json:"email"`
	ManagerID  *uuid.UUID     `gorm:"type:uuid" json:"manager_id"`
	CostCenter string         `json:"cost_center"`
	Department string         `json:"department"`
}

// TimeEntry is a completed time-tracking entry, the read model behind
// the overtime check
type TimeEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Date      time.Time      `gorm:"not null;index" json:"date"`
	Hours     float64        `gorm:"not null" json:"hours"`
	Project   string         `json:"project"`
}

// ShiftAssignment is a planned shift for an employee
type ShiftAssignment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Start          time.Time      `gorm:"not null" json:"start"`
	End            time.Time      `gorm:"not null" json:"end"`
	NeedsCoverage  bool           `gorm:"not null;default:false" json:"needs_coverage"`
	CoverageReason string         `json:"coverage_reason"`
}

// Document is an uploaded document; Category is filled in by the
// automation engine's classification
type Document struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Filename  string         `gorm:"not null" json:"filename"`
	MimeType  string         `json:"mime_type"`
	Category  string         `gorm:"index" json:"category"`
}

// BudgetAllocation is a cost center's budget
type BudgetAllocation struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	CostCenter string         `gorm:"not null;uniqueIndex" json:"cost_center"`
	Available  float64        `gorm:"not null;default:0" json:"available"`
	Held       float64        `gorm:"not null;default:0" json:"held"`
	Currency   string         `gorm:"not null;default:'EUR'" json:"currency"`
}

// Budget transaction kinds
const (
	BudgetTxCharge  = "charge"
	BudgetTxHold    = "hold"
	BudgetTxRelease = "release"
)

// BudgetTransaction is one movement against a cost center. The unique
// reference is the idempotency guard: a charge for an already-recorded
// reference is rejected instead of double-decrementing.
type BudgetTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	CostCenter string    `gorm:"not null;index" json:"cost_center"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Kind       string    `gorm:"not null" json:"kind"`
	Reference  string    `gorm:"not null;uniqueIndex" json:"reference"`
}

// CalendarBlock is a calendar entry created by the engine
type CalendarBlock struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"not null" json:"title"`
	Start     time.Time      `gorm:"not null" json:"start"`
	End       time.Time      `gorm:"not null" json:"end"`
	Reference string         `gorm:"not null;uniqueIndex" json:"reference"`
}

// AbsenceRecord is an entry in the absence ledger
type AbsenceRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string         `gorm:"not null" json:"type"`
	Start     time.Time      `gorm:"not null" json:"start"`
	End       time.Time      `gorm:"not null" json:"end"`
	Reference string         `gorm:"not null;uniqueIndex" json:"reference"`
}

// Notification is a dispatched notification
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Recipient uuid.UUID `gorm:"type:uuid;index" json:"recipient"`
	Audience  string    `gorm:"not null" json:"audience"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body"`
}

// Approval request statuses
const (
	ApprovalStatusOpen     = "open"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// ApprovalRequest is an entry in an approval queue
type ApprovalRequest struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Queue       string         `gorm:"not null;index" json:"queue"`
	RequesterID uuid.UUID      `gorm:"type:uuid;not null" json:"requester_id"`
	ApproverID  uuid.UUID      `gorm:"type:uuid" json:"approver_id"`
	Subject     string         `gorm:"not null" json:"subject"`
	Status      string         `gorm:"not null;default:'open'" json:"status"`
	Reference   string         `gorm:"not null;uniqueIndex" json:"reference"`
}

// IntegrationEvent is the engine's own audit log: one row per handler
// invocation, the source for statistics recomputation
type IntegrationEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	Entity      string    `gorm:"not null;index" json:"entity"`
	Operation   string    `gorm:"not null" json:"operation"`
	Handler     string    `gorm:"not null;index" json:"handler"`
	Outcome     string    `gorm:"not null" json:"outcome"`
	Actions     []byte    `gorm:"type:jsonb" json:"actions"`
	ActionCount int       `gorm:"not null;default:0" json:"action_count"`
	Category    string    `json:"category"`
	Error       string    `json:"error"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	// Apply all migrations
	err := db.AutoMigrate(
		&Employee{},
		&TimeEntry{},
		&ShiftAssignment{},
		&Document{},
		&BudgetAllocation{},
		&BudgetTransaction{},
		&CalendarBlock{},
		&AbsenceRecord{},
		&Notification{},
		&ApprovalRequest{},
		&IntegrationEvent{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
