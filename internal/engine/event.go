package engine

import (
	"time"

	"github.com/google/uuid"
)

// Operation is the kind of mutation observed on a domain table
type Operation string

const (
	OperationInserted Operation = "inserted"
	OperationUpdated  Operation = "updated"
)

// Entity names observed by the engine
const (
	EntityAbsenceRequests      = "absence_requests"
	EntityDocuments            = "documents"
	EntityTimeEntries          = "time_entries"
	EntityBusinessTrips        = "business_trips"
	EntityBusinessTripExpenses = "business_trip_expenses"
)

// Record is a snapshot of a domain row, field name to value
type Record map[string]interface{}

// String returns the string value for a field, or "" when absent
func (r Record) String(field string) string {
	if r == nil {
		return ""
	}
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value for a field. JSON decoding produces
// float64 for all numbers, so that is the canonical numeric type here.
func (r Record) Float(field string) float64 {
	if r == nil {
		return 0
	}
	switch v := r[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// UUID parses a field as a UUID, returning uuid.Nil on failure
func (r Record) UUID(field string) uuid.UUID {
	id, err := uuid.Parse(r.String(field))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Time parses a field as RFC3339 or a plain date, zero time on failure
func (r Record) Time(field string) time.Time {
	s := r.String(field)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

// ChangeEvent represents one observed mutation from the data store's
// change feed. Old is nil for inserts. Events are fire-and-forget: the
// engine consumes them exactly once and does not persist the raw event.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Operation Operation `json:"op"`
	New       Record    `json:"new"`
	Old       Record    `json:"old,omitempty"`
}
