package engine

import (
	"context"
	"sync"
)

// Predicate is a pure, side-effect-free test gating whether a
// subscription's handler runs for an event. Predicates are small
// comparison structs rather than closures so subscriptions stay
// inspectable for the statistics surface and a future rules UI.
type Predicate interface {
	Matches(event ChangeEvent) bool
	Describe() string
}

// FieldEquals matches when a field of the new record equals a value.
// Used to gate insert-time handlers, e.g. type == sick_leave.
type FieldEquals struct {
	Field string
	Value string
}

func (p FieldEquals) Matches(event ChangeEvent) bool {
	return event.New.String(p.Field) == p.Value
}

func (p FieldEquals) Describe() string {
	return p.Field + " == " + p.Value
}

// StatusTransition matches when a field transitioned into To: the new
// value equals To and the old value did not. It never fires on re-saves
// that leave the field unchanged, and never on inserts (no old record
// means no transition).
type StatusTransition struct {
	Field string
	To    string
}

func (p StatusTransition) Matches(event ChangeEvent) bool {
	if event.Old == nil {
		return false
	}
	return event.New.String(p.Field) == p.To && event.Old.String(p.Field) != p.To
}

func (p StatusTransition) Describe() string {
	return p.Field + " -> " + p.To
}

// Handler encapsulates the business rule for what cross-module actions
// a given change implies. It inspects the record and returns a Decision
// naming the actions warranted; the executor performs them.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event ChangeEvent) (Decision, error)
}

// Subscription binds interest in an (entity, operation, predicate)
// tuple to a handler
type Subscription struct {
	Entity    string
	Operation Operation
	Predicate Predicate
	Handler   Handler
}

// Registry holds the process-wide set of subscriptions. It is populated
// once at startup and read on every dispatch; the mutex only matters for
// the manual-trigger path which may look up handlers concurrently.
type Registry struct {
	mu     sync.RWMutex
	subs   []Subscription
	closed bool
}

// NewRegistry creates an empty subscription registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a subscription. Registration after Close is ignored.
func (r *Registry) Register(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.subs = append(r.subs, sub)
}

// Match returns the subscriptions whose entity and operation match.
// Predicates are evaluated by the router, not here, so dispatch failures
// can be reported per subscription.
func (r *Registry) Match(entity string, op Operation) []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []Subscription
	for _, sub := range r.subs {
		if sub.Entity == entity && sub.Operation == op {
			matched = append(matched, sub)
		}
	}
	return matched
}

// Lookup finds a registered handler by name, used by the manual
// trigger entry points
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subs {
		if sub.Handler.Name() == name {
			return sub.Handler, true
		}
	}
	return nil, false
}

// Len returns the number of registered subscriptions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Close unsubscribes everything. The registry is torn down when the
// owning process ends.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = nil
	r.closed = true
}
