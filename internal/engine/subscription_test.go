package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type noopHandler struct {
	name string
}

func (h noopHandler) Name() string { return h.name }

func (h noopHandler) Handle(ctx context.Context, event ChangeEvent) (Decision, error) {
	return Decision{}, nil
}

func TestFieldEqualsMatches(t *testing.T) {
	p := FieldEquals{Field: "type", Value: "sick_leave"}

	require.True(t, p.Matches(ChangeEvent{New: Record{"type": "sick_leave"}}))
	require.False(t, p.Matches(ChangeEvent{New: Record{"type": "vacation"}}))
	require.False(t, p.Matches(ChangeEvent{New: Record{}}))
	require.False(t, p.Matches(ChangeEvent{}))
}

func TestStatusTransitionMatchesOnlyRealTransitions(t *testing.T) {
	p := StatusTransition{Field: "status", To: "approved"}

	// pending -> approved fires
	require.True(t, p.Matches(ChangeEvent{
		New: Record{"status": "approved"},
		Old: Record{"status": "pending"},
	}))

	// approved -> approved is a re-save, not a transition
	require.False(t, p.Matches(ChangeEvent{
		New: Record{"status": "approved"},
		Old: Record{"status": "approved"},
	}))

	// an update away from the target status never fires
	require.False(t, p.Matches(ChangeEvent{
		New: Record{"status": "rejected"},
		Old: Record{"status": "approved"},
	}))

	// inserts carry no old record and cannot be transitions
	require.False(t, p.Matches(ChangeEvent{
		New: Record{"status": "approved"},
	}))
}

func TestRegistryMatch(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Subscription{
		Entity:    EntityBusinessTrips,
		Operation: OperationUpdated,
		Handler:   noopHandler{name: "trip_approved"},
	})
	registry.Register(Subscription{
		Entity:    EntityBusinessTrips,
		Operation: OperationUpdated,
		Handler:   noopHandler{name: "trip_completed"},
	})
	registry.Register(Subscription{
		Entity:    EntityDocuments,
		Operation: OperationInserted,
		Handler:   noopHandler{name: "document_uploaded"},
	})

	matched := registry.Match(EntityBusinessTrips, OperationUpdated)
	require.Len(t, matched, 2)

	require.Empty(t, registry.Match(EntityBusinessTrips, OperationInserted))
	require.Empty(t, registry.Match("unknown", OperationInserted))
	require.Equal(t, 3, registry.Len())
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Subscription{
		Entity:    "manual:employee_onboarding",
		Operation: OperationInserted,
		Handler:   noopHandler{name: "employee_onboarding"},
	})

	handler, ok := registry.Lookup("employee_onboarding")
	require.True(t, ok)
	require.Equal(t, "employee_onboarding", handler.Name())

	_, ok = registry.Lookup("missing")
	require.False(t, ok)
}

func TestRegistryCloseDropsSubscriptions(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Subscription{
		Entity:    EntityDocuments,
		Operation: OperationInserted,
		Handler:   noopHandler{name: "document_uploaded"},
	})

	registry.Close()
	require.Zero(t, registry.Len())

	// Registration after Close is ignored
	registry.Register(Subscription{
		Entity:    EntityDocuments,
		Operation: OperationInserted,
		Handler:   noopHandler{name: "document_uploaded"},
	})
	require.Zero(t, registry.Len())
}
