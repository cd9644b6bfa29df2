package reporter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/metrics"
	"example.com/peoplehub/services/automation/internal/models"
)

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Create(ctx context.Context, event *models.IntegrationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventStore) Recent(ctx context.Context, limit int) ([]models.IntegrationEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IntegrationEvent), args.Error(1)
}

type MockNoticeSink struct {
	mock.Mock
}

func (m *MockNoticeSink) Send(ctx context.Context, recipient uuid.UUID, audience, title, body string) error {
	args := m.Called(ctx, recipient, audience, title, body)
	return args.Error(0)
}

func mustActions(t *testing.T, actions []engine.ExecutedAction) []byte {
	t.Helper()
	data, err := json.Marshal(actions)
	require.NoError(t, err)
	return data
}

func TestRecordPersistsAuditRow(t *testing.T) {
	store := new(MockEventStore)
	var saved *models.IntegrationEvent
	store.On("Create", mock.Anything, mock.AnythingOfType("*models.IntegrationEvent")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.IntegrationEvent)
		}).
		Return(nil)

	rep := New(store, nil, nil, nil, metrics.NewMetrics(), 100)

	rep.Record(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityBusinessTrips,
		Operation: engine.OperationUpdated,
	}, engine.AutomationResult{
		Handler: "business_trip_approved",
		Outcome: engine.OutcomeActionsSucceeded,
		Actions: []engine.ExecutedAction{
			{Target: engine.TargetBudget, Label: "budget_updated"},
			{Target: engine.TargetCalendar, Label: "calendar_synced"},
		},
	})

	require.NotNil(t, saved)
	require.Equal(t, engine.EntityBusinessTrips, saved.Entity)
	require.Equal(t, "updated", saved.Operation)
	require.Equal(t, string(engine.OutcomeActionsSucceeded), saved.Outcome)
	require.Equal(t, 2, saved.ActionCount)
	store.AssertExpectations(t)
}

func TestRecordEmitsPartialNotice(t *testing.T) {
	store := new(MockEventStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	notices := new(MockNoticeSink)
	notices.On("Send", mock.Anything, mock.Anything, "employee", noticeTitlePartial,
		mock.MatchedBy(func(body string) bool {
			return body != "" && containsAll(body, "2 of 3", "business_trip_approved")
		})).Return(nil)

	rep := New(store, nil, notices, nil, metrics.NewMetrics(), 100)

	rep.Record(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityBusinessTrips,
		Operation: engine.OperationUpdated,
		New:       engine.Record{"user_id": uuid.New().String()},
	}, engine.AutomationResult{
		Handler: "business_trip_approved",
		Outcome: engine.OutcomePartial,
		Actions: []engine.ExecutedAction{
			{Target: engine.TargetBudget, Label: "budget_updated"},
			{Target: engine.TargetAbsenceLedger, Label: "absence_record_created"},
		},
		Failed: []engine.FailedAction{
			{Target: engine.TargetCalendar, Label: "calendar_synced", Error: "calendar unavailable"},
		},
		Error: "calendar unavailable",
	})

	notices.AssertExpectations(t)
}

func TestRecordSkipsNoticeWhenNoActionNeeded(t *testing.T) {
	store := new(MockEventStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	notices := new(MockNoticeSink)

	rep := New(store, nil, notices, nil, metrics.NewMetrics(), 100)

	rep.Record(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityTimeEntries,
		Operation: engine.OperationInserted,
	}, engine.AutomationResult{
		Handler: "time_tracking_completed",
		Outcome: engine.OutcomeNoActionNeeded,
	})

	notices.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecomputeStatsFromWindow(t *testing.T) {
	store := new(MockEventStore)
	store.On("Recent", mock.Anything, 100).Return([]models.IntegrationEvent{
		{
			ID: uuid.New(), Entity: engine.EntityBusinessTrips, Handler: "business_trip_approved",
			Outcome: string(engine.OutcomeActionsSucceeded), ActionCount: 3,
			Actions: mustActions(t, []engine.ExecutedAction{
				{Target: engine.TargetBudget, Label: "budget_updated"},
				{Target: engine.TargetCalendar, Label: "calendar_synced"},
				{Target: engine.TargetAbsenceLedger, Label: "absence_record_created"},
			}),
		},
		{
			ID: uuid.New(), Entity: engine.EntityBusinessTrips, Handler: "business_trip_approved",
			Outcome: string(engine.OutcomePartial), ActionCount: 1,
			Actions: mustActions(t, []engine.ExecutedAction{
				{Target: engine.TargetBudget, Label: "budget_updated"},
			}),
			Error: "calendar unavailable",
		},
		{
			ID: uuid.New(), Entity: engine.EntityTimeEntries, Handler: "time_tracking_completed",
			Outcome: string(engine.OutcomeNoActionNeeded),
		},
	}, nil)

	rep := New(store, nil, nil, nil, metrics.NewMetrics(), 100)

	stats, err := rep.Recompute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.Events)
	require.Equal(t, int64(4), stats.ActionsExecuted)

	// One success out of two resolved events; no_action_needed is excluded
	require.InDelta(t, 50.0, stats.SuccessRate, 0.01)

	require.Equal(t, int64(2), stats.Handlers["business_trip_approved"])
	require.Equal(t, int64(1), stats.Outcomes[string(engine.OutcomeNoActionNeeded)])

	require.NotEmpty(t, stats.TopPatterns)
	top := stats.TopPatterns[0]
	require.Equal(t, engine.EntityBusinessTrips, top.Entity)
	require.Equal(t, "budget_updated", top.Action)
	require.Equal(t, int64(2), top.Count)
}

func TestStatsServesLastKnownGoodOnFailure(t *testing.T) {
	store := new(MockEventStore)
	store.On("Recent", mock.Anything, 100).Return([]models.IntegrationEvent{
		{
			ID: uuid.New(), Entity: engine.EntityDocuments, Handler: "document_uploaded",
			Outcome: string(engine.OutcomeActionsSucceeded), ActionCount: 1,
			Actions: mustActions(t, []engine.ExecutedAction{
				{Target: engine.TargetDocuments, Label: "document_categorized"},
			}),
		},
	}, nil).Once()
	store.On("Recent", mock.Anything, 100).Return(nil, errors.New("database down"))

	rep := New(store, nil, nil, nil, metrics.NewMetrics(), 100)

	first, err := rep.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Events)

	// The second call fails to recompute but still serves the snapshot
	second, err := rep.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.Events, second.Events)
	require.Equal(t, first.ComputedAt, second.ComputedAt)
}

func TestStatsErrorsWithoutAnySnapshot(t *testing.T) {
	store := new(MockEventStore)
	store.On("Recent", mock.Anything, 100).Return(nil, errors.New("database down"))

	rep := New(store, nil, nil, nil, metrics.NewMetrics(), 100)

	_, err := rep.Stats(context.Background())
	require.Error(t, err)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
