// Package reporter persists the audit trail of handler invocations,
// emits user facing notices about each resolution and recomputes the
// integration statistics exposed by the API.
package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/internal/cache"
	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/metrics"
	"example.com/peoplehub/services/automation/internal/models"
)

// EventStore is the audit log the reporter writes to and recomputes
// statistics from
type EventStore interface {
	Create(ctx context.Context, event *models.IntegrationEvent) error
	Recent(ctx context.Context, limit int) ([]models.IntegrationEvent, error)
}

// Indexer mirrors audit entries into the search backend
type Indexer interface {
	IndexIntegrationEvent(ctx context.Context, event *models.IntegrationEvent) error
}

// NoticeSink receives the human readable notice for each resolution
type NoticeSink interface {
	Send(ctx context.Context, recipient uuid.UUID, audience, title, body string) error
}

// Notice titles per outcome
const (
	noticeTitleSucceeded = "Automation completed"
	noticeTitlePartial   = "Automation partially completed"
	noticeTitleFailed    = "Automation failed"
)

// PatternCount is one (entity, action) pair with its occurrence count
type PatternCount struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// Stats is the recomputed integration statistics snapshot
type Stats struct {
	Window          int              `json:"window"`
	Events          int              `json:"events"`
	ActionsExecuted int64            `json:"actions_executed"`
	SuccessRate     float64          `json:"success_rate"`
	Outcomes        map[string]int64 `json:"outcomes"`
	Handlers        map[string]int64 `json:"handlers"`
	TopPatterns     []PatternCount   `json:"top_patterns"`
	ComputedAt      time.Time        `json:"computed_at"`
}

// Reporter records automation results and serves statistics. The stats
// snapshot is recomputed from scratch over the recent event window; the
// last successful snapshot is kept so a failing recompute degrades to
// stale data instead of an error.
type Reporter struct {
	store   EventStore
	indexer Indexer
	notices NoticeSink
	cache   *cache.RedisCache
	metrics *metrics.Metrics

	window int

	mu       sync.RWMutex
	snapshot *Stats
}

// New creates a reporter. indexer, notices and redisCache may be nil;
// the corresponding side effects are skipped.
func New(store EventStore, indexer Indexer, notices NoticeSink, redisCache *cache.RedisCache, m *metrics.Metrics, window int) *Reporter {
	if window <= 0 {
		window = 100
	}
	return &Reporter{
		store:   store,
		indexer: indexer,
		notices: notices,
		cache:   redisCache,
		metrics: m,
		window:  window,
	}
}

// Record persists one handler invocation result. The database write is
// the source of truth; search indexing and notices are best effort.
// Recording never fails the dispatch path, so storage errors are logged
// rather than returned.
func (r *Reporter) Record(ctx context.Context, event engine.ChangeEvent, result engine.AutomationResult) {
	actions, err := json.Marshal(result.Actions)
	if err != nil {
		log.Error().Err(err).Str("handler", result.Handler).Msg("Failed to marshal executed actions")
		return
	}

	row := &models.IntegrationEvent{
		ID:          uuid.New(),
		Entity:      event.Entity,
		Operation:   string(event.Operation),
		Handler:     result.Handler,
		Outcome:     string(result.Outcome),
		Actions:     actions,
		ActionCount: len(result.Actions),
		Category:    result.Category,
		Error:       result.Error,
	}

	if err := r.store.Create(ctx, row); err != nil {
		log.Error().Err(err).Str("handler", result.Handler).Msg("Failed to record integration event")
		return
	}

	if r.indexer != nil {
		if err := r.indexer.IndexIntegrationEvent(ctx, row); err != nil {
			log.Warn().Err(err).Str("handler", result.Handler).Msg("Failed to index integration event")
		}
	}

	r.emitNotice(ctx, event, result)
}

// emitNotice turns the result into a user facing notice. Nothing is
// emitted for events that needed no action.
func (r *Reporter) emitNotice(ctx context.Context, event engine.ChangeEvent, result engine.AutomationResult) {
	if r.notices == nil || result.Outcome == engine.OutcomeNoActionNeeded {
		return
	}

	recipient := event.New.UUID("user_id")

	var title, body string
	switch result.Outcome {
	case engine.OutcomeActionsSucceeded:
		title = noticeTitleSucceeded
		body = fmt.Sprintf("%s ran all %d actions for %s", result.Handler, len(result.Actions), event.Entity)
	case engine.OutcomePartial:
		total := len(result.Actions) + len(result.Failed)
		title = noticeTitlePartial
		body = fmt.Sprintf("%s completed %d of %d actions for %s: %s", result.Handler, len(result.Actions), total, event.Entity, result.Error)
	case engine.OutcomeFailed:
		title = noticeTitleFailed
		body = fmt.Sprintf("%s could not process %s: %s", result.Handler, event.Entity, result.Error)
	default:
		return
	}

	if err := r.notices.Send(ctx, recipient, "employee", title, body); err != nil {
		log.Warn().Err(err).Str("handler", result.Handler).Msg("Failed to emit automation notice")
		return
	}

	if r.metrics != nil {
		r.metrics.IncrementCounter(metrics.CounterNoticesEmitted)
	}
}

// Stats returns the current statistics snapshot, recomputing it first.
// When recomputation fails the last known good snapshot is returned
// alongside the error cause logged.
func (r *Reporter) Stats(ctx context.Context) (*Stats, error) {
	snapshot, err := r.Recompute(ctx)
	if err == nil {
		return snapshot, nil
	}

	log.Warn().Err(err).Msg("Stats recomputation failed, serving last known snapshot")

	r.mu.RLock()
	last := r.snapshot
	r.mu.RUnlock()

	if last != nil {
		return last, nil
	}

	// No snapshot yet, try the cache left by a previous process
	if r.cache != nil && r.cache.Enabled() {
		var cached Stats
		if cacheErr := r.cache.Get(ctx, cache.GetStatsCacheKey(r.window), &cached); cacheErr == nil {
			return &cached, nil
		}
	}

	return nil, err
}

// Recompute rebuilds the statistics from the recent event window. The
// computation is not incremental: every call rereads the audit log so a
// miscounted snapshot never compounds.
func (r *Reporter) Recompute(ctx context.Context) (*Stats, error) {
	started := time.Now()

	events, err := r.store.Recent(ctx, r.window)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load events for stats")
	}

	snapshot := &Stats{
		Window:     r.window,
		Events:     len(events),
		Outcomes:   make(map[string]int64),
		Handlers:   make(map[string]int64),
		ComputedAt: time.Now().UTC(),
	}

	patterns := make(map[PatternCount]int64)
	var resolved, succeeded int64

	for _, event := range events {
		snapshot.Outcomes[event.Outcome]++
		snapshot.Handlers[event.Handler]++
		snapshot.ActionsExecuted += int64(event.ActionCount)

		// no_action_needed events are excluded from the success rate;
		// they carry no signal about action execution
		switch engine.Outcome(event.Outcome) {
		case engine.OutcomeActionsSucceeded:
			resolved++
			succeeded++
		case engine.OutcomePartial, engine.OutcomeFailed:
			resolved++
		}

		var actions []engine.ExecutedAction
		if len(event.Actions) > 0 {
			if err := json.Unmarshal(event.Actions, &actions); err != nil {
				log.Warn().Err(err).Str("event_id", event.ID.String()).Msg("Skipping event with unreadable actions")
				continue
			}
		}
		for _, action := range actions {
			patterns[PatternCount{Entity: event.Entity, Action: action.Label}]++
		}
	}

	if resolved > 0 {
		snapshot.SuccessRate = float64(succeeded) / float64(resolved) * 100.0
	}

	for pattern, count := range patterns {
		pattern.Count = count
		snapshot.TopPatterns = append(snapshot.TopPatterns, pattern)
	}
	sort.Slice(snapshot.TopPatterns, func(i, j int) bool {
		a, b := snapshot.TopPatterns[i], snapshot.TopPatterns[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		return a.Action < b.Action
	})
	if len(snapshot.TopPatterns) > 10 {
		snapshot.TopPatterns = snapshot.TopPatterns[:10]
	}

	r.mu.Lock()
	r.snapshot = snapshot
	r.mu.Unlock()

	if r.cache != nil && r.cache.Enabled() {
		if err := r.cache.Set(ctx, cache.GetStatsCacheKey(r.window), snapshot, time.Hour); err != nil {
			log.Warn().Err(err).Msg("Failed to cache stats snapshot")
		}
	}

	if r.metrics != nil {
		r.metrics.IncrementCounter(metrics.CounterStatsRecomputes)
		r.metrics.RecordTimer(metrics.TimerStatsDuration, time.Since(started).Milliseconds())
	}

	return snapshot, nil
}

// RecentEvents exposes the raw audit trail for the API
func (r *Reporter) RecentEvents(ctx context.Context, limit int) ([]models.IntegrationEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return r.store.Recent(ctx, limit)
}
