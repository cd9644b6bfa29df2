package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"example.com/peoplehub/services/automation/internal/metrics"
	"example.com/peoplehub/services/automation/internal/tracing"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Reporter folds handler outcomes into the observable surface: notices,
// the integration event log and statistics
type Reporter interface {
	Record(ctx context.Context, event ChangeEvent, result AutomationResult)
}

// Config tunes the dispatch loop
type Config struct {
	QueueSize      int
	HandlerTimeout time.Duration
}

// Router receives change events, matches them against the subscription
// registry and fans out to the bound handlers. Fan-out is concurrent
// across handlers; a single handler's actions execute sequentially in
// declared order. Failures never propagate back to the triggering
// write, which has already committed.
type Router struct {
	registry *Registry
	executor *Executor
	reporter Reporter
	metrics  *metrics.Metrics
	tracer   tracing.Tracer

	queue          chan ChangeEvent
	handlerTimeout time.Duration
	inflight       atomic.Int64
	wg             sync.WaitGroup
}

// NewRouter creates the event router
func NewRouter(
	registry *Registry,
	executor *Executor,
	reporter Reporter,
	collector *metrics.Metrics,
	tracer tracing.Tracer,
	cfg Config,
) *Router {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	return &Router{
		registry:       registry,
		executor:       executor,
		reporter:       reporter,
		metrics:        collector,
		tracer:         tracer,
		queue:          make(chan ChangeEvent, cfg.QueueSize),
		handlerTimeout: cfg.HandlerTimeout,
	}
}

// Enqueue hands a change event to the dispatch loop. The queue is
// bounded; when the event source outpaces handler throughput the send
// blocks, which is the backpressure signal for the bus consumer.
func (r *Router) Enqueue(ctx context.Context, event ChangeEvent) error {
	select {
	case r.queue <- event:
		r.metrics.IncrementCounter(metrics.CounterEventsReceived)
		r.metrics.SetGauge(metrics.GaugeQueueDepth, int64(len(r.queue)))
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "enqueue cancelled")
	}
}

// Run consumes the queue until the context is cancelled, then waits for
// in-flight handlers to finish
func (r *Router) Run(ctx context.Context) error {
	log.Info().Int("subscriptions", r.registry.Len()).Msg("Event router started")
	for {
		select {
		case <-ctx.Done():
			r.wg.Wait()
			log.Info().Msg("Event router stopped")
			return ctx.Err()
		case event := <-r.queue:
			r.metrics.SetGauge(metrics.GaugeQueueDepth, int64(len(r.queue)))
			r.dispatch(ctx, event)
		}
	}
}

// dispatch matches one event and fans out to every subscription whose
// predicate holds. Handlers run independently: one failing or blocking
// never delays or fails another.
func (r *Router) dispatch(ctx context.Context, event ChangeEvent) {
	subs := r.registry.Match(event.Entity, event.Operation)
	if len(subs) == 0 {
		log.Debug().
			Str("entity", event.Entity).
			Str("op", string(event.Operation)).
			Msg("No subscription for event, skipping")
		r.metrics.IncrementCounter(metrics.CounterEventsUnmatched)
		return
	}

	for _, sub := range subs {
		if sub.Predicate != nil && !sub.Predicate.Matches(event) {
			continue
		}
		r.wg.Add(1)
		r.inflight.Add(1)
		go func(sub Subscription) {
			defer r.wg.Done()
			defer r.inflight.Add(-1)
			result := r.invoke(ctx, sub.Handler, event)
			r.reporter.Record(ctx, event, result)
		}(sub)
	}
}

// invoke runs one handler with a bounded execution time. A handler that
// does not complete within the timeout is reported as failed; module
// writes it already performed are not undone.
func (r *Router) invoke(ctx context.Context, handler Handler, event ChangeEvent) AutomationResult {
	start := time.Now()
	txn := r.tracer.StartTransaction("automation-" + handler.Name())
	defer r.tracer.EndTransaction(txn)
	r.tracer.AddAttribute(txn, "entity", event.Entity)
	r.tracer.AddAttribute(txn, "operation", string(event.Operation))

	invCtx, cancel := context.WithTimeout(ctx, r.handlerTimeout)
	defer cancel()

	done := make(chan AutomationResult, 1)
	go func() {
		done <- r.process(invCtx, txn, handler, event)
	}()

	var result AutomationResult
	select {
	case result = <-done:
	case <-invCtx.Done():
		if invCtx.Err() == context.DeadlineExceeded {
			result = FailureResult(handler.Name(), errors.Errorf("handler %s timed out after %s", handler.Name(), r.handlerTimeout))
		} else {
			result = FailureResult(handler.Name(), errors.Errorf("handler %s cancelled before completion", handler.Name()))
		}
	}

	r.metrics.IncrementCounter(metrics.CounterEventsProcessed)
	r.metrics.IncrementCounterBy(metrics.CounterActionsExecuted, int64(len(result.Actions)))
	r.metrics.IncrementCounterBy(metrics.CounterActionsFailed, int64(len(result.Failed)))
	r.metrics.RecordTimer(metrics.TimerHandlerDuration, time.Since(start).Milliseconds())
	if result.Success() {
		r.metrics.RecordSuccess(handler.Name())
	} else {
		r.metrics.RecordError(handler.Name())
		r.tracer.RecordError(txn, errors.New(result.Error))
	}
	return result
}

// process produces the handler decision and executes it. A panic inside
// the handler is a handler-level failure: no actions are assumed to
// have run.
func (r *Router) process(ctx context.Context, txn *newrelic.Transaction, handler Handler, event ChangeEvent) (result AutomationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("handler", handler.Name()).
				Msg("Handler panicked")
			result = FailureResult(handler.Name(), errors.Errorf("handler panic: %v", rec))
		}
	}()

	span := r.tracer.StartSpan("handle", txn)
	decision, err := handler.Handle(ctx, event)
	span.End()
	if err != nil {
		return FailureResult(handler.Name(), err)
	}

	execSpan := r.tracer.StartSpan("execute-actions", txn)
	outcomes := r.executor.Execute(ctx, decision.Actions)
	execSpan.End()

	return BuildResult(handler.Name(), decision, outcomes)
}

// Trigger invokes a handler by name outside the change feed, used for
// the manual onboarding and shift-plan workflows. The invocation flows
// through the same execute and report pipeline as event dispatch.
func (r *Router) Trigger(ctx context.Context, handlerName string, data Record) (AutomationResult, error) {
	handler, ok := r.registry.Lookup(handlerName)
	if !ok {
		return AutomationResult{}, errors.Errorf("no handler registered as %s", handlerName)
	}
	event := ChangeEvent{
		Entity:    "manual:" + handlerName,
		Operation: OperationInserted,
		New:       data,
	}
	r.inflight.Add(1)
	defer r.inflight.Add(-1)
	result := r.invoke(ctx, handler, event)
	r.reporter.Record(ctx, event, result)
	return result, nil
}

// Processing reports whether any handler is currently in flight
func (r *Router) Processing() bool {
	return r.inflight.Load() > 0
}

// QueueDepth returns the number of events waiting for dispatch
func (r *Router) QueueDepth() int {
	return len(r.queue)
}
