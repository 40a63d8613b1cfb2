// Package fetch dispatches classified queries to their source adapters
// concurrently and collects whatever comes back before the deadline.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/groundwire/groundwire/pkg/observability"
	"github.com/groundwire/groundwire/pkg/source"
)

type adapterEntry struct {
	adapter source.Adapter
	timeout time.Duration
}

// Orchestrator fans one fetch out across its source adapters. Each adapter
// runs in its own goroutine under its own timeout; a hung adapter is
// abandoned at its deadline without disturbing its siblings, so the overall
// latency is bounded by the slowest timeout, never the sum.
//
// Register all adapters before the first Fetch; the adapter table is
// read-only afterwards.
type Orchestrator struct {
	adapters map[source.Kind]adapterEntry
	budget   time.Duration
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewOrchestrator(budget time.Duration) *Orchestrator {
	if budget <= 0 {
		budget = 8 * time.Second
	}
	return &Orchestrator{
		adapters: make(map[source.Kind]adapterEntry),
		budget:   budget,
		tracer:   observability.GetTracer("fetch"),
		logger:   slog.Default().With("component", "fetch"),
	}
}

// Register installs an adapter under its kind. A non-positive timeout gets
// the shared per-adapter default.
func (o *Orchestrator) Register(a source.Adapter, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if timeout > o.budget {
		timeout = o.budget
	}
	o.adapters[a.Kind()] = adapterEntry{adapter: a, timeout: timeout}
}

// Kinds returns the registered source kinds in priority order.
func (o *Orchestrator) Kinds() []source.Kind {
	kinds := make([]source.Kind, 0, len(o.adapters))
	for _, k := range source.Kinds() {
		if _, ok := o.adapters[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Fetch executes every query concurrently and returns one Result per query
// whose kind has a registered adapter. Fetch never returns an error: every
// failure, including a blown deadline, is a failed Result. Result order is
// unspecified; the aggregator re-orders.
func (o *Orchestrator) Fetch(ctx context.Context, queries []source.Query) []source.Result {
	start := time.Now()
	fetchID := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	ctx, span := o.tracer.Start(ctx, observability.SpanFetchDispatch,
		trace.WithAttributes(
			attribute.String(observability.AttrFetchID, fetchID),
			attribute.Int(observability.AttrQueryCount, len(queries)),
		))
	defer span.End()

	results := make([]source.Result, len(queries))
	executed := make([]bool, len(queries))

	g := new(errgroup.Group)
	for i, q := range queries {
		entry, ok := o.adapters[q.Kind]
		if !ok {
			o.logger.Warn("no adapter registered for kind, skipping query",
				"kind", q.Kind, "fetch_id", fetchID)
			continue
		}

		executed[i] = true
		g.Go(func() error {
			results[i] = o.executeOne(ctx, entry, q, fetchID)
			return nil
		})
	}
	_ = g.Wait()

	collected := make([]source.Result, 0, len(queries))
	for i, ok := range executed {
		if ok {
			collected = append(collected, results[i])
		}
	}

	observability.GetGlobalMetrics().RecordFetchDispatch(ctx, time.Since(start), len(collected))
	return collected
}

// executeOne runs a single adapter under its own deadline. The adapter call
// happens on a separate goroutine so an implementation that ignores its
// context can still be abandoned; the orphaned goroutine finishes into a
// buffered channel and is collected.
func (o *Orchestrator) executeOne(ctx context.Context, entry adapterEntry, q source.Query, fetchID string) source.Result {
	start := time.Now()

	taskCtx, cancel := context.WithTimeout(ctx, entry.timeout)
	defer cancel()

	taskCtx, span := o.tracer.Start(taskCtx, observability.SpanSourceFetch,
		trace.WithAttributes(attribute.String(observability.AttrSourceKind, string(q.Kind))))
	defer span.End()

	done := make(chan source.Result, 1)
	go func() {
		done <- entry.adapter.Execute(taskCtx, q)
	}()

	var res source.Result
	select {
	case res = <-done:
	case <-taskCtx.Done():
		res = source.Fail(q.Kind, taskCtx.Err(), time.Since(start))
	}

	if !res.Success {
		span.SetAttributes(attribute.String(observability.AttrErrorKind, string(res.ErrorKind)))
		o.logger.Warn("source fetch failed",
			"kind", res.Kind,
			"error_kind", res.ErrorKind,
			"error", res.Error,
			"latency", res.Latency,
			"fetch_id", fetchID)
	}
	observability.GetGlobalMetrics().RecordSourceFetch(taskCtx, string(res.Kind), res.Latency, string(res.ErrorKind))

	return res
}
