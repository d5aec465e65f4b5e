package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/couchcryptid/h1b-wage-explorer/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// EventPublisher delivers query events to an analytics sink.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.QueryEvent) error
}

const (
	publishAttempts   = 3
	initialBackoff    = 200 * time.Millisecond
	maxPublishBackoff = 2 * time.Second
)

// eventQueue decouples query answers from event delivery. Queries never wait
// on the publisher: a full queue drops the event, and publish failures are
// logged after retries.
type eventQueue struct {
	publisher EventPublisher
	events    chan domain.QueryEvent
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func newEventQueue(p EventPublisher, size int, logger *slog.Logger, metrics *observability.Metrics) *eventQueue {
	return &eventQueue{
		publisher: p,
		events:    make(chan domain.QueryEvent, size),
		logger:    logger,
		metrics:   metrics,
	}
}

func (q *eventQueue) enqueue(event domain.QueryEvent) {
	select {
	case q.events <- event:
	default:
		q.metrics.EventsPublished.WithLabelValues("dropped").Inc()
		q.logger.Warn("query event queue full, dropping event", "kind", event.Kind)
	}
}

func (q *eventQueue) run(ctx context.Context) error {
	q.logger.Info("query event publisher started", "buffer", cap(q.events))
	for {
		select {
		case <-ctx.Done():
			q.logger.Info("query event publisher stopping", "reason", ctx.Err(), "pending", len(q.events))
			return nil
		case event := <-q.events:
			q.deliver(ctx, event)
		}
	}
}

// deliver publishes one event with exponential backoff between attempts.
func (q *eventQueue) deliver(ctx context.Context, event domain.QueryEvent) {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := q.publisher.Publish(ctx, event)
		if err == nil {
			q.metrics.EventsPublished.WithLabelValues("success").Inc()
			return
		}
		if attempt == publishAttempts || ctx.Err() != nil {
			q.metrics.EventsPublished.WithLabelValues("error").Inc()
			q.logger.Warn("publish query event failed", "error", err, "kind", event.Kind, "attempts", attempt)
			return
		}
		if !retry.SleepWithContext(ctx, backoff) {
			q.metrics.EventsPublished.WithLabelValues("error").Inc()
			return
		}
		backoff = retry.NextBackoff(backoff, maxPublishBackoff)
	}
}
