package notifications

import (
	"context"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"sync"
	"time"
)

// Notifier hands booking events to the delivery pipeline. Notify never
// blocks the caller on delivery and never reports failure.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaNotifier struct {
	publisher Publisher
	source    string
	timeout   time.Duration
	log       *logger.Logger
	wg        sync.WaitGroup
}

func NewKafkaNotifier(publisher Publisher, source string, timeout time.Duration, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		source:    source,
		timeout:   timeout,
		log:       log,
	}
}

// Notify publishes in its own goroutine, detached from ctx cancellation so a
// finished request does not abort the publish.
func (n *KafkaNotifier) Notify(ctx context.Context, event Event) {
	msg := NewMessage(event, n.source, correlationID(ctx))

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.publisher.Publish(pubCtx, msg); err != nil {
			n.log.Warn("Failed to publish booking event",
				"event_id", event.ID,
				"event_type", event.Type,
				"booking_id", event.BookingID,
				"error", err,
			)
		}
	}()
}

// Wait blocks until in-flight publishes finish, for graceful shutdown.
func (n *KafkaNotifier) Wait() {
	n.wg.Wait()
}

// NewMessage keys events by booking so one booking's events stay ordered.
func NewMessage(event Event, source, correlationID string) kafka.Message {
	return kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithCorrelationID(correlationID).
		Build()
}

type correlationKey struct{}

// WithCorrelationID stores the id that published events carry as correlation-id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// correlationID prefers an explicit id and falls back to the HTTP request id.
func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return middleware.RequestIDFrom(ctx)
}

type nopNotifier struct{}

// NewNopNotifier returns a Notifier that drops events, used when Kafka is disabled.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Notify(context.Context, Event) {}
