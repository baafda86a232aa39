package kafka

import (
	"context"
	"errors"
	"fmt"
	"slotbook/pkg/logger"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg := NewMessage().
		WithKey("provider-1").
		WithValue(map[string]int{"rating": 5}).
		WithEventType("booking.reviewed").
		WithSource("bookings").
		WithCorrelationID("").
		Build()

	if msg.Key != "provider-1" {
		t.Errorf("Key = %q", msg.Key)
	}
	if string(msg.Value) != `{"rating":5}` {
		t.Errorf("Value = %s", msg.Value)
	}
	if msg.GetEventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.GetEventType() != "booking.reviewed" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if _, ok := msg.GetHeader(HeaderCorrelationID); ok {
		t.Error("empty correlation id should not set a header")
	}
	if _, ok := msg.GetHeader(HeaderTimestamp); !ok {
		t.Error("timestamp header should be set")
	}
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if len(msg.Value) != 0 {
		t.Errorf("expected empty value, got %s", msg.Value)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	if msg.GetRetryCount() != 0 {
		t.Fatal("missing header should read as 0")
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if msg.GetRetryCount() != 0 {
		t.Error("malformed header should read as 0")
	}

	var empty Message
	empty.IncrementRetryCount()
	if empty.GetRetryCount() != 1 {
		t.Error("increment on nil headers should work")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("db down", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", nil), ErrorTypePermanent},
		{"wrapped transient sentinel", fmt.Errorf("recompute: %w", ErrTransientFailure), ErrorTypeTransient},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown defaults to permanent", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("x", nil)
	if !ShouldRetry(transient, 0, 3) {
		t.Error("transient error under the limit should retry")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("retries exhausted should not retry")
	}
	if ShouldRetry(NewPermanentError("x", nil), 0, 3) {
		t.Error("permanent error should not retry")
	}
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "events", log: logger.Discard()}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg := NewMessage().WithKey("k").WithRawValue([]byte("{}")).WithEventType("booking.created").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if seenTopic != "events" {
		t.Errorf("middleware saw topic %q", seenTopic)
	}
	if len(w.messages) != 1 || header(w.messages[0], HeaderEventType) != "booking.created" {
		t.Fatalf("unexpected writes: %+v", w.messages)
	}

	if err := p.Publish(context.Background(), Message{Value: []byte("{}")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("missing key: got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("missing value: got %v", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("closed producer: got %v", err)
	}
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	writeErr := errors.New("broker unavailable")
	dlq := &fakeWriter{}
	p := &Producer{writer: &fakeWriter{err: writeErr}, dlqWriter: dlq, topic: "events", log: logger.Discard()}

	msg := NewMessage().WithKey("k").WithRawValue([]byte("{}")).Build()
	err := p.Publish(context.Background(), msg)
	if !errors.Is(err, writeErr) {
		t.Fatalf("Publish() error = %v, want %v", err, writeErr)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected 1 DLQ message, got %d", len(dlq.messages))
	}
	if got := header(dlq.messages[0], HeaderOriginalTopic); got != "events" {
		t.Errorf("original-topic = %q", got)
	}
	if _, ok := msg.Headers["dlq-error"]; ok {
		t.Error("DLQ metadata leaked into the caller's message headers")
	}
}

func newTestConsumer(handler MessageHandler, dlq *fakeWriter, maxRetries int) *Consumer {
	c := &Consumer{
		topic:      "events",
		groupID:    "slotbook",
		maxRetries: maxRetries,
		handler:    handler,
		log:        logger.Discard(),
	}
	if dlq != nil {
		c.dlqWriter = dlq
	}
	return c
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("not yet", nil)
		}
		return nil
	}, &fakeWriter{}, 3)

	if err := c.processMessage(context.Background(), Message{Key: "k", Headers: map[string]string{}}); err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("handler called %d times, want 3", calls)
	}
}

func TestConsumer_ExhaustedRetriesGoToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		calls++
		return NewTransientError("still down", nil)
	}, dlq, 2)

	err := c.processMessage(context.Background(), Message{Key: "k", Headers: map[string]string{}})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 3 {
		t.Errorf("handler called %d times, want 3 (1 + 2 retries)", calls)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected 1 DLQ message, got %d", len(dlq.messages))
	}
	if got := header(dlq.messages[0], "dlq-consumer-group"); got != "slotbook" {
		t.Errorf("dlq-consumer-group = %q", got)
	}
}

func TestConsumer_PermanentFailureSkipsRetry(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}, dlq, 5)

	_ = c.processMessage(context.Background(), Message{Key: "k", Headers: map[string]string{}})
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if len(dlq.messages) != 1 {
		t.Errorf("expected message in DLQ")
	}
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	var order []string
	c := newTestConsumer(func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}, nil, 0)
	for _, name := range []string{"first", "second"} {
		name := name
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	if err := c.processMessage(context.Background(), Message{Headers: map[string]string{}}); err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "handler"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestConvertMessage(t *testing.T) {
	msg := convertMessage(kafka.Message{
		Topic:   "events",
		Key:     []byte("k"),
		Value:   []byte("{}"),
		Offset:  42,
		Headers: []kafka.Header{{Key: HeaderEventID, Value: []byte("evt-1")}},
	})
	if msg.Key != "k" || msg.Offset != 42 || msg.GetEventID() != "evt-1" {
		t.Errorf("unexpected message: %+v", msg)
	}
}
