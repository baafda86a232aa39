package ratings

import (
	"context"
	"errors"
	"fmt"
	providerserrors "slotbook/internal/providers/errors"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"testing"
)

type memoryStore struct {
	ratings   map[string][]int
	stored    map[string]Aggregate
	findErr   error
	updateErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{ratings: map[string][]int{}, stored: map[string]Aggregate{}}
}

func (m *memoryStore) FindRatings(ctx context.Context, providerID string) ([]int, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.ratings[providerID], nil
}

func (m *memoryStore) UpdateRating(ctx context.Context, providerID string, rating float64, total int64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.stored[providerID] = Aggregate{ProviderID: providerID, Rating: rating, TotalRatings: total}
	return nil
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []int
		wantMean  float64
		wantTotal int64
	}{
		{"empty", nil, 0, 0},
		{"single", []int{5}, 5, 1},
		{"three", []int{4, 5, 3}, 4, 3},
		{"four", []int{4, 5, 3, 4}, 4, 4},
		{"fractional", []int{5, 4}, 4.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, total := Compute(tt.ratings)
			if mean != tt.wantMean || total != tt.wantTotal {
				t.Errorf("Compute(%v) = %v/%d, want %v/%d", tt.ratings, mean, total, tt.wantMean, tt.wantTotal)
			}
		})
	}
}

func TestAggregator_Recompute(t *testing.T) {
	store := newMemoryStore()
	store.ratings["p1"] = []int{4, 5, 3}
	agg := NewAggregator(store, store, logger.Discard())

	got, err := agg.Recompute(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Rating != 4.0 || got.TotalRatings != 3 {
		t.Errorf("got %v/%d, want 4/3", got.Rating, got.TotalRatings)
	}

	store.ratings["p1"] = append(store.ratings["p1"], 4)
	if _, err := agg.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := store.stored["p1"]; s.Rating != 4.0 || s.TotalRatings != 4 {
		t.Errorf("stored %v/%d, want 4/4", s.Rating, s.TotalRatings)
	}

	before := store.stored["p1"]
	if _, err := agg.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.stored["p1"] != before {
		t.Errorf("repeat recompute changed aggregate: %+v -> %+v", before, store.stored["p1"])
	}
}

func TestAggregator_RecomputeFailures(t *testing.T) {
	tests := []struct {
		name      string
		findErr   error
		updateErr error
	}{
		{"read fails", errors.New("db down"), nil},
		{"store fails", nil, errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			store.findErr = tt.findErr
			store.updateErr = tt.updateErr
			agg := NewAggregator(store, store, logger.Discard())

			_, err := agg.Recompute(context.Background(), "p1")
			if !errors.Is(err, ErrRecomputeFailed) {
				t.Errorf("expected ErrRecomputeFailed, got %v", err)
			}
		})
	}
}

type publisherFunc func(ctx context.Context, msg kafka.Message) error

func (f publisherFunc) Publish(ctx context.Context, msg kafka.Message) error {
	return f(ctx, msg)
}

type recomputerFunc func(ctx context.Context, providerID string) (*Aggregate, error)

func (f recomputerFunc) Recompute(ctx context.Context, providerID string) (*Aggregate, error) {
	return f(ctx, providerID)
}

func TestRetryPublisherAndHandler(t *testing.T) {
	var published kafka.Message
	pub := NewRetryPublisher(publisherFunc(func(ctx context.Context, msg kafka.Message) error {
		published = msg
		return nil
	}), "bookings")

	if err := pub.RequestRecompute(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published.Key != "p1" {
		t.Errorf("key = %q, want p1", published.Key)
	}
	if published.GetEventType() != EventRecomputeRequested {
		t.Errorf("event type = %q", published.GetEventType())
	}

	store := newMemoryStore()
	store.ratings["p1"] = []int{5, 4}
	handler := NewRecomputeHandler(NewAggregator(store, store, logger.Discard()), logger.Discard())

	if err := handler(context.Background(), published); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if s := store.stored["p1"]; s.Rating != 4.5 || s.TotalRatings != 2 {
		t.Errorf("stored %v/%d, want 4.5/2", s.Rating, s.TotalRatings)
	}
}

func TestRecomputeHandler_Errors(t *testing.T) {
	valid := kafka.NewMessage().WithValue(RecomputeRequest{ProviderID: "p1"}).Build()

	tests := []struct {
		name     string
		msg      kafka.Message
		err      error
		wantType kafka.ErrorType
		wantNil  bool
	}{
		{
			name:     "malformed payload",
			msg:      kafka.NewMessage().WithRawValue([]byte("nope")).Build(),
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name:     "missing provider id",
			msg:      kafka.NewMessage().WithValue(RecomputeRequest{}).Build(),
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name:     "store failure retries",
			msg:      valid,
			err:      fmt.Errorf("%w: boom", ErrRecomputeFailed),
			wantType: kafka.ErrorTypeTransient,
		},
		{
			name:    "deleted provider is dropped",
			msg:     valid,
			err:     fmt.Errorf("%w: %w", ErrRecomputeFailed, providerserrors.ErrNotFound),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRecomputeHandler(recomputerFunc(func(ctx context.Context, id string) (*Aggregate, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &Aggregate{ProviderID: id}, nil
			}), logger.Discard())

			err := handler(context.Background(), tt.msg)
			if tt.wantNil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if got := kafka.ClassifyError(err); got != tt.wantType {
				t.Errorf("error type = %v, want %v (err=%v)", got, tt.wantType, err)
			}
		})
	}
}
