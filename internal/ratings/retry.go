package ratings

import (
	"context"
	"errors"
	providerserrors "slotbook/internal/providers/errors"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"time"
)

const EventRecomputeRequested = "provider.rating.recompute"

type RecomputeRequest struct {
	ProviderID  string    `json:"provider_id"`
	RequestedAt time.Time `json:"requested_at"`
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// RetryPublisher schedules a recompute that failed in-request so the
// ratings worker can run it later.
type RetryPublisher struct {
	publisher Publisher
	source    string
}

func NewRetryPublisher(publisher Publisher, source string) *RetryPublisher {
	return &RetryPublisher{publisher: publisher, source: source}
}

func (p *RetryPublisher) RequestRecompute(ctx context.Context, providerID string) error {
	msg := kafka.NewMessage().
		WithKey(providerID).
		WithValue(RecomputeRequest{ProviderID: providerID, RequestedAt: time.Now().UTC()}).
		WithEventType(EventRecomputeRequested).
		WithSource(p.source).
		Build()
	return p.publisher.Publish(ctx, msg)
}

type Recomputer interface {
	Recompute(ctx context.Context, providerID string) (*Aggregate, error)
}

// NewRecomputeHandler runs queued recomputes. A store failure is transient and
// retried by the consumer; a malformed request goes straight to the DLQ.
func NewRecomputeHandler(r Recomputer, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var req RecomputeRequest
		if err := msg.DecodeValue(&req); err != nil {
			return kafka.NewPermanentError("deserialization failed", err)
		}
		if req.ProviderID == "" {
			return kafka.NewPermanentError("missing provider_id", kafka.ErrInvalidMessage)
		}

		agg, err := r.Recompute(ctx, req.ProviderID)
		if errors.Is(err, providerserrors.ErrNotFound) {
			log.Warn("Dropping rating recompute for missing provider", "provider_id", req.ProviderID)
			return nil
		}
		if err != nil {
			return kafka.NewTransientError("recompute failed", err).
				WithDetail("provider_id", req.ProviderID)
		}

		log.Info("Queued rating recompute applied",
			"provider_id", agg.ProviderID,
			"rating", agg.Rating,
			"total_ratings", agg.TotalRatings,
		)
		return nil
	}
}
