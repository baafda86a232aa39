// Package ratings keeps a provider's rating equal to the mean of its reviews.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"slotbook/pkg/logger"
)

var ErrRecomputeFailed = errors.New("rating recompute failed")

type Source interface {
	FindRatings(ctx context.Context, providerID string) ([]int, error)
}

type Sink interface {
	UpdateRating(ctx context.Context, providerID string, rating float64, total int64) error
}

type Aggregate struct {
	ProviderID   string
	Rating       float64
	TotalRatings int64
}

// Compute returns the arithmetic mean of ratings. An empty set yields 0.
func Compute(ratings []int) (float64, int64) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), int64(len(ratings))
}

type Aggregator struct {
	source Source
	sink   Sink
	log    *logger.Logger
}

func NewAggregator(source Source, sink Sink, log *logger.Logger) *Aggregator {
	return &Aggregator{source: source, sink: sink, log: log}
}

// Recompute reads every review of the provider and overwrites the stored
// aggregate. It is idempotent, so concurrent or repeated runs converge.
func (a *Aggregator) Recompute(ctx context.Context, providerID string) (*Aggregate, error) {
	ratings, err := a.source.FindRatings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: read ratings for %s: %w", ErrRecomputeFailed, providerID, err)
	}

	rating, total := Compute(ratings)
	if err := a.sink.UpdateRating(ctx, providerID, rating, total); err != nil {
		return nil, fmt.Errorf("%w: store rating for %s: %w", ErrRecomputeFailed, providerID, err)
	}

	a.log.Debug("Provider rating recomputed",
		"provider_id", providerID,
		"rating", rating,
		"total_ratings", total,
	)
	return &Aggregate{ProviderID: providerID, Rating: rating, TotalRatings: total}, nil
}
