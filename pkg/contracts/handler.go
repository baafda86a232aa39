package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a long-running background loop, such as a Kafka consumer, that
// stops when ctx is cancelled.
type Worker interface {
	Start(ctx context.Context) error
	Close() error
}
