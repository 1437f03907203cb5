package engine

import (
	"context"

	"github.com/utafrali/ecommerce-query/internal/domain"
)

// QueryEngine runs engine-neutral queries against the e-commerce index.
// Implementations may use Elasticsearch, an in-memory index, or other backends.
type QueryEngine interface {
	// Search executes q and returns the matching page of records. Every
	// returned record carries the engine's document key as its ID.
	Search(ctx context.Context, q *domain.Query) (*domain.Result, error)
}

// Pinger is implemented by engines that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
