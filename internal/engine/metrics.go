package engine

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/ecommerce-query/internal/domain"
	apperrors "github.com/utafrali/ecommerce-query/pkg/errors"
)

const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeCanceled    = "canceled"
)

var (
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecommerce_query_engine_duration_seconds",
			Help:    "Query engine latency by engine, query kind and outcome",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"engine", "kind", "outcome"},
	)

	queryHits = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecommerce_query_engine_hits",
			Help:    "Records returned per successful query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"engine", "kind"},
	)
)

type instrumented struct {
	name string
	next QueryEngine
}

// Instrument records latency and hit counts for every Search on next under
// the given engine label.
func Instrument(name string, next QueryEngine) QueryEngine {
	return &instrumented{name: name, next: next}
}

func (e *instrumented) Search(ctx context.Context, q *domain.Query) (*domain.Result, error) {
	start := time.Now()
	res, err := e.next.Search(ctx, q)

	kind := string(q.Kind)
	queryDuration.WithLabelValues(e.name, kind, Outcome(err)).Observe(time.Since(start).Seconds())
	if err == nil {
		queryHits.WithLabelValues(e.name, kind).Observe(float64(len(res.Records)))
	}
	return res, err
}

// Outcome classifies a Search error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, apperrors.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}
