package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ecommerce-query/internal/domain"
	apperrors "github.com/utafrali/ecommerce-query/pkg/errors"
)

type stubEngine struct {
	res *domain.Result
	err error
}

func (s stubEngine) Search(context.Context, *domain.Query) (*domain.Result, error) {
	return s.res, s.err
}

func histogram(t *testing.T, vec *prometheus.HistogramVec, labels ...string) *dto.Histogram {
	t.Helper()
	m := &dto.Metric{}
	obs, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	require.NoError(t, obs.(prometheus.Metric).Write(m))
	return m.GetHistogram()
}

func termQuery() *domain.Query {
	return &domain.Query{Kind: domain.KindTerm, Field: domain.FieldCustomerFirstNameKeyword, Value: "Eddie", Size: 10}
}

func TestInstrument_Success(t *testing.T) {
	e := Instrument("stub-ok", stubEngine{res: &domain.Result{Records: make([]domain.ECommerce, 3), Total: 3}})

	res, err := e.Search(context.Background(), termQuery())
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)

	assert.Equal(t, uint64(1), histogram(t, queryDuration, "stub-ok", "term", OutcomeSuccess).GetSampleCount())
	hits := histogram(t, queryHits, "stub-ok", "term")
	assert.Equal(t, uint64(1), hits.GetSampleCount())
	assert.Equal(t, float64(3), hits.GetSampleSum())
}

func TestInstrument_FailureSkipsHits(t *testing.T) {
	e := Instrument("stub-fail", stubEngine{err: apperrors.ServiceUnavailable("elasticsearch", errors.New("open"))})

	_, err := e.Search(context.Background(), termQuery())
	require.Error(t, err)

	assert.Equal(t, uint64(1), histogram(t, queryDuration, "stub-fail", "term", OutcomeUnavailable).GetSampleCount())
	assert.Equal(t, uint64(0), histogram(t, queryHits, "stub-fail", "term").GetSampleCount())
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{fmt.Errorf("search: %w", context.DeadlineExceeded), OutcomeCanceled},
		{context.Canceled, OutcomeCanceled},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidQuery), OutcomeInvalid},
		{apperrors.InvalidInput("bad"), OutcomeInvalid},
		{apperrors.ServiceUnavailable("elasticsearch", errors.New("x")), OutcomeUnavailable},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "%v", tt.err)
	}
}
