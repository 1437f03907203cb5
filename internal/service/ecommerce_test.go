package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/utafrali/ecommerce-query/internal/domain"
	"github.com/utafrali/ecommerce-query/internal/engine/memory"
	apperrors "github.com/utafrali/ecommerce-query/pkg/errors"
)

const sampleFile = "../../testdata/ecommerce_sample.ndjson"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *ECommerceService {
	t.Helper()
	eng, err := memory.New(newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	require.NoError(t, eng.LoadFile(context.Background(), sampleFile))
	return NewECommerceService(eng, newTestLogger())
}

func recordIDs(records []domain.ECommerce) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func ptr(f float64) *float64 { return &f }

// stubEngine records the last query and returns a canned result.
type stubEngine struct {
	last   *domain.Query
	result *domain.Result
	err    error
}

func (s *stubEngine) Search(_ context.Context, q *domain.Query) (*domain.Result, error) {
	s.last = q
	return s.result, s.err
}

func TestTermQuery_CaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	for _, name := range []string{"Eddie", "eddie", "EDDIE"} {
		got, err := svc.TermQuery(t.Context(), name)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"o-1", "o-5", "o-11"}, recordIDs(got), name)
	}
}

func TestTermsQuery(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.TermsQuery(t.Context(), []string{"Eddie", "Mary"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-1", "o-2", "o-5", "o-11"}, recordIDs(got))
}

func TestPrefixQuery(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.PrefixQuery(t.Context(), "Edd")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-1", "o-5", "o-7", "o-11"}, recordIDs(got))
}

func TestRangeQuery(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.RangeQuery(t.Context(), ptr(50), ptr(60))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-2", "o-12"}, recordIDs(got))

	got, err = svc.RangeQuery(t.Context(), ptr(200), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-9"}, recordIDs(got))

	_, err = svc.RangeQuery(t.Context(), ptr(60), ptr(50))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMatchAllQuery(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.MatchAllQuery(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 12)
}

func TestPaginationQuery(t *testing.T) {
	svc := newTestService(t)

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		res, err := svc.PaginationQuery(t.Context(), page, 5)
		require.NoError(t, err)
		assert.Equal(t, 12, res.Total)
		for _, id := range recordIDs(res.Records) {
			assert.False(t, seen[id], "record %s returned twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 12)

	res, err := svc.PaginationQuery(t.Context(), 4, 5)
	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

func TestPaginationQuery_InvalidParams(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		page     int
		pageSize int
	}{
		{"zero page", 0, 10},
		{"zero page size", 1, 0},
		{"page size too large", 1, 101},
		{"beyond result window", 1001, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PaginationQuery(t.Context(), tt.page, tt.pageSize)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestWildcardQuery(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.WildcardQuery(t.Context(), "*Ba*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-2", "o-12"}, recordIDs(got))
}

func TestFuzzyQuery_SortedByPriceDesc(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.FuzzyQuery(t.Context(), "Edie")
	require.NoError(t, err)
	assert.Equal(t, []string{"o-11", "o-5", "o-1", "o-8"}, recordIDs(got))
}

func TestMatchQueryFullText(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.MatchQueryFullText(t.Context(), "Women's Clothing")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-2", "o-3", "o-10"}, recordIDs(got))
}

func TestMatchBoolPrefixFullText(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.MatchBoolPrefixFullText(t.Context(), "Eddie Lam")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o-1", "o-5", "o-11"}, recordIDs(got))
}

func TestEmptyParameters_InvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := t.Context()

	calls := map[string]func() error{
		"term":     func() error { _, err := svc.TermQuery(ctx, " "); return err },
		"terms":    func() error { _, err := svc.TermsQuery(ctx, nil); return err },
		"terms el": func() error { _, err := svc.TermsQuery(ctx, []string{"Eddie", ""}); return err },
		"prefix":   func() error { _, err := svc.PrefixQuery(ctx, ""); return err },
		"pfx ws":   func() error { _, err := svc.PrefixQuery(ctx, "  "); return err },
		"wildcard": func() error { _, err := svc.WildcardQuery(ctx, ""); return err },
		"wc ws":    func() error { _, err := svc.WildcardQuery(ctx, "\t "); return err },
		"fuzzy":    func() error { _, err := svc.FuzzyQuery(ctx, ""); return err },
		"match":    func() error { _, err := svc.MatchQueryFullText(ctx, ""); return err },
		"mbp":      func() error { _, err := svc.MatchBoolPrefixFullText(ctx, ""); return err },
	}
	for name, call := range calls {
		err := call()
		require.Error(t, err, name)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, name)
	}
}

func TestQueryShape(t *testing.T) {
	stub := &stubEngine{result: &domain.Result{}}
	svc := NewECommerceService(stub, newTestLogger())

	_, err := svc.FuzzyQuery(t.Context(), "Edie")
	require.NoError(t, err)
	assert.Equal(t, domain.KindFuzzy, stub.last.Kind)
	assert.Equal(t, domain.FieldCustomerFirstNameKeyword, stub.last.Field)
	assert.Equal(t, 1, stub.last.Fuzziness)
	assert.Equal(t, []domain.SortField{{Field: domain.FieldTaxfulTotalPrice, Desc: true}}, stub.last.Sort)

	_, err = svc.TermsQuery(t.Context(), []string{"Eddie"})
	require.NoError(t, err)
	assert.Equal(t, 100, stub.last.Size)

	_, err = svc.MatchQueryFullText(t.Context(), "Men's Clothing")
	require.NoError(t, err)
	assert.Equal(t, domain.OperatorAnd, stub.last.Operator)

	_, err = svc.PaginationQuery(t.Context(), 3, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, stub.last.From)
	assert.Equal(t, 20, stub.last.Size)
}

func TestEngineError_Wrapped(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewECommerceService(&stubEngine{err: boom}, newTestLogger())

	_, err := svc.PrefixQuery(t.Context(), "Edd")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "PrefixQuery: ")

	unavailable := apperrors.ServiceUnavailable("elasticsearch", boom)
	svc = NewECommerceService(&stubEngine{err: unavailable}, newTestLogger())
	_, err = svc.MatchAllQuery(t.Context())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestSpanPerOperation(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc := NewECommerceService(&stubEngine{result: &domain.Result{}}, newTestLogger())
	_, err := svc.WildcardQuery(t.Context(), "Ed*")
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ecommerce.WildcardQuery", spans[0].Name())
}
