package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/ecommerce-query/internal/domain"
	"github.com/utafrali/ecommerce-query/internal/engine"
	apperrors "github.com/utafrali/ecommerce-query/pkg/errors"
	"github.com/utafrali/ecommerce-query/pkg/pagination"
	"github.com/utafrali/ecommerce-query/pkg/tracing"
)

const (
	// termsSize lets a terms query return more than the default ten hits.
	termsSize    = 100
	matchAllSize = 100
	fuzziness    = 1
)

// ECommerceService maps request parameters onto pre-canned queries against
// the e-commerce index. Field names are fixed here, never taken from callers.
type ECommerceService struct {
	engine engine.QueryEngine
	logger *slog.Logger
	tracer trace.Tracer
}

// NewECommerceService creates a new e-commerce query service.
func NewECommerceService(eng engine.QueryEngine, logger *slog.Logger) *ECommerceService {
	return &ECommerceService{
		engine: eng,
		logger: logger,
		tracer: tracing.Tracer("github.com/utafrali/ecommerce-query/internal/service"),
	}
}

// TermQuery returns orders whose customer first name equals customerFirstName,
// ignoring case.
func (s *ECommerceService) TermQuery(ctx context.Context, customerFirstName string) ([]domain.ECommerce, error) {
	if strings.TrimSpace(customerFirstName) == "" {
		return nil, apperrors.InvalidInput("customer_first_name is required")
	}
	return s.records(ctx, "TermQuery", &domain.Query{
		Kind:            domain.KindTerm,
		Field:           domain.FieldCustomerFirstNameKeyword,
		Value:           customerFirstName,
		CaseInsensitive: true,
		Size:            domain.DefaultSize,
	})
}

// TermsQuery returns up to 100 orders whose customer first name exactly
// equals any of customerFirstNames.
func (s *ECommerceService) TermsQuery(ctx context.Context, customerFirstNames []string) ([]domain.ECommerce, error) {
	if len(customerFirstNames) == 0 {
		return nil, apperrors.InvalidInput("customer_first_name must contain at least one name")
	}
	if len(customerFirstNames) > domain.MaxSize {
		return nil, apperrors.InvalidInputf("customer_first_name must contain at most %d names", domain.MaxSize)
	}
	for i, n := range customerFirstNames {
		if strings.TrimSpace(n) == "" {
			return nil, apperrors.InvalidInputf("customer_first_name[%d] is empty", i)
		}
	}
	return s.records(ctx, "TermsQuery", &domain.Query{
		Kind:   domain.KindTerms,
		Field:  domain.FieldCustomerFirstNameKeyword,
		Values: customerFirstNames,
		Size:   termsSize,
	})
}

// PrefixQuery returns orders whose customer full name starts with customerFullName.
func (s *ECommerceService) PrefixQuery(ctx context.Context, customerFullName string) ([]domain.ECommerce, error) {
	if strings.TrimSpace(customerFullName) == "" {
		return nil, apperrors.InvalidInput("customer_full_name is required")
	}
	return s.records(ctx, "PrefixQuery", &domain.Query{
		Kind:  domain.KindPrefix,
		Field: domain.FieldCustomerFullNameKeyword,
		Value: customerFullName,
		Size:  domain.DefaultSize,
	})
}

// RangeQuery returns orders whose taxful total price lies in [fromPrice, toPrice].
// A nil bound leaves that side open.
func (s *ECommerceService) RangeQuery(ctx context.Context, fromPrice, toPrice *float64) ([]domain.ECommerce, error) {
	if fromPrice != nil && toPrice != nil && *fromPrice > *toPrice {
		return nil, apperrors.InvalidInputf("from_price (%v) must not exceed to_price (%v)", *fromPrice, *toPrice)
	}
	return s.records(ctx, "RangeQuery", &domain.Query{
		Kind:  domain.KindRange,
		Field: domain.FieldTaxfulTotalPrice,
		Gte:   fromPrice,
		Lte:   toPrice,
		Size:  domain.DefaultSize,
	})
}

// MatchAllQuery returns the first 100 orders.
func (s *ECommerceService) MatchAllQuery(ctx context.Context) ([]domain.ECommerce, error) {
	return s.records(ctx, "MatchAllQuery", &domain.Query{
		Kind: domain.KindMatchAll,
		Size: matchAllSize,
	})
}

// PaginationQuery returns one page of all orders together with the total count.
// Pages are 1-based.
func (s *ECommerceService) PaginationQuery(ctx context.Context, page, pageSize int) (*domain.Result, error) {
	p := pagination.Params{Page: page, PageSize: pageSize}
	if err := p.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return s.run(ctx, "PaginationQuery", &domain.Query{
		Kind: domain.KindMatchAll,
		From: p.Offset(),
		Size: p.PageSize,
	})
}

// WildcardQuery returns orders whose customer full name matches the pattern,
// where * matches any run of characters and ? exactly one.
func (s *ECommerceService) WildcardQuery(ctx context.Context, customerFullName string) ([]domain.ECommerce, error) {
	if strings.TrimSpace(customerFullName) == "" {
		return nil, apperrors.InvalidInput("customer_full_name is required")
	}
	return s.records(ctx, "WildcardQuery", &domain.Query{
		Kind:  domain.KindWildcard,
		Field: domain.FieldCustomerFullNameKeyword,
		Value: customerFullName,
		Size:  domain.DefaultSize,
	})
}

// FuzzyQuery returns orders whose customer first name is within one edit of
// customerName, most expensive first.
func (s *ECommerceService) FuzzyQuery(ctx context.Context, customerName string) ([]domain.ECommerce, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, apperrors.InvalidInput("customer_name is required")
	}
	return s.records(ctx, "FuzzyQuery", &domain.Query{
		Kind:      domain.KindFuzzy,
		Field:     domain.FieldCustomerFirstNameKeyword,
		Value:     customerName,
		Fuzziness: fuzziness,
		Size:      domain.DefaultSize,
		Sort:      []domain.SortField{{Field: domain.FieldTaxfulTotalPrice, Desc: true}},
	})
}

// MatchQueryFullText returns orders whose category contains every analyzed
// term of categoryName.
func (s *ECommerceService) MatchQueryFullText(ctx context.Context, categoryName string) ([]domain.ECommerce, error) {
	if strings.TrimSpace(categoryName) == "" {
		return nil, apperrors.InvalidInput("category is required")
	}
	return s.records(ctx, "MatchQueryFullText", &domain.Query{
		Kind:     domain.KindMatch,
		Field:    domain.FieldCategory,
		Value:    categoryName,
		Operator: domain.OperatorAnd,
		Size:     domain.DefaultSize,
	})
}

// MatchBoolPrefixFullText returns orders whose customer full name matches any
// complete term of customerFullName or starts with its last term.
func (s *ECommerceService) MatchBoolPrefixFullText(ctx context.Context, customerFullName string) ([]domain.ECommerce, error) {
	if strings.TrimSpace(customerFullName) == "" {
		return nil, apperrors.InvalidInput("customer_full_name is required")
	}
	return s.records(ctx, "MatchBoolPrefixFullText", &domain.Query{
		Kind:  domain.KindMatchBoolPrefix,
		Field: domain.FieldCustomerFullName,
		Value: customerFullName,
		Size:  domain.DefaultSize,
	})
}

func (s *ECommerceService) records(ctx context.Context, op string, q *domain.Query) ([]domain.ECommerce, error) {
	res, err := s.run(ctx, op, q)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// run validates q, executes it inside an "ecommerce.<op>" span and wraps any
// failure with op.
func (s *ECommerceService) run(ctx context.Context, op string, q *domain.Query) (*domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ecommerce."+op, trace.WithAttributes(
		attribute.String("query.kind", string(q.Kind)),
		attribute.String("query.field", q.Field),
		attribute.Int("query.from", q.From),
		attribute.Int("query.size", q.Size),
	))
	defer span.End()

	if err := q.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid query")
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidQuery.Error()+": ")
		return nil, fmt.Errorf("%s: %w", op, apperrors.InvalidInput(msg))
	}

	res, err := s.engine.Search(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, engine.Outcome(err))
		if errors.Is(err, domain.ErrInvalidQuery) {
			err = apperrors.InvalidInput(err.Error())
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.Records == nil {
		res.Records = []domain.ECommerce{}
	}

	span.SetAttributes(
		attribute.Int("query.hits", len(res.Records)),
		attribute.Int("query.total", res.Total),
	)
	s.logger.DebugContext(ctx, "query executed",
		slog.String("op", op),
		slog.String("kind", string(q.Kind)),
		slog.Int("hits", len(res.Records)),
		slog.Int("total", res.Total),
		slog.Int64("took_ms", res.TookMs),
	)
	return res, nil
}
