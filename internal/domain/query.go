package domain

import (
	"errors"
	"fmt"
)

// QueryKind names a query DSL construct.
type QueryKind string

const (
	KindTerm            QueryKind = "term"
	KindTerms           QueryKind = "terms"
	KindPrefix          QueryKind = "prefix"
	KindRange           QueryKind = "range"
	KindWildcard        QueryKind = "wildcard"
	KindFuzzy           QueryKind = "fuzzy"
	KindMatch           QueryKind = "match"
	KindMatchBoolPrefix QueryKind = "match_bool_prefix"
	KindMatchAll        QueryKind = "match_all"
)

// Operator joins the analyzed terms of a match query.
type Operator string

const (
	OperatorOr  Operator = "or"
	OperatorAnd Operator = "and"
)

const (
	// DefaultSize is the number of hits the engine returns when none is requested.
	DefaultSize = 10
	// MaxSize bounds a single page.
	MaxSize = 100
	// MaxResultWindow is the deepest from+size the index allows.
	MaxResultWindow = 10000
)

// ErrInvalidQuery is wrapped by every error returned from Query.Validate.
var ErrInvalidQuery = errors.New("invalid query")

// SortField orders hits by a numeric or keyword field.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Query is a single engine-neutral search request against the e-commerce index.
type Query struct {
	Kind            QueryKind
	Field           string
	Value           string
	Values          []string
	CaseInsensitive bool
	Gte             *float64
	Lte             *float64
	Fuzziness       int
	Operator        Operator
	From            int
	Size            int
	Sort            []SortField
}

// Validate checks the query is well-formed for its kind and within the result window.
func (q *Query) Validate() error {
	switch q.Kind {
	case KindMatchAll:
	case KindTerm, KindPrefix, KindWildcard, KindFuzzy, KindMatch, KindMatchBoolPrefix:
		if q.Field == "" {
			return invalid("%s query requires a field", q.Kind)
		}
		if q.Value == "" {
			return invalid("%s query requires a value", q.Kind)
		}
	case KindTerms:
		if q.Field == "" {
			return invalid("terms query requires a field")
		}
		if len(q.Values) == 0 {
			return invalid("terms query requires at least one value")
		}
		for i, v := range q.Values {
			if v == "" {
				return invalid("terms value %d is empty", i)
			}
		}
	case KindRange:
		if q.Field == "" {
			return invalid("range query requires a field")
		}
		if q.Gte != nil && q.Lte != nil && *q.Gte > *q.Lte {
			return invalid("range lower bound %v exceeds upper bound %v", *q.Gte, *q.Lte)
		}
	default:
		return invalid("unknown query kind %q", q.Kind)
	}

	if q.Fuzziness < 0 || q.Fuzziness > 2 {
		return invalid("fuzziness must be between 0 and 2")
	}
	if q.Operator != "" && q.Operator != OperatorAnd && q.Operator != OperatorOr {
		return invalid("unknown operator %q", q.Operator)
	}
	if q.Size < 1 || q.Size > MaxSize {
		return invalid("size must be between 1 and %d", MaxSize)
	}
	if q.From < 0 {
		return invalid("from must not be negative")
	}
	if q.From+q.Size > MaxResultWindow {
		return invalid("from + size must not exceed %d", MaxResultWindow)
	}
	for _, s := range q.Sort {
		if s.Field == "" {
			return invalid("sort field is empty")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// Result is one page of records plus the total number of matches.
type Result struct {
	Records []ECommerce
	Total   int
	TookMs  int64
}
