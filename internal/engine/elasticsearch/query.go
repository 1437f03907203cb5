package elasticsearch

import (
	"github.com/utafrali/ecommerce-query/internal/domain"
)

// BuildRequest renders q as an Elasticsearch _search request body.
// q is assumed to have passed Validate.
func BuildRequest(q *domain.Query) map[string]any {
	body := map[string]any{
		"query": buildQuery(q),
		"from":  q.From,
		"size":  q.Size,
	}
	if len(q.Sort) > 0 {
		body["sort"] = buildSort(q.Sort)
	}
	return body
}

func buildQuery(q *domain.Query) map[string]any {
	switch q.Kind {
	case domain.KindTerm:
		clause := map[string]any{"value": q.Value}
		if q.CaseInsensitive {
			clause["case_insensitive"] = true
		}
		return map[string]any{"term": map[string]any{q.Field: clause}}

	case domain.KindTerms:
		return map[string]any{"terms": map[string]any{q.Field: q.Values}}

	case domain.KindPrefix, domain.KindWildcard:
		clause := map[string]any{"value": q.Value}
		if q.CaseInsensitive {
			clause["case_insensitive"] = true
		}
		return map[string]any{string(q.Kind): map[string]any{q.Field: clause}}

	case domain.KindRange:
		bounds := map[string]any{}
		if q.Gte != nil {
			bounds["gte"] = *q.Gte
		}
		if q.Lte != nil {
			bounds["lte"] = *q.Lte
		}
		return map[string]any{"range": map[string]any{q.Field: bounds}}

	case domain.KindFuzzy:
		return map[string]any{"fuzzy": map[string]any{q.Field: map[string]any{
			"value":     q.Value,
			"fuzziness": q.Fuzziness,
		}}}

	case domain.KindMatch:
		clause := map[string]any{"query": q.Value}
		if q.Operator != "" {
			clause["operator"] = string(q.Operator)
		}
		return map[string]any{"match": map[string]any{q.Field: clause}}

	case domain.KindMatchBoolPrefix:
		return map[string]any{"match_bool_prefix": map[string]any{q.Field: map[string]any{"query": q.Value}}}

	default:
		return map[string]any{"match_all": map[string]any{}}
	}
}

func buildSort(fields []domain.SortField) []any {
	sort := make([]any, 0, len(fields))
	for _, f := range fields {
		order := "asc"
		if f.Desc {
			order = "desc"
		}
		sort = append(sort, map[string]any{f.Field: map[string]any{"order": order}})
	}
	return sort
}
