package memory

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/utafrali/ecommerce-query/internal/domain"
)

// translate maps q onto the equivalent bleve query. analyzer tokenizes
// full-text input the way the target field was indexed.
func translate(q *domain.Query, analyzer analysis.Analyzer) query.Query {
	field, value := q.Field, q.Value
	if q.CaseInsensitive && hasLowercaseVariant(field) {
		field, value = field+lowercaseSuffix, strings.ToLower(value)
	}

	switch q.Kind {
	case domain.KindTerm:
		tq := bleve.NewTermQuery(value)
		tq.SetField(field)
		return tq

	case domain.KindTerms:
		terms := make([]query.Query, 0, len(q.Values))
		for _, v := range q.Values {
			tq := bleve.NewTermQuery(v)
			tq.SetField(q.Field)
			terms = append(terms, tq)
		}
		return bleve.NewDisjunctionQuery(terms...)

	case domain.KindPrefix:
		pq := bleve.NewPrefixQuery(value)
		pq.SetField(field)
		return pq

	case domain.KindWildcard:
		wq := bleve.NewWildcardQuery(value)
		wq.SetField(field)
		return wq

	case domain.KindRange:
		if q.Gte == nil && q.Lte == nil {
			return bleve.NewMatchAllQuery()
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(q.Gte, q.Lte, &inclusive, &inclusive)
		rq.SetField(q.Field)
		return rq

	case domain.KindFuzzy:
		return fuzzy(field, value, q.Fuzziness)

	case domain.KindMatch:
		mq := bleve.NewMatchQuery(q.Value)
		mq.SetField(q.Field)
		if q.Operator == domain.OperatorAnd {
			mq.SetOperator(query.MatchQueryOperatorAnd)
		}
		return mq

	case domain.KindMatchBoolPrefix:
		return matchBoolPrefix(q.Field, q.Value, analyzer)

	default:
		return bleve.NewMatchAllQuery()
	}
}

// fuzzy matches value within fuzziness edits, counting a swap of two adjacent
// characters as a single edit. bleve's Levenshtein automaton counts a swap as
// two, so every swapped variant is also matched with one edit fewer.
func fuzzy(field, value string, fuzziness int) query.Query {
	fq := bleve.NewFuzzyQuery(value)
	fq.SetField(field)
	fq.SetFuzziness(fuzziness)
	if fuzziness < 1 {
		return fq
	}

	clauses := []query.Query{fq}
	for _, v := range transpositions(value) {
		if fuzziness == 1 {
			tq := bleve.NewTermQuery(v)
			tq.SetField(field)
			clauses = append(clauses, tq)
			continue
		}
		vq := bleve.NewFuzzyQuery(v)
		vq.SetField(field)
		vq.SetFuzziness(fuzziness - 1)
		clauses = append(clauses, vq)
	}
	if len(clauses) == 1 {
		return fq
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

// transpositions returns the distinct strings made by swapping one pair of
// adjacent runes in s.
func transpositions(s string) []string {
	runes := []rune(s)
	seen := make(map[string]struct{}, len(runes))
	var out []string
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == runes[i+1] {
			continue
		}
		swapped := make([]rune, len(runes))
		copy(swapped, runes)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		v := string(swapped)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// matchBoolPrefix ORs a term query for every analyzed token but the last,
// which becomes a prefix query.
func matchBoolPrefix(field, text string, analyzer analysis.Analyzer) query.Query {
	var tokens []string
	if analyzer != nil {
		for _, tok := range analyzer.Analyze([]byte(text)) {
			tokens = append(tokens, string(tok.Term))
		}
	} else {
		tokens = strings.Fields(strings.ToLower(text))
	}
	if len(tokens) == 0 {
		return bleve.NewMatchNoneQuery()
	}

	clauses := make([]query.Query, 0, len(tokens))
	for _, tok := range tokens[:len(tokens)-1] {
		tq := bleve.NewTermQuery(tok)
		tq.SetField(field)
		clauses = append(clauses, tq)
	}
	pq := bleve.NewPrefixQuery(tokens[len(tokens)-1])
	pq.SetField(field)
	clauses = append(clauses, pq)

	return bleve.NewDisjunctionQuery(clauses...)
}

func hasLowercaseVariant(field string) bool {
	for _, f := range nameFields {
		if field == f+keywordSuffix {
			return true
		}
	}
	return false
}

// sortOrder renders q.Sort in bleve's "-field" notation. Hits without an
// explicit order fall back to score, then document key, so pages are stable.
func sortOrder(q *domain.Query) []string {
	order := make([]string, 0, len(q.Sort)+2)
	for _, s := range q.Sort {
		if s.Desc {
			order = append(order, "-"+s.Field)
		} else {
			order = append(order, s.Field)
		}
	}
	return append(order, "-_score", "_id")
}
