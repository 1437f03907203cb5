package memory

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
)

// lowercaseKeyword indexes the whole value as one lowercased token, which is
// how case-insensitive term, prefix and wildcard queries are answered.
const lowercaseKeyword = "keyword_lowercase"

const (
	keywordSuffix   = ".keyword"
	lowercaseSuffix = ".lowercase"
)

// textFields get the Elasticsearch default dynamic mapping: an analyzed text
// field plus a .keyword sub-field. Name fields also get .keyword.lowercase.
var (
	nameFields    = []string{"customer_first_name", "customer_last_name", "customer_full_name"}
	textFields    = []string{"category", "manufacturer", "products.product_name"}
	keywordFields = []string{"customer_gender", "customer_id", "currency", "day_of_week", "email", "user", "sku"}
	numericFields = []string{"taxful_total_price", "taxless_total_price", "order_id", "total_quantity", "total_unique_products", "day_of_week_i"}
)

// buildMapping mirrors the sample index layout closely enough for every
// supported query kind to resolve the same field names as on Elasticsearch.
func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	if err := im.AddCustomAnalyzer(lowercaseKeyword, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register %s analyzer: %w", lowercaseKeyword, err)
	}

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	for _, f := range nameFields {
		addFieldMappings(doc, f,
			textField(""),
			analyzedField(f+keywordSuffix, keyword.Name),
			analyzedField(f+keywordSuffix+lowercaseSuffix, lowercaseKeyword),
		)
	}
	for _, f := range textFields {
		addFieldMappings(doc, f, textField(""), analyzedField(leaf(f)+keywordSuffix, keyword.Name))
	}
	for _, f := range keywordFields {
		addFieldMappings(doc, f, analyzedField("", keyword.Name))
	}
	for _, f := range numericFields {
		num := bleve.NewNumericFieldMapping()
		num.Store = false
		num.IncludeInAll = false
		addFieldMappings(doc, f, num)
	}

	date := bleve.NewDateTimeFieldMapping()
	date.Store = false
	date.IncludeInAll = false
	addFieldMappings(doc, "order_date", date)

	im.DefaultMapping = doc
	return im, nil
}

// addFieldMappings attaches fms at a possibly dotted path, creating the
// intermediate sub-document mappings (for products.*).
func addFieldMappings(doc *mapping.DocumentMapping, path string, fms ...*mapping.FieldMapping) {
	parent := doc
	elems := strings.Split(path, ".")
	for _, e := range elems[:len(elems)-1] {
		sub, ok := parent.Properties[e]
		if !ok {
			sub = bleve.NewDocumentMapping()
			sub.Dynamic = false
			parent.AddSubDocumentMapping(e, sub)
		}
		parent = sub
	}
	parent.AddFieldMappingsAt(elems[len(elems)-1], fms...)
}

func textField(name string) *mapping.FieldMapping {
	return analyzedField(name, standard.Name)
}

func analyzedField(name, analyzer string) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Name = name
	fm.Analyzer = analyzer
	fm.Store = false
	fm.IncludeInAll = false
	fm.IncludeTermVectors = false
	return fm
}

func leaf(path string) string {
	elems := strings.Split(path, ".")
	return elems[len(elems)-1]
}
