package dataset

import (
	"fmt"
	"strings"
)

// Schema describes the expected shape of the source table. Language
// columns are either declared explicitly (validated at load time, failing
// fast on schema drift) or discovered by the article column prefix.
type Schema struct {
	IDColumn       string   `json:"id_column" yaml:"id_column"`
	CategoryColumn string   `json:"category_column" yaml:"category_column"`
	ArticlePrefix  string   `json:"article_prefix" yaml:"article_prefix"`
	Languages      []string `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// DefaultSchema matches the published dataset: qid, category, article_<lang>.
func DefaultSchema() Schema {
	return Schema{
		IDColumn:       "qid",
		CategoryColumn: "category",
		ArticlePrefix:  "article_",
	}
}

// DataFormatError reports malformed source data. It is a fatal
// configuration error for the operator, not recoverable at the UI layer.
type DataFormatError struct {
	Source string
	Reason string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("data format error in %s: %s", e.Source, e.Reason)
}

// languageColumn binds a language code to its position in the header.
type languageColumn struct {
	code  string
	index int
}

// columnLayout is a Schema resolved against a concrete CSV header.
type columnLayout struct {
	idIndex       int
	categoryIndex int
	languages     []languageColumn
}

// resolve validates the header against the schema and locates every column.
func (s Schema) resolve(source string, header []string) (*columnLayout, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	layout := &columnLayout{idIndex: -1, categoryIndex: -1}

	idx, ok := index[s.IDColumn]
	if !ok {
		return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("missing required column %q", s.IDColumn)}
	}
	layout.idIndex = idx

	idx, ok = index[s.CategoryColumn]
	if !ok {
		return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("missing required column %q", s.CategoryColumn)}
	}
	layout.categoryIndex = idx

	if len(s.Languages) > 0 {
		// Declared language set: every declared column must exist.
		for _, code := range s.Languages {
			column := s.ArticlePrefix + code
			idx, ok := index[column]
			if !ok {
				return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("missing declared language column %q", column)}
			}
			layout.languages = append(layout.languages, languageColumn{code: code, index: idx})
		}
		return layout, nil
	}

	// No declared set: discover article columns by prefix, in header order.
	for i, name := range header {
		name = strings.TrimSpace(name)
		if code, ok := strings.CutPrefix(name, s.ArticlePrefix); ok && code != "" {
			layout.languages = append(layout.languages, languageColumn{code: code, index: i})
		}
	}
	if len(layout.languages) == 0 {
		return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("no language columns with prefix %q", s.ArticlePrefix)}
	}
	return layout, nil
}
