// Package analysis aggregates long-form article rows into per-language
// category matrices and applies user selections over them. Grouping is
// explicit map-of-maps work; matrices are built once and only viewed
// afterwards, never mutated.
package analysis

import (
	"sort"

	"github.com/wikilytics/wikiclass/pkg/article"
)

// DefaultTopLanguages is the number of language editions retained before
// aggregation when no other limit is configured.
const DefaultTopLanguages = 25

// Matrix maps (language, category) to a value, with a fixed row and
// column order for display.
type Matrix struct {
	Languages  []string                                `json:"languages"`
	Categories []article.Category                      `json:"categories"`
	Values     map[string]map[article.Category]float64 `json:"values"`
}

// Value returns the cell for (language, category), zero when absent.
func (m *Matrix) Value(lang string, cat article.Category) float64 {
	if row, ok := m.Values[lang]; ok {
		return row[cat]
	}
	return 0
}

// restrict returns a copy of the matrix limited to the given ordered
// languages and categories.
func (m *Matrix) restrict(langs []string, cats []article.Category) *Matrix {
	out := &Matrix{
		Languages:  append([]string(nil), langs...),
		Categories: append([]article.Category(nil), cats...),
		Values:     make(map[string]map[article.Category]float64, len(langs)),
	}
	for _, lang := range langs {
		row := make(map[article.Category]float64, len(cats))
		for _, cat := range cats {
			row[cat] = m.Value(lang, cat)
		}
		out.Values[lang] = row
	}
	return out
}

// LanguageCount pairs a language code with its long-row count.
type LanguageCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// LanguageCounts tallies rows per language, ordered by count descending
// with ties broken by first appearance in the source.
func LanguageCounts(rows []article.LongRow) []LanguageCount {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		if _, seen := counts[row.Language]; !seen {
			order = append(order, row.Language)
		}
		counts[row.Language]++
	}

	out := make([]LanguageCount, 0, len(order))
	for _, code := range order {
		out = append(out, LanguageCount{Code: code, Count: counts[code]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Aggregate holds the matrices derived from one dataset load, restricted
// to the top-N languages by row count. Derived once, read-only afterward.
type Aggregate struct {
	Rows        []article.LongRow
	Counts      *Matrix
	Percentages *Matrix
	RowTotals   map[string]int
	Order       []string // top-N languages, count descending
}

// Build aggregates long rows into count and percentage matrices over the
// top-N languages and exactly the categories present in the data.
// Languages with zero rows never enter: they cannot rank into the top N.
func Build(rows []article.LongRow, topN int) *Aggregate {
	if topN <= 0 {
		topN = DefaultTopLanguages
	}

	ranked := LanguageCounts(rows)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	order := make([]string, 0, len(ranked))
	totals := make(map[string]int, len(ranked))
	retained := make(map[string]bool, len(ranked))
	for _, lc := range ranked {
		order = append(order, lc.Code)
		totals[lc.Code] = lc.Count
		retained[lc.Code] = true
	}

	agg := &Aggregate{
		RowTotals: totals,
		Order:     order,
	}

	grouped := make(map[string]map[article.Category]float64, len(order))
	present := make(map[article.Category]bool)
	for _, row := range rows {
		if !retained[row.Language] {
			continue
		}
		agg.Rows = append(agg.Rows, row)
		group, ok := grouped[row.Language]
		if !ok {
			group = make(map[article.Category]float64)
			grouped[row.Language] = group
		}
		group[row.Category]++
		present[row.Category] = true
	}

	// Column order follows the canonical display order, restricted to
	// categories actually present in the data.
	var categories []article.Category
	for _, cat := range article.Categories() {
		if present[cat] {
			categories = append(categories, cat)
		}
	}

	agg.Counts = &Matrix{
		Languages:  order,
		Categories: categories,
		Values:     make(map[string]map[article.Category]float64, len(order)),
	}
	agg.Percentages = &Matrix{
		Languages:  order,
		Categories: categories,
		Values:     make(map[string]map[article.Category]float64, len(order)),
	}

	for _, lang := range order {
		countRow := make(map[article.Category]float64, len(categories))
		pctRow := make(map[article.Category]float64, len(categories))
		var sum float64
		for _, cat := range categories {
			v := grouped[lang][cat]
			countRow[cat] = v
			sum += v
		}
		agg.Counts.Values[lang] = countRow
		// A retained language always has at least one row, so the
		// percentage row is always defined.
		for _, cat := range categories {
			pctRow[cat] = countRow[cat] / sum * 100
		}
		agg.Percentages.Values[lang] = pctRow
	}

	return agg
}

// TotalArticles returns the number of long rows retained after the top-N cut.
func (a *Aggregate) TotalArticles() int {
	return len(a.Rows)
}

// CategoriesPresent returns the categories observed in the retained data,
// in canonical display order.
func (a *Aggregate) CategoriesPresent() []article.Category {
	return append([]article.Category(nil), a.Counts.Categories...)
}
