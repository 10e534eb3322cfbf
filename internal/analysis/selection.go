package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wikilytics/wikiclass/pkg/article"
)

// Empty selections are user-facing guard conditions: the current render
// cycle halts with a warning and the next interaction re-runs cleanly.
var (
	ErrEmptyCategories = errors.New("no article types selected")
	ErrEmptyLanguages  = errors.New("no languages selected")
)

// SortKey identifies one of the supported language orderings.
type SortKey string

const (
	SortCountDesc SortKey = "count-desc"
	SortCountAsc  SortKey = "count-asc"
	// Category percentage sorts rank against the unfiltered percentage
	// matrix: removing a category from display does not change an order
	// already computed against it.
	SortPctEvent        SortKey = "pct-event"
	SortPctConcept      SortKey = "pct-concept"
	SortPctOrganization SortKey = "pct-organization"
	SortPctHuman        SortKey = "pct-human"
	SortPctOther        SortKey = "pct-other"
)

// SortKeys returns the seven supported sort options in menu order.
func SortKeys() []SortKey {
	return []SortKey{
		SortCountDesc,
		SortCountAsc,
		SortPctEvent,
		SortPctConcept,
		SortPctOrganization,
		SortPctHuman,
		SortPctOther,
	}
}

// ParseSortKey validates a wire value, defaulting empty to count-desc.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortCountDesc, nil
	}
	for _, key := range SortKeys() {
		if SortKey(s) == key {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// category returns the ranking category for percentage sorts.
func (k SortKey) category() (article.Category, bool) {
	if cat, ok := strings.CutPrefix(string(k), "pct-"); ok {
		return article.Category(cat), true
	}
	return "", false
}

// Selection is one user request: a category subset, a language subset,
// a sort order and an optional cap on languages shown.
type Selection struct {
	Categories []article.Category `json:"categories"`
	Languages  []string           `json:"languages"`
	Sort       SortKey            `json:"sort"`
	Limit      int                `json:"limit"`
}

// Language cap bounds, matching the dashboard slider.
const (
	MinLanguageLimit = 5
	MaxLanguageLimit = 25
)

// View is a filtered, ordered window over the aggregate matrices. It
// selects; it never recomputes, so percentages stay normalized against
// the full category set.
type View struct {
	Order       []string           `json:"order"`
	Categories  []article.Category `json:"display_categories"`
	Counts      *Matrix            `json:"counts"`
	Percentages *Matrix            `json:"percentages"`
	RowTotals   map[string]int     `json:"row_totals"`
}

// Select applies a selection to the aggregate and returns the ordered,
// restricted view of both matrices.
func (a *Aggregate) Select(sel Selection) (*View, error) {
	categories := a.intersectCategories(sel.Categories)
	if len(categories) == 0 {
		return nil, ErrEmptyCategories
	}

	wanted := make(map[string]bool, len(sel.Languages))
	for _, code := range sel.Languages {
		wanted[code] = true
	}
	if len(wanted) == 0 {
		return nil, ErrEmptyLanguages
	}

	order := a.rank(sel.Sort)

	var selected []string
	for _, code := range order {
		if wanted[code] {
			selected = append(selected, code)
		}
	}
	if len(selected) == 0 {
		return nil, ErrEmptyLanguages
	}

	if limit := clampLimit(sel.Limit); limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	totals := make(map[string]int, len(selected))
	for _, code := range selected {
		totals[code] = a.RowTotals[code]
	}

	return &View{
		Order:       selected,
		Categories:  categories,
		Counts:      a.Counts.restrict(selected, categories),
		Percentages: a.Percentages.restrict(selected, categories),
		RowTotals:   totals,
	}, nil
}

// intersectCategories keeps the selected categories that exist in the
// data, preserving canonical display order.
func (a *Aggregate) intersectCategories(selected []article.Category) []article.Category {
	wanted := make(map[article.Category]bool, len(selected))
	for _, cat := range selected {
		wanted[cat] = true
	}
	var out []article.Category
	for _, cat := range a.Counts.Categories {
		if wanted[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// rank orders all top-N languages by the sort key, before any language
// filter is applied.
func (a *Aggregate) rank(key SortKey) []string {
	order := append([]string(nil), a.Order...)

	switch key {
	case SortCountAsc:
		sort.SliceStable(order, func(i, j int) bool {
			return a.RowTotals[order[i]] < a.RowTotals[order[j]]
		})
	case SortCountDesc, "":
		// Order is already count descending.
	default:
		cat, ok := key.category()
		if !ok {
			return order
		}
		if !a.hasCategory(cat) {
			// Ranking category absent from the data: keep count order.
			return order
		}
		sort.SliceStable(order, func(i, j int) bool {
			return a.Percentages.Value(order[i], cat) > a.Percentages.Value(order[j], cat)
		})
	}
	return order
}

func (a *Aggregate) hasCategory(cat article.Category) bool {
	for _, c := range a.Counts.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit < MinLanguageLimit {
		return MinLanguageLimit
	}
	if limit > MaxLanguageLimit {
		return MaxLanguageLimit
	}
	return limit
}
