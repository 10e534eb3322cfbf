package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikilytics/wikiclass/pkg/article"
)

// rowsOf expands lang -> category counts into long rows, in map-free
// deterministic order.
func rowsOf(t *testing.T, groups []struct {
	lang string
	cat  article.Category
	n    int
}) []article.LongRow {
	t.Helper()
	var rows []article.LongRow
	id := 0
	for _, s := range groups {
		for i := 0; i < s.n; i++ {
			id++
			rows = append(rows, article.LongRow{
				QID:        fmt.Sprintf("Q%d", id),
				Language:   s.lang,
				ArticleURL: fmt.Sprintf("https://%s.wikipedia.org/wiki/%d", s.lang, id),
				Category:   s.cat,
			})
		}
	}
	return rows
}

func TestLanguageCounts(t *testing.T) {
	rows := rowsOf(t, []struct {
		lang string
		cat  article.Category
		n    int
	}{
		{"en", article.CategoryHuman, 3},
		{"fr", article.CategoryEvent, 2},
		{"de", article.CategoryHuman, 2},
		{"sv", article.CategoryOther, 1},
	})

	counts := LanguageCounts(rows)
	require.Len(t, counts, 4)
	assert.Equal(t, LanguageCount{Code: "en", Count: 3}, counts[0])
	// fr and de tie at 2: first appearance in the source wins.
	assert.Equal(t, "fr", counts[1].Code)
	assert.Equal(t, "de", counts[2].Code)
	assert.Equal(t, "sv", counts[3].Code)
}

func TestBuild(t *testing.T) {
	rows := rowsOf(t, []struct {
		lang string
		cat  article.Category
		n    int
	}{
		{"en", article.CategoryHuman, 2},
		{"en", article.CategoryEvent, 1},
		{"fr", article.CategoryHuman, 1},
		{"fr", article.CategoryEvent, 1},
		{"de", article.CategoryOrganization, 1},
	})

	t.Run("percentage rows sum to 100", func(t *testing.T) {
		agg := Build(rows, 25)
		for _, lang := range agg.Percentages.Languages {
			var sum float64
			for _, cat := range agg.Percentages.Categories {
				sum += agg.Percentages.Value(lang, cat)
			}
			assert.InDelta(t, 100.0, sum, 1e-6, "language %s", lang)
		}
	})

	t.Run("top-N cut drops low-count languages entirely", func(t *testing.T) {
		agg := Build(rows, 2)
		assert.Equal(t, []string{"en", "fr"}, agg.Order)
		assert.NotContains(t, agg.Counts.Values, "de")
		assert.NotContains(t, agg.Percentages.Values, "de")
		assert.Equal(t, 5, agg.TotalArticles())
	})

	t.Run("categories are those present, in display order", func(t *testing.T) {
		agg := Build(rows, 25)
		assert.Equal(t,
			[]article.Category{article.CategoryEvent, article.CategoryOrganization, article.CategoryHuman},
			agg.CategoriesPresent())
	})

	t.Run("zero topN uses the default", func(t *testing.T) {
		agg := Build(rows, 0)
		assert.Len(t, agg.Order, 3)
	})

	t.Run("counts match the grouped rows", func(t *testing.T) {
		agg := Build(rows, 25)
		assert.Equal(t, 2.0, agg.Counts.Value("en", article.CategoryHuman))
		assert.Equal(t, 1.0, agg.Counts.Value("en", article.CategoryEvent))
		assert.Equal(t, 0.0, agg.Counts.Value("en", article.CategoryOrganization))
		assert.Equal(t, 1.0, agg.Counts.Value("de", article.CategoryOrganization))
	})
}

// The end-to-end fixture from the loader's perspective: three items with
// categories human, event, human, where the third has no fr article.
func TestBuildEndToEndFixture(t *testing.T) {
	rows := []article.LongRow{
		{QID: "Q1", Language: "en", ArticleURL: "u1", Category: article.CategoryHuman},
		{QID: "Q1", Language: "fr", ArticleURL: "u2", Category: article.CategoryHuman},
		{QID: "Q2", Language: "en", ArticleURL: "u3", Category: article.CategoryEvent},
		{QID: "Q2", Language: "fr", ArticleURL: "u4", Category: article.CategoryEvent},
		{QID: "Q3", Language: "en", ArticleURL: "u5", Category: article.CategoryHuman},
	}

	agg := Build(rows, 25)

	require.Equal(t, []string{"en", "fr"}, agg.Order)
	assert.Equal(t, 3, agg.RowTotals["en"])
	assert.Equal(t, 2, agg.RowTotals["fr"])

	assert.InDelta(t, 66.7, agg.Percentages.Value("en", article.CategoryHuman), 0.05)
	assert.InDelta(t, 33.3, agg.Percentages.Value("en", article.CategoryEvent), 0.05)
	assert.InDelta(t, 50.0, agg.Percentages.Value("fr", article.CategoryHuman), 1e-6)
	assert.InDelta(t, 50.0, agg.Percentages.Value("fr", article.CategoryEvent), 1e-6)
}
