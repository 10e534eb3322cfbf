package presentation_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/internal/presentation"
	"github.com/wikilytics/wikiclass/pkg/article"
)

// MockSource implements presentation.Source over in-memory rows.
type MockSource struct {
	agg *analysis.Aggregate
	err error
}

func (ms *MockSource) Aggregate() (*analysis.Aggregate, error) {
	return ms.agg, ms.err
}

func testRows() []article.LongRow {
	var rows []article.LongRow
	add := func(lang string, cat article.Category, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, article.LongRow{
				QID:        fmt.Sprintf("Q%s%d", lang, len(rows)),
				Language:   lang,
				ArticleURL: fmt.Sprintf("https://%s.wikipedia.org/wiki/%d", lang, i),
				Category:   cat,
			})
		}
	}
	add("en", article.CategoryHuman, 5)
	add("en", article.CategoryEvent, 3)
	add("en", article.CategoryOrganization, 2)
	add("fr", article.CategoryHuman, 2)
	add("fr", article.CategoryEvent, 4)
	add("de", article.CategoryOrganization, 3)
	add("de", article.CategoryHuman, 1)
	return rows
}

func testSource() *MockSource {
	return &MockSource{agg: analysis.Build(testRows(), 25)}
}

func allSelection(agg *analysis.Aggregate) analysis.Selection {
	return analysis.Selection{
		Categories: agg.CategoriesPresent(),
		Languages:  append([]string(nil), agg.Order...),
	}
}

func TestRenderer(t *testing.T) {
	renderer := presentation.NewRenderer(&presentation.RendererConfig{RandSeed: 1})
	agg := testSource().agg

	t.Run("renders a complete view", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, rendered.RenderID)
		assert.Equal(t, presentation.ModeStackedPercent, rendered.Mode)
		assert.Equal(t, analysis.SortCountDesc, rendered.Sort)
		assert.Equal(t, []string{"en", "fr", "de"}, rendered.Languages)
		assert.Len(t, rendered.PlotRows, 3*3)
	})

	t.Run("language labels carry raw counts", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
		})
		require.NoError(t, err)

		assert.Equal(t, "English (n=10)", rendered.PlotRows[0].Label)
		assert.Equal(t, "English (n=10)", presentation.ChartLabel("en", 10))
		assert.Equal(t, "English (n=2,991)", presentation.ChartLabel("en", 2991))
		// Unmapped codes display verbatim.
		assert.Equal(t, "tlh (n=1)", presentation.ChartLabel("tlh", 1))
	})

	t.Run("stacked count mode plots counts", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
			Mode:      presentation.ModeStackedCount,
		})
		require.NoError(t, err)

		var total float64
		for _, row := range rendered.PlotRows {
			total += row.Value
		}
		assert.Equal(t, 20.0, total)
	})

	t.Run("metrics cover the full retained data", func(t *testing.T) {
		sel := allSelection(agg)
		sel.Categories = []article.Category{article.CategoryOrganization}
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{Selection: sel})
		require.NoError(t, err)

		m := rendered.Metrics
		assert.Equal(t, 20, m.TotalArticles)
		assert.Equal(t, "20", m.TotalArticlesLabel)
		assert.Equal(t, 3, m.LanguagesShown)
		assert.Equal(t, 1, m.CategoriesShown)
		// human is most common overall even when filtered out of display.
		assert.Equal(t, article.CategoryHuman, m.MostCommonCategory)
	})

	t.Run("percentages are not re-normalized after filtering", func(t *testing.T) {
		sel := allSelection(agg)
		sel.Categories = []article.Category{article.CategoryEvent, article.CategoryHuman}
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{Selection: sel})
		require.NoError(t, err)

		var enSum float64
		for _, row := range rendered.PlotRows {
			if row.Language == "en" {
				enSum += row.Value
			}
		}
		// en: human 50% + event 30%; organization stays hidden, not rescaled.
		assert.InDelta(t, 80.0, enSum, 1e-6)
	})

	t.Run("summary tables are formatted", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
		})
		require.NoError(t, err)

		require.NotNil(t, rendered.CountTable)
		assert.Equal(t, "Total", rendered.CountTable.Columns[len(rendered.CountTable.Columns)-1])
		assert.Equal(t, "English (en)", rendered.CountTable.Rows[0].Label)
		assert.Equal(t, "10", rendered.CountTable.Rows[0].Values[len(rendered.CountTable.Rows[0].Values)-1])

		require.NotNil(t, rendered.PercentTable)
		for _, v := range rendered.PercentTable.Rows[0].Values {
			assert.True(t, strings.HasSuffix(v, "%"), "value %q", v)
		}
	})

	t.Run("sample is bounded and ordered", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection:  allSelection(agg),
			SampleSize: 5,
		})
		require.NoError(t, err)

		require.Len(t, rendered.Sample, 5)
		for i := 1; i < len(rendered.Sample); i++ {
			prev, cur := rendered.Sample[i-1], rendered.Sample[i]
			ordered := prev.LanguageCode < cur.LanguageCode ||
				(prev.LanguageCode == cur.LanguageCode && prev.Category <= cur.Category)
			assert.True(t, ordered, "sample out of order at %d", i)
		}
	})

	t.Run("sample respects the selection", func(t *testing.T) {
		sel := allSelection(agg)
		sel.Categories = []article.Category{article.CategoryOrganization}
		sel.Languages = []string{"de"}
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{Selection: sel})
		require.NoError(t, err)

		require.NotEmpty(t, rendered.Sample)
		for _, row := range rendered.Sample {
			assert.Equal(t, "de", row.LanguageCode)
			assert.Equal(t, article.CategoryOrganization, row.Category)
		}
	})

	t.Run("empty selections surface the warning errors", func(t *testing.T) {
		sel := allSelection(agg)
		sel.Categories = nil
		_, err := renderer.Render(agg, &presentation.RenderOptions{Selection: sel})
		assert.ErrorIs(t, err, analysis.ErrEmptyCategories)

		sel = allSelection(agg)
		sel.Languages = nil
		_, err = renderer.Render(agg, &presentation.RenderOptions{Selection: sel})
		assert.ErrorIs(t, err, analysis.ErrEmptyLanguages)
	})
}

func TestParseChartMode(t *testing.T) {
	mode, err := presentation.ParseChartMode("")
	require.NoError(t, err)
	assert.Equal(t, presentation.ModeStackedPercent, mode)

	for _, m := range presentation.ChartModes() {
		parsed, err := presentation.ParseChartMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err = presentation.ParseChartMode("pie")
	assert.Error(t, err)
}

func TestCategoryColor(t *testing.T) {
	// Colors are fixed per category, independent of any selection.
	assert.Equal(t, "#66c2a5", presentation.CategoryColor(article.CategoryEvent))
	assert.Equal(t, "#e78ac3", presentation.CategoryColor(article.CategoryHuman))
	assert.Equal(t, "#ffd92f", presentation.CategoryColor(article.CategoryOther))
}

func TestBuildChart(t *testing.T) {
	renderer := presentation.NewRenderer(&presentation.RendererConfig{RandSeed: 1})
	agg := testSource().agg

	t.Run("stacked series", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
		})
		require.NoError(t, err)

		bar := renderer.BuildChart(rendered)
		require.Len(t, bar.MultiSeries, 3)
		for _, series := range bar.MultiSeries {
			assert.Equal(t, "total", series.Stack)
		}
	})

	t.Run("grouped series are not stacked", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
			Mode:      presentation.ModeGrouped,
		})
		require.NoError(t, err)

		bar := renderer.BuildChart(rendered)
		for _, series := range bar.MultiSeries {
			assert.Empty(t, series.Stack)
		}
	})

	t.Run("chart renders to HTML", func(t *testing.T) {
		rendered, err := renderer.Render(agg, &presentation.RenderOptions{
			Selection: allSelection(agg),
		})
		require.NoError(t, err)

		var sb strings.Builder
		require.NoError(t, renderer.RenderChart(&sb, rendered))
		assert.Contains(t, sb.String(), "echarts")
	})
}

func TestAPI(t *testing.T) {
	renderer := presentation.NewRenderer(&presentation.RendererConfig{RandSeed: 1})
	api := presentation.NewAPI(renderer, testSource(), nil)
	router := api.Routes()

	do := func(t *testing.T, target string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("GET /api/v1/view", func(t *testing.T) {
		rec := do(t, "/api/v1/view")
		require.Equal(t, http.StatusOK, rec.Code)

		var rendered presentation.RenderedView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rendered))
		assert.Equal(t, []string{"en", "fr", "de"}, rendered.Languages)
		assert.NotEmpty(t, rendered.PlotRows)
	})

	t.Run("GET /api/v1/view with filters", func(t *testing.T) {
		rec := do(t, "/api/v1/view?categories=human,event&languages=en,fr&sort=count-asc&mode=grouped")
		require.Equal(t, http.StatusOK, rec.Code)

		var rendered presentation.RenderedView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rendered))
		assert.Equal(t, []string{"fr", "en"}, rendered.Languages)
		assert.Equal(t, presentation.ModeGrouped, rendered.Mode)
	})

	t.Run("explicit empty selection is a warning", func(t *testing.T) {
		rec := do(t, "/api/v1/view?categories=")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body, "warning")
		assert.NotContains(t, body, "plot_rows")
	})

	t.Run("invalid sort key is a bad request", func(t *testing.T) {
		rec := do(t, "/api/v1/view?sort=alphabetical")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET /api/v1/sample", func(t *testing.T) {
		rec := do(t, "/api/v1/sample?sample=3")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Sample []presentation.SampleRow `json:"sample"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Sample, 3)
	})

	t.Run("GET /api/v1/statistics", func(t *testing.T) {
		rec := do(t, "/api/v1/statistics")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.EqualValues(t, 20, body["total_articles"])
	})

	t.Run("GET /api/v1/health", func(t *testing.T) {
		rec := do(t, "/api/v1/health")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
