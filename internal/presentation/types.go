package presentation

import (
	"fmt"
	"time"

	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/pkg/article"
)

// ChartMode selects one of the three bar chart arrangements.
type ChartMode string

const (
	ModeStackedPercent ChartMode = "stacked-percent"
	ModeStackedCount   ChartMode = "stacked-count"
	ModeGrouped        ChartMode = "grouped"
)

// ChartModes returns the supported modes in menu order.
func ChartModes() []ChartMode {
	return []ChartMode{ModeStackedPercent, ModeStackedCount, ModeGrouped}
}

// ParseChartMode validates a wire value, defaulting empty to
// stacked-percent.
func ParseChartMode(s string) (ChartMode, error) {
	if s == "" {
		return ModeStackedPercent, nil
	}
	for _, mode := range ChartModes() {
		if ChartMode(s) == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown chart mode %q", s)
}

// RenderOptions configures one dashboard render.
type RenderOptions struct {
	Selection  analysis.Selection `json:"selection"`
	Mode       ChartMode          `json:"mode"`
	SampleSize int                `json:"sample_size"`
}

// PlotRow is one (language, category) pair of the long-form plotting
// table. Value carries a percentage or a raw count depending on the
// chart mode.
type PlotRow struct {
	Language string           `json:"language_code"`
	Label    string           `json:"language_label"`
	Category article.Category `json:"category"`
	Value    float64          `json:"value"`
}

// SummaryTable is a formatted tabular breakdown with human-readable row
// labels.
type SummaryTable struct {
	Title   string       `json:"title"`
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
}

// SummaryRow is one language row of a summary table.
type SummaryRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Metrics are the dashboard's scalar summary figures. Total articles and
// the most common category are computed over the full top-N data, not
// the current selection.
type Metrics struct {
	TotalArticles      int              `json:"total_articles"`
	TotalArticlesLabel string           `json:"total_articles_label"`
	LanguagesShown     int              `json:"languages_shown"`
	CategoriesShown    int              `json:"categories_shown"`
	MostCommonCategory article.Category `json:"most_common_category"`
}

// CategoryShare is one category's share of all retained articles.
type CategoryShare struct {
	Category article.Category `json:"category"`
	Percent  float64          `json:"percent"`
}

// SampleRow is one raw classified item in the inspection sample.
type SampleRow struct {
	LanguageName string           `json:"language_name"`
	LanguageCode string           `json:"language_code"`
	Category     article.Category `json:"category"`
	QID          string           `json:"qid"`
	ArticleURL   string           `json:"article_url"`
}

// RenderedView is one fully rendered dashboard state.
type RenderedView struct {
	RenderID     string             `json:"render_id"`
	RenderTime   time.Time          `json:"render_time"`
	Mode         ChartMode          `json:"mode"`
	Sort         analysis.SortKey   `json:"sort"`
	Languages    []string           `json:"languages"`
	Categories   []article.Category `json:"categories"`
	PlotRows     []PlotRow          `json:"plot_rows"`
	Metrics      Metrics            `json:"metrics"`
	Breakdown    []CategoryShare    `json:"breakdown"`
	CountTable   *SummaryTable      `json:"count_table"`
	PercentTable *SummaryTable      `json:"percent_table"`
	Sample       []SampleRow        `json:"sample"`
}

// Source provides the aggregated dataset for rendering.
type Source interface {
	Aggregate() (*analysis.Aggregate, error)
}
