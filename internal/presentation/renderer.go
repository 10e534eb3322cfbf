// Package presentation turns filtered matrices into chart-ready rows,
// summary tables, metrics and a raw-data sample.
package presentation

import (
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/pkg/article"
	"github.com/wikilytics/wikiclass/pkg/langreg"
	"github.com/wikilytics/wikiclass/pkg/logging"
)

// Renderer builds RenderedViews from aggregated data.
type Renderer struct {
	config *RendererConfig
	mu     sync.Mutex
	rng    *rand.Rand
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	MaxSampleSize int   `json:"max_sample_size"`
	ChartHeight   int   `json:"chart_height"`
	RandSeed      int64 `json:"rand_seed"` // 0 seeds from the clock
}

// NewRenderer creates a renderer. A nil config gets defaults.
func NewRenderer(config *RendererConfig) *Renderer {
	if config == nil {
		config = &RendererConfig{}
	}
	if config.MaxSampleSize <= 0 {
		config.MaxSampleSize = 100
	}
	if config.ChartHeight <= 0 {
		config.ChartHeight = 600
	}
	seed := config.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Renderer{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Render applies the selection and produces a complete view. Empty
// selections surface analysis.ErrEmptyCategories/ErrEmptyLanguages
// unchanged so callers can render the warning state.
func (r *Renderer) Render(agg *analysis.Aggregate, opts *RenderOptions) (*RenderedView, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregate is nil")
	}
	if opts == nil {
		opts = &RenderOptions{}
	}
	if opts.Mode == "" {
		opts.Mode = ModeStackedPercent
	}

	view, err := agg.Select(opts.Selection)
	if err != nil {
		return nil, err
	}

	rendered := &RenderedView{
		RenderID:   uuid.New().String(),
		RenderTime: time.Now().UTC(),
		Mode:       opts.Mode,
		Sort:       opts.Selection.Sort,
		Languages:  view.Order,
		Categories: view.Categories,
	}
	if rendered.Sort == "" {
		rendered.Sort = analysis.SortCountDesc
	}

	logger := logging.GetRenderLogger(rendered.RenderID)
	logger.Debug().
		Str("mode", string(opts.Mode)).
		Int("languages", len(view.Order)).
		Int("categories", len(view.Categories)).
		Msg("Rendering view")

	rendered.PlotRows = r.plotRows(view, opts.Mode)
	rendered.Metrics = r.metrics(agg, view)
	rendered.Breakdown = r.breakdown(agg, view.Categories)
	rendered.CountTable = r.countTable(view)
	rendered.PercentTable = r.percentTable(view)
	rendered.Sample = r.sample(agg, view, opts.SampleSize)

	return rendered, nil
}

// ChartLabel annotates a language with its raw article count, e.g.
// "English (n=2,991)".
func ChartLabel(code string, total int) string {
	return fmt.Sprintf("%s (n=%s)", langreg.DisplayName(code), humanize.Comma(int64(total)))
}

// plotRows produces the long-form plotting table: one row per
// (language, category) pair, in language-major order.
func (r *Renderer) plotRows(view *analysis.View, mode ChartMode) []PlotRow {
	matrix := view.Percentages
	if mode == ModeStackedCount {
		matrix = view.Counts
	}

	rows := make([]PlotRow, 0, len(view.Order)*len(view.Categories))
	for _, lang := range view.Order {
		label := ChartLabel(lang, view.RowTotals[lang])
		for _, cat := range view.Categories {
			rows = append(rows, PlotRow{
				Language: lang,
				Label:    label,
				Category: cat,
				Value:    matrix.Value(lang, cat),
			})
		}
	}
	return rows
}

// metrics computes the scalar summary figures. The article total and the
// most common category cover all retained data, matching the dashboard's
// headline numbers rather than the current filter.
func (r *Renderer) metrics(agg *analysis.Aggregate, view *analysis.View) Metrics {
	counts := make(map[article.Category]int)
	for _, row := range agg.Rows {
		counts[row.Category]++
	}

	var most article.Category
	best := -1
	for _, cat := range agg.CategoriesPresent() {
		if counts[cat] > best {
			best = counts[cat]
			most = cat
		}
	}

	total := agg.TotalArticles()
	return Metrics{
		TotalArticles:      total,
		TotalArticlesLabel: humanize.Comma(int64(total)),
		LanguagesShown:     len(view.Order),
		CategoriesShown:    len(view.Categories),
		MostCommonCategory: most,
	}
}

// breakdown reports each displayed category's share of all retained
// articles, rounded to one decimal.
func (r *Renderer) breakdown(agg *analysis.Aggregate, categories []article.Category) []CategoryShare {
	total := agg.TotalArticles()
	if total == 0 {
		return nil
	}
	counts := make(map[article.Category]int)
	for _, row := range agg.Rows {
		counts[row.Category]++
	}

	shares := make([]CategoryShare, 0, len(categories))
	for _, cat := range categories {
		pct := float64(counts[cat]) / float64(total) * 100
		shares = append(shares, CategoryShare{
			Category: cat,
			Percent:  roundOne(pct),
		})
	}
	return shares
}

func (r *Renderer) countTable(view *analysis.View) *SummaryTable {
	columns := make([]string, 0, len(view.Categories)+1)
	for _, cat := range view.Categories {
		columns = append(columns, string(cat))
	}
	columns = append(columns, "Total")

	table := &SummaryTable{
		Title:   "Articles by Language and Type",
		Columns: columns,
	}
	for _, lang := range view.Order {
		values := make([]string, 0, len(columns))
		var total float64
		for _, cat := range view.Categories {
			v := view.Counts.Value(lang, cat)
			total += v
			values = append(values, strconv.Itoa(int(v)))
		}
		values = append(values, strconv.Itoa(int(total)))
		table.Rows = append(table.Rows, SummaryRow{
			Label:  langreg.Label(lang),
			Values: values,
		})
	}
	return table
}

func (r *Renderer) percentTable(view *analysis.View) *SummaryTable {
	columns := make([]string, 0, len(view.Categories))
	for _, cat := range view.Categories {
		columns = append(columns, string(cat))
	}

	table := &SummaryTable{
		Title:   "Percentage Distribution",
		Columns: columns,
	}
	for _, lang := range view.Order {
		values := make([]string, 0, len(columns))
		for _, cat := range view.Categories {
			values = append(values, fmt.Sprintf("%.1f%%", view.Percentages.Value(lang, cat)))
		}
		table.Rows = append(table.Rows, SummaryRow{
			Label:  langreg.Label(lang),
			Values: values,
		})
	}
	return table
}

// sample draws a bounded random sample of raw rows restricted to the
// selected categories and languages, sorted by language then category.
func (r *Renderer) sample(agg *analysis.Aggregate, view *analysis.View, size int) []SampleRow {
	if size <= 0 || size > r.config.MaxSampleSize {
		size = r.config.MaxSampleSize
	}

	langs := make(map[string]bool, len(view.Order))
	for _, code := range view.Order {
		langs[code] = true
	}
	cats := make(map[article.Category]bool, len(view.Categories))
	for _, cat := range view.Categories {
		cats[cat] = true
	}

	var eligible []article.LongRow
	for _, row := range agg.Rows {
		if langs[row.Language] && cats[row.Category] {
			eligible = append(eligible, row)
		}
	}

	r.mu.Lock()
	r.rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	r.mu.Unlock()

	if len(eligible) > size {
		eligible = eligible[:size]
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Language != eligible[j].Language {
			return eligible[i].Language < eligible[j].Language
		}
		return eligible[i].Category < eligible[j].Category
	})

	rows := make([]SampleRow, 0, len(eligible))
	for _, row := range eligible {
		rows = append(rows, SampleRow{
			LanguageName: langreg.DisplayName(row.Language),
			LanguageCode: row.Language,
			Category:     row.Category,
			QID:          row.QID,
			ArticleURL:   row.ArticleURL,
		})
	}
	return rows
}

// OptionsFromValues parses query parameters into render options. An
// absent categories/languages parameter means "all"; a present but empty
// one is an explicit empty selection, which Render rejects.
func OptionsFromValues(values url.Values, agg *analysis.Aggregate) (*RenderOptions, error) {
	opts := &RenderOptions{}

	// Parameters repeat (form checkboxes) or carry comma lists; both are
	// accepted. An absent parameter selects everything.
	if values.Has("categories") {
		for _, part := range splitLists(values["categories"]) {
			cat, err := article.ParseCategory(part)
			if err != nil {
				return nil, err
			}
			opts.Selection.Categories = append(opts.Selection.Categories, cat)
		}
	} else {
		opts.Selection.Categories = agg.CategoriesPresent()
	}

	if values.Has("languages") {
		opts.Selection.Languages = splitLists(values["languages"])
	} else {
		opts.Selection.Languages = append([]string(nil), agg.Order...)
	}

	sortKey, err := analysis.ParseSortKey(values.Get("sort"))
	if err != nil {
		return nil, err
	}
	opts.Selection.Sort = sortKey

	mode, err := ParseChartMode(values.Get("mode"))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("invalid limit %q", raw)
		}
		opts.Selection.Limit = limit
	}

	if raw := values.Get("sample"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid sample size %q", raw)
		}
		opts.SampleSize = size
	}

	return opts, nil
}

func splitLists(raws []string) []string {
	var out []string
	for _, raw := range raws {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func roundOne(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
