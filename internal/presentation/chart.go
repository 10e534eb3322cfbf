package presentation

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/wikilytics/wikiclass/pkg/article"
)

// categoryColors is the fixed color assignment per category. Assignment
// is stable regardless of which category subset is displayed.
var categoryColors = map[article.Category]string{
	article.CategoryEvent:        "#66c2a5",
	article.CategoryConcept:      "#fc8d62",
	article.CategoryOrganization: "#8da0cb",
	article.CategoryHuman:        "#e78ac3",
	article.CategoryNone:         "#a6d854",
	article.CategoryOther:        "#ffd92f",
}

// CategoryColor returns the fixed chart color for a category.
func CategoryColor(cat article.Category) string {
	return categoryColors[cat]
}

func chartTitle(mode ChartMode) string {
	switch mode {
	case ModeStackedCount:
		return "Distribution of Article Types Across Wikipedia Language Editions (Counts)"
	case ModeGrouped:
		return "Distribution of Article Types Across Wikipedia Language Editions (Grouped)"
	default:
		return "Distribution of Article Types Across Wikipedia Language Editions (%)"
	}
}

func yAxisName(mode ChartMode) string {
	if mode == ModeStackedCount {
		return "Number of Articles"
	}
	return "Percentage of Articles"
}

// BuildChart assembles the bar chart for a rendered view: category as
// the color/stack dimension, languages along the x axis.
func (r *Renderer) BuildChart(view *RenderedView) *charts.Bar {
	bar := charts.NewBar()

	yAxis := opts.YAxis{Name: yAxisName(view.Mode)}
	if view.Mode == ModeStackedPercent {
		yAxis.Max = 100
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "1280px",
			Height: fmt.Sprintf("%dpx", r.config.ChartHeight),
		}),
		charts.WithTitleOpts(opts.Title{Title: chartTitle(view.Mode)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(yAxis),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Rotate: 45, Interval: "0"},
		}),
	)

	// PlotRows are language-major; labels repeat once per category.
	var labels []string
	for i := 0; i < len(view.PlotRows); i += max(len(view.Categories), 1) {
		labels = append(labels, view.PlotRows[i].Label)
	}
	bar.SetXAxis(labels)

	byCategory := make(map[article.Category][]opts.BarData, len(view.Categories))
	for _, row := range view.PlotRows {
		byCategory[row.Category] = append(byCategory[row.Category], opts.BarData{Value: row.Value})
	}

	for _, cat := range view.Categories {
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: categoryColors[cat]}),
		}
		if view.Mode != ModeGrouped {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(string(cat), byCategory[cat], seriesOpts...)
	}

	return bar
}

// RenderChart writes the chart as a standalone HTML document.
func (r *Renderer) RenderChart(w io.Writer, view *RenderedView) error {
	return r.BuildChart(view).Render(w)
}
