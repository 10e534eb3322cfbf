package api

import (
	"bytes"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/internal/presentation"
	"github.com/wikilytics/wikiclass/pkg/article"
	"github.com/wikilytics/wikiclass/pkg/langreg"
)

// choice is one control option with its current state.
type choice struct {
	Value    string
	Label    string
	Selected bool
	Color    string
}

// dashboardData feeds the dashboard template.
type dashboardData struct {
	Warning     string
	Rendered    *presentation.RenderedView
	ChartDoc    string
	Categories  []choice
	Languages   []choice
	Sorts       []choice
	Modes       []choice
	Limit       int
	Breakdown   []presentation.CategoryShare
	Definitions []choice
}

var sortLabels = map[analysis.SortKey]string{
	analysis.SortCountDesc:       "Article Count (Descending)",
	analysis.SortCountAsc:        "Article Count (Ascending)",
	analysis.SortPctEvent:        "Highest % Event",
	analysis.SortPctConcept:      "Highest % Concept",
	analysis.SortPctOrganization: "Highest % Organization",
	analysis.SortPctHuman:        "Highest % Human",
	analysis.SortPctOther:        "Highest % Other",
}

var modeLabels = map[presentation.ChartMode]string{
	presentation.ModeStackedPercent: "Percentage (Stacked)",
	presentation.ModeStackedCount:   "Raw Counts (Stacked)",
	presentation.ModeGrouped:        "Grouped Bars",
}

// GetDashboard renders the full dashboard page. Empty selections render
// the warning state with the controls intact; the next interaction
// re-runs cleanly.
func (h *Handlers) GetDashboard(c *fiber.Ctx) error {
	agg, err := h.source.Aggregate()
	if err != nil {
		return h.respondError(c, err)
	}

	opts, err := presentation.OptionsFromValues(queryValues(c), agg)
	if err != nil {
		return h.respondError(c, &badRequestError{err})
	}

	data := &dashboardData{Limit: opts.Selection.Limit}
	data.fillControls(agg, opts)

	rendered, err := h.renderer.Render(agg, opts)
	switch {
	case errors.Is(err, analysis.ErrEmptyCategories):
		data.Warning = "Please select at least one article type to display."
	case errors.Is(err, analysis.ErrEmptyLanguages):
		data.Warning = "Please select at least one language to display."
	case err != nil:
		return h.respondError(c, err)
	default:
		data.Rendered = rendered
		data.Breakdown = rendered.Breakdown

		var chart bytes.Buffer
		if err := h.renderer.RenderChart(&chart, rendered); err != nil {
			return h.respondError(c, err)
		}
		data.ChartDoc = chart.String()
	}

	var page bytes.Buffer
	if err := dashboardTemplate.Execute(&page, data); err != nil {
		log.Error().Err(err).Msg("Failed to execute dashboard template")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render dashboard",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page.Bytes())
}

func (data *dashboardData) fillControls(agg *analysis.Aggregate, opts *presentation.RenderOptions) {
	selectedCats := make(map[article.Category]bool, len(opts.Selection.Categories))
	for _, cat := range opts.Selection.Categories {
		selectedCats[cat] = true
	}
	definitions := article.CategoryDefinitions()
	for _, cat := range agg.CategoriesPresent() {
		data.Categories = append(data.Categories, choice{
			Value:    string(cat),
			Label:    string(cat),
			Selected: selectedCats[cat],
			Color:    presentation.CategoryColor(cat),
		})
		data.Definitions = append(data.Definitions, choice{
			Value: string(cat),
			Label: definitions[cat],
		})
	}

	selectedLangs := make(map[string]bool, len(opts.Selection.Languages))
	for _, code := range opts.Selection.Languages {
		selectedLangs[code] = true
	}
	for _, code := range agg.Order {
		data.Languages = append(data.Languages, choice{
			Value:    code,
			Label:    langreg.DisplayName(code),
			Selected: selectedLangs[code],
		})
	}

	for _, key := range analysis.SortKeys() {
		data.Sorts = append(data.Sorts, choice{
			Value:    string(key),
			Label:    sortLabels[key],
			Selected: key == opts.Selection.Sort,
		})
	}
	for _, mode := range presentation.ChartModes() {
		data.Modes = append(data.Modes, choice{
			Value:    string(mode),
			Label:    modeLabels[mode],
			Selected: mode == opts.Mode,
		})
	}
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Climate Change Article Types Across Wikipedia Languages</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 1320px; color: #1f2430; }
h1 { margin-bottom: 0.25rem; }
.subtitle { color: #5a6372; margin-top: 0; }
.controls { display: flex; flex-wrap: wrap; gap: 2rem; padding: 1rem; background: #f4f6f8; border-radius: 8px; }
.controls fieldset { border: none; padding: 0; margin: 0; }
.controls legend { font-weight: bold; margin-bottom: 0.5rem; }
.swatch { display: inline-block; width: 0.7em; height: 0.7em; border-radius: 2px; margin-right: 0.3em; }
.warning { background: #fff3cd; border: 1px solid #ffe69c; padding: 1rem; border-radius: 8px; margin: 1.5rem 0; }
.metrics { display: flex; gap: 2rem; margin: 1.5rem 0; }
.metric { background: #f4f6f8; border-radius: 8px; padding: 1rem 1.5rem; }
.metric .value { font-size: 1.6rem; font-weight: bold; }
.metric .name { color: #5a6372; font-size: 0.85rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d8dde4; padding: 0.35rem 0.7rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
iframe { border: none; width: 100%; height: 660px; }
details { margin: 1rem 0; }
</style>
</head>
<body>
<h1>Climate Change Article Types Across Wikipedia Languages</h1>
<p class="subtitle">Exploring How Article Categories Vary Across the Top 25 Language Editions</p>
<p><strong>Research Question:</strong> How does the distribution of article types (humans, events,
organizations, concepts) vary across the top Wikipedia language editions? Each article was
classified offline using Wikidata's "instance of" (P31) property expanded with P279 subclass
hierarchies.</p>

<form method="get" action="/dashboard">
<div class="controls">
<fieldset>
<legend>Article Types</legend>
<input type="hidden" name="categories" value="">
{{range .Categories}}<label><input type="checkbox" name="categories" value="{{.Value}}"{{if .Selected}} checked{{end}}><span class="swatch" style="background:{{.Color}}"></span>{{.Label}}</label><br>
{{end}}</fieldset>
<fieldset>
<legend>Languages</legend>
<input type="hidden" name="languages" value="">
{{range .Languages}}<label><input type="checkbox" name="languages" value="{{.Value}}"{{if .Selected}} checked{{end}}>{{.Label}}</label><br>
{{end}}</fieldset>
<fieldset>
<legend>Sort Languages By</legend>
<select name="sort">
{{range .Sorts}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
<legend>Display Type</legend>
<select name="mode">
{{range .Modes}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
<legend>Number of Languages</legend>
<input type="number" name="limit" min="5" max="25" step="5" {{if .Limit}}value="{{.Limit}}"{{end}} placeholder="all">
<br><br><button type="submit">Update</button>
</fieldset>
</div>
</form>

{{if .Warning}}
<div class="warning">{{.Warning}}</div>
{{else}}
<div class="metrics">
<div class="metric"><div class="value">{{.Rendered.Metrics.TotalArticlesLabel}}</div><div class="name">Total Articles</div></div>
<div class="metric"><div class="value">{{.Rendered.Metrics.LanguagesShown}}</div><div class="name">Languages Analyzed</div></div>
<div class="metric"><div class="value">{{.Rendered.Metrics.CategoriesShown}}</div><div class="name">Article Types</div></div>
<div class="metric"><div class="value">{{.Rendered.Metrics.MostCommonCategory}}</div><div class="name">Most Common Type</div></div>
</div>

<h2>Article Type Distribution</h2>
<iframe srcdoc="{{.ChartDoc}}"></iframe>

<h2>Category Breakdown</h2>
<ul>
{{range .Breakdown}}<li><strong>{{.Category}}</strong>: {{.Percent}}%</li>
{{end}}</ul>

<details>
<summary>Show Detailed Breakdown by Language</summary>
<h3>{{.Rendered.CountTable.Title}}</h3>
<table>
<tr><th>Language</th>{{range .Rendered.CountTable.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rendered.CountTable.Rows}}<tr><td>{{.Label}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
<h3>{{.Rendered.PercentTable.Title}}</h3>
<table>
<tr><th>Language</th>{{range .Rendered.PercentTable.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rendered.PercentTable.Rows}}<tr><td>{{.Label}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</details>

<details>
<summary>Show Raw Data Sample</summary>
<table>
<tr><th>Language</th><th>Code</th><th>Category</th><th>QID</th><th>Article</th></tr>
{{range .Rendered.Sample}}<tr><td>{{.LanguageName}}</td><td>{{.LanguageCode}}</td><td>{{.Category}}</td><td>{{.QID}}</td><td><a href="{{.ArticleURL}}">{{.ArticleURL}}</a></td></tr>
{{end}}</table>
</details>
{{end}}

<details>
<summary>Show Article Type Definitions</summary>
<ul>
{{range .Definitions}}<li><strong>{{.Value}}</strong>: {{.Label}}</li>
{{end}}</ul>
</details>

<p><em>Despite vast differences in article counts, the proportional distribution of article
types remains remarkably similar across language editions, suggesting a globally standardized
approach to climate change coverage.</em></p>
</body>
</html>
`))
