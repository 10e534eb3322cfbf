// Package main generates a static HTML report from the classified
// article dataset, using the same pipeline as the dashboard server.
package main

import (
	"bytes"
	"flag"
	"html/template"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/internal/dataset"
	"github.com/wikilytics/wikiclass/internal/presentation"
	"github.com/wikilytics/wikiclass/pkg/article"
	"github.com/wikilytics/wikiclass/pkg/logging"
)

func main() {
	dataPath := flag.String("data", "data/sample.csv", "path to the classified articles CSV")
	outPath := flag.String("out", "report.html", "output HTML file")
	topN := flag.Int("top", analysis.DefaultTopLanguages, "number of top languages to retain")
	categories := flag.String("categories", "", "comma-separated category subset (default: all)")
	languages := flag.String("languages", "", "comma-separated language subset (default: all)")
	sortKey := flag.String("sort", string(analysis.SortCountDesc), "sort order")
	mode := flag.String("mode", string(presentation.ModeStackedPercent), "chart mode")
	limit := flag.Int("limit", 0, "cap on languages shown (0 = no cap)")
	flag.Parse()

	if err := logging.SetupLogger(logging.DefaultLogConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	store := dataset.NewStore(dataset.DefaultSchema(), nil)
	provider := analysis.NewProvider(store, *dataPath, *topN)

	agg, err := provider.Aggregate()
	if err != nil {
		log.Fatal().Err(err).Str("path", *dataPath).Msg("Failed to load dataset")
	}

	opts, err := buildOptions(agg, *categories, *languages, *sortKey, *mode, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid report options")
	}

	renderer := presentation.NewRenderer(nil)
	rendered, err := renderer.Render(agg, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}

	var chart bytes.Buffer
	if err := renderer.RenderChart(&chart, rendered); err != nil {
		log.Fatal().Err(err).Msg("Failed to render chart")
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to create output file")
	}
	defer f.Close()

	err = reportTemplate.Execute(f, map[string]interface{}{
		"Rendered": rendered,
		"ChartDoc": chart.String(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().
		Str("out", *outPath).
		Int("languages", len(rendered.Languages)).
		Int("categories", len(rendered.Categories)).
		Msg("Report written")
}

func buildOptions(agg *analysis.Aggregate, categories, languages, sortKey, mode string, limit int) (*presentation.RenderOptions, error) {
	opts := &presentation.RenderOptions{}

	if categories == "" {
		opts.Selection.Categories = agg.CategoriesPresent()
	} else {
		for _, part := range strings.Split(categories, ",") {
			cat, err := article.ParseCategory(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			opts.Selection.Categories = append(opts.Selection.Categories, cat)
		}
	}

	if languages == "" {
		opts.Selection.Languages = append([]string(nil), agg.Order...)
	} else {
		for _, part := range strings.Split(languages, ",") {
			opts.Selection.Languages = append(opts.Selection.Languages, strings.TrimSpace(part))
		}
	}

	key, err := analysis.ParseSortKey(sortKey)
	if err != nil {
		return nil, err
	}
	opts.Selection.Sort = key

	chartMode, err := presentation.ParseChartMode(mode)
	if err != nil {
		return nil, err
	}
	opts.Mode = chartMode
	opts.Selection.Limit = limit

	return opts, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Article Type Distribution Report</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 1320px; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d8dde4; padding: 0.35rem 0.7rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
iframe { border: none; width: 100%; height: 660px; }
</style>
</head>
<body>
<h1>Article Type Distribution Across Wikipedia Language Editions</h1>
<p>Total articles: {{.Rendered.Metrics.TotalArticlesLabel}} |
Languages: {{.Rendered.Metrics.LanguagesShown}} |
Article types: {{.Rendered.Metrics.CategoriesShown}} |
Most common type: {{.Rendered.Metrics.MostCommonCategory}}</p>

<iframe srcdoc="{{.ChartDoc}}"></iframe>

<h2>{{.Rendered.CountTable.Title}}</h2>
<table>
<tr><th>Language</th>{{range .Rendered.CountTable.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rendered.CountTable.Rows}}<tr><td>{{.Label}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>

<h2>{{.Rendered.PercentTable.Title}}</h2>
<table>
<tr><th>Language</th>{{range .Rendered.PercentTable.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rendered.PercentTable.Rows}}<tr><td>{{.Label}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))
