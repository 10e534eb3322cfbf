// Package dataset loads the pre-computed table of classified articles and
// melts it from wide form (one row per article) into long form (one row
// per article/language pair).
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wikilytics/wikiclass/pkg/article"
	"github.com/wikilytics/wikiclass/pkg/logging"
)

// Table is the immutable result of one load. It is never mutated after
// creation and is safe to share read-only across concurrent requests.
type Table struct {
	Items    []article.Item
	Rows     []article.LongRow
	Path     string
	LoadedAt time.Time
}

// Load reads the source table and produces its long-form row set. Rows
// where a per-language cell is empty produce no LongRow for that pair.
func Load(path string, schema Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	table, err := read(f, path, schema)
	if err != nil {
		return nil, err
	}

	logger := logging.GetDatasetLogger(path)
	logger.Info().
		Int("items", len(table.Items)).
		Int("rows", len(table.Rows)).
		Msg("Dataset loaded")

	return table, nil
}

func read(r io.Reader, source string, schema Schema) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("reading header: %v", err)}
	}

	layout, err := schema.resolve(source, header)
	if err != nil {
		return nil, err
	}

	table := &Table{Path: source, LoadedAt: time.Now().UTC()}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("line %d: %v", line, err)}
		}

		qid := strings.TrimSpace(record[layout.idIndex])
		if qid == "" {
			return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("line %d: empty %s", line, schema.IDColumn)}
		}

		category, err := article.ParseCategory(strings.TrimSpace(record[layout.categoryIndex]))
		if err != nil {
			return nil, &DataFormatError{Source: source, Reason: fmt.Sprintf("line %d: %v", line, err)}
		}

		item := article.Item{
			QID:      qid,
			Category: category,
			Articles: make(map[string]string, len(layout.languages)),
		}

		for _, lang := range layout.languages {
			url := strings.TrimSpace(record[lang.index])
			if url == "" {
				continue
			}
			item.Articles[lang.code] = url
			table.Rows = append(table.Rows, article.LongRow{
				QID:        qid,
				Language:   lang.code,
				ArticleURL: url,
				Category:   category,
			})
		}

		table.Items = append(table.Items, item)
	}

	return table, nil
}
