// Package api exposes the dashboard and its JSON API over Fiber.
package api

import (
	"bytes"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/internal/dataset"
	"github.com/wikilytics/wikiclass/internal/presentation"
	"github.com/wikilytics/wikiclass/pkg/article"
	"github.com/wikilytics/wikiclass/pkg/langreg"
)

// Handlers contains the HTTP handlers for the API
type Handlers struct {
	source   presentation.Source
	renderer *presentation.Renderer
}

// NewHandlers creates a new handlers instance
func NewHandlers(source presentation.Source, renderer *presentation.Renderer) *Handlers {
	return &Handlers{
		source:   source,
		renderer: renderer,
	}
}

// Health returns the service health status
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "wikiclass",
		"version":   "0.1.0",
		"timestamp": time.Now().UTC(),
	})
}

// GetView renders the filtered matrices, plot rows, tables and sample
// for the requested selection.
func (h *Handlers) GetView(c *fiber.Ctx) error {
	rendered, err := h.render(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(rendered)
}

// GetChart renders the bar chart as a standalone HTML document.
func (h *Handlers) GetChart(c *fiber.Ctx) error {
	rendered, err := h.render(c)
	if err != nil {
		return h.respondError(c, err)
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderChart(&buf, rendered); err != nil {
		log.Error().Err(err).Str("render_id", rendered.RenderID).Msg("Failed to render chart")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render chart",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// GetSummary returns the scalar metrics, the overall category breakdown
// and both summary tables.
func (h *Handlers) GetSummary(c *fiber.Ctx) error {
	rendered, err := h.render(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"render_id":     rendered.RenderID,
		"metrics":       rendered.Metrics,
		"breakdown":     rendered.Breakdown,
		"count_table":   rendered.CountTable,
		"percent_table": rendered.PercentTable,
	})
}

// GetSample returns the bounded random sample of raw classified items.
func (h *Handlers) GetSample(c *fiber.Ctx) error {
	rendered, err := h.render(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"render_id": rendered.RenderID,
		"sample":    rendered.Sample,
	})
}

// GetLanguages lists the retained languages with display names and row
// counts, in count-descending order.
func (h *Handlers) GetLanguages(c *fiber.Ctx) error {
	agg, err := h.source.Aggregate()
	if err != nil {
		return h.respondError(c, err)
	}

	languages := make([]fiber.Map, 0, len(agg.Order))
	for _, code := range agg.Order {
		languages = append(languages, fiber.Map{
			"code":  code,
			"name":  langreg.DisplayName(code),
			"count": agg.RowTotals[code],
		})
	}
	return c.JSON(fiber.Map{"languages": languages})
}

// GetCategories lists the categories present in the data with their
// classification definitions.
func (h *Handlers) GetCategories(c *fiber.Ctx) error {
	agg, err := h.source.Aggregate()
	if err != nil {
		return h.respondError(c, err)
	}

	definitions := article.CategoryDefinitions()
	categories := make([]fiber.Map, 0, len(agg.CategoriesPresent()))
	for _, cat := range agg.CategoriesPresent() {
		categories = append(categories, fiber.Map{
			"category":   cat,
			"color":      presentation.CategoryColor(cat),
			"definition": definitions[cat],
		})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// render runs the shared load-parse-render path for one request.
func (h *Handlers) render(c *fiber.Ctx) (*presentation.RenderedView, error) {
	agg, err := h.source.Aggregate()
	if err != nil {
		return nil, err
	}

	opts, err := presentation.OptionsFromValues(queryValues(c), agg)
	if err != nil {
		return nil, &badRequestError{err}
	}

	return h.renderer.Render(agg, opts)
}

// badRequestError marks query parsing failures.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

// respondError maps pipeline errors to HTTP responses. Empty selections
// are a recoverable warning for the user; schema problems are operator
// errors.
func (h *Handlers) respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, analysis.ErrEmptyCategories) || errors.Is(err, analysis.ErrEmptyLanguages) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"warning": err.Error(),
		})
	}

	var badReq *badRequestError
	if errors.As(err, &badReq) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid query parameters",
			"details": badReq.Error(),
		})
	}

	var formatErr *dataset.DataFormatError
	if errors.As(err, &formatErr) {
		log.Error().Err(err).Msg("Dataset is malformed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Dataset is malformed",
			"details": formatErr.Error(),
		})
	}

	log.Error().Err(err).Msg("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal error",
		"details": err.Error(),
	})
}

// queryValues converts fiber query args into url.Values, preserving
// repeated and explicitly empty parameters.
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}
