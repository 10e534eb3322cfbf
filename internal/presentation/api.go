package presentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/pkg/article"
	"github.com/wikilytics/wikiclass/pkg/langreg"
)

// API provides standalone HTTP endpoints over the renderer, for
// consumers that only need the JSON views without the dashboard app.
type API struct {
	renderer *Renderer
	source   Source
	config   *APIConfig
}

// APIConfig configures the presentation API
type APIConfig struct {
	Port       int    `json:"port" yaml:"port"`
	Host       string `json:"host" yaml:"host"`
	BasePath   string `json:"base_path" yaml:"base_path"`
	EnableCORS bool   `json:"enable_cors" yaml:"enable_cors"`
}

// NewAPI creates a new presentation API
func NewAPI(renderer *Renderer, source Source, config *APIConfig) *API {
	if config == nil {
		config = &APIConfig{
			Port:       8081,
			Host:       "localhost",
			BasePath:   "/api/v1",
			EnableCORS: true,
		}
	}
	return &API{
		renderer: renderer,
		source:   source,
		config:   config,
	}
}

// Start starts the API server
func (api *API) Start() error {
	handler := api.addMiddleware(api.Routes())

	addr := fmt.Sprintf("%s:%d", api.config.Host, api.config.Port)
	log.Info().Str("address", addr).Msg("Starting presentation API")

	return http.ListenAndServe(addr, handler)
}

// Routes configures the API routes
func (api *API) Routes() *mux.Router {
	router := mux.NewRouter()
	base := router.PathPrefix(api.config.BasePath).Subrouter()

	base.HandleFunc("/view", api.getView).Methods("GET")
	base.HandleFunc("/sample", api.getSample).Methods("GET")
	base.HandleFunc("/statistics", api.getStatistics).Methods("GET")
	base.HandleFunc("/health", api.healthCheck).Methods("GET")

	return router
}

// addMiddleware adds middleware to the router
func (api *API) addMiddleware(router http.Handler) http.Handler {
	if api.config.EnableCORS {
		router = api.corsMiddleware(router)
	}
	router = api.loggingMiddleware(router)
	return router
}

// Handler implementations

func (api *API) getView(w http.ResponseWriter, r *http.Request) {
	rendered, ok := api.render(w, r)
	if !ok {
		return
	}
	api.sendJSON(w, http.StatusOK, rendered)
}

func (api *API) getSample(w http.ResponseWriter, r *http.Request) {
	rendered, ok := api.render(w, r)
	if !ok {
		return
	}
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"render_id": rendered.RenderID,
		"sample":    rendered.Sample,
	})
}

func (api *API) getStatistics(w http.ResponseWriter, r *http.Request) {
	agg, err := api.source.Aggregate()
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "Failed to load dataset", err)
		return
	}

	languages := make([]map[string]interface{}, 0, len(agg.Order))
	for _, code := range agg.Order {
		languages = append(languages, map[string]interface{}{
			"code":  code,
			"name":  langreg.DisplayName(code),
			"count": agg.RowTotals[code],
		})
	}

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"total_articles": agg.TotalArticles(),
		"languages":      languages,
		"categories":     agg.CategoriesPresent(),
		"definitions":    article.CategoryDefinitions(),
	})
}

func (api *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "wikiclass-presentation",
		"timestamp": time.Now().UTC(),
	})
}

// render runs the shared load-parse-render path. A false return means a
// response was already written.
func (api *API) render(w http.ResponseWriter, r *http.Request) (*RenderedView, bool) {
	agg, err := api.source.Aggregate()
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, "Failed to load dataset", err)
		return nil, false
	}

	opts, err := OptionsFromValues(r.URL.Query(), agg)
	if err != nil {
		api.sendError(w, http.StatusBadRequest, "Invalid query parameters", err)
		return nil, false
	}

	rendered, err := api.renderer.Render(agg, opts)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyCategories) || errors.Is(err, analysis.ErrEmptyLanguages) {
			api.sendJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"warning": err.Error(),
			})
			return nil, false
		}
		api.sendError(w, http.StatusInternalServerError, "Failed to render view", err)
		return nil, false
	}
	return rendered, true
}

func (api *API) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (api *API) sendError(w http.ResponseWriter, status int, message string, err error) {
	log.Error().Err(err).Int("status", status).Msg(message)
	api.sendJSON(w, status, map[string]interface{}{
		"error":   message,
		"details": err.Error(),
	})
}

// Middleware

func (api *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (api *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
