// Package api serves entity searches over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SanteonNL/querykit/cmd/querykit/page"
	"github.com/SanteonNL/querykit/cmd/querykit/processor"
	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/types"
)

const maxBodyBytes = 1 << 20

type Router struct {
	handlers map[string]processor.Handler
	gatherer prometheus.Gatherer
	strict   bool
	log      zerolog.Logger
}

type RouterConfig struct {
	Log      zerolog.Logger
	Handlers []processor.Handler
	// Gatherer backs GET /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Strict answers 400 to any malformed query parameter.
	Strict bool
}

func NewRouter(config RouterConfig) (*Router, error) {
	if len(config.Handlers) == 0 {
		return nil, fmt.Errorf("at least one entity handler is required")
	}

	handlers := make(map[string]processor.Handler, len(config.Handlers))
	for _, h := range config.Handlers {
		if h == nil {
			return nil, fmt.Errorf("entity handler is nil")
		}
		if _, exists := handlers[h.Entity()]; exists {
			return nil, fmt.Errorf("duplicate handler for entity %s", h.Entity())
		}
		handlers[h.Entity()] = h
	}

	return &Router{
		handlers: handlers,
		gatherer: config.Gatherer,
		strict:   config.Strict,
		log:      config.Log.With().Str("component", "api").Logger(),
	}, nil
}

func (rt *Router) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(rt.requestID, rt.logRequests, rt.recoverer)

	r.HandleFunc("/api/health", rt.handleHealth).Methods(http.MethodGet)
	if rt.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc("/api/{entity}", rt.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/{entity}/search", rt.handlePostSearch).Methods(http.MethodPost)

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	entities := make([]string, 0, len(rt.handlers))
	for name := range rt.handlers {
		entities = append(entities, name)
	}
	sort.Strings(entities)
	respondWithJSON(w, http.StatusOK, map[string]any{"status": "ok", "entities": entities})
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	h, ok := rt.handler(w, r)
	if !ok {
		return
	}

	req, issues := ParseQuery(r.URL.Query())
	if len(issues) > 0 && rt.strict {
		respondWithJSON(w, http.StatusBadRequest, errorResponse(issues...))
		return
	}

	resp, status := rt.search(r, h, req, issues)
	if status == http.StatusOK {
		resp.Links = page.Links(requestURL(r), resp.Number, resp.Size, resp.TotalPages)
	}
	respondWithJSON(w, status, resp)
}

func (rt *Router) handlePostSearch(w http.ResponseWriter, r *http.Request) {
	h, ok := rt.handler(w, r)
	if !ok {
		return
	}

	var req types.PagedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse(
			page.NewInvalidParameterIssue("", fmt.Sprintf("Invalid search request body: %v", err))))
		return
	}

	resp, status := rt.search(r, h, req, nil)
	respondWithJSON(w, status, resp)
}

func (rt *Router) handler(w http.ResponseWriter, r *http.Request) (processor.Handler, bool) {
	entity := mux.Vars(r)["entity"]
	h, ok := rt.handlers[entity]
	if !ok {
		respondWithJSON(w, http.StatusNotFound, errorResponse(
			page.NewNotFoundIssue(fmt.Sprintf("Entity %s is not supported", entity))))
	}
	return h, ok
}

// search runs req and picks the status: 400 for requests naming unknown
// fields or, in strict mode, carrying invalid clauses; 500 for failures
// reading the source.
func (rt *Router) search(r *http.Request, h processor.Handler, req types.PagedRequest, issues []page.Issue) (page.Response, int) {
	log := zerolog.Ctx(r.Context())

	resp, err := h.Handle(r.Context(), req)

	var (
		rejected *processor.RejectedError
		cfgErr   *query.ConfigurationError
	)
	switch {
	case err == nil:
		resp.Issues = append(issues, resp.Issues...)
		return resp, http.StatusOK
	case errors.As(err, &rejected):
		log.Info().Err(err).Msg("Rejected search with invalid filters")
		return errorResponse(append(issues, rejected.Issues...)...), http.StatusBadRequest
	case errors.As(err, &cfgErr):
		log.Info().Err(err).Msg("Rejected search on unknown field")
		return errorResponse(append(issues, page.NewInvalidParameterIssue(cfgErr.Field, cfgErr.Error()))...), http.StatusBadRequest
	default:
		log.Error().Err(err).Str("entity", h.Entity()).Msg("Search failed")
		return errorResponse(append(issues, page.NewProcessingError(err.Error()))...), http.StatusInternalServerError
	}
}

func errorResponse(issues ...page.Issue) page.Response {
	return page.Response{Data: []struct{}{}, Issues: issues}
}

// requestURL is the absolute URL the client used.
func requestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return &u
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
