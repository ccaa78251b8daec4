package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"shopfinder/src/geocode"
	"shopfinder/src/ingest"
	"shopfinder/src/metrics"
	"shopfinder/src/query"
	"shopfinder/src/search"
	"shopfinder/src/token"
	"shopfinder/src/types"
)

const pageSize = 10

var validate = validator.New()

type SearchRequest struct {
	SearchQuery string  `json:"searchQuery" validate:"required"`
	DistanceKm  float64 `json:"distanceKm" validate:"omitempty,gt=0"`
}

type AcquireRequest struct {
	SearchQuery string `json:"searchQuery" validate:"required"`
}

type ShopsPage struct {
	Name     string
	Total    int
	Shops    []types.ShopRecord
	Page     int
	LastPage int
	PrevPage int
	NextPage int
}

type Server struct {
	Search          *search.Service
	Pipeline        *ingest.Pipeline
	Store           types.CatalogStore
	Template        *template.Template
	Metrics         *metrics.Registry
	DefaultRadiusKm float64
}

// RegisterRoutes wires every HTTP route. The acquire endpoint triggers a
// catalog refresh on demand and sits behind the JWT middleware.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	r.HandleFunc("/shops", s.handleShopsHTML).Methods(http.MethodGet)
	r.HandleFunc("/api/shops", s.handleShopsAPI).Methods(http.MethodGet)
	r.HandleFunc("/api/get_token", token.GetToken).Methods(http.MethodPost)
	r.Handle("/api/acquire", token.JwtMiddleware(http.HandlerFunc(s.handleAcquire))).Methods(http.MethodPost)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Search text required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Search text required")
		return
	}
	if req.DistanceKm == 0 {
		req.DistanceKm = s.DefaultRadiusKm
	}

	result, err := s.Search.Search(r.Context(), req.SearchQuery, req.DistanceKm)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, query.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "Search text required")
	case errors.Is(err, geocode.ErrLocationNotFound):
		writeError(w, http.StatusBadRequest, "Location not found")
	default:
		slog.Error("search failed", "query", req.SearchQuery, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleAcquire refreshes the catalog for one phrase and reports the summary.
// Provider failures come back in the summary, not as an HTTP error.
func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var req AcquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Search text required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Search text required")
		return
	}

	summary, err := s.Pipeline.Acquire(r.Context(), req.SearchQuery)
	if err != nil {
		slog.Warn("manual acquisition degraded", "query", req.SearchQuery, "err", err)
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) shopsPage(r *http.Request) (*ShopsPage, error) {
	pageStr := r.URL.Query().Get("page")
	if pageStr == "" {
		pageStr = "1"
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return nil, errors.New("invalid page number")
	}

	shops, total, err := s.Store.List(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	lastPage := (total + pageSize - 1) / pageSize

	data := &ShopsPage{
		Name:     "Shops",
		Shops:    shops,
		Total:    total,
		Page:     page,
		LastPage: lastPage,
	}
	if page > 1 {
		data.PrevPage = page - 1
	}
	if page < lastPage {
		data.NextPage = page + 1
	}
	return data, nil
}

func (s *Server) handleShopsHTML(w http.ResponseWriter, r *http.Request) {
	data, err := s.shopsPage(r)
	if err != nil {
		http.Error(w, "Invalid 'page' value", http.StatusBadRequest)
		return
	}

	if err := s.Template.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

func (s *Server) handleShopsAPI(w http.ResponseWriter, r *http.Request) {
	data, err := s.shopsPage(r)
	if err != nil {
		http.Error(w, "Invalid 'page' value", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func LoadTemplate(filename string) (*template.Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return template.New("shops").Funcs(template.FuncMap{
		"sub": func(a, b int) int { return a - b },
		"add": func(a, b int) int { return a + b },
	}).Parse(string(data))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
