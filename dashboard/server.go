// Package dashboard serves the query form, result tables and bar charts over
// the scraped best-seller database.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Querier is the read side of the store used by the dashboard.
type Querier interface {
	Query(ctx context.Context, q store.Query) ([]models.ResultRow, error)
	Categories(ctx context.Context) ([]string, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Querier
	templates *template.Template
	metrics   *Metrics
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a dashboard server with all routes configured.
func NewServer(q Querier, logger *slog.Logger) (*Server, error) {
	if q == nil {
		return nil, errors.New("dashboard: querier is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		store:     q,
		templates: tmpl,
		metrics:   NewMetrics(),
		router:    chi.NewRouter(),
		logger:    logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/results", s.handleResults)
	s.router.Get("/healthz", s.handleHealthCheck)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// indexPageData feeds the query form.
type indexPageData struct {
	Categories []string
	SortFields []string
}

// handleIndex serves the query form.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories(r.Context())
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", indexPageData{
		Categories: append([]string{store.AllCategories}, categories...),
		SortFields: store.SortFields,
	})
}

// resultsPageData feeds the results table.
type resultsPageData struct {
	Category string
	Sort     string
	Rows     []models.ResultRow
}

// plotPageData feeds the bar chart. Chart is JSON-encoded by the template.
type plotPageData struct {
	Category string
	Sort     string
	Chart    chartData
}

type chartData struct {
	X []string                   `json:"x"`
	Y []models.Optional[float64] `json:"y"`
}

// handleResults runs a query and renders a table or a bar chart.
// POST /results
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	q := store.Query{
		Category:  r.PostFormValue("category"),
		Sort:      r.PostFormValue("sort"),
		Direction: r.PostFormValue("dir"),
	}
	sort := store.ResolveSort(q.Sort)

	start := time.Now()
	rows, err := s.store.Query(r.Context(), q)
	s.metrics.ObserveQuery(sort, time.Since(start), err)
	switch {
	case errors.Is(err, store.ErrInvalidDirection):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.logger.Error("Failed to query books", "error", err, "category", q.Category, "sort", sort)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.PostFormValue("plot") != "" {
		chart := chartData{
			X: make([]string, 0, len(rows)),
			Y: make([]models.Optional[float64], 0, len(rows)),
		}
		for _, row := range rows {
			chart.X = append(chart.X, row.Title.String())
			chart.Y = append(chart.Y, row.SortValue)
		}
		s.render(w, "plot.html", plotPageData{Category: q.Category, Sort: sort, Chart: chart})
		return
	}
	s.render(w, "results.html", resultsPageData{Category: q.Category, Sort: sort, Rows: rows})
}

// render buffers the page and writes it only when execution succeeds.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to execute template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
