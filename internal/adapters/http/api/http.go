// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/okian/folio/internal/content"
	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/types"
	"github.com/okian/folio/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds request bodies; the message is capped well below it.
const maxBodyBytes = 16 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PortfolioDependencies
	GitHubDependencies
	ContactDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	portfolioHandler *PortfolioHandler
	githubHandler    *GitHubHandler
	contactHandler   *ContactHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		portfolioHandler: NewPortfolioHandler(deps),
		githubHandler:    NewGitHubHandler(deps),
		contactHandler:   NewContactHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/portfolio", MetricsMiddleware(s.portfolioHandler.HandleGetPortfolio, "portfolio"))
	mux.HandleFunc("GET /api/github", MetricsMiddleware(s.githubHandler.HandleGetDashboard, "github"))

	mux.HandleFunc("POST /api/contact", MetricsMiddleware(s.contactHandler.HandleOpen, "contact_open"))
	mux.HandleFunc("GET /api/contact/{id}", MetricsMiddleware(s.contactHandler.HandleGet, "contact_get"))
	mux.HandleFunc("PUT /api/contact/{id}", MetricsMiddleware(s.contactHandler.HandleUpdate, "contact_update"))
	mux.HandleFunc("DELETE /api/contact/{id}", MetricsMiddleware(s.contactHandler.HandleClose, "contact_close"))
	mux.HandleFunc("POST /api/contact/{id}/submit", MetricsMiddleware(s.contactHandler.HandleSubmit, "contact_submit"))
	mux.HandleFunc("POST /api/contact/{id}/dismiss", MetricsMiddleware(s.contactHandler.HandleDismiss, "contact_dismiss"))
}

// PortfolioDependencies serves the static site content.
type PortfolioDependencies interface {
	Portfolio(ctx context.Context) (*content.Portfolio, error)
}

// GitHubDependencies serves the open source dashboard.
type GitHubDependencies interface {
	Dashboard(ctx context.Context) (model.Dashboard, error)
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		resp.Fields = make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			resp.Fields[field] = ferr.Error()
		}
	}
	if status == http.StatusTooManyRequests {
		resp.Message = contact.MessageBusy
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps the error kinds returned by the service layer.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, contact.ErrClosed):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, contact.ErrInvalidForm), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, types.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, contact.ErrBusy), errors.Is(err, contact.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, types.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", err)
	default:
		// the cause stays in the log; clients only learn that it failed
		logger.Get().Named("api").Error(context.Background(), "unexpected service error", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", ErrInternal)
	}
}
