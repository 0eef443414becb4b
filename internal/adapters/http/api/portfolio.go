package api

import (
	"net/http"
)

// PortfolioHandler serves the profile, experience, projects and skills.
type PortfolioHandler struct {
	deps PortfolioDependencies
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(deps PortfolioDependencies) *PortfolioHandler {
	return &PortfolioHandler{deps: deps}
}

// HandleGetPortfolio handles GET /api/portfolio requests.
func (h *PortfolioHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_portfolio"
	p, err := h.deps.Portfolio(r.Context())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, p)
}

// GitHubHandler serves the contribution dashboard.
type GitHubHandler struct {
	deps GitHubDependencies
}

// NewGitHubHandler creates a new dashboard handler.
func NewGitHubHandler(deps GitHubDependencies) *GitHubHandler {
	return &GitHubHandler{deps: deps}
}

// HandleGetDashboard handles GET /api/github requests. Partial data is
// still a 200; the sources block tells which figures are missing.
func (h *GitHubHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dashboard"
	d, err := h.deps.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, d)
}
