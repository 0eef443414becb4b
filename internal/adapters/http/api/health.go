package api

import (
	"net/http"
	"time"

	"github.com/okian/folio/internal/domain/types"
	"github.com/okian/folio/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now(), now: time.Now}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, types.Health{
		Status: "ok",
		Uptime: now.Sub(h.started).Round(time.Second).String(),
		Time:   now.UTC(),
	})
}

// MetricsHandler serves the custom registry in the Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}

// StatsProvider reports runtime statistics of the service.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the provider's statistics as a JSON object.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler. A nil provider yields an
// empty object.
func NewStatsHandler(p StatsProvider) *StatsHandler {
	return &StatsHandler{provider: p}
}

// HandleStats handles GET /stats requests. The figures change on every
// call, so they are never cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]interface{}{}
	if h.provider != nil {
		stats = h.provider.GetStats()
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stats)
}
