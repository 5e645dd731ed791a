package api

import (
	"net/http"

	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthProvider reports per model set load state.
type HealthProvider interface {
	Health() map[string]service.SetHealth
}

// Overall health states.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

type healthResponse struct {
	Status    string                       `json:"status"`
	ModelSets map[string]service.SetHealth `json:"model_sets"`
}

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	deps HealthProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthProvider) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleMetrics handles GET /healthz with the Prometheus exposition.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// HandleHealth handles GET /api/health. Any model set that is not fully
// loaded makes the overall status degraded; the endpoint still answers 200.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, NewKind("api.health", ErrMethodNotAllowed), nil)
		return
	}
	sets := h.deps.Health()
	resp := healthResponse{Status: StatusOK, ModelSets: sets}
	for _, s := range sets {
		if s.State != "loaded" {
			resp.Status = StatusDegraded
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
