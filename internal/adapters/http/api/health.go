package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/metrics"
)

// ReadyProvider reports the state of the active dataset.
type ReadyProvider interface {
	Ready() types.Ready
}

// HealthHandler serves liveness metrics and readiness.
type HealthHandler struct {
	ready   ReadyProvider
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ready ReadyProvider) *HealthHandler {
	return &HealthHandler{
		ready:   ready,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth serves Prometheus metrics from the service registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleReady handles GET /readyz. It returns 503 until a dataset is loaded.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	st := h.ready.Ready()
	status := http.StatusOK
	if st.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, st)
}
