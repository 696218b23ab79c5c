package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/process-dashboard/internal/config"
	"github.com/kjstillabower/process-dashboard/internal/lifecycle"
	"github.com/kjstillabower/process-dashboard/internal/observability"
	"github.com/kjstillabower/process-dashboard/internal/probe"
	"github.com/kjstillabower/process-dashboard/internal/reqctx"
	"github.com/kjstillabower/process-dashboard/internal/views"
)

// HandlerConfig holds the dependencies of Handler.
type HandlerConfig struct {
	Prober      probe.Prober
	APIEndpoint string // shown on the status page
	Simulation  config.SimulationDefaults
	Version     string
	Logger      *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler serves the API test endpoint, health and the status page.
type Handler struct {
	prober      probe.Prober
	apiEndpoint string
	simulation  config.SimulationDefaults
	version     string
	logger      *zap.Logger
	now         func() time.Time

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		prober:      cfg.Prober,
		apiEndpoint: cfg.APIEndpoint,
		simulation:  cfg.Simulation,
		version:     cfg.Version,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.version == "" {
		h.version = "dev"
	}
	return h
}

// GetAPITest handles GET /api/test, the endpoint the liveness probe targets.
func (h *Handler) GetAPITest(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "shutting-down",
			"message": "API draining",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  probe.StatusOK,
		"message": "API fonctionne",
		"endpoints": map[string]string{
			"/api/test": "Test API",
			"/health":   "Service health",
			"/metrics":  "Prometheus metrics",
			"/":         "Status page",
		},
	})
}

type healthResult struct {
	status     string
	statusCode int
	reason     string
	apiCheck   string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus(r.Context())

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{}
	if result.apiCheck != "" {
		checks["api"] = result.apiCheck
	}
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":    result.status,
		"service":   observability.ServiceName,
		"version":   h.version,
		"checks":    checks,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus decides: shutting-down > degraded (API probe failed) > healthy.
func (h *Handler) computeHealthStatus(ctx context.Context) healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{status: "shutting-down", statusCode: http.StatusServiceUnavailable, reason: "signal"}
	}
	if err := h.prober.Probe(ctx); err != nil {
		reqctx.Logger(ctx, h.logger).Warn("health probe failed", zap.Error(err))
		return healthResult{
			status:     "degraded",
			statusCode: http.StatusServiceUnavailable,
			reason:     string(probe.CategorizeError(err)),
			apiCheck:   "unhealthy",
		}
	}
	return healthResult{status: "healthy", statusCode: http.StatusOK, apiCheck: "healthy"}
}

// GetIndex handles GET /, rendering the status page with the current API availability.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	available := h.prober.CheckAPIHealth(r.Context())
	data := views.NewIndexData(h.simulation, available, h.apiEndpoint, h.now())

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, data); err != nil {
		reqctx.Logger(r.Context(), h.logger).Error("render status page", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "RENDER_FAILED", "Unable to render page")
		return
	}

	label := "available"
	if !available {
		label = "unavailable"
	}
	observability.PageRendersTotal.WithLabelValues(label).Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error":{"code","message","requestId"}}; requestId is the correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": reqctx.CorrelationID(r.Context()),
		},
	})
}
