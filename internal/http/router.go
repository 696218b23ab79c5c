package http

import (
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/process-dashboard/internal/observability"
)

// NewRouter wires routes and middleware. limiter may be nil to disable rate limiting on /api.
// Requests presenting healthCheckToken are not rate limited, so /health and / keep working
// while outside callers exhaust the bucket.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration, healthCheckToken string) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(RateLimitMiddleware(limiter, healthCheckToken))
	apiRouter.HandleFunc("/test", h.GetAPITest).Methods("GET")

	pages := router.NewRoute().Subrouter()
	pages.Use(TimeoutMiddleware(requestTimeout))
	pages.HandleFunc("/health", h.GetHealth).Methods("GET")
	pages.HandleFunc("/", h.GetIndex).Methods("GET")

	return router
}
