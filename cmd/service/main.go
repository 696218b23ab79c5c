package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/process-dashboard/internal/config"
	httphandler "github.com/kjstillabower/process-dashboard/internal/http"
	"github.com/kjstillabower/process-dashboard/internal/lifecycle"
	"github.com/kjstillabower/process-dashboard/internal/observability"
	"github.com/kjstillabower/process-dashboard/internal/probe"
	"github.com/kjstillabower/process-dashboard/internal/views"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	if err := views.LoadTemplates(); err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	// lets the service's own API checks through the /api rate limiter
	healthCheckToken := uuid.New().String()
	prober, err := probe.NewClient(cfg.APIBaseURL, cfg.APIProbePath, logger.Named("probe"), probe.WithCheckToken(healthCheckToken))
	if err != nil {
		logger.Fatal("api probe", zap.Error(err))
	}
	logger.Info("api probe configured", zap.String("endpoint", prober.Endpoint()))

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	handler := httphandler.NewHandler(httphandler.HandlerConfig{
		Prober:      prober,
		APIEndpoint: prober.Endpoint(),
		Simulation:  cfg.Simulation,
		Version:     version,
		Logger:      logger,
	})
	router := httphandler.NewRouter(handler, logger, limiter, cfg.RequestTimeout, healthCheckToken)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	logger.Info("shutdown complete")
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer flushCancel()
	if err := observability.FlushTelemetry(flushCtx, logger); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
}
