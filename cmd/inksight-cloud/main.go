// Command inksight-cloud is the multi-tenant transform service: it
// accepts scene-file uploads, processes them on a background worker,
// and serves the results back per tenant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"inksight/internal/cloudproc"
	"inksight/internal/config"
	"inksight/internal/httpapi"
	"inksight/internal/jobqueue"
	"inksight/internal/ratelimit"
	"inksight/internal/storage"
	"inksight/internal/telemetry/logging"
	"inksight/internal/telemetry/metrics"
	"inksight/internal/telemetry/tracing"
)

func main() {
	var (
		metricsAddr    string
		metricsBackend string
		traceBackend   string
		tracePercent   float64
		showVersion    bool
	)
	flag.StringVar(&metricsAddr, "metrics", "", "Expose Prometheus metrics on address (e.g. :9090)")
	flag.StringVar(&metricsBackend, "metrics-backend", "prom", "Metrics backend: prom|otel|noop")
	flag.StringVar(&traceBackend, "trace-backend", "internal", "Trace backend: internal|otel")
	flag.Float64Var(&tracePercent, "trace-percent", 0, "Percentage of strokes to trace (0 disables; internal backend only)")
	flag.BoolVar(&showVersion, "version", false, "Show version info")
	flag.Parse()

	if showVersion {
		fmt.Printf("inksight-cloud v%s\n", httpapi.Version)
		return
	}

	cfg := config.LoadCloudConfig()
	logger := logging.New(logging.NewBase(cfg.LogLevel, os.Stderr))

	store, err := storage.New(cfg.StorageDir)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	provider := metrics.NewProvider(metricsBackend)
	appMetrics := metrics.NewAppMetrics(provider)

	var tracer tracing.Tracer
	if traceBackend == "otel" {
		tracer = tracing.NewOTelTracer(nil)
	} else {
		tracer = tracing.NewAdaptiveTracer(func() float64 { return tracePercent })
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.InfoCtx(ctx, "signal received, draining")
		cancel()
		<-sigCh
		logger.ErrorCtx(ctx, "second signal received, forcing exit")
		os.Exit(1)
	}()

	processor := cloudproc.NewProcessor(store, tracer, appMetrics)
	queue := jobqueue.New(ctx, processor.Process, jobqueue.WithMetrics(appMetrics))

	limiter := ratelimit.NewTenantLimiter(ratelimit.Config{})

	if metricsAddr != "" {
		if prom, ok := provider.(*metrics.PrometheusProvider); ok {
			mux := http.NewServeMux()
			mux.Handle("/metrics", prom.MetricsHandler())
			srv := &http.Server{Addr: metricsAddr, Handler: mux}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancelShutdown()
				_ = srv.Shutdown(shutdownCtx)
			}()
			go func() {
				logger.InfoCtx(ctx, "metrics listening", "addr", metricsAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorCtx(ctx, "metrics server failed", "error", err)
				}
			}()
		} else {
			logger.InfoCtx(ctx, "metrics address ignored", "reason", "backend has no scrape handler", "backend", metricsBackend)
		}
	}

	server := httpapi.NewServer(cfg, queue, store, limiter, appMetrics, logger)

	logger.InfoCtx(ctx, "inksight-cloud starting",
		"version", httpapi.Version,
		"addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"storage_dir", cfg.StorageDir,
		"max_file_size_mb", cfg.MaxFileSizeMB,
		"api_keys", len(cfg.ValidAPIKeys()),
	)
	if len(cfg.ValidAPIKeys()) == 0 {
		logger.WarnCtx(ctx, "no API keys configured, running in development mode")
	}

	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
	logger.InfoCtx(ctx, "inksight-cloud stopped")
}
