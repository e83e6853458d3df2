// Command inksight-device is the on-device daemon: it watches the
// notebook directory for scene files that have gone idle and rewrites
// their strokes in place.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"

	"inksight/internal/config"
	"inksight/internal/fileproc"
	"inksight/internal/pipeline"
	"inksight/internal/telemetry/logging"
	"inksight/internal/telemetry/tracing"
	"inksight/internal/watcher"
)

const version = "1.0.0"

func main() {
	var (
		configPath  string
		runOnce     bool
		showVersion bool
		enableTrace bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config.yaml (default: INKSIGHT_CONFIG, then well-known locations)")
	flag.BoolVar(&runOnce, "once", false, "Run a single scan pass and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version info")
	flag.BoolVar(&enableTrace, "trace", false, "Start an in-process trace span for every stroke (span ids are not written to the log)")
	flag.Parse()

	if showVersion {
		fmt.Printf("inksight-device v%s\n", version)
		return
	}

	cfg, err := config.LoadDeviceConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut := os.Stderr
	if cfg.Logging.File != "" {
		if f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			logOut = f
			defer f.Close()
		}
	}
	logger := logging.New(logging.NewBase(cfg.Logging.Level, logOut))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.InfoCtx(ctx, "signal received, shutting down")
		cancel()
		<-sigCh
		logger.ErrorCtx(ctx, "second signal received, forcing exit")
		os.Exit(1)
	}()

	w := buildWatcher(cfg, enableTrace, logger)

	if runOnce {
		processed, err := w.ScanOnce(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed).Sprint("scan failed:"), err)
			os.Exit(1)
		}
		fmt.Printf("%s %d file(s) processed\n", color.New(color.FgGreen).Sprint("scan complete:"), processed)
		return
	}

	logger.InfoCtx(ctx, "inksight-device starting",
		"version", version,
		"xochitl_dir", cfg.XochitlDir,
		"poll_interval", cfg.PollInterval,
		"idle_threshold", cfg.IdleThreshold,
		"cloud_handoff", cfg.Cloud.Enabled,
	)

	// The poll loop and config reloads share this goroutine, so the
	// watcher's state is never touched from two threads at once.
	changes, reloadErrs := watchConfig(ctx, configPath, logger)

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "inksight-device stopped")
			return
		case <-ticker.C:
			if _, err := w.ScanOnce(ctx); err != nil {
				logger.ErrorCtx(ctx, "scan cycle failed", "error", err)
			}
		case change, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			cfg = change.Config
			next := buildWatcher(cfg, enableTrace, logger)
			next.AdoptState(w)
			w = next
			ticker.Reset(w.PollInterval)
			logger.InfoCtx(ctx, "config reloaded", "hash", change.Hash)
		case err, ok := <-reloadErrs:
			if !ok {
				reloadErrs = nil
				continue
			}
			logger.ErrorCtx(ctx, "config reload failed", "error", err)
		}
	}
}

func buildWatcher(cfg config.DeviceConfig, enableTrace bool, logger logging.Logger) *watcher.Watcher {
	composer := pipeline.NewComposer(
		cfg.Preset(),
		pipeline.ToolFilter{Skip: cfg.Processing.SkipTools, Only: cfg.Processing.OnlyTools},
		tracing.NewTracer(enableTrace),
	)
	processor := fileproc.NewProcessor(composer, cfg.Processing.KeepBackups)

	var handoff *watcher.HandoffQueue
	if cfg.Cloud.Enabled {
		handoff = watcher.NewHandoffQueue(cfg.Cloud.QueueFile)
	}

	w := watcher.NewWatcher(
		cfg.XochitlDir,
		time.Duration(cfg.PollInterval*float64(time.Second)),
		time.Duration(cfg.IdleThreshold*float64(time.Second)),
		processor,
		handoff,
	)
	w.Log = logger
	return w
}

// watchConfig starts the hot reloader when a concrete config file path
// is known; with defaults-only configuration there is nothing to watch.
func watchConfig(ctx context.Context, explicitPath string, logger logging.Logger) (<-chan config.ConfigChange, <-chan error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv("INKSIGHT_CONFIG")
	}
	if path == "" {
		return nil, nil
	}
	reloader, err := config.NewHotReloader(path)
	if err != nil {
		logger.ErrorCtx(ctx, "config hot reload unavailable", "error", err)
		return nil, nil
	}
	return reloader.Watch(ctx)
}
