package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/probeworks/slaq/internal/adapter/prometheus"
	"github.com/probeworks/slaq/internal/api"
	"github.com/probeworks/slaq/internal/config"
	"github.com/probeworks/slaq/internal/eval"
	"github.com/probeworks/slaq/internal/logging"
	"github.com/probeworks/slaq/internal/metrics"
	"github.com/probeworks/slaq/internal/runner"
	"github.com/probeworks/slaq/internal/sli"
	"github.com/probeworks/slaq/internal/storage/sqlite"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting slaqd",
		slog.String("prometheus_url", cfg.Prometheus.URL),
		slog.String("db_path", cfg.Storage.DBPath),
		slog.Duration("scrape_interval", cfg.Evaluation.ScrapeInterval),
		slog.Duration("window_length", cfg.Evaluation.WindowLength))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// Load and validate signal definitions
	validator, err := sli.NewValidator(cfg.Evaluation.SchemaPath)
	if err != nil {
		logger.Error("failed to create validator", slog.Any("error", err))
		os.Exit(1)
	}

	defs, validationErrors := validator.LoadAndValidate(cfg.Evaluation.SignalDirectory)
	if len(validationErrors) > 0 {
		for _, verr := range validationErrors {
			logger.Error("invalid signal definition", slog.String("detail", verr.Error()))
		}
		os.Exit(1)
	}
	if len(defs) == 0 {
		logger.Error("no signal definitions found",
			slog.String("dir", cfg.Evaluation.SignalDirectory))
		os.Exit(1)
	}
	logger.Info("loaded signal definitions", slog.Int("count", len(defs)))

	// Schema bootstrap failure is the one unrecoverable startup error
	store, err := sqlite.NewStore(cfg.Storage.DBPath)
	if err != nil {
		logger.Error("failed to initialise indicator store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	client := promadapter.NewClient(promadapter.Config{
		URL:            cfg.Prometheus.URL,
		BearerToken:    cfg.Prometheus.BearerToken,
		SourceLabel:    cfg.Prometheus.SourceLabel,
		Timeout:        cfg.Prometheus.QueryTimeout,
		MaxConcurrency: cfg.Prometheus.MaxConcurrency,
	}, logger)

	evaluator := eval.NewEvaluator(client, logger, cfg.Prometheus.MaxSamples)

	run := runner.New(defs, evaluator, store, logger, runner.Options{
		ScrapeInterval: cfg.Evaluation.ScrapeInterval,
		WindowLength:   cfg.Evaluation.WindowLength,
		MaxConcurrency: int(cfg.Prometheus.MaxConcurrency),
	})

	apiServer := api.NewServer(run, store, cfg.Server.HTTPAddress, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := apiServer.Start(); serveErr != nil {
			logger.Error("API server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- run.Run(ctx)
	}()

	exitCode := 0
	select {
	case err := <-runnerDone:
		if err != nil {
			// The loop itself failed; nothing left worth keeping alive
			logger.Error("evaluation loop failed", slog.Any("error", err))
			exitCode = 1
		}
		stop()
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := <-runnerDone; err != nil {
			logger.Error("evaluation loop failed during drain", slog.Any("error", err))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API server shutdown", slog.Any("error", err))
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	if err := store.Close(); err != nil {
		logger.Warn("store close", slog.Any("error", err))
	}

	logger.Info("slaqd stopped")
	os.Exit(exitCode)
}
