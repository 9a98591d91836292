// Package main is the entry point for the procsight monitoring daemon.
//
// Responsibilities:
//   - Load and validate configuration from YAML and environment variables
//   - Initialize structured logging with rotation
//   - Open the report store and wire the monitoring service
//   - Serve the Prometheus exposition endpoint
//   - Run the sampling loop until SIGINT/SIGTERM, then shut down cleanly
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/analytics/anomaly"
	"github.com/procsight/procsight/internal/collector"
	"github.com/procsight/procsight/internal/config"
	"github.com/procsight/procsight/internal/logging"
	"github.com/procsight/procsight/internal/monitor"
	"github.com/procsight/procsight/internal/store"
)

func main() {
	configPath := flag.String("config", "/etc/procsight/config.yaml", "path to YAML configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := config.NewManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create config manager: %v\n", err)
		os.Exit(1)
	}
	if err := mgr.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := mgr.Validate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := mgr.Get(ctx)

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	reports, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		logger.Fatal("failed to open report store", zap.Error(err))
	}
	defer reports.Close()

	detector := anomaly.New(anomaly.Config{
		HistorySize:     cfg.Detector.HistorySize,
		MinTrainingSize: cfg.Detector.MinTrainingSize,
		Contamination:   cfg.Detector.Contamination,
		Seed:            cfg.Detector.Seed,
		NumTrees:        cfg.Detector.NumTrees,
		SubsampleSize:   cfg.Detector.SubsampleSize,
		Thresholds: anomaly.ReasonThresholds{
			CPUPercent:    cfg.Thresholds.CPUPercent,
			MemoryPercent: cfg.Thresholds.MemoryPercent,
			Connections:   int32(cfg.Thresholds.Connections),
			Threads:       int32(cfg.Thresholds.Threads),
			OpenFiles:     int32(cfg.Thresholds.OpenFiles),
		},
	})

	if cfg.Monitor.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Monitor.MetricsAddr, mux); err != nil {
				logger.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	svc := monitor.New(cfg, collector.NewProcessCollector(logger), detector, reports, logger)
	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("monitor loop failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
