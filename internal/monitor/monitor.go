// Package monitor drives the sampling/training/detection cycle. The
// detector itself is single-threaded by contract; this service is the
// one goroutine that touches it, so the whole fit-then-score cycle is
// naturally serialized.
package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/analytics/anomaly"
	"github.com/procsight/procsight/internal/collector"
	"github.com/procsight/procsight/internal/config"
	"github.com/procsight/procsight/internal/metrics"
	"github.com/procsight/procsight/internal/models"
	"github.com/procsight/procsight/internal/store"
)

// Service runs the periodic monitoring loop.
type Service struct {
	cfg      *config.Config
	source   collector.Collector
	detector *anomaly.Detector
	reports  store.Store
	logger   *zap.Logger

	passes           int
	passesSinceTrain int
}

// New wires a monitoring service. The store may be nil when report
// persistence is disabled.
func New(cfg *config.Config, source collector.Collector, detector *anomaly.Detector, reports store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		source:   source,
		detector: detector,
		reports:  reports,
		logger:   logger,
	}
}

// Run executes sampling passes until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Monitor.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("monitor started",
		zap.Duration("interval", interval),
		zap.Int("history_size", s.cfg.Detector.HistorySize),
		zap.Float64("contamination", s.cfg.Detector.Contamination),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("sampling pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce executes a single sampling pass: collect, append, train when
// due, detect, persist the report.
func (s *Service) RunOnce(ctx context.Context) error {
	batch, err := s.source.Collect(ctx)
	if err != nil {
		metrics.CollectionErrors.Inc()
		s.logger.Warn("process collection failed", zap.Error(err))
		return nil // transient; keep the loop alive
	}

	s.passes++
	metrics.SamplingPassesTotal.Inc()
	metrics.ProcessesSampled.Set(float64(len(batch)))

	s.detector.AppendBatch(batch)
	s.passesSinceTrain++

	if s.trainingDue() {
		s.train()
	}

	if !s.detector.Trained() {
		metrics.DetectionRunsTotal.WithLabelValues("not_trained").Inc()
		s.logger.Debug("detection skipped, model not trained",
			zap.Int("history_batches", s.detector.HistoryLen()))
		return nil
	}

	started := time.Now()
	anomalies, err := s.detector.Detect(batch)
	if err != nil {
		metrics.DetectionRunsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.DetectionRunsTotal.WithLabelValues("success").Inc()
	metrics.DetectionDuration.Observe(time.Since(started).Seconds())
	metrics.AnomaliesFlagged.Add(float64(len(anomalies)))

	report := anomaly.BuildReport(len(batch), anomalies)
	s.persist(ctx, &report)

	if len(anomalies) > 0 {
		s.logger.Info("anomalies detected",
			zap.Int("count", len(anomalies)),
			zap.Int("total_processes", report.TotalProcesses),
			zap.String("report_id", report.ID),
		)
	}
	return nil
}

// trainingDue reports whether this pass should (re)fit the model: the
// first fit waits for a full history buffer, later fits run on the
// configured pass interval.
func (s *Service) trainingDue() bool {
	if !s.detector.Trained() {
		return s.detector.HistoryLen() >= s.cfg.Detector.HistorySize
	}
	return s.passesSinceTrain >= s.cfg.Monitor.RetrainIntervalPasses
}

func (s *Service) train() {
	started := time.Now()
	err := s.detector.Train()
	switch {
	case err == nil:
		metrics.TrainingRunsTotal.WithLabelValues("success").Inc()
		metrics.TrainingDuration.Observe(time.Since(started).Seconds())
		s.passesSinceTrain = 0
		s.logger.Info("model trained",
			zap.Int("history_batches", s.detector.HistoryLen()),
			zap.Duration("took", time.Since(started)))
	case errors.Is(err, anomaly.ErrInsufficientData):
		metrics.TrainingRunsTotal.WithLabelValues("insufficient_data").Inc()
		s.logger.Debug("training deferred", zap.Error(err))
	default:
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		s.logger.Error("training failed", zap.Error(err))
	}
}

// persist writes the report to every configured sink. Sink failures
// are logged, never fatal to the loop.
func (s *Service) persist(ctx context.Context, report *models.Report) {
	if s.reports != nil {
		if err := s.reports.SaveReport(ctx, report); err != nil {
			metrics.ReportsPersisted.WithLabelValues("sqlite", "error").Inc()
			s.logger.Error("report persistence failed", zap.Error(err))
		} else {
			metrics.ReportsPersisted.WithLabelValues("sqlite", "success").Inc()
		}

		if s.passes%s.cfg.Monitor.RetrainIntervalPasses == 0 {
			if pruned, err := s.reports.PruneOlderThan(ctx, s.cfg.Database.RetentionDays); err != nil {
				s.logger.Warn("report pruning failed", zap.Error(err))
			} else if pruned > 0 {
				s.logger.Info("pruned old reports", zap.Int64("removed", pruned))
			}
		}
	}

	if s.cfg.Monitor.ReportDir != "" {
		if path, err := store.ExportReportFile(s.cfg.Monitor.ReportDir, report); err != nil {
			metrics.ReportsPersisted.WithLabelValues("file", "error").Inc()
			s.logger.Error("report export failed", zap.Error(err))
		} else {
			metrics.ReportsPersisted.WithLabelValues("file", "success").Inc()
			s.logger.Debug("report exported", zap.String("path", path))
		}
	}
}
