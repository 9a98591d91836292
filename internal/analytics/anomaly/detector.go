// Package anomaly implements the per-process anomaly detection
// pipeline: a bounded history of sample batches, a frozen feature
// standardizer, an isolation-forest outlier model, and a rule-based
// reason classifier for flagged processes.
//
// The detector is single-threaded by contract. One detector instance
// belongs to one monitoring loop; the loop serializes the whole
// train-then-detect cycle, so the detector carries no locking of its
// own.
package anomaly

import (
	"errors"
	"fmt"

	"github.com/procsight/procsight/internal/analytics/ml"
	"github.com/procsight/procsight/internal/models"
)

var (
	// ErrInsufficientData is returned by Train when the accumulated
	// history flattens to fewer vectors than the training minimum.
	// The caller retries after more batches arrive; prior model
	// state, if any, is left intact.
	ErrInsufficientData = errors.New("anomaly: insufficient data for training")

	// ErrNotTrained is returned by Detect before the first
	// successful Train. The result is empty, never a panic.
	ErrNotTrained = errors.New("anomaly: model not trained")
)

// Config holds detector construction parameters.
type Config struct {
	// HistorySize is the batch capacity of the history buffer.
	HistorySize int

	// MinTrainingSize is the minimum flattened vector count required
	// by Train. Zero means HistorySize, i.e. training implicitly
	// waits for a full buffer.
	MinTrainingSize int

	// Contamination is the expected anomalous fraction of the
	// training population. Zero selects the default.
	Contamination float64

	// Seed fixes the model's random source for reproducibility.
	Seed int64

	// NumTrees and SubsampleSize tune the isolation forest; zero
	// selects the ml package defaults.
	NumTrees      int
	SubsampleSize int

	// Thresholds configures the reason classifier; the zero value
	// selects DefaultReasonThresholds.
	Thresholds ReasonThresholds
}

// DefaultConfig returns the stock detector parameters.
func DefaultConfig() Config {
	return Config{
		HistorySize:   100,
		Contamination: 0.1,
		Seed:          42,
		Thresholds:    DefaultReasonThresholds(),
	}
}

// Detector owns the fitted scaler and ensemble for one monitoring
// loop. Train replaces both as a unit: the new scaler and forest are
// built off to the side and swapped in only when both are complete, so
// a failed training run never leaves mixed state behind.
type Detector struct {
	cfg        Config
	history    *batchRing
	scaler     *ml.StandardScaler
	forest     *ml.IsolationForest
	thresholds ReasonThresholds
	trained    bool
}

// New creates a detector with an empty history buffer.
func New(cfg Config) *Detector {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	if cfg.MinTrainingSize <= 0 {
		cfg.MinTrainingSize = cfg.HistorySize
	}
	if cfg.Contamination <= 0 {
		cfg.Contamination = DefaultConfig().Contamination
	}
	thresholds := cfg.Thresholds
	if thresholds == (ReasonThresholds{}) {
		thresholds = DefaultReasonThresholds()
	}
	return &Detector{
		cfg:        cfg,
		history:    newBatchRing(cfg.HistorySize),
		thresholds: thresholds,
	}
}

// Trained reports whether a successful Train has completed.
func (d *Detector) Trained() bool {
	return d.trained
}

// HistoryLen returns the number of batches currently held.
func (d *Detector) HistoryLen() int {
	return d.history.len()
}

// History returns the buffered batches in chronological order.
func (d *Detector) History() [][]models.ProcessMetrics {
	return d.history.snapshot()
}

// AppendBatch records one sampling pass. Always accepted; the oldest
// batch is evicted once the buffer is full.
func (d *Detector) AppendBatch(batch []models.ProcessMetrics) {
	d.history.push(batch)
}

// Train fits the standardizer and the outlier model on the accumulated
// history. It fails with ErrInsufficientData until the flattened
// history reaches the configured minimum.
func (d *Detector) Train() error {
	rows := d.history.flatten()
	if len(rows) < d.cfg.MinTrainingSize {
		return fmt.Errorf("%w: have %d vectors, need %d", ErrInsufficientData, len(rows), d.cfg.MinTrainingSize)
	}

	scaler := ml.NewStandardScaler()
	if err := scaler.Fit(rows); err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	scaled, err := scaler.Transform(rows)
	if err != nil {
		return fmt.Errorf("scale training data: %w", err)
	}

	forest := ml.NewIsolationForest(ml.Options{
		NumTrees:      d.cfg.NumTrees,
		SubsampleSize: d.cfg.SubsampleSize,
		Contamination: d.cfg.Contamination,
		Seed:          d.cfg.Seed,
	})
	if err := forest.Fit(scaled); err != nil {
		return fmt.Errorf("fit isolation forest: %w", err)
	}

	// Both halves built; swap as a unit.
	d.scaler = scaler
	d.forest = forest
	d.trained = true
	return nil
}

// Detect classifies every sample in the batch against the trained
// model and annotates flagged samples with a reason. The scaler is
// applied with its frozen training statistics.
func (d *Detector) Detect(batch []models.ProcessMetrics) ([]models.AnomalyRecord, error) {
	if !d.trained {
		return nil, ErrNotTrained
	}

	var anomalies []models.AnomalyRecord
	for i, p := range batch {
		scaled, err := d.scaler.TransformVector(p.FeatureVector())
		if err != nil {
			return nil, fmt.Errorf("sample %d (pid %d): %w", i, p.PID, err)
		}
		flagged, score, err := d.forest.Predict(scaled)
		if err != nil {
			return nil, fmt.Errorf("sample %d (pid %d): %w", i, p.PID, err)
		}
		if !flagged {
			continue
		}
		anomalies = append(anomalies, models.AnomalyRecord{
			ProcessMetrics: p,
			Reason:         d.thresholds.Reason(p),
			Score:          score,
		})
	}
	return anomalies, nil
}
