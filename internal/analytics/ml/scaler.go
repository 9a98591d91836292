package ml

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("standard scaler: not fitted")

// StandardScaler rescales each feature to zero mean and unit variance.
// Statistics are computed once at fit time and frozen: scoring data is
// never refit, otherwise the outlier model's stationarity assumption
// would not hold.
type StandardScaler struct {
	mean   []float64
	std    []float64
	fitted bool
}

// NewStandardScaler creates an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fitted reports whether training statistics are available.
func (s *StandardScaler) Fitted() bool {
	return s.fitted
}

// Mean returns a copy of the per-feature training means.
func (s *StandardScaler) Mean() []float64 {
	out := make([]float64, len(s.mean))
	copy(out, s.mean)
	return out
}

// Fit computes per-feature mean and population standard deviation over
// the row matrix, replacing any previous statistics.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.New("standard scaler: empty training set")
	}
	width := len(rows[0])
	if width == 0 {
		return errors.New("standard scaler: zero-width feature vectors")
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("standard scaler: row %d has %d features, want %d", i, len(row), width)
		}
	}

	mean := make([]float64, width)
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range mean {
		mean[j] /= n
	}

	std := make([]float64, width)
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
	}

	s.mean = mean
	s.std = std
	s.fitted = true
	return nil
}

// Transform applies (x - mean) / std per feature using the frozen
// training statistics. A feature with zero training deviation scales
// to 0 for every input; the training set carried no signal on that
// axis, so the query cannot deviate along it.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.TransformVector(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformVector standardizes a single feature vector.
func (s *StandardScaler) TransformVector(vector []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	if len(vector) != len(s.mean) {
		return nil, fmt.Errorf("standard scaler: vector has %d features, want %d", len(vector), len(s.mean))
	}
	out := make([]float64, len(vector))
	for j, v := range vector {
		if s.std[j] == 0 {
			out[j] = 0
			continue
		}
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out, nil
}
