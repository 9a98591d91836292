package ml

import (
	"errors"
	"math"
	"testing"
)

func TestStandardScaler_NotFitted(t *testing.T) {
	scaler := NewStandardScaler()

	if scaler.Fitted() {
		t.Fatal("new scaler should not be fitted")
	}
	if _, err := scaler.TransformVector([]float64{1, 2}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("TransformVector before Fit: got %v, want ErrNotFitted", err)
	}
}

func TestStandardScaler_MeanMapsToZero(t *testing.T) {
	rows := [][]float64{
		{1, 10, 100},
		{2, 20, 200},
		{3, 30, 300},
	}
	scaler := NewStandardScaler()
	if err := scaler.Fit(rows); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	got, err := scaler.TransformVector([]float64{2, 20, 200})
	if err != nil {
		t.Fatalf("TransformVector: %v", err)
	}
	for i, v := range got {
		if math.Abs(v) > 1e-9 {
			t.Errorf("feature %d: mean vector should map to 0, got %f", i, v)
		}
	}
}

func TestStandardScaler_ZeroVariance(t *testing.T) {
	// A constant feature must scale to 0, never NaN or Inf.
	rows := [][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	}
	scaler := NewStandardScaler()
	if err := scaler.Fit(rows); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	got, err := scaler.TransformVector([]float64{5, 2})
	if err != nil {
		t.Fatalf("TransformVector: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("constant feature should scale to 0, got %f", got[0])
	}
	if math.IsNaN(got[0]) || math.IsNaN(got[1]) {
		t.Errorf("scaled values must never be NaN: %v", got)
	}
}

func TestStandardScaler_FrozenParameters(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit([][]float64{{0}, {2}}); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// mean=1, population std=1
	a, err := scaler.TransformVector([]float64{3})
	if err != nil {
		t.Fatalf("TransformVector: %v", err)
	}
	b, err := scaler.TransformVector([]float64{3})
	if err != nil {
		t.Fatalf("TransformVector: %v", err)
	}
	if a[0] != 2 || b[0] != 2 {
		t.Errorf("expected (3-1)/1 = 2 on both calls, got %f and %f", a[0], b[0])
	}
}

func TestStandardScaler_PopulationStd(t *testing.T) {
	// Values 2 and 4: mean 3, population std 1 (not the sample std sqrt(2)).
	scaler := NewStandardScaler()
	if err := scaler.Fit([][]float64{{2}, {4}}); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	got, err := scaler.TransformVector([]float64{4})
	if err != nil {
		t.Fatalf("TransformVector: %v", err)
	}
	if math.Abs(got[0]-1) > 1e-9 {
		t.Errorf("expected (4-3)/1 = 1, got %f", got[0])
	}
}

func TestStandardScaler_Transform(t *testing.T) {
	rows := [][]float64{
		{0, 100},
		{10, 200},
	}
	scaler := NewStandardScaler()
	if err := scaler.Fit(rows); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	scaled, err := scaler.Transform(rows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(scaled) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(scaled))
	}
	// Two symmetric points standardize to -1 and +1.
	if math.Abs(scaled[0][0]+1) > 1e-9 || math.Abs(scaled[1][0]-1) > 1e-9 {
		t.Errorf("unexpected scaled values: %v", scaled)
	}

	// Transform must not mutate the input.
	if rows[0][0] != 0 || rows[1][1] != 200 {
		t.Error("Transform mutated its input rows")
	}
}

func TestStandardScaler_DimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := scaler.TransformVector([]float64{1}); err == nil {
		t.Error("TransformVector with wrong width should fail")
	}
	if _, err := scaler.Transform([][]float64{{1, 2, 3}}); err == nil {
		t.Error("Transform with wrong width should fail")
	}
}

func TestStandardScaler_EmptyFit(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit(nil); err == nil {
		t.Error("Fit with no rows should fail")
	}
	if scaler.Fitted() {
		t.Error("failed Fit must leave the scaler unfitted")
	}
}
