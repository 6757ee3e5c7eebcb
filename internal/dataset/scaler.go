package dataset

import (
	"fmt"
	"math"
)

// Scaler standardizes each feature column to zero mean and unit variance.
// Fit on the training slice, then Transform any frame that shares the same
// feature ordering; unscaled values are left untouched on every row.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Fit computes per-feature mean and standard deviation from the frame's
// unscaled vectors.
func (s *Scaler) Fit(f *Frame) error {
	n := f.Len()
	if n == 0 {
		return fmt.Errorf("cannot fit scaler on empty frame")
	}
	k := len(f.Features)
	s.Mean = make([]float64, k)
	s.Std = make([]float64, k)

	for _, row := range f.Rows {
		if len(row.Unscaled) != k {
			return fmt.Errorf("row missing unscaled features; run ComputeIndicators first")
		}
		for j, v := range row.Unscaled {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= float64(n)
	}
	for _, row := range f.Rows {
		for j, v := range row.Unscaled {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / float64(n))
		if s.Std[j] == 0 {
			// constant column: pass values through centered only
			s.Std[j] = 1
		}
	}
	return nil
}

// Transform populates each row's scaled vector from its unscaled one.
func (s *Scaler) Transform(f *Frame) error {
	if len(s.Mean) != len(f.Features) {
		return fmt.Errorf("scaler fitted for %d features, frame has %d", len(s.Mean), len(f.Features))
	}
	for i := range f.Rows {
		row := &f.Rows[i]
		if len(row.Unscaled) != len(f.Features) {
			return fmt.Errorf("row %d missing unscaled features", i)
		}
		row.Scaled = make([]float64, len(f.Features))
		for j, v := range row.Unscaled {
			row.Scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
	}
	return nil
}

// FitTransform is the common fit-then-transform path for a single frame.
func (s *Scaler) FitTransform(f *Frame) error {
	if err := s.Fit(f); err != nil {
		return err
	}
	return s.Transform(f)
}
