// Package normalize implements the per-feature standardization used to put
// every player vector into one comparable space.
//
// A Normalizer is fitted exactly once over the full population and is
// immutable afterwards, so the same statistics serve the stored matrix and
// every query vector.
package normalize

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel kinds for normalizer errors.
var (
	ErrEmptyInput        = errors.New("normalize: empty input")
	ErrDimensionMismatch = errors.New("normalize: dimension mismatch")
	ErrNonFinite         = errors.New("normalize: non-finite value")
)

// Normalizer holds per-column mean and population standard deviation.
type Normalizer struct {
	mean []float64
	std  []float64
}

// Fit computes column statistics over rows. Every row must have the same
// length and contain only finite values.
func Fit(rows [][]float64) (*Normalizer, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyInput
	}
	dim := len(rows[0])
	mean := make([]float64, dim)
	lo := append([]float64(nil), rows[0]...)
	hi := append([]float64(nil), rows[0]...)
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(r), dim)
		}
		for j, x := range r {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: row %d column %d", ErrNonFinite, i, j)
			}
			mean[j] += x
			lo[j] = math.Min(lo[j], x)
			hi[j] = math.Max(hi[j], x)
		}
	}
	n := float64(len(rows))
	for j := range mean {
		mean[j] /= n
	}

	// ddof = 0
	std := make([]float64, dim)
	for _, r := range rows {
		for j, x := range r {
			d := x - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		// A constant column can still accumulate rounding error in the mean.
		if lo[j] == hi[j] {
			mean[j], std[j] = lo[j], 0
			continue
		}
		std[j] = math.Sqrt(std[j] / n)
	}
	return &Normalizer{mean: mean, std: std}, nil
}

// Dim returns the number of columns the normalizer was fitted on.
func (n *Normalizer) Dim() int { return len(n.mean) }

// Mean returns a copy of the fitted column means.
func (n *Normalizer) Mean() []float64 { return append([]float64(nil), n.mean...) }

// Std returns a copy of the fitted column standard deviations.
func (n *Normalizer) Std() []float64 { return append([]float64(nil), n.std...) }

// Transform standardizes v into a new slice. A zero-variance column maps to 0.
func (n *Normalizer) Transform(v []float64) ([]float64, error) {
	out := make([]float64, len(v))
	if err := n.TransformInto(out, v); err != nil {
		return nil, err
	}
	return out, nil
}

// TransformInto standardizes v into dst, which must have the same length.
func (n *Normalizer) TransformInto(dst, v []float64) error {
	if len(v) != len(n.mean) || len(dst) != len(v) {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(v), len(n.mean))
	}
	for j, x := range v {
		if n.std[j] == 0 {
			dst[j] = 0
			continue
		}
		dst[j] = (x - n.mean[j]) / n.std[j]
	}
	return nil
}

// TransformMatrix standardizes rows into one row-major slice of len(rows)*Dim.
func (n *Normalizer) TransformMatrix(rows [][]float64) ([]float64, error) {
	dim := len(n.mean)
	out := make([]float64, len(rows)*dim)
	for i, r := range rows {
		if err := n.TransformInto(out[i*dim:(i+1)*dim], r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return out, nil
}
