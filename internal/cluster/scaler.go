package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes columns to zero mean and unit population variance.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler learns per-column mean and population standard deviation.
// A constant column keeps scale 1 so it maps to all zeros instead of NaN.
func FitScaler(x [][]float64) (Scaler, error) {
	dim, err := dims(x)
	if err != nil {
		return Scaler{}, err
	}
	s := Scaler{Mean: make([]float64, dim), Scale: make([]float64, dim)}
	col := make([]float64, len(x))
	for j := 0; j < dim; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		mean, std := 0.0, 1.0
		if len(col) > 0 {
			mean, std = stat.PopMeanStdDev(col, nil)
		}
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	}
	return s, nil
}

// Transform returns a scaled copy of x.
func (s Scaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = z
	}
	return out
}

// Inverse maps scaled points back to feature units, e.g. for printing centroids.
func (s Scaler) Inverse(z [][]float64) [][]float64 {
	out := make([][]float64, len(z))
	for i, row := range z {
		x := make([]float64, len(row))
		for j, v := range row {
			x[j] = v*s.Scale[j] + s.Mean[j]
		}
		out[i] = x
	}
	return out
}

// StandardScale fits and applies a Scaler in one step.
func StandardScale(x [][]float64) ([][]float64, Scaler, error) {
	s, err := FitScaler(x)
	if err != nil {
		return nil, Scaler{}, err
	}
	return s.Transform(x), s, nil
}

// dims returns the common row width; 0 for an empty matrix.
func dims(x [][]float64) (int, error) {
	if len(x) == 0 {
		return 0, nil
	}
	d := len(x[0])
	for i, row := range x {
		if len(row) != d {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), d)
		}
	}
	return d, nil
}
