// Package cluster implements feature standardization and seeded k-means.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidK      = errors.New("number of clusters must be >= 1")
	ErrTooFewSamples = errors.New("fewer samples than clusters")
)

// KMeans partitions points with Lloyd iterations from k-means++ seeds.
// The same Seed on the same input yields the same labels.
type KMeans struct {
	K       int
	NInit   int     // independent restarts; the lowest inertia wins
	MaxIter int     // iterations per restart
	Tol     float64 // relative to the mean feature variance
	Seed    uint64
}

// Result is the fitted partition.
type Result struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64 // sum of squared distances to the assigned centroid
	Iterations int
}

// Sizes counts rows per label, indexed by label.
func (r Result) Sizes() []int {
	out := make([]int, len(r.Centroids))
	for _, l := range r.Labels {
		out[l]++
	}
	return out
}

func (m KMeans) withDefaults() KMeans {
	if m.NInit < 1 {
		m.NInit = 10
	}
	if m.MaxIter < 1 {
		m.MaxIter = 300
	}
	if m.Tol < 0 {
		m.Tol = 0
	}
	return m
}

// Fit clusters x (rows = samples). An empty x yields an empty Result.
func (m KMeans) Fit(x [][]float64) (Result, error) {
	if m.K < 1 {
		return Result{}, ErrInvalidK
	}
	dim, err := dims(x)
	if err != nil {
		return Result{}, err
	}
	if len(x) == 0 {
		return Result{Labels: []int{}}, nil
	}
	if len(x) < m.K {
		return Result{}, fmt.Errorf("%w: %d samples, k=%d", ErrTooFewSamples, len(x), m.K)
	}
	m = m.withDefaults()

	tol := m.Tol * meanVariance(x, dim)
	rng := rand.New(rand.NewPCG(m.Seed, m.Seed^0x9e3779b97f4a7c15))

	var best Result
	for run := 0; run < m.NInit; run++ {
		res := m.lloyd(x, seedPlusPlus(x, m.K, rng), tol)
		if run == 0 || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

func (m KMeans) lloyd(x [][]float64, centroids [][]float64, tol float64) Result {
	labels := make([]int, len(x))
	dim := len(x[0])
	iter := 0
	for iter < m.MaxIter {
		iter++
		assign(x, centroids, labels)

		next := make([][]float64, m.K)
		counts := make([]int, m.K)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, row := range x {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// empty cluster: move it onto the point worst served by its centroid
				next[c] = append([]float64(nil), x[farthest(x, centroids, labels)]...)
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		shift := 0.0
		for c := range next {
			d := floats.Distance(next[c], centroids[c], 2)
			shift += d * d
		}
		centroids = next
		if shift <= tol {
			break
		}
	}
	inertia := assign(x, centroids, labels)
	return Result{Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}
}

// assign writes the nearest centroid index into labels and returns the inertia.
// Ties go to the lower index.
func assign(x, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, row := range x {
		bestC, bestD := 0, math.Inf(1)
		for c, cen := range centroids {
			d := sqDist(row, cen)
			if d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = bestC
		inertia += bestD
	}
	return inertia
}

func farthest(x, centroids [][]float64, labels []int) int {
	idx, far := 0, -1.0
	for i, row := range x {
		if d := sqDist(row, centroids[labels[i]]); d > far {
			idx, far = i, d
		}
	}
	return idx
}

// seedPlusPlus picks k initial centroids with D² weighting.
func seedPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), x[rng.IntN(len(x))]...))

	d2 := make([]float64, len(x))
	for i, row := range x {
		d2[i] = sqDist(row, centroids[0])
	}
	for len(centroids) < k {
		total := floats.Sum(d2)
		pick := 0
		if total == 0 {
			// every point sits on a centroid already: duplicates are unavoidable
			pick = rng.IntN(len(x))
		} else {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range d2 {
				if d == 0 {
					continue
				}
				acc += d
				pick = i
				if acc >= target {
					break
				}
			}
		}
		c := append([]float64(nil), x[pick]...)
		centroids = append(centroids, c)
		for i, row := range x {
			if d := sqDist(row, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func meanVariance(x [][]float64, dim int) float64 {
	if dim == 0 {
		return 0
	}
	col := make([]float64, len(x))
	sum := 0.0
	for j := 0; j < dim; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		_, v := stat.PopMeanVariance(col, nil)
		sum += v
	}
	return sum / float64(dim)
}
