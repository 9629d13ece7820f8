package cluster

// ElbowPoint is the fitted inertia for one cluster count.
type ElbowPoint struct {
	K       int
	Inertia float64
}

// Elbow fits base once per k in [from, to] and reports inertia per k.
// Counts larger than the sample size are skipped.
func Elbow(x [][]float64, base KMeans, from, to int) ([]ElbowPoint, error) {
	if from < 1 {
		from = 1
	}
	var out []ElbowPoint
	for k := from; k <= to && k <= len(x); k++ {
		m := base
		m.K = k
		res, err := m.Fit(x)
		if err != nil {
			return nil, err
		}
		out = append(out, ElbowPoint{K: k, Inertia: res.Inertia})
	}
	return out, nil
}
