package opt

import (
	"math"
	"math/rand"

	"routeopt/internal/geo"
)

const (
	DefaultMaxIterations      = 1000
	DefaultInitialTemperature = 100.0
	DefaultCooling            = 0.995

	annealProgressEvery = 100
)

// AnnealParams tunes the simulated annealing solver. Zero values fall back
// to the package defaults.
type AnnealParams struct {
	MaxIterations      int
	InitialTemperature float64
	Cooling            float64
	OnProgress         func(Progress)
}

// Anneal walks the permutation space by swapping two random positions per
// iteration. Improvements are always taken; regressions are taken with
// probability exp(-delta/temp), and the temperature decays geometrically
// every iteration. The best order ever seen is returned, which may not be
// the final state of the walk. Inputs of fewer than three points are routed
// through NearestNeighbor instead.
func Anneal(points []Point, p AnnealParams, cm geo.CostModel, rng *rand.Rand) (Route, RunStats) {
	if p.MaxIterations <= 0 {
		p.MaxIterations = DefaultMaxIterations
	}
	if p.InitialTemperature <= 0 {
		p.InitialTemperature = DefaultInitialTemperature
	}
	if p.Cooling <= 0 || p.Cooling >= 1 {
		p.Cooling = DefaultCooling
	}

	n := len(points)
	if n < 3 {
		r := NearestNeighbor(points, nil, cm)
		return r, RunStats{Method: MethodAnnealing, Points: n, BestKm: r.DistanceKm}
	}

	current := rng.Perm(n)
	currentD := permDistance(points, current)
	best := append([]int(nil), current...)
	bestD := currentD

	stats := RunStats{Method: MethodAnnealing, Points: n, Iterations: p.MaxIterations}
	temp := p.InitialTemperature
	for it := 1; it <= p.MaxIterations; it++ {
		neighbor := append([]int(nil), current...)
		i, j := rng.Intn(n), rng.Intn(n)
		neighbor[i], neighbor[j] = neighbor[j], neighbor[i]
		neighborD := permDistance(points, neighbor)

		delta := neighborD - currentD
		if delta < 0 || rng.Float64() < math.Exp(-delta/(temp+1e-9)) {
			current = neighbor
			currentD = neighborD
			if currentD < bestD {
				best = append(best[:0], current...)
				bestD = currentD
			}
		}
		temp *= p.Cooling

		if it%annealProgressEvery == 0 || it == p.MaxIterations {
			stats.Snapshots = append(stats.Snapshots, Snapshot{Step: it, BestKm: bestD})
			if p.OnProgress != nil {
				p.OnProgress(Progress{Phase: MethodAnnealing, Step: it, Total: p.MaxIterations, BestKm: bestD})
			}
		}
	}

	ordered := make([]Point, n)
	for i, idx := range best {
		ordered[i] = points[idx]
	}
	stats.BestKm = bestD
	return Route{
		Points:       ordered,
		DistanceKm:   bestD,
		TimeHours:    cm.TravelTime(bestD),
		CostEstimate: cm.DeliveryCost(bestD, n),
	}, stats
}
