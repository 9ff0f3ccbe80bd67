package opt

import (
	"math/rand"

	"routeopt/internal/geo"
)

const (
	DefaultGenerations    = 50
	DefaultPopulationSize = 20
	DefaultMutationRate   = 0.01

	defaultTournamentSize = 3
)

// GeneticParams tunes the genetic solver. Zero values fall back to the
// package defaults.
type GeneticParams struct {
	Generations    int
	PopulationSize int
	MutationRate   float64
	TournamentSize int
	OnProgress     func(Progress)
}

// Genetic evolves a population of visit orders for a fixed number of
// generations and returns the best route found. The best individual of each
// generation is carried over unchanged, so the best distance never worsens
// from one generation to the next. Inputs of fewer than three points are
// routed through NearestNeighbor instead.
func Genetic(points []Point, p GeneticParams, cm geo.CostModel, rng *rand.Rand) (Route, RunStats) {
	if p.Generations <= 0 {
		p.Generations = DefaultGenerations
	}
	if p.PopulationSize < 2 {
		p.PopulationSize = DefaultPopulationSize
	}
	if p.MutationRate <= 0 {
		p.MutationRate = DefaultMutationRate
	}
	if p.TournamentSize <= 0 {
		p.TournamentSize = defaultTournamentSize
	}

	n := len(points)
	if n < 3 {
		r := NearestNeighbor(points, nil, cm)
		return r, RunStats{Method: MethodGenetic, Points: n, BestKm: r.DistanceKm}
	}

	pop := make([][]int, p.PopulationSize)
	for i := range pop {
		pop[i] = rng.Perm(n)
	}

	best := append([]int(nil), pop[0]...)
	bestD := permDistance(points, best)
	for _, perm := range pop[1:] {
		if d := permDistance(points, perm); d < bestD {
			best = append(best[:0], perm...)
			bestD = d
		}
	}

	stats := RunStats{Method: MethodGenetic, Points: n, Generations: p.Generations}
	for gen := 1; gen <= p.Generations; gen++ {
		next := make([][]int, 0, p.PopulationSize)
		next = append(next, append([]int(nil), best...))
		for len(next) < p.PopulationSize {
			p1 := tournament(points, pop, p.TournamentSize, rng)
			p2 := tournament(points, pop, p.TournamentSize, rng)
			child := orderedCrossover(p1, p2, rng)
			mutate(child, p.MutationRate, rng)
			next = append(next, child)
		}
		pop = next
		for _, perm := range pop {
			if d := permDistance(points, perm); d < bestD {
				best = append(best[:0], perm...)
				bestD = d
			}
		}
		stats.Snapshots = append(stats.Snapshots, Snapshot{Step: gen, BestKm: bestD})
		if p.OnProgress != nil {
			p.OnProgress(Progress{Phase: MethodGenetic, Step: gen, Total: p.Generations, BestKm: bestD})
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

// tournament samples size individuals with replacement and returns the one
// with the shortest route. Ties keep the earlier pick.
func tournament(points []Point, pop [][]int, size int, rng *rand.Rand) []int {
	best := pop[rng.Intn(len(pop))]
	bestD := permDistance(points, best)
	for i := 1; i < size; i++ {
		cand := pop[rng.Intn(len(pop))]
		if d := permDistance(points, cand); d < bestD {
			best = cand
			bestD = d
		}
	}
	return best
}

// orderedCrossover copies a random segment of p1 into the child and fills
// the remaining slots with p2's genes in p2 order, skipping genes the
// segment already holds. The result is always a valid permutation.
func orderedCrossover(p1, p2 []int, rng *rand.Rand) []int {
	n := len(p1)
	start, end := rng.Intn(n), rng.Intn(n)
	if start > end {
		start, end = end, start
	}
	child := make([]int, n)
	for i := range child {
		child[i] = -1
	}
	used := make([]bool, n)
	for i := start; i <= end; i++ {
		child[i] = p1[i]
		used[p1[i]] = true
	}
	j := 0
	for _, g := range p2 {
		if used[g] {
			continue
		}
		for child[j] != -1 {
			j++
		}
		child[j] = g
		j++
	}
	return child
}

// mutate swaps each position with another uniformly chosen position with
// probability rate.
func mutate(perm []int, rate float64, rng *rand.Rand) {
	for i := range perm {
		if rng.Float64() < rate {
			j := rng.Intn(len(perm) - 1)
			if j >= i {
				j++
			}
			perm[i], perm[j] = perm[j], perm[i]
		}
	}
}
