package opt

import (
	"fmt"
	"math/rand"
)

const (
	DefaultWarehouseIterations = 100
	DefaultZoneIterations      = 50

	// DefaultConvergenceKm stops the loop once no centroid moved farther
	// than this between iterations.
	DefaultConvergenceKm = 0.001
)

// KMeansParams tunes a clustering run. SnapToSeeds pins every centroid to
// its nearest seed after each update, keeping centroids on real candidate
// sites instead of letting them drift to arithmetic means.
type KMeansParams struct {
	MaxIterations int
	ConvergenceKm float64
	SnapToSeeds   bool
}

// KMeans partitions points into at most k clusters. Initial centroids are
// drawn without replacement from seeds when given, otherwise from the
// points themselves. A cluster that loses all members is dropped with a
// warning and the run continues with the survivors, so the result may hold
// fewer than k clusters but every point stays assigned to exactly one.
func KMeans(points []Point, k int, seeds []Point, p KMeansParams, rng *rand.Rand) Clustering {
	out := Clustering{Clusters: []Cluster{}}
	if len(points) == 0 || k <= 0 {
		return out
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = DefaultZoneIterations
	}
	if p.ConvergenceKm <= 0 {
		p.ConvergenceKm = DefaultConvergenceKm
	}

	source := points
	if len(seeds) > 0 {
		source = seeds
	}
	if k > len(source) {
		k = len(source)
	}

	centroids := make([]Point, k)
	for i, idx := range rng.Perm(len(source))[:k] {
		centroids[i] = source[idx]
	}
	alive := make([]bool, k)
	for i := range alive {
		alive[i] = true
	}

	assign := make([]int, len(points))
	for out.Iterations < p.MaxIterations {
		out.Iterations++

		for i, pt := range points {
			best := -1
			bestD := 0.0
			for c, cen := range centroids {
				if !alive[c] {
					continue
				}
				d := dist(pt, cen)
				if best == -1 || d < bestD {
					best = c
					bestD = d
				}
			}
			assign[i] = best
		}

		counts := make([]int, k)
		sumLat := make([]float64, k)
		sumLng := make([]float64, k)
		for i, c := range assign {
			counts[c]++
			sumLat[c] += points[i].Lat
			sumLng[c] += points[i].Lng
		}

		maxMove := 0.0
		for c := range centroids {
			if !alive[c] {
				continue
			}
			if counts[c] == 0 {
				alive[c] = false
				out.Warnings = append(out.Warnings, Warning{
					Code:    WarnDegenerateCluster,
					Ref:     fmt.Sprintf("cluster_%d", c),
					Message: "cluster lost all members and was dropped",
				})
				continue
			}
			next := Point{Lat: sumLat[c] / float64(counts[c]), Lng: sumLng[c] / float64(counts[c])}
			if p.SnapToSeeds && len(seeds) > 0 {
				next = nearestTo(next, seeds)
			}
			if mv := dist(centroids[c], next); mv > maxMove {
				maxMove = mv
			}
			centroids[c] = next
		}

		if maxMove < p.ConvergenceKm {
			break
		}
	}

	for c := range centroids {
		if !alive[c] {
			continue
		}
		cl := Cluster{Centroid: centroids[c], Members: []Point{}}
		for i, a := range assign {
			if a == c {
				cl.Members = append(cl.Members, points[i])
			}
		}
		out.Clusters = append(out.Clusters, cl)
	}
	return out
}

func nearestTo(p Point, candidates []Point) Point {
	best := candidates[0]
	bestD := dist(p, best)
	for _, c := range candidates[1:] {
		if d := dist(p, c); d < bestD {
			best = c
			bestD = d
		}
	}
	return best
}
