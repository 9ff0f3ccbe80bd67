package opt

import "routeopt/internal/geo"

// NearestNeighbor orders points greedily: from the current position, always
// visit the closest unvisited point next. When start is non-nil it becomes
// the first stop. Runs in O(n^2) and is the fallback for inputs too small
// for the iterative solvers.
func NearestNeighbor(points []Point, start *Point, cm geo.CostModel) Route {
	if len(points) == 0 {
		return Route{Points: []Point{}}
	}

	work := make([]Point, 0, len(points)+1)
	if start != nil {
		work = append(work, *start)
	}
	work = append(work, points...)

	visited := make([]bool, len(work))
	route := make([]Point, 0, len(work))
	cur := 0
	visited[0] = true
	route = append(route, work[0])

	for len(route) < len(work) {
		next := -1
		best := 0.0
		for i, p := range work {
			if visited[i] {
				continue
			}
			d := dist(work[cur], p)
			if next == -1 || d < best {
				next = i
				best = d
			}
		}
		visited[next] = true
		route = append(route, work[next])
		cur = next
	}

	return newRoute(route, cm)
}
