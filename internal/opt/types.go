package opt

import "routeopt/internal/geo"

// Point is a delivery coordinate. Label is optional and carried through
// untouched so callers can correlate optimized orderings with their input.
type Point struct {
	Lat   float64
	Lng   float64
	Label string
}

// Route is an ordered visit sequence with its derived totals.
type Route struct {
	Points       []Point
	DistanceKm   float64
	TimeHours    float64
	CostEstimate float64
}

// Order is a delivery order as the fleet optimizer sees it.
type Order struct {
	Ref        string
	Delivery   Point
	PostalCode string
	Weight     float64
}

// VehicleLoad is a set of orders assigned to one vehicle.
type VehicleLoad struct {
	Orders []Order
	Weight float64
}

func (l VehicleLoad) Points() []Point {
	pts := make([]Point, 0, len(l.Orders))
	for _, o := range l.Orders {
		pts = append(pts, o.Delivery)
	}
	return pts
}

// VehicleRoute is one vehicle's load plus its optimized route.
type VehicleRoute struct {
	VehicleID string
	Region    string
	Load      VehicleLoad
	Route     Route
}

// FleetSolution is the full multi-vehicle plan.
type FleetSolution struct {
	Routes        []VehicleRoute
	TotalDistance float64
	TotalVehicles int
	TotalOrders   int
	Warnings      []Warning
}

// Cluster is one k-means cluster: centroid plus assigned members.
type Cluster struct {
	Centroid Point
	Members  []Point
}

// Clustering is the result of a k-means run.
type Clustering struct {
	Clusters   []Cluster
	Iterations int
	Warnings   []Warning
}

// Snapshot records the best-known route length at a step of an iterative
// solver, for convergence inspection.
type Snapshot struct {
	Step   int     `json:"step"`
	BestKm float64 `json:"bestKm"`
}

// Progress is emitted by iterative solvers while they run.
type Progress struct {
	Phase  string  `json:"phase"`
	Step   int     `json:"step"`
	Total  int     `json:"total"`
	BestKm float64 `json:"bestKm"`
}

// RunStats summarizes a finished solver run.
type RunStats struct {
	Method      string     `json:"method"`
	Points      int        `json:"points"`
	Generations int        `json:"generations,omitempty"`
	Iterations  int        `json:"iterations,omitempty"`
	BestKm      float64    `json:"bestKm"`
	ElapsedMs   int64      `json:"elapsedMs"`
	Snapshots   []Snapshot `json:"snapshots,omitempty"`
}

func dist(a, b Point) float64 {
	return geo.Distance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// routeDistance sums consecutive leg lengths over an ordered point slice.
func routeDistance(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	return total
}

// permDistance sums leg lengths for a permutation of indices into points.
func permDistance(points []Point, perm []int) float64 {
	total := 0.0
	for i := 1; i < len(perm); i++ {
		total += dist(points[perm[i-1]], points[perm[i]])
	}
	return total
}

// newRoute derives totals for an already-ordered point sequence.
func newRoute(pts []Point, cm geo.CostModel) Route {
	d := routeDistance(pts)
	return Route{
		Points:       pts,
		DistanceKm:   d,
		TimeHours:    cm.TravelTime(d),
		CostEstimate: cm.DeliveryCost(d, len(pts)),
	}
}
