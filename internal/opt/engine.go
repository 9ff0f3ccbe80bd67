package opt

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"routeopt/internal/geo"
)

// Route optimization methods accepted by the engine.
const (
	MethodTSP       = "tsp"
	MethodGenetic   = "genetic"
	MethodAnnealing = "annealing"
)

const (
	DefaultWarehouses = 3
	DefaultZones      = 5
)

// Config fixes the engine's cost model, fleet parameters and clustering
// defaults. Engines are immutable once built; per-request knobs travel in
// the request structs.
type Config struct {
	Cost              geo.CostModel
	Fleet             FleetParams
	DefaultWarehouses int
	DefaultZones      int
}

// Engine is the facade over the route, fleet, warehouse and zone solvers.
// Safe for concurrent use.
type Engine struct {
	cfg   Config
	stats *statsRegistry
}

func NewEngine(cfg Config) *Engine {
	if cfg.Cost == (geo.CostModel{}) {
		cfg.Cost = geo.DefaultCostModel()
	}
	if cfg.Fleet.VehicleCapacity <= 0 {
		cfg.Fleet.VehicleCapacity = DefaultVehicleCapacity
	}
	if len(cfg.Fleet.Regions) == 0 {
		cfg.Fleet.Regions = DefaultRegionMap()
	}
	if cfg.DefaultWarehouses <= 0 {
		cfg.DefaultWarehouses = DefaultWarehouses
	}
	if cfg.DefaultZones <= 0 {
		cfg.DefaultZones = DefaultZones
	}
	return &Engine{cfg: cfg, stats: newStatsRegistry()}
}

func (e *Engine) Config() Config { return e.cfg }

// RouteRequest asks for one optimized visit order over Points. Seed zero
// means non-deterministic; any other value reproduces the run exactly.
type RouteRequest struct {
	Points             []Point
	Start              *Point
	Method             string
	Generations        int
	PopulationSize     int
	MaxIterations      int
	InitialTemperature float64
	Seed               int64
	OnProgress         func(Progress)
}

// RouteSolution pairs the optimized route with the run metadata.
type RouteSolution struct {
	Route       Route
	Method      string
	Generations int
	Iterations  int
	Seed        int64
}

// OptimizeRoute dispatches to the requested solver. The start point only
// applies to the nearest neighbor method; the iterative solvers order the
// delivery points alone.
func (e *Engine) OptimizeRoute(req RouteRequest) (RouteSolution, error) {
	if len(req.Points) == 0 {
		return RouteSolution{}, fmt.Errorf("optimize route: %w: no delivery points", ErrInvalidInput)
	}
	method := req.Method
	if method == "" {
		method = MethodTSP
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	started := time.Now()
	var (
		route Route
		stats RunStats
	)
	switch method {
	case MethodTSP:
		route = NearestNeighbor(req.Points, req.Start, e.cfg.Cost)
		stats = RunStats{Method: MethodTSP, Points: len(req.Points), BestKm: route.DistanceKm}
	case MethodGenetic:
		route, stats = Genetic(req.Points, GeneticParams{
			Generations:    req.Generations,
			PopulationSize: req.PopulationSize,
			OnProgress:     req.OnProgress,
		}, e.cfg.Cost, rng)
	case MethodAnnealing:
		route, stats = Anneal(req.Points, AnnealParams{
			MaxIterations:      req.MaxIterations,
			InitialTemperature: req.InitialTemperature,
			OnProgress:         req.OnProgress,
		}, e.cfg.Cost, rng)
	default:
		return RouteSolution{}, fmt.Errorf("optimize route: %w: unknown method %q", ErrInvalidInput, req.Method)
	}

	roundRoute(&route)
	stats.ElapsedMs = time.Since(started).Milliseconds()
	e.stats.record(stats)

	return RouteSolution{
		Route:       route,
		Method:      method,
		Generations: stats.Generations,
		Iterations:  stats.Iterations,
		Seed:        seed,
	}, nil
}

// FleetRequest asks for a multi-vehicle plan over Orders starting at
// Warehouse. VehicleCapacity zero uses the engine default.
type FleetRequest struct {
	Orders          []Order
	Warehouse       Point
	VehicleCapacity float64
}

// OptimizeFleet partitions the orders by region and capacity and routes
// each vehicle. An empty order list yields an empty solution, not an error.
func (e *Engine) OptimizeFleet(req FleetRequest) (FleetSolution, error) {
	if req.VehicleCapacity < 0 {
		return FleetSolution{}, fmt.Errorf("optimize fleet: %w: negative vehicle capacity", ErrInvalidInput)
	}
	p := e.cfg.Fleet
	if req.VehicleCapacity > 0 {
		p.VehicleCapacity = req.VehicleCapacity
	}

	sol := OptimizeFleet(req.Orders, req.Warehouse, p, e.cfg.Cost)
	for i := range sol.Routes {
		roundRoute(&sol.Routes[i].Route)
		sol.Routes[i].Load.Weight = round2(sol.Routes[i].Load.Weight)
	}
	sol.TotalDistance = round2(sol.TotalDistance)
	return sol, nil
}

// WarehouseRequest asks for warehouse placements serving Points. When
// Candidates is non-empty the initial centroids are drawn from it, and
// SnapToCandidates additionally pins every centroid to a candidate site.
type WarehouseRequest struct {
	Points             []Point
	Candidates         []Point
	NumberOfWarehouses int
	SnapToCandidates   bool
	Seed               int64
}

// WarehousePlan is a clustering plus the estimated cost of serving each
// cluster from its centroid.
type WarehousePlan struct {
	Clustering Clustering
	TotalCost  float64
}

func (e *Engine) AllocateWarehouses(req WarehouseRequest) (WarehousePlan, error) {
	if len(req.Points) == 0 {
		return WarehousePlan{}, fmt.Errorf("allocate warehouses: %w: no delivery points", ErrInvalidInput)
	}
	k := req.NumberOfWarehouses
	if k <= 0 {
		k = e.cfg.DefaultWarehouses
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cl := KMeans(req.Points, k, req.Candidates, KMeansParams{
		MaxIterations: DefaultWarehouseIterations,
		SnapToSeeds:   req.SnapToCandidates,
	}, rng)

	total := 0.0
	for _, c := range cl.Clusters {
		sum := 0.0
		for _, m := range c.Members {
			sum += dist(m, c.Centroid)
		}
		total += e.cfg.Cost.DeliveryCost(sum, len(c.Members))
	}
	return WarehousePlan{Clustering: cl, TotalCost: round2(total)}, nil
}

// ZoneRequest asks for delivery zone boundaries over Points.
type ZoneRequest struct {
	Points        []Point
	NumberOfZones int
	Seed          int64
}

// ZonePlan is a clustering plus aggregate zone quality numbers.
type ZonePlan struct {
	Clustering      Clustering
	AverageZoneSize float64
	Efficiency      float64
}

func (e *Engine) PlanZones(req ZoneRequest) (ZonePlan, error) {
	if len(req.Points) == 0 {
		return ZonePlan{}, fmt.Errorf("plan zones: %w: no delivery points", ErrInvalidInput)
	}
	k := req.NumberOfZones
	if k <= 0 {
		k = e.cfg.DefaultZones
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cl := KMeans(req.Points, k, nil, KMeansParams{MaxIterations: DefaultZoneIterations}, rng)

	plan := ZonePlan{Clustering: cl}
	if n := len(cl.Clusters); n > 0 {
		plan.AverageZoneSize = round2(float64(len(req.Points)) / float64(n))
	}
	plan.Efficiency = round2(zoneEfficiency(req.Points, cl))
	return plan, nil
}

// EstimateCost prices a route of known length without optimizing anything.
func (e *Engine) EstimateCost(distanceKm float64, stops int) (float64, error) {
	if distanceKm < 0 || stops < 0 {
		return 0, fmt.Errorf("estimate cost: %w: negative distance or stops", ErrInvalidInput)
	}
	return round2(e.cfg.Cost.DeliveryCost(distanceKm, stops)), nil
}

// OptimizeRouteOrEmpty is the lenient variant of OptimizeRoute: invalid
// input yields an empty route instead of an error.
func (e *Engine) OptimizeRouteOrEmpty(req RouteRequest) RouteSolution {
	sol, err := e.OptimizeRoute(req)
	if err != nil {
		method := req.Method
		if method == "" {
			method = MethodTSP
		}
		return RouteSolution{Route: Route{Points: []Point{}}, Method: method, Seed: req.Seed}
	}
	return sol
}

func (e *Engine) OptimizeFleetOrEmpty(req FleetRequest) FleetSolution {
	sol, err := e.OptimizeFleet(req)
	if err != nil {
		return FleetSolution{Routes: []VehicleRoute{}}
	}
	return sol
}

func (e *Engine) AllocateWarehousesOrEmpty(req WarehouseRequest) WarehousePlan {
	plan, err := e.AllocateWarehouses(req)
	if err != nil {
		return WarehousePlan{Clustering: Clustering{Clusters: []Cluster{}}}
	}
	return plan
}

func (e *Engine) PlanZonesOrEmpty(req ZoneRequest) ZonePlan {
	plan, err := e.PlanZones(req)
	if err != nil {
		return ZonePlan{Clustering: Clustering{Clusters: []Cluster{}}}
	}
	return plan
}

// zoneEfficiency compares mean member-to-centroid distance against the mean
// distance to the overall centroid. 1 means tight zones, 0 means zoning
// bought nothing over a single blob.
func zoneEfficiency(points []Point, cl Clustering) float64 {
	if len(points) == 0 || len(cl.Clusters) == 0 {
		return 0
	}
	var center Point
	for _, p := range points {
		center.Lat += p.Lat
		center.Lng += p.Lng
	}
	center.Lat /= float64(len(points))
	center.Lng /= float64(len(points))

	global := 0.0
	for _, p := range points {
		global += dist(p, center)
	}
	global /= float64(len(points))
	if global == 0 {
		return 1
	}

	intra := 0.0
	n := 0
	for _, c := range cl.Clusters {
		for _, m := range c.Members {
			intra += dist(m, c.Centroid)
			n++
		}
	}
	intra /= float64(n)

	eff := 1 - intra/global
	if eff < 0 {
		eff = 0
	}
	if eff > 1 {
		eff = 1
	}
	return eff
}

// roundRoute trims derived totals to two decimals for presentation.
func roundRoute(r *Route) {
	r.DistanceKm = round2(r.DistanceKm)
	r.TimeHours = round2(r.TimeHours)
	r.CostEstimate = round2(r.CostEstimate)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
