package opt

import (
	"errors"
	"math"
	"testing"
)

func TestEngineDefaults(t *testing.T) {
	e := NewEngine(Config{})
	cfg := e.Config()
	if cfg.Cost.AverageSpeedKmh != 40 || cfg.Cost.BaseCost != 50 {
		t.Fatalf("cost model not defaulted: %+v", cfg.Cost)
	}
	if cfg.Fleet.VehicleCapacity != DefaultVehicleCapacity {
		t.Fatalf("vehicle capacity = %v, want %v", cfg.Fleet.VehicleCapacity, DefaultVehicleCapacity)
	}
	if cfg.DefaultWarehouses != DefaultWarehouses || cfg.DefaultZones != DefaultZones {
		t.Fatalf("cluster defaults = %d/%d, want %d/%d",
			cfg.DefaultWarehouses, cfg.DefaultZones, DefaultWarehouses, DefaultZones)
	}
}

func TestOptimizeRouteDefaultsToTSP(t *testing.T) {
	e := NewEngine(Config{})
	sol, err := e.OptimizeRoute(RouteRequest{Points: clusterPoints(), Seed: 1})
	if err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	if sol.Method != MethodTSP {
		t.Fatalf("method = %q, want tsp", sol.Method)
	}
	if sol.Seed != 1 {
		t.Fatalf("seed = %d, want the requested 1", sol.Seed)
	}
	assertSamePoints(t, clusterPoints(), sol.Route.Points)
}

func TestOptimizeRouteRejectsBadInput(t *testing.T) {
	e := NewEngine(Config{})
	if _, err := e.OptimizeRoute(RouteRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty points: err = %v, want ErrInvalidInput", err)
	}
	req := RouteRequest{Points: clusterPoints(), Method: "branch-and-bound"}
	if _, err := e.OptimizeRoute(req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown method: err = %v, want ErrInvalidInput", err)
	}
}

func TestOptimizeRouteRoundsTotals(t *testing.T) {
	e := NewEngine(Config{})
	sol, err := e.OptimizeRoute(RouteRequest{Points: clusterPoints(), Seed: 4})
	if err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	for name, v := range map[string]float64{
		"distance": sol.Route.DistanceKm,
		"time":     sol.Route.TimeHours,
		"cost":     sol.Route.CostEstimate,
	} {
		if math.Round(v*100)/100 != v {
			t.Fatalf("%s = %v, want two decimals", name, v)
		}
	}
}

func TestOptimizeRouteSeedReproducible(t *testing.T) {
	e := NewEngine(Config{})
	req := RouteRequest{Points: clusterPoints(), Method: MethodGenetic, Seed: 42}
	a, err := e.OptimizeRoute(req)
	if err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	b, err := e.OptimizeRoute(req)
	if err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	if a.Route.DistanceKm != b.Route.DistanceKm {
		t.Fatalf("same seed gave different distances: %v vs %v", a.Route.DistanceKm, b.Route.DistanceKm)
	}
	if a.Generations != DefaultGenerations {
		t.Fatalf("generations = %d, want %d", a.Generations, DefaultGenerations)
	}
}

func TestOptimizeRouteAnnealingReportsIterations(t *testing.T) {
	e := NewEngine(Config{})
	sol, err := e.OptimizeRoute(RouteRequest{
		Points:        clusterPoints(),
		Method:        MethodAnnealing,
		MaxIterations: 200,
		Seed:          6,
	})
	if err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	if sol.Iterations != 200 {
		t.Fatalf("iterations = %d, want 200", sol.Iterations)
	}
}

func TestEngineLastRuns(t *testing.T) {
	e := NewEngine(Config{})
	if _, err := e.OptimizeRoute(RouteRequest{Points: clusterPoints(), Seed: 2}); err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	if _, err := e.OptimizeRoute(RouteRequest{Points: clusterPoints(), Method: MethodGenetic, Seed: 2}); err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	runs := e.LastRuns()
	if _, ok := runs[MethodTSP]; !ok {
		t.Fatal("no tsp entry in LastRuns")
	}
	g, ok := runs[MethodGenetic]
	if !ok {
		t.Fatal("no genetic entry in LastRuns")
	}
	if g.Points != len(clusterPoints()) || g.Generations != DefaultGenerations {
		t.Fatalf("genetic run stats = %+v", g)
	}
}

func TestEngineFleetCapacityOverride(t *testing.T) {
	e := NewEngine(Config{})
	orders := []Order{
		{Ref: "a", Delivery: Point{Lat: 52.52, Lng: 13.40}, PostalCode: "11001", Weight: 30},
		{Ref: "b", Delivery: Point{Lat: 52.53, Lng: 13.41}, PostalCode: "11002", Weight: 30},
	}
	sol, err := e.OptimizeFleet(FleetRequest{Orders: orders, Warehouse: Point{Lat: 52.5, Lng: 13.35}, VehicleCapacity: 30})
	if err != nil {
		t.Fatalf("OptimizeFleet: %v", err)
	}
	if sol.TotalVehicles != 2 {
		t.Fatalf("capacity override ignored: %d vehicles, want 2", sol.TotalVehicles)
	}
	if _, err := e.OptimizeFleet(FleetRequest{Orders: orders, VehicleCapacity: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative capacity: err = %v, want ErrInvalidInput", err)
	}
}

func TestEngineFleetEmptyOrders(t *testing.T) {
	e := NewEngine(Config{})
	sol, err := e.OptimizeFleet(FleetRequest{})
	if err != nil {
		t.Fatalf("empty fleet request should not error, got %v", err)
	}
	if sol.TotalVehicles != 0 || sol.TotalDistance != 0 || len(sol.Routes) != 0 {
		t.Fatalf("empty fleet request should yield zeros, got %+v", sol)
	}
}

func TestAllocateWarehouses(t *testing.T) {
	e := NewEngine(Config{})
	plan, err := e.AllocateWarehouses(WarehouseRequest{Points: clusterPoints(), NumberOfWarehouses: 2, Seed: 10})
	if err != nil {
		t.Fatalf("AllocateWarehouses: %v", err)
	}
	if len(plan.Clustering.Clusters) == 0 || len(plan.Clustering.Clusters) > 2 {
		t.Fatalf("got %d clusters, want 1..2", len(plan.Clustering.Clusters))
	}
	// Base cost applies once per warehouse, so the total is at least that.
	if plan.TotalCost < 50*float64(len(plan.Clustering.Clusters)) {
		t.Fatalf("total cost %v below the per-warehouse base", plan.TotalCost)
	}
	if _, err := e.AllocateWarehouses(WarehouseRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("no points: err = %v, want ErrInvalidInput", err)
	}
}

func TestPlanZonesSinglePoint(t *testing.T) {
	e := NewEngine(Config{})
	plan, err := e.PlanZones(ZoneRequest{Points: []Point{{Lat: 52.52, Lng: 13.405, Label: "only"}}, Seed: 3})
	if err != nil {
		t.Fatalf("PlanZones: %v", err)
	}
	if len(plan.Clustering.Clusters) != 1 {
		t.Fatalf("single point should yield 1 zone, got %d", len(plan.Clustering.Clusters))
	}
	if plan.AverageZoneSize != 1 {
		t.Fatalf("average zone size = %v, want 1", plan.AverageZoneSize)
	}
	if plan.Efficiency != 1 {
		t.Fatalf("efficiency = %v, want 1 when there is no spread", plan.Efficiency)
	}
}

func TestPlanZonesEfficiencyBounds(t *testing.T) {
	e := NewEngine(Config{})
	plan, err := e.PlanZones(ZoneRequest{Points: clusterPoints(), NumberOfZones: 3, Seed: 12})
	if err != nil {
		t.Fatalf("PlanZones: %v", err)
	}
	if plan.Efficiency < 0 || plan.Efficiency > 1 {
		t.Fatalf("efficiency = %v, want within [0,1]", plan.Efficiency)
	}
}

func TestEstimateCost(t *testing.T) {
	e := NewEngine(Config{})
	got, err := e.EstimateCost(10, 3)
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}
	if got != 160 {
		t.Fatalf("EstimateCost(10, 3) = %v, want 160", got)
	}
	if _, err := e.EstimateCost(-1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative distance: err = %v, want ErrInvalidInput", err)
	}
}

func TestLenientVariantsSwallowInvalidInput(t *testing.T) {
	e := NewEngine(Config{})
	if sol := e.OptimizeRouteOrEmpty(RouteRequest{}); len(sol.Route.Points) != 0 || sol.Method != MethodTSP {
		t.Fatalf("lenient route = %+v, want empty tsp route", sol)
	}
	if sol := e.OptimizeFleetOrEmpty(FleetRequest{VehicleCapacity: -5}); len(sol.Routes) != 0 {
		t.Fatalf("lenient fleet = %+v, want empty solution", sol)
	}
	if plan := e.AllocateWarehousesOrEmpty(WarehouseRequest{}); len(plan.Clustering.Clusters) != 0 {
		t.Fatalf("lenient warehouses = %+v, want empty plan", plan)
	}
	if plan := e.PlanZonesOrEmpty(ZoneRequest{}); len(plan.Clustering.Clusters) != 0 {
		t.Fatalf("lenient zones = %+v, want empty plan", plan)
	}
}
