package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"routeopt/internal/metrics"
	"routeopt/internal/model"
	"routeopt/internal/opt"
	"routeopt/internal/store"
)

// OptimizeRouteHandler handles POST /v1/optimize/route. With async=true the
// run happens on a job and the response carries the job id instead of the
// route.
func (s *Server) OptimizeRouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.RouteOptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateRouteRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid route request", err.Error(), r.URL.Path)
		return
	}

	if req.Async {
		job := s.startJob("route", req.CallbackURL, func(jobID string, onProgress func(opt.Progress)) (any, error) {
			sol, err := s.Engine.OptimizeRoute(optRouteRequest(req, onProgress))
			if err != nil {
				return nil, err
			}
			return toRouteResponse(jobID, sol), nil
		})
		writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.ID, "status": job.Status})
		return
	}

	started := time.Now()
	sol, err := s.Engine.OptimizeRoute(optRouteRequest(req, nil))
	observeRun(methodLabel(req.Method), started, err)
	if err != nil {
		if errors.Is(err, opt.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid route request", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Optimize route failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, toRouteResponse(uuid.NewString(), sol))
}

func optRouteRequest(req model.RouteOptimizeRequest, onProgress func(opt.Progress)) opt.RouteRequest {
	var start *opt.Point
	if req.StartPoint != nil {
		p := toOptPoint(*req.StartPoint)
		start = &p
	}
	return opt.RouteRequest{
		Points:             toOptPoints(req.DeliveryPoints),
		Start:              start,
		Method:             req.Method,
		Generations:        req.Generations,
		PopulationSize:     req.PopulationSize,
		MaxIterations:      req.MaxIterations,
		InitialTemperature: req.InitialTemperature,
		Seed:               req.Seed,
		OnProgress:         onProgress,
	}
}

func methodLabel(m string) string {
	if m == "" {
		return opt.MethodTSP
	}
	return m
}

// OptimizeFleetHandler handles POST /v1/optimize/fleet. Orders come inline or,
// when the request carries none, from the store (optionally filtered by
// region).
func (s *Server) OptimizeFleetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.FleetOptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateFleetRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid fleet request", err.Error(), r.URL.Path)
		return
	}

	if req.Async {
		job := s.startJob("fleet", req.CallbackURL, func(jobID string, _ func(opt.Progress)) (any, error) {
			return s.runFleet(context.Background(), jobID, req)
		})
		writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.ID, "status": job.Status})
		return
	}

	started := time.Now()
	resp, err := s.runFleet(r.Context(), uuid.NewString(), req)
	observeRun("fleet", started, err)
	if err != nil {
		if errors.Is(err, opt.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid fleet request", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Optimize fleet failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// runFleet resolves the order set (inline orders win over stored ones) and
// runs the partitioner.
func (s *Server) runFleet(ctx context.Context, requestID string, req model.FleetOptimizeRequest) (model.FleetOptimizeResponse, error) {
	var orders []opt.Order
	if len(req.Orders) > 0 {
		orders = make([]opt.Order, 0, len(req.Orders))
		for _, o := range req.Orders {
			orders = append(orders, toOptOrder(o))
		}
	} else {
		cursor := ""
		for {
			page, next, err := s.Store.ListOrders(ctx, req.Region, cursor, 500)
			if err != nil {
				return model.FleetOptimizeResponse{}, err
			}
			for _, o := range page {
				orders = append(orders, storedToOptOrder(o))
			}
			if next == "" {
				break
			}
			cursor = next
		}
	}

	warehouse := ordersCentroid(orders)
	if req.WarehouseLocation != nil {
		warehouse = toOptPoint(*req.WarehouseLocation)
	}

	sol, err := s.Engine.OptimizeFleet(opt.FleetRequest{
		Orders:          orders,
		Warehouse:       warehouse,
		VehicleCapacity: req.VehicleCapacity,
	})
	if err != nil {
		return model.FleetOptimizeResponse{}, err
	}
	return toFleetResponse(requestID, sol), nil
}

// ordersCentroid is the fallback warehouse when the request names none.
func ordersCentroid(orders []opt.Order) opt.Point {
	if len(orders) == 0 {
		return opt.Point{Label: "warehouse"}
	}
	var lat, lng float64
	for _, o := range orders {
		lat += o.Delivery.Lat
		lng += o.Delivery.Lng
	}
	n := float64(len(orders))
	return opt.Point{Lat: lat / n, Lng: lng / n, Label: "warehouse"}
}

// AllocateWarehousesHandler handles POST /v1/optimize/warehouses.
func (s *Server) AllocateWarehousesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.WarehouseAllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateWarehouseRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid warehouse request", err.Error(), r.URL.Path)
		return
	}

	started := time.Now()
	plan, err := s.Engine.AllocateWarehouses(opt.WarehouseRequest{
		Points:             toOptPoints(req.DeliveryPoints),
		Candidates:         toOptPoints(req.WarehouseCandidates),
		NumberOfWarehouses: req.NumberOfWarehouses,
		SnapToCandidates:   req.SnapToCandidates,
		Seed:               req.Seed,
	})
	observeRun("warehouses", started, err)
	if err != nil {
		if errors.Is(err, opt.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid warehouse request", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Allocate warehouses failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseResponse(uuid.NewString(), plan))
}

// PlanZonesHandler handles POST /v1/optimize/zones.
func (s *Server) PlanZonesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.ZoneOptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateZoneRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid zone request", err.Error(), r.URL.Path)
		return
	}

	started := time.Now()
	plan, err := s.Engine.PlanZones(opt.ZoneRequest{
		Points:        toOptPoints(req.DeliveryPoints),
		NumberOfZones: req.NumberOfZones,
		Seed:          req.Seed,
	})
	observeRun("zones", started, err)
	if err != nil {
		if errors.Is(err, opt.ErrInvalidInput) {
			writeProblem(w, http.StatusBadRequest, "Invalid zone request", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Plan zones failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, toZoneResponse(uuid.NewString(), plan))
}

// CostEstimateHandler handles POST /v1/cost/estimate.
func (s *Server) CostEstimateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.CostEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateCostRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid cost request", err.Error(), r.URL.Path)
		return
	}
	cost, err := s.Engine.EstimateCost(req.Distance, req.Stops)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid cost request", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, model.CostEstimateResponse{Cost: cost})
}

// EngineConfigHandler returns the effective engine configuration.
func (s *Server) EngineConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.Engine.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"defaultMethod": opt.MethodTSP,
		"cost": map[string]any{
			"averageSpeedKmh": cfg.Cost.AverageSpeedKmh,
			"baseCost":        cfg.Cost.BaseCost,
			"perKmCost":       cfg.Cost.PerKmCost,
			"perStopCost":     cfg.Cost.PerStopCost,
		},
		"fleet": map[string]any{
			"vehicleCapacity": cfg.Fleet.VehicleCapacity,
			"regions":         cfg.Fleet.Regions,
		},
		"clustering": map[string]any{
			"defaultWarehouses": cfg.DefaultWarehouses,
			"defaultZones":      cfg.DefaultZones,
		},
	})
}

// StatsHandler reports the last run per optimization method.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": s.Engine.LastRuns()})
}

// OrdersHandler handles POST/GET /v1/orders.
func (s *Server) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Orders []model.OrderIn `json:"orders"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateOrdersBatch(req.Orders); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid orders", err.Error(), r.URL.Path)
			return
		}
		imp, created, skipped, err := s.Store.CreateOrders(r.Context(), req.Orders)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create orders failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"importId": imp, "created": created, "skipped": skipped})
	case http.MethodGet:
		region := r.URL.Query().Get("region")
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListOrders(r.Context(), region, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List orders failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// OrderByIDHandler handles GET /v1/orders/{id}. The id may be the internal id
// or the external order reference.
func (s *Server) OrderByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	o, err := s.Store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Order not found", id, r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get order failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using the Postgres store
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, 200, map[string]string{"status": "ready"})
}

func observeRun(method string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OptimizeRuns.WithLabelValues(method, outcome).Inc()
	metrics.OptimizeDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
