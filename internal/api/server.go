package api

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"routeopt/internal/config"
	"routeopt/internal/geo"
	"routeopt/internal/model"
	"routeopt/internal/notify"
	"routeopt/internal/opt"
	"routeopt/internal/store"
)

type Server struct {
	Log      *zap.Logger
	Store    store.Store
	Engine   *opt.Engine
	Broker   EventBroker
	Notifier *notify.Notifier
	Limiter  *rate.Limiter

	mu   sync.Mutex
	jobs map[string]*model.Job
}

// NewServer wires the store, broker, engine and notifier from config. With
// no DATABASE_URL the store is in-memory; with no REDIS_URL job events stay
// process-local.
func NewServer(cfg config.Config, log *zap.Logger) (*Server, error) {
	regions := opt.DefaultRegionMap()
	if cfg.RegionMapFile != "" {
		m, err := config.RegionsFromFile(cfg.RegionMapFile)
		if err != nil {
			return nil, err
		}
		regions = opt.RegionMap(m)
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL, regions)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st = pg
	} else {
		st = store.NewMemory(regions)
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Warn("redis broker unavailable, using in-memory fanout", zap.Error(err))
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	engine := opt.NewEngine(opt.Config{
		Cost: geo.CostModel{
			AverageSpeedKmh: cfg.AverageSpeedKmh,
			BaseCost:        cfg.BaseCost,
			PerKmCost:       cfg.PerKmCost,
			PerStopCost:     cfg.PerStopCost,
		},
		Fleet:             opt.FleetParams{VehicleCapacity: cfg.VehicleCapacity, Regions: regions},
		DefaultWarehouses: cfg.DefaultWarehouses,
		DefaultZones:      cfg.DefaultZones,
	})

	qps := cfg.RateLimitQPS
	if qps <= 0 {
		qps = 50
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 100
	}

	return &Server{
		Log:      log,
		Store:    st,
		Engine:   engine,
		Broker:   broker,
		Notifier: notify.NewNotifier(cfg.CallbackSecret, cfg.CallbackMaxAttempts, log.Named("notify")),
		Limiter:  rate.NewLimiter(rate.Limit(qps), burst),
		jobs:     map[string]*model.Job{},
	}, nil
}

// Routes builds the service mux. Optimization endpoints sit behind the
// rate limiter; everything else is served directly.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)

	mux.Handle("/v1/optimize/route", s.RateLimit(http.HandlerFunc(s.OptimizeRouteHandler)))
	mux.Handle("/v1/optimize/fleet", s.RateLimit(http.HandlerFunc(s.OptimizeFleetHandler)))
	mux.Handle("/v1/optimize/warehouses", s.RateLimit(http.HandlerFunc(s.AllocateWarehousesHandler)))
	mux.Handle("/v1/optimize/zones", s.RateLimit(http.HandlerFunc(s.PlanZonesHandler)))
	mux.HandleFunc("/v1/optimize/stats", s.StatsHandler)
	mux.HandleFunc("/v1/optimize/stream", s.StreamHandler)

	mux.HandleFunc("/v1/cost/estimate", s.CostEstimateHandler)
	mux.HandleFunc("/v1/engine/config", s.EngineConfigHandler)

	mux.HandleFunc("/v1/orders", s.OrdersHandler)
	mux.HandleFunc("/v1/orders/", s.OrderByIDHandler)
	mux.HandleFunc("/v1/jobs/", s.JobByIDHandler)

	mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
	mux.HandleFunc("/docs", s.DocsHandler)
	mux.HandleFunc("/debug/info", s.DebugInfoHandler)
	return mux
}
