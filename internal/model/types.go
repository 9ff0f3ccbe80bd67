package model

import "time"

// GeoPoint is a coordinate as it travels over the wire.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// RouteOptimizeRequest is the body of POST /v1/optimize/route.
type RouteOptimizeRequest struct {
	DeliveryPoints     []GeoPoint `json:"deliveryPoints"`
	StartPoint         *GeoPoint  `json:"startPoint,omitempty"`
	Method             string     `json:"method,omitempty"`
	Generations        int        `json:"generations,omitempty"`
	PopulationSize     int        `json:"populationSize,omitempty"`
	MaxIterations      int        `json:"maxIterations,omitempty"`
	InitialTemperature float64    `json:"initialTemperature,omitempty"`
	Seed               int64      `json:"seed,omitempty"`
	Async              bool       `json:"async,omitempty"`
	CallbackURL        string     `json:"callbackUrl,omitempty"`
}

type RouteOptimizeResponse struct {
	RequestID     string     `json:"requestId"`
	Method        string     `json:"method"`
	Route         []GeoPoint `json:"route"`
	TotalDistance float64    `json:"totalDistance"`
	TotalTime     float64    `json:"totalTime"`
	EstimatedCost float64    `json:"estimatedCost"`
	Generations   int        `json:"generations,omitempty"`
	Iterations    int        `json:"iterations,omitempty"`
	Seed          int64      `json:"seed"`
}

// OrderItem is one line of an order. Quantity zero counts as one.
type OrderItem struct {
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity,omitempty"`
}

// OrderIn is an order as submitted by a client or an importer.
type OrderIn struct {
	OrderID         string      `json:"orderId"`
	DeliveryAddress GeoPoint    `json:"deliveryAddress"`
	PostalCode      string      `json:"postalCode"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderOut is a stored order. Region and Weight are derived at intake.
type OrderOut struct {
	ID              string      `json:"id"`
	OrderID         string      `json:"orderId"`
	Region          string      `json:"region"`
	DeliveryAddress GeoPoint    `json:"deliveryAddress"`
	PostalCode      string      `json:"postalCode"`
	Weight          float64     `json:"weight"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// FleetOptimizeRequest is the body of POST /v1/optimize/fleet. Inline
// Orders take precedence; without them the stored orders for Region are
// loaded instead.
type FleetOptimizeRequest struct {
	Orders            []OrderIn `json:"orders,omitempty"`
	Region            string    `json:"region,omitempty"`
	WarehouseLocation *GeoPoint `json:"warehouseLocation,omitempty"`
	VehicleCapacity   float64   `json:"vehicleCapacity,omitempty"`
	Async             bool      `json:"async,omitempty"`
	CallbackURL       string    `json:"callbackUrl,omitempty"`
}

type VehicleRouteOut struct {
	VehicleID     string     `json:"vehicleId"`
	Region        string     `json:"region"`
	Orders        []string   `json:"orders"`
	Route         []GeoPoint `json:"route"`
	TotalWeight   float64    `json:"totalWeight"`
	TotalDistance float64    `json:"totalDistance"`
	TotalTime     float64    `json:"totalTime"`
	EstimatedCost float64    `json:"estimatedCost"`
	OrderCount    int        `json:"orderCount"`
}

type FleetOptimizeResponse struct {
	RequestID     string            `json:"requestId"`
	Routes        []VehicleRouteOut `json:"routes"`
	TotalDistance float64           `json:"totalDistance"`
	TotalVehicles int               `json:"totalVehicles"`
	TotalOrders   int               `json:"totalOrders"`
	Warnings      []WarningOut      `json:"warnings,omitempty"`
}

// WarningOut surfaces a non-fatal optimizer condition on a response.
type WarningOut struct {
	Code    string `json:"code"`
	Ref     string `json:"ref,omitempty"`
	Message string `json:"message"`
}

// WarehouseAllocateRequest is the body of POST /v1/optimize/warehouses.
type WarehouseAllocateRequest struct {
	DeliveryPoints      []GeoPoint `json:"deliveryPoints"`
	WarehouseCandidates []GeoPoint `json:"warehouseCandidates,omitempty"`
	NumberOfWarehouses  int        `json:"numberOfWarehouses,omitempty"`
	SnapToCandidates    bool       `json:"snapToCandidates,omitempty"`
	Seed                int64      `json:"seed,omitempty"`
}

type WarehouseAllocateResponse struct {
	RequestID  string       `json:"requestId"`
	Centroids  []GeoPoint   `json:"centroids"`
	Clusters   [][]GeoPoint `json:"clusters"`
	TotalCost  float64      `json:"totalCost"`
	Iterations int          `json:"iterations"`
	Warnings   []WarningOut `json:"warnings,omitempty"`
}

// ZoneOptimizeRequest is the body of POST /v1/optimize/zones.
type ZoneOptimizeRequest struct {
	DeliveryPoints []GeoPoint `json:"deliveryPoints"`
	NumberOfZones  int        `json:"numberOfZones,omitempty"`
	Seed           int64      `json:"seed,omitempty"`
}

type ZoneOptimizeResponse struct {
	RequestID       string       `json:"requestId"`
	Centroids       []GeoPoint   `json:"centroids"`
	Zones           [][]GeoPoint `json:"zones"`
	AverageZoneSize float64      `json:"averageZoneSize"`
	ZoneEfficiency  float64      `json:"zoneEfficiency"`
	Iterations      int          `json:"iterations"`
	Warnings        []WarningOut `json:"warnings,omitempty"`
}

type CostEstimateRequest struct {
	Distance float64 `json:"distance"`
	Stops    int     `json:"stops"`
}

type CostEstimateResponse struct {
	Cost float64 `json:"cost"`
}

// Job states for async optimization runs.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job tracks one async optimization run.
type Job struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
}
