package api

import (
	"fmt"
	"net/url"

	"routeopt/internal/model"
	"routeopt/internal/opt"
)

const (
	maxDeliveryPoints = 10000
	maxBatchOrders    = 10000
)

func validatePoint(field string, p model.GeoPoint) error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%s: latitude must be within [-90,90]", field)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%s: longitude must be within [-180,180]", field)
	}
	return nil
}

func validatePoints(field string, pts []model.GeoPoint) error {
	if len(pts) > maxDeliveryPoints {
		return fmt.Errorf("%s must have at most %d entries", field, maxDeliveryPoints)
	}
	for i, p := range pts {
		if err := validatePoint(fmt.Sprintf("%s[%d]", field, i), p); err != nil {
			return err
		}
	}
	return nil
}

func validateCallbackURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("callbackUrl must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("callbackUrl scheme must be http or https")
	}
	return nil
}

func validateRouteRequest(req *model.RouteOptimizeRequest) error {
	if len(req.DeliveryPoints) == 0 {
		return fmt.Errorf("deliveryPoints must not be empty")
	}
	if err := validatePoints("deliveryPoints", req.DeliveryPoints); err != nil {
		return err
	}
	if req.StartPoint != nil {
		if err := validatePoint("startPoint", *req.StartPoint); err != nil {
			return err
		}
	}
	if req.Method != "" && req.Method != opt.MethodTSP && req.Method != opt.MethodGenetic && req.Method != opt.MethodAnnealing {
		return fmt.Errorf("invalid method: %s (allowed: tsp,genetic,annealing)", req.Method)
	}
	if req.Generations < 0 {
		return fmt.Errorf("generations must be >= 0")
	}
	if req.PopulationSize < 0 {
		return fmt.Errorf("populationSize must be >= 0")
	}
	if req.MaxIterations < 0 {
		return fmt.Errorf("maxIterations must be >= 0")
	}
	if req.InitialTemperature < 0 {
		return fmt.Errorf("initialTemperature must be >= 0")
	}
	return validateCallbackURL(req.CallbackURL)
}

func validateOrder(field string, o model.OrderIn) error {
	if err := validatePoint(field+".deliveryAddress", o.DeliveryAddress); err != nil {
		return err
	}
	for j, it := range o.Items {
		if it.Weight < 0 {
			return fmt.Errorf("%s.items[%d]: weight must be >= 0", field, j)
		}
		if it.Quantity < 0 {
			return fmt.Errorf("%s.items[%d]: quantity must be >= 0", field, j)
		}
	}
	return nil
}

func validateFleetRequest(req *model.FleetOptimizeRequest) error {
	if len(req.Orders) > maxBatchOrders {
		return fmt.Errorf("orders must have at most %d entries", maxBatchOrders)
	}
	for i, o := range req.Orders {
		if err := validateOrder(fmt.Sprintf("orders[%d]", i), o); err != nil {
			return err
		}
	}
	if req.WarehouseLocation != nil {
		if err := validatePoint("warehouseLocation", *req.WarehouseLocation); err != nil {
			return err
		}
	}
	if req.VehicleCapacity < 0 {
		return fmt.Errorf("vehicleCapacity must be >= 0")
	}
	return validateCallbackURL(req.CallbackURL)
}

func validateWarehouseRequest(req *model.WarehouseAllocateRequest) error {
	if len(req.DeliveryPoints) == 0 {
		return fmt.Errorf("deliveryPoints must not be empty")
	}
	if err := validatePoints("deliveryPoints", req.DeliveryPoints); err != nil {
		return err
	}
	if err := validatePoints("warehouseCandidates", req.WarehouseCandidates); err != nil {
		return err
	}
	if req.NumberOfWarehouses < 0 {
		return fmt.Errorf("numberOfWarehouses must be >= 0")
	}
	return nil
}

func validateZoneRequest(req *model.ZoneOptimizeRequest) error {
	if len(req.DeliveryPoints) == 0 {
		return fmt.Errorf("deliveryPoints must not be empty")
	}
	if err := validatePoints("deliveryPoints", req.DeliveryPoints); err != nil {
		return err
	}
	if req.NumberOfZones < 0 {
		return fmt.Errorf("numberOfZones must be >= 0")
	}
	return nil
}

func validateCostRequest(req *model.CostEstimateRequest) error {
	if req.Distance < 0 {
		return fmt.Errorf("distance must be >= 0")
	}
	if req.Stops < 0 {
		return fmt.Errorf("stops must be >= 0")
	}
	return nil
}

func validateOrdersBatch(orders []model.OrderIn) error {
	if len(orders) == 0 {
		return fmt.Errorf("orders must not be empty")
	}
	if len(orders) > maxBatchOrders {
		return fmt.Errorf("orders must have at most %d entries", maxBatchOrders)
	}
	for i, o := range orders {
		if err := validateOrder(fmt.Sprintf("orders[%d]", i), o); err != nil {
			return err
		}
	}
	return nil
}
