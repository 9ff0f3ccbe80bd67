package api

import (
	"routeopt/internal/model"
	"routeopt/internal/opt"
	"routeopt/internal/store"
)

func toOptPoint(p model.GeoPoint) opt.Point {
	return opt.Point{Lat: p.Latitude, Lng: p.Longitude, Label: p.Label}
}

func toOptPoints(pts []model.GeoPoint) []opt.Point {
	out := make([]opt.Point, 0, len(pts))
	for _, p := range pts {
		out = append(out, toOptPoint(p))
	}
	return out
}

func fromOptPoint(p opt.Point) model.GeoPoint {
	return model.GeoPoint{Latitude: p.Lat, Longitude: p.Lng, Label: p.Label}
}

func fromOptPoints(pts []opt.Point) []model.GeoPoint {
	out := make([]model.GeoPoint, 0, len(pts))
	for _, p := range pts {
		out = append(out, fromOptPoint(p))
	}
	return out
}

func toOptOrder(o model.OrderIn) opt.Order {
	return opt.Order{
		Ref:        o.OrderID,
		Delivery:   toOptPoint(o.DeliveryAddress),
		PostalCode: o.PostalCode,
		Weight:     store.OrderWeight(o),
	}
}

func storedToOptOrder(o model.OrderOut) opt.Order {
	ref := o.OrderID
	if ref == "" {
		ref = o.ID
	}
	return opt.Order{
		Ref:        ref,
		Delivery:   toOptPoint(o.DeliveryAddress),
		PostalCode: o.PostalCode,
		Weight:     o.Weight,
	}
}

func fromWarnings(ws []opt.Warning) []model.WarningOut {
	if len(ws) == 0 {
		return nil
	}
	out := make([]model.WarningOut, 0, len(ws))
	for _, w := range ws {
		out = append(out, model.WarningOut{Code: w.Code, Ref: w.Ref, Message: w.Message})
	}
	return out
}

func toRouteResponse(requestID string, sol opt.RouteSolution) model.RouteOptimizeResponse {
	return model.RouteOptimizeResponse{
		RequestID:     requestID,
		Method:        sol.Method,
		Route:         fromOptPoints(sol.Route.Points),
		TotalDistance: sol.Route.DistanceKm,
		TotalTime:     sol.Route.TimeHours,
		EstimatedCost: sol.Route.CostEstimate,
		Generations:   sol.Generations,
		Iterations:    sol.Iterations,
		Seed:          sol.Seed,
	}
}

func toFleetResponse(requestID string, sol opt.FleetSolution) model.FleetOptimizeResponse {
	routes := make([]model.VehicleRouteOut, 0, len(sol.Routes))
	for _, vr := range sol.Routes {
		refs := make([]string, 0, len(vr.Load.Orders))
		for _, o := range vr.Load.Orders {
			refs = append(refs, o.Ref)
		}
		routes = append(routes, model.VehicleRouteOut{
			VehicleID:     vr.VehicleID,
			Region:        vr.Region,
			Orders:        refs,
			Route:         fromOptPoints(vr.Route.Points),
			TotalWeight:   vr.Load.Weight,
			TotalDistance: vr.Route.DistanceKm,
			TotalTime:     vr.Route.TimeHours,
			EstimatedCost: vr.Route.CostEstimate,
			OrderCount:    len(vr.Load.Orders),
		})
	}
	return model.FleetOptimizeResponse{
		RequestID:     requestID,
		Routes:        routes,
		TotalDistance: sol.TotalDistance,
		TotalVehicles: sol.TotalVehicles,
		TotalOrders:   sol.TotalOrders,
		Warnings:      fromWarnings(sol.Warnings),
	}
}

func toWarehouseResponse(requestID string, plan opt.WarehousePlan) model.WarehouseAllocateResponse {
	centroids := make([]model.GeoPoint, 0, len(plan.Clustering.Clusters))
	clusters := make([][]model.GeoPoint, 0, len(plan.Clustering.Clusters))
	for _, c := range plan.Clustering.Clusters {
		centroids = append(centroids, fromOptPoint(c.Centroid))
		clusters = append(clusters, fromOptPoints(c.Members))
	}
	return model.WarehouseAllocateResponse{
		RequestID:  requestID,
		Centroids:  centroids,
		Clusters:   clusters,
		TotalCost:  plan.TotalCost,
		Iterations: plan.Clustering.Iterations,
		Warnings:   fromWarnings(plan.Clustering.Warnings),
	}
}

func toZoneResponse(requestID string, plan opt.ZonePlan) model.ZoneOptimizeResponse {
	centroids := make([]model.GeoPoint, 0, len(plan.Clustering.Clusters))
	zones := make([][]model.GeoPoint, 0, len(plan.Clustering.Clusters))
	for _, c := range plan.Clustering.Clusters {
		centroids = append(centroids, fromOptPoint(c.Centroid))
		zones = append(zones, fromOptPoints(c.Members))
	}
	return model.ZoneOptimizeResponse{
		RequestID:       requestID,
		Centroids:       centroids,
		Zones:           zones,
		AverageZoneSize: plan.AverageZoneSize,
		ZoneEfficiency:  plan.Efficiency,
		Iterations:      plan.Clustering.Iterations,
		Warnings:        fromWarnings(plan.Clustering.Warnings),
	}
}
