package opt

import (
	"fmt"
	"sort"

	"routeopt/internal/geo"
)

const (
	DefaultVehicleCapacity = 100.0

	// DefaultRegion collects orders whose postal code matches no prefix.
	DefaultRegion = "default"
)

// RegionMap maps postal code prefixes to region names.
type RegionMap map[string]string

func DefaultRegionMap() RegionMap {
	return RegionMap{
		"11": "north",
		"40": "west",
		"56": "south",
		"70": "east",
	}
}

// RegionFor resolves a postal code to a region by longest matching prefix.
// Codes with no matching prefix fall into DefaultRegion.
func (m RegionMap) RegionFor(postalCode string) string {
	for l := len(postalCode); l > 0; l-- {
		if r, ok := m[postalCode[:l]]; ok {
			return r
		}
	}
	return DefaultRegion
}

// FleetParams tunes the fleet partitioner. Zero values fall back to the
// package defaults.
type FleetParams struct {
	VehicleCapacity float64
	Regions         RegionMap
}

// OptimizeFleet splits orders into per-region vehicle loads and routes each
// load from the warehouse with NearestNeighbor. Orders are packed greedily
// in input order: a load is closed as soon as the next order would push it
// over capacity. An order heavier than the capacity still ships, alone, and
// is reported as a warning rather than dropped. Vehicle ids are assigned in
// region name order so the same input always yields the same ids.
func OptimizeFleet(orders []Order, warehouse Point, p FleetParams, cm geo.CostModel) FleetSolution {
	if p.VehicleCapacity <= 0 {
		p.VehicleCapacity = DefaultVehicleCapacity
	}
	regions := p.Regions
	if len(regions) == 0 {
		regions = DefaultRegionMap()
	}

	sol := FleetSolution{Routes: []VehicleRoute{}}
	if len(orders) == 0 {
		return sol
	}

	byRegion := map[string][]Order{}
	var names []string
	for _, o := range orders {
		r := regions.RegionFor(o.PostalCode)
		if _, ok := byRegion[r]; !ok {
			names = append(names, r)
		}
		byRegion[r] = append(byRegion[r], o)
	}
	sort.Strings(names)

	n := 0
	for _, name := range names {
		for _, load := range packLoads(byRegion[name], p.VehicleCapacity) {
			n++
			if load.Weight > p.VehicleCapacity {
				sol.Warnings = append(sol.Warnings, Warning{
					Code:    WarnOversizedOrder,
					Ref:     load.Orders[0].Ref,
					Message: fmt.Sprintf("order weight %.1f exceeds vehicle capacity %.1f, assigned a dedicated vehicle", load.Weight, p.VehicleCapacity),
				})
			}
			route := NearestNeighbor(load.Points(), &warehouse, cm)
			sol.Routes = append(sol.Routes, VehicleRoute{
				VehicleID: fmt.Sprintf("vehicle_%d", n),
				Region:    name,
				Load:      load,
				Route:     route,
			})
			sol.TotalDistance += route.DistanceKm
			sol.TotalOrders += len(load.Orders)
		}
	}
	sol.TotalVehicles = len(sol.Routes)
	return sol
}

// packLoads fills vehicles in input order, closing a load when the next
// order would exceed capacity. An oversized order lands in a load of its
// own because any follow-up would immediately close it.
func packLoads(orders []Order, capacity float64) []VehicleLoad {
	var loads []VehicleLoad
	var cur VehicleLoad
	for _, o := range orders {
		if len(cur.Orders) > 0 && cur.Weight+o.Weight > capacity {
			loads = append(loads, cur)
			cur = VehicleLoad{}
		}
		cur.Orders = append(cur.Orders, o)
		cur.Weight += o.Weight
	}
	if len(cur.Orders) > 0 {
		loads = append(loads, cur)
	}
	return loads
}
