package geo

import "math"

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinates using the haversine formula.
func Distance(aLat, aLng, bLat, bLng float64) float64 {
	dLat := (bLat - aLat) * math.Pi / 180
	dLng := (bLng - aLng) * math.Pi / 180
	la1 := aLat * math.Pi / 180
	la2 := bLat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// CostModel holds the tunables for travel time and delivery cost estimates.
// The zero value is not usable; call DefaultCostModel.
type CostModel struct {
	AverageSpeedKmh float64
	BaseCost        float64
	PerKmCost       float64
	PerStopCost     float64
}

func DefaultCostModel() CostModel {
	return CostModel{
		AverageSpeedKmh: 40,
		BaseCost:        50,
		PerKmCost:       8,
		PerStopCost:     10,
	}
}

// TravelTime converts a distance to hours at the model's average speed.
func (m CostModel) TravelTime(distanceKm float64) float64 {
	speed := m.AverageSpeedKmh
	if speed <= 0 {
		speed = 40
	}
	return distanceKm / speed
}

// DeliveryCost estimates the monetary cost of a route: a fixed base plus a
// per-kilometer and a per-stop component.
func (m CostModel) DeliveryCost(distanceKm float64, stops int) float64 {
	return m.BaseCost + m.PerKmCost*distanceKm + m.PerStopCost*float64(stops)
}
