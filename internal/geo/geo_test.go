package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	if d := Distance(52.52, 13.405, 52.52, 13.405); d != 0 {
		t.Fatalf("distance between identical points = %v, want 0", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Distance(52.52, 13.405, 48.8566, 2.3522)
	b := Distance(48.8566, 2.3522, 52.52, 13.405)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", a, b)
	}
	if a < 800 || a > 900 {
		t.Fatalf("Berlin-Paris distance = %v km, want ~878", a)
	}
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is close to 111.19 km on a 6371 km sphere.
	d := Distance(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.1 {
		t.Fatalf("one degree latitude = %v km, want ~111.19", d)
	}
}

func TestTravelTimeDefaultSpeed(t *testing.T) {
	m := DefaultCostModel()
	if got := m.TravelTime(80); math.Abs(got-2) > 1e-9 {
		t.Fatalf("TravelTime(80) = %v, want 2", got)
	}
	var zero CostModel
	if got := zero.TravelTime(40); math.Abs(got-1) > 1e-9 {
		t.Fatalf("TravelTime with zero speed = %v, want fallback to 40 km/h", got)
	}
}

func TestDeliveryCost(t *testing.T) {
	m := DefaultCostModel()
	// 50 + 8*10 + 10*3 = 160
	if got := m.DeliveryCost(10, 3); math.Abs(got-160) > 1e-9 {
		t.Fatalf("DeliveryCost(10, 3) = %v, want 160", got)
	}
	if got := m.DeliveryCost(0, 0); math.Abs(got-50) > 1e-9 {
		t.Fatalf("DeliveryCost(0, 0) = %v, want base cost 50", got)
	}
}
