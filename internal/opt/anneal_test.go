package opt

import (
	"math/rand"
	"testing"

	"routeopt/internal/geo"
)

func TestAnnealReturnsPermutation(t *testing.T) {
	points := clusterPoints()
	route, stats := Anneal(points, AnnealParams{}, geo.DefaultCostModel(), rand.New(rand.NewSource(11)))
	assertSamePoints(t, points, route.Points)
	if stats.Iterations != DefaultMaxIterations {
		t.Fatalf("iterations = %d, want %d", stats.Iterations, DefaultMaxIterations)
	}
}

func TestAnnealNeverWorseThanInitialShuffle(t *testing.T) {
	points := clusterPoints()
	seed := int64(7)

	// The solver's first draw is the initial permutation; replay it.
	initial := permDistance(points, rand.New(rand.NewSource(seed)).Perm(len(points)))

	route, _ := Anneal(points, AnnealParams{}, geo.DefaultCostModel(), rand.New(rand.NewSource(seed)))
	if route.DistanceKm > initial+1e-9 {
		t.Fatalf("annealed distance %v worse than initial shuffle %v", route.DistanceKm, initial)
	}
}

func TestAnnealBestTracksMinimumSeen(t *testing.T) {
	points := clusterPoints()
	_, stats := Anneal(points, AnnealParams{}, geo.DefaultCostModel(), rand.New(rand.NewSource(23)))
	if len(stats.Snapshots) == 0 {
		t.Fatal("expected periodic snapshots")
	}
	for i := 1; i < len(stats.Snapshots); i++ {
		if stats.Snapshots[i].BestKm > stats.Snapshots[i-1].BestKm+1e-9 {
			t.Fatalf("best distance worsened at iteration %d", stats.Snapshots[i].Step)
		}
	}
	last := stats.Snapshots[len(stats.Snapshots)-1]
	if last.Step != DefaultMaxIterations {
		t.Fatalf("final snapshot at step %d, want %d", last.Step, DefaultMaxIterations)
	}
	if last.BestKm != stats.BestKm {
		t.Fatalf("final snapshot best %v disagrees with stats best %v", last.BestKm, stats.BestKm)
	}
}

func TestAnnealTinyInputFallsBack(t *testing.T) {
	points := []Point{{Lat: 0, Lng: 0, Label: "a"}}
	route, stats := Anneal(points, AnnealParams{}, geo.DefaultCostModel(), rand.New(rand.NewSource(1)))
	if len(route.Points) != 1 || route.Points[0].Label != "a" {
		t.Fatalf("single point input should come back as-is, got %+v", route.Points)
	}
	if stats.Iterations != 0 {
		t.Fatalf("tiny input should skip annealing, got %d iterations", stats.Iterations)
	}
}

func TestAnnealProgressCadence(t *testing.T) {
	points := clusterPoints()
	var steps []int
	p := AnnealParams{
		MaxIterations: 250,
		OnProgress:    func(pr Progress) { steps = append(steps, pr.Step) },
	}
	Anneal(points, p, geo.DefaultCostModel(), rand.New(rand.NewSource(2)))
	want := []int{100, 200, 250}
	if len(steps) != len(want) {
		t.Fatalf("progress steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("progress steps = %v, want %v", steps, want)
		}
	}
}
