package opt

import (
	"math/rand"
	"testing"
)

func TestKMeansEmptyInput(t *testing.T) {
	cl := KMeans(nil, 3, nil, KMeansParams{}, rand.New(rand.NewSource(1)))
	if len(cl.Clusters) != 0 {
		t.Fatalf("empty input should yield no clusters, got %d", len(cl.Clusters))
	}
	cl = KMeans(clusterPoints(), 0, nil, KMeansParams{}, rand.New(rand.NewSource(1)))
	if len(cl.Clusters) != 0 {
		t.Fatalf("k=0 should yield no clusters, got %d", len(cl.Clusters))
	}
}

func TestKMeansPartitionsEveryPoint(t *testing.T) {
	points := clusterPoints()
	cl := KMeans(points, 3, nil, KMeansParams{}, rand.New(rand.NewSource(42)))

	if len(cl.Clusters) == 0 || len(cl.Clusters) > 3 {
		t.Fatalf("got %d clusters, want 1..3", len(cl.Clusters))
	}
	seen := map[string]int{}
	for _, c := range cl.Clusters {
		if len(c.Members) == 0 {
			t.Fatal("surviving cluster has no members")
		}
		for _, m := range c.Members {
			seen[m.Label]++
		}
	}
	if len(seen) != len(points) {
		t.Fatalf("clusters cover %d distinct points, want %d", len(seen), len(points))
	}
	for label, n := range seen {
		if n != 1 {
			t.Fatalf("point %q assigned %d times", label, n)
		}
	}
	if cl.Iterations < 1 {
		t.Fatalf("iterations = %d, want at least 1", cl.Iterations)
	}
}

func TestKMeansCentroidsAreMemberMeans(t *testing.T) {
	points := clusterPoints()
	cl := KMeans(points, 3, nil, KMeansParams{}, rand.New(rand.NewSource(9)))
	for i, c := range cl.Clusters {
		var mean Point
		for _, m := range c.Members {
			mean.Lat += m.Lat
			mean.Lng += m.Lng
		}
		mean.Lat /= float64(len(c.Members))
		mean.Lng /= float64(len(c.Members))
		if d := dist(mean, c.Centroid); d > 1e-6 {
			t.Fatalf("cluster %d centroid is %v km from its member mean", i, d)
		}
	}
}

func TestKMeansMoreZonesThanPoints(t *testing.T) {
	points := []Point{{Lat: 52.52, Lng: 13.405, Label: "only"}}
	cl := KMeans(points, 5, nil, KMeansParams{}, rand.New(rand.NewSource(3)))
	if len(cl.Clusters) != 1 {
		t.Fatalf("single point with k=5 should yield 1 cluster, got %d", len(cl.Clusters))
	}
	c := cl.Clusters[0]
	if len(c.Members) != 1 || c.Members[0].Label != "only" {
		t.Fatalf("cluster members = %+v, want the single input point", c.Members)
	}
	if d := dist(c.Centroid, points[0]); d > 1e-9 {
		t.Fatalf("centroid is %v km away from the only point", d)
	}
}

func TestKMeansDegenerateClusterDropped(t *testing.T) {
	// Identical coordinates force every point onto the first centroid.
	points := []Point{
		{Lat: 52.52, Lng: 13.405, Label: "a"},
		{Lat: 52.52, Lng: 13.405, Label: "b"},
		{Lat: 52.52, Lng: 13.405, Label: "c"},
	}
	cl := KMeans(points, 2, nil, KMeansParams{}, rand.New(rand.NewSource(5)))
	if len(cl.Clusters) != 1 {
		t.Fatalf("got %d clusters, want 1 after the empty one is dropped", len(cl.Clusters))
	}
	if len(cl.Clusters[0].Members) != 3 {
		t.Fatalf("surviving cluster has %d members, want 3", len(cl.Clusters[0].Members))
	}
	if len(cl.Warnings) == 0 || cl.Warnings[0].Code != WarnDegenerateCluster {
		t.Fatalf("want a degenerate_cluster warning, got %+v", cl.Warnings)
	}
}

func TestKMeansSnapKeepsCentroidsOnCandidates(t *testing.T) {
	points := clusterPoints()
	candidates := []Point{
		{Lat: 52.50, Lng: 13.35, Label: "site1"},
		{Lat: 52.53, Lng: 13.42, Label: "site2"},
		{Lat: 52.49, Lng: 13.39, Label: "site3"},
	}
	cl := KMeans(points, 2, candidates, KMeansParams{SnapToSeeds: true}, rand.New(rand.NewSource(8)))
	for i, c := range cl.Clusters {
		onCandidate := false
		for _, cand := range candidates {
			if dist(c.Centroid, cand) < 1e-9 {
				onCandidate = true
				break
			}
		}
		if !onCandidate {
			t.Fatalf("cluster %d centroid %+v is not a candidate site", i, c.Centroid)
		}
	}
}

func TestKMeansSeededCentroidsDriftWithoutSnap(t *testing.T) {
	points := clusterPoints()
	candidates := []Point{
		{Lat: 52.60, Lng: 13.50, Label: "far1"},
		{Lat: 52.40, Lng: 13.30, Label: "far2"},
	}
	cl := KMeans(points, 2, candidates, KMeansParams{}, rand.New(rand.NewSource(8)))
	// Without snapping, centroids settle on member means rather than sites.
	for i, c := range cl.Clusters {
		var mean Point
		for _, m := range c.Members {
			mean.Lat += m.Lat
			mean.Lng += m.Lng
		}
		mean.Lat /= float64(len(c.Members))
		mean.Lng /= float64(len(c.Members))
		if d := dist(mean, c.Centroid); d > 1e-6 {
			t.Fatalf("cluster %d centroid did not converge to member mean (off by %v km)", i, d)
		}
	}
}
