package geometry_test

import (
	"math/rand"
	"testing"

	"negmdf/domain/compound"
	"negmdf/domain/geometry"
)

// benchFeatures expands to 11×6×4×3 = 792 points.
var benchFeatures = []compound.Feature{
	{MaxCount: 10, UnitMassDefect: 49.9968},
	{MaxCount: 5, UnitMassDefect: 1.0034},
	{MaxCount: 3, UnitMassDefect: -0.0011},
	{MaxCount: 2, UnitMassDefect: 15.9949},
}

// BenchmarkExpand measures Cartesian-product enumeration.
// Complexity: O(P×F)
func BenchmarkExpand(b *testing.B) {
	e := geometry.NewExpander(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Expand(412.9664, benchFeatures); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHull measures hull construction over the expanded cloud.
// Complexity: O(P log P)
func BenchmarkHull(b *testing.B) {
	points, err := geometry.NewExpander(0).Expand(412.9664, benchFeatures)
	if err != nil {
		b.Fatalf("setup Expand failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := geometry.Hull(points); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLocate classifies random points in the hull's bounding strip.
// Complexity: O(V) per point
func BenchmarkLocate(b *testing.B) {
	points, _ := geometry.NewExpander(0).Expand(412.9664, benchFeatures)
	region, err := geometry.Hull(points)
	if err != nil {
		b.Fatalf("setup Hull failed: %v", err)
	}
	rng := rand.New(rand.NewSource(42))
	probes := make([]geometry.FeaturePoint, 1024)
	for i := range probes {
		probes[i] = geometry.FeaturePoint{NominalMass: 400 + rng.Intn(600), MassDefect: rng.Float64()}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := probes[i%len(probes)]
		_ = geometry.Locate(p.Vec(), region, geometry.DefaultTolerance)
	}
}
