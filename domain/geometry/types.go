package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// FeaturePoint is one element of a compound's expanded mass-defect space.
// MassDefect is always in [0, 1).
type FeaturePoint struct {
	NominalMass int     `json:"nominal_mass"`
	MassDefect  float64 `json:"mass_defect"`
}

// SplitMass floors mass into its integer and fractional parts.
func SplitMass(mass float64) FeaturePoint {
	whole := math.Floor(mass)
	frac := mass - whole
	if frac >= 1 {
		// mass - floor(mass) rounds up to 1 for tiny negative inputs.
		whole++
		frac = 0
	}
	return FeaturePoint{NominalMass: int(whole), MassDefect: frac}
}

// Vec returns the point as a plane vector.
func (p FeaturePoint) Vec() r2.Vec {
	return PointOf(p.NominalMass, p.MassDefect)
}

func (p FeaturePoint) String() string {
	return fmt.Sprintf("(%d, %.6f)", p.NominalMass, p.MassDefect)
}

// PointOf places a nominal mass / mass defect pair in the plane.
func PointOf(nominalMass int, massDefect float64) r2.Vec {
	return r2.Vec{X: float64(nominalMass), Y: massDefect}
}

// Region is a convex hull boundary with vertices in counter-clockwise order.
// Edges are consecutive vertex pairs, the last one wrapping to the first.
type Region struct {
	vertices []FeaturePoint
}

// Vertices returns a copy of the hull vertices.
func (r Region) Vertices() []FeaturePoint {
	out := make([]FeaturePoint, len(r.vertices))
	copy(out, r.vertices)
	return out
}

// Len returns the number of vertices (and edges).
func (r Region) Len() int { return len(r.vertices) }

// Edge returns the endpoints of edge i, i in [0, Len()).
func (r Region) Edge(i int) (a, b r2.Vec) {
	n := len(r.vertices)
	return r.vertices[i].Vec(), r.vertices[(i+1)%n].Vec()
}

// Area returns the enclosed area (shoelace formula); positive for a valid region.
func (r Region) Area() float64 {
	var twice float64
	for i := 0; i < r.Len(); i++ {
		a, b := r.Edge(i)
		twice += r2.Cross(a, b)
	}
	return twice / 2
}
