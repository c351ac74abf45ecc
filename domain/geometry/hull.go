package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"negmdf/domain/core"
)

// MinVertices is the smallest vertex count of a region with an interior.
const MinVertices = 3

// flatness bounds how far, relative to the cloud's length, a vertex may sit
// off the line through the extreme points before the cloud has an interior.
const flatness = 1e-9

// Hull computes the convex hull of points with Andrew's monotone chain.
// The returned vertices run counter-clockwise from the lowest (nominal mass,
// mass defect) point; collinear boundary points and duplicates are dropped.
func Hull(points []FeaturePoint) (Region, error) {
	pts := make([]FeaturePoint, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].NominalMass != pts[j].NominalMass {
			return pts[i].NominalMass < pts[j].NominalMass
		}
		return pts[i].MassDefect < pts[j].MassDefect
	})
	pts = dedupe(pts)
	if len(pts) < MinVertices {
		return Region{}, core.NewDegenerateRegionError(len(pts), "need at least 3 distinct points")
	}

	hull := make([]FeaturePoint, 0, 2*len(pts))
	// lower chain
	for _, p := range pts {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper chain
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// last point repeats the first
	hull = hull[:len(hull)-1]

	if len(hull) < MinVertices || flat(pts[0], pts[len(pts)-1], hull) {
		return Region{}, core.NewDegenerateRegionError(len(pts), "all points are collinear")
	}
	return Region{vertices: hull}, nil
}

// turn is the z component of (b-a)×(c-a): positive for a counter-clockwise turn.
func turn(a, b, c FeaturePoint) float64 {
	av := a.Vec()
	return r2.Cross(r2.Sub(b.Vec(), av), r2.Sub(c.Vec(), av))
}

// flat reports whether every vertex lies within flatness·|c-a| of the line
// through a and c, the first and last points in sort order. Points that are
// collinear in exact arithmetic round to sliver hulls with near-zero area.
func flat(a, c FeaturePoint, vertices []FeaturePoint) bool {
	limit := flatness * r2.Norm2(r2.Sub(c.Vec(), a.Vec()))
	for _, v := range vertices {
		if math.Abs(turn(a, c, v)) > limit {
			return false
		}
	}
	return true
}

func dedupe(sorted []FeaturePoint) []FeaturePoint {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
