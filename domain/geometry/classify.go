package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTolerance is the default edge distance, in mass-defect units, under
// which an outside point still matches a region.
const DefaultTolerance = 0.02

// Placement is where a point lies relative to a Region.
type Placement int

const (
	Outside Placement = iota
	Inside
	OnBoundary
	NearEdge
)

func (p Placement) String() string {
	switch p {
	case Inside:
		return "inside"
	case OnBoundary:
		return "boundary"
	case NearEdge:
		return "near_edge"
	default:
		return "outside"
	}
}

// MarshalText encodes the placement by name.
func (p Placement) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a placement name; unknown names decode as Outside.
func (p *Placement) UnmarshalText(text []byte) error {
	switch string(text) {
	case "inside":
		*p = Inside
	case "boundary":
		*p = OnBoundary
	case "near_edge":
		*p = NearEdge
	default:
		*p = Outside
	}
	return nil
}

// Matches reports whether the placement counts as a region match.
func (p Placement) Matches() bool {
	return p != Outside
}

// Locate runs the match ladder in order: strictly inside, touching the
// boundary, closer than tolerance to some edge. Touching is decided by exact
// orientation tests, so a vertex hit matches even with tolerance 0.
func Locate(p r2.Vec, region Region, tolerance float64) Placement {
	switch {
	case region.Contains(p):
		return Inside
	case region.Touches(p):
		return OnBoundary
	case region.Near(p, tolerance):
		return NearEdge
	default:
		return Outside
	}
}

// Contains reports whether p lies strictly inside the region.
func (r Region) Contains(p r2.Vec) bool {
	if r.Len() < MinVertices {
		return false
	}
	for i := 0; i < r.Len(); i++ {
		a, b := r.Edge(i)
		if r2.Cross(r2.Sub(b, a), r2.Sub(p, a)) <= 0 {
			return false
		}
	}
	return true
}

// Touches reports whether p lies exactly on an edge or vertex.
func (r Region) Touches(p r2.Vec) bool {
	for i := 0; i < r.Len(); i++ {
		a, b := r.Edge(i)
		if onSegment(p, a, b) {
			return true
		}
	}
	return false
}

// Near reports whether some edge is strictly closer than tolerance to p.
// It stops at the first such edge.
func (r Region) Near(p r2.Vec, tolerance float64) bool {
	if !(tolerance > 0) {
		return false
	}
	for i := 0; i < r.Len(); i++ {
		a, b := r.Edge(i)
		if SegmentDistance(p, a, b) < tolerance {
			return true
		}
	}
	return false
}

// Distance returns the minimum distance from p to any edge of the region.
func (r Region) Distance(p r2.Vec) float64 {
	best := math.Inf(1)
	for i := 0; i < r.Len(); i++ {
		a, b := r.Edge(i)
		if d := SegmentDistance(p, a, b); d < best {
			best = d
		}
	}
	return best
}

// SegmentDistance returns the Euclidean distance from p to the segment ab.
func SegmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	ap := r2.Sub(p, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(ap)
	}
	t := r2.Dot(ap, ab) / l2
	switch {
	case t <= 0:
		return r2.Norm(ap)
	case t >= 1:
		return r2.Norm(r2.Sub(p, b))
	}
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

func onSegment(p, a, b r2.Vec) bool {
	if p == a || p == b {
		return true
	}
	if r2.Cross(r2.Sub(b, a), r2.Sub(p, a)) != 0 {
		return false
	}
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
