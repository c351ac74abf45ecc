package geometry

import (
	"math"

	"negmdf/domain/compound"
	"negmdf/domain/core"
)

// DefaultMaxPoints is the expansion ceiling used when none is configured.
const DefaultMaxPoints = 1_000_000

// Expander enumerates a compound's feasible mass-defect space.
type Expander struct {
	// MaxPoints caps ∏(maxCount_i + 1). Zero means unbounded.
	MaxPoints int
}

// NewExpander returns an Expander with the given ceiling (0 disables it).
func NewExpander(maxPoints int) Expander {
	return Expander{MaxPoints: maxPoints}
}

// ExpansionSize returns ∏(maxCount_i + 1). ok is false when the product overflows int.
// An empty feature list expands to the base mass alone.
func ExpansionSize(features []compound.Feature) (size int, ok bool) {
	size = 1
	for _, f := range features {
		choices := f.MaxCount + 1
		if choices <= 0 {
			return 0, false
		}
		if size > math.MaxInt/choices {
			return -1, false
		}
		size *= choices
	}
	return size, true
}

// Expand returns one FeaturePoint per feature-count combination: baseMass plus
// Σ k_i·unitMassDefect_i for every k_i in 0..maxCount_i. Points are not
// deduplicated.
func (e Expander) Expand(baseMass float64, features []compound.Feature) ([]FeaturePoint, error) {
	for i, f := range features {
		if err := f.Validate(i); err != nil {
			return nil, err
		}
	}

	size, ok := ExpansionSize(features)
	if !ok {
		return nil, core.NewExcessiveExpansionError(-1, e.MaxPoints)
	}
	if e.MaxPoints > 0 && size > e.MaxPoints {
		return nil, core.NewExcessiveExpansionError(size, e.MaxPoints)
	}

	points := make([]FeaturePoint, 0, size)
	counts := make([]int, len(features))
	for {
		mass := baseMass
		for i, f := range features {
			mass += float64(counts[i]) * f.UnitMassDefect
		}
		points = append(points, SplitMass(mass))

		// odometer increment, last feature fastest
		i := len(counts) - 1
		for ; i >= 0; i-- {
			if counts[i] < features[i].MaxCount {
				counts[i]++
				break
			}
			counts[i] = 0
		}
		if i < 0 {
			return points, nil
		}
	}
}
