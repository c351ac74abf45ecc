package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negmdf/domain/compound"
	"negmdf/domain/core"
)

func TestSplitMass(t *testing.T) {
	p := SplitMass(412.9664)
	assert.Equal(t, 412, p.NominalMass)
	assert.InDelta(t, 0.9664, p.MassDefect, 1e-9)

	p = SplitMass(100.0)
	assert.Equal(t, FeaturePoint{NominalMass: 100, MassDefect: 0}, p)

	p = SplitMass(-0.25)
	assert.Equal(t, -1, p.NominalMass)
	assert.Equal(t, 0.75, p.MassDefect)

	// rounding of mass - floor(mass) must never reach 1
	p = SplitMass(-1e-20)
	assert.Equal(t, 0, p.NominalMass)
	assert.Equal(t, 0.0, p.MassDefect)
}

func TestExpansionSize(t *testing.T) {
	size, ok := ExpansionSize(nil)
	assert.True(t, ok)
	assert.Equal(t, 1, size)

	size, ok = ExpansionSize([]compound.Feature{{MaxCount: 2}, {MaxCount: 3}, {MaxCount: 0}})
	assert.True(t, ok)
	assert.Equal(t, 12, size)

	huge := make([]compound.Feature, 70)
	for i := range huge {
		huge[i] = compound.Feature{MaxCount: 1, UnitMassDefect: 1}
	}
	_, ok = ExpansionSize(huge)
	assert.False(t, ok)
}

func TestExpandSingleFeature(t *testing.T) {
	points, err := NewExpander(0).Expand(100.0, []compound.Feature{{MaxCount: 2, UnitMassDefect: 1.0034}})
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, FeaturePoint{NominalMass: 100, MassDefect: 0}, points[0])
	assert.Equal(t, 101, points[1].NominalMass)
	assert.InDelta(t, 0.0034, points[1].MassDefect, 1e-9)
	assert.Equal(t, 102, points[2].NominalMass)
	assert.InDelta(t, 0.0068, points[2].MassDefect, 1e-9)
}

func TestExpandZeroCountFeatures(t *testing.T) {
	for _, features := range [][]compound.Feature{
		nil,
		{{MaxCount: 0, UnitMassDefect: 1.0034}},
		{{MaxCount: 0, UnitMassDefect: 1.0034}, {MaxCount: 0, UnitMassDefect: -0.0011}},
	} {
		points, err := NewExpander(0).Expand(256.7, features)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, SplitMass(256.7), points[0])
	}
}

func TestExpandCartesianProduct(t *testing.T) {
	features := []compound.Feature{
		{MaxCount: 2, UnitMassDefect: 1.5},
		{MaxCount: 1, UnitMassDefect: 0.25},
	}
	points, err := NewExpander(0).Expand(100.0, features)
	require.NoError(t, err)

	assert.ElementsMatch(t, []FeaturePoint{
		{100, 0}, {100, 0.25},
		{101, 0.5}, {101, 0.75},
		{103, 0}, {103, 0.25},
	}, points)

	for _, p := range points {
		assert.GreaterOrEqual(t, p.MassDefect, 0.0)
		assert.Less(t, p.MassDefect, 1.0)
	}
}

func TestExpandRejectsInvalidFeatures(t *testing.T) {
	_, err := NewExpander(0).Expand(100, []compound.Feature{{MaxCount: -1, UnitMassDefect: 1}})
	assert.ErrorIs(t, err, core.ErrInvalidFeatureSpec)

	_, err = NewExpander(0).Expand(100, []compound.Feature{{MaxCount: 1, UnitMassDefect: math.Inf(1)}})
	assert.ErrorIs(t, err, core.ErrInvalidFeatureSpec)
}

func TestExpandCeiling(t *testing.T) {
	features := []compound.Feature{{MaxCount: 9, UnitMassDefect: 1.0034}, {MaxCount: 9, UnitMassDefect: 49.9968}}

	_, err := NewExpander(99).Expand(100, features)
	assert.ErrorIs(t, err, core.ErrExcessiveExpansion)

	points, err := NewExpander(100).Expand(100, features)
	require.NoError(t, err)
	assert.Len(t, points, 100)
}
