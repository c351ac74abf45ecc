package ion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"negmdf/domain/core"
)

func TestObservationValidate(t *testing.T) {
	ok := Observation{ID: "1", RetentionTime: 3.2, ObservedMass: 412.966, NominalMass: 412, MassDefect: 0.966}
	assert.NoError(t, ok.Validate())

	noID := ok
	noID.ID = ""
	assert.ErrorIs(t, noID.Validate(), core.ErrInvalidObservation)

	nanDefect := ok
	nanDefect.MassDefect = math.NaN()
	assert.ErrorIs(t, nanDefect.Validate(), core.ErrInvalidObservation)

	infRT := ok
	infRT.RetentionTime = math.Inf(1)
	assert.ErrorIs(t, infRT.Validate(), core.ErrInvalidObservation)
}

func TestBatchLen(t *testing.T) {
	b := Batch{Source: "a.csv", Observations: make([]Observation, 3)}
	assert.Equal(t, 3, b.Len())
}
