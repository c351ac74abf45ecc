// Package ion holds the observation records produced by peak picking: one
// detected ion with its retention time and its nominal/decimal mass split.
package ion

import (
	"fmt"
	"math"
	"strings"

	"negmdf/domain/core"
)

// Observation is one row of an ion list. Read-only to the screening core.
type Observation struct {
	ID            string  `json:"id" db:"ion_id"`
	RetentionTime float64 `json:"rt" db:"retention_time"`
	ObservedMass  float64 `json:"mz" db:"observed_mass"`
	NominalMass   int     `json:"integer" db:"nominal_mass"`
	MassDefect    float64 `json:"decimal" db:"mass_defect"`
}

// Validate rejects records the core cannot place in the mass-defect plane.
func (o Observation) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: empty id", core.ErrInvalidObservation)
	}
	for name, v := range map[string]float64{
		"rt":      o.RetentionTime,
		"mz":      o.ObservedMass,
		"decimal": o.MassDefect,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: ion %s has non-finite %s", core.ErrInvalidObservation, o.ID, name)
		}
	}
	return nil
}

// Batch is an ordered ion list, typically one input file.
type Batch struct {
	Source       string        `json:"source"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations in the batch.
func (b Batch) Len() int { return len(b.Observations) }
