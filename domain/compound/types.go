// Package compound models the candidate compounds a NegMDF window screens for.
package compound

import (
	"fmt"
	"math"
	"strings"

	"negmdf/domain/core"
)

// Feature is a substructure that may occur 0..MaxCount times, each occurrence
// shifting the compound's mass by UnitMassDefect.
type Feature struct {
	MaxCount       int     `json:"max_count"`
	UnitMassDefect float64 `json:"unit_mass_defect"`
}

// Validate rejects negative counts and non-finite increments.
func (f Feature) Validate(index int) error {
	if f.MaxCount < 0 {
		return core.NewInvalidFeatureError(index, fmt.Sprintf("has negative max count %d", f.MaxCount))
	}
	if math.IsNaN(f.UnitMassDefect) || math.IsInf(f.UnitMassDefect, 0) {
		return core.NewInvalidFeatureError(index, "has non-finite unit mass defect")
	}
	return nil
}

// Parity is the required parity of an observation's nominal mass.
type Parity int

const (
	Even Parity = 0
	Odd  Parity = 1
)

// ParityOf returns the parity of a nominal mass, negative masses included.
func ParityOf(nominalMass int) Parity {
	return Parity(((nominalMass % 2) + 2) % 2)
}

func (p Parity) String() string {
	switch p {
	case Even:
		return "even"
	case Odd:
		return "odd"
	default:
		return fmt.Sprintf("parity(%d)", int(p))
	}
}

// Valid reports whether p is 0 or 1.
func (p Parity) Valid() bool {
	return p == Even || p == Odd
}

// Definition is one row of a NegMDF window. Immutable once loaded.
type Definition struct {
	Name     string    `json:"name"`
	BaseMass float64   `json:"base_mass"`
	Parity   Parity    `json:"parity"`
	Features []Feature `json:"features"`
}

// Validate checks everything that must hold before the feature space is expanded.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: compound name is empty", core.ErrInvalidFeatureSpec)
	}
	if math.IsNaN(d.BaseMass) || math.IsInf(d.BaseMass, 0) {
		return fmt.Errorf("%w: compound %s has non-finite base mass", core.ErrInvalidFeatureSpec, d.Name)
	}
	if !d.Parity.Valid() {
		return fmt.Errorf("%w: compound %s has parity class %d, want 0 or 1", core.ErrInvalidFeatureSpec, d.Name, int(d.Parity))
	}
	for i, f := range d.Features {
		if err := f.Validate(i); err != nil {
			return fmt.Errorf("compound %s: %w", d.Name, err)
		}
	}
	return nil
}

// Accepts reports whether an observation with the given nominal mass passes the parity gate.
func (d Definition) Accepts(nominalMass int) bool {
	return ParityOf(nominalMass) == d.Parity
}
