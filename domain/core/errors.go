package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: screening run", ErrNotFound)

	// Compound-scoped screening errors
	ErrDegenerateRegion   = errors.New("degenerate feasible region")
	ErrInvalidFeatureSpec = errors.New("invalid feature specification")
	ErrExcessiveExpansion = errors.New("excessive feature space expansion")

	// Input errors
	ErrInvalidObservation = errors.New("invalid observation")
	ErrInvalidTolerance   = errors.New("invalid tolerance")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewDegenerateRegionError(points int, reason string) error {
	return fmt.Errorf("%w: %d points, %s", ErrDegenerateRegion, points, reason)
}

func NewInvalidFeatureError(index int, reason string) error {
	return fmt.Errorf("%w: feature %d %s", ErrInvalidFeatureSpec, index, reason)
}

func NewExcessiveExpansionError(size, limit int) error {
	if size < 0 {
		return fmt.Errorf("%w: combination count overflows, limit %d", ErrExcessiveExpansion, limit)
	}
	return fmt.Errorf("%w: %d combinations exceed limit %d", ErrExcessiveExpansion, size, limit)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCompoundError reports whether err is scoped to a single compound and must
// not abort screening of the remaining compounds.
func IsCompoundError(err error) bool {
	return errors.Is(err, ErrDegenerateRegion) ||
		errors.Is(err, ErrInvalidFeatureSpec) ||
		errors.Is(err, ErrExcessiveExpansion)
}
