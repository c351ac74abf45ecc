// Package screening runs compounds' feasible regions over ion lists and
// collects, per compound, the ions that fall inside, on, or near the region.
package screening

import (
	"encoding/json"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/geometry"
	"negmdf/domain/ion"
)

// Match is an ion classified into a compound's region, with how it matched.
type Match struct {
	ion.Observation
	Placement geometry.Placement `json:"placement"`
}

// Status summarises a compound outcome.
type Status string

const (
	StatusMatched Status = "matched"
	StatusEmpty   Status = "empty"
	StatusFailed  Status = "failed"
)

// Outcome is one compound's screening result: its matches in input order, or
// the compound-scoped error that prevented screening it.
type Outcome struct {
	Compound compound.Definition `json:"compound"`
	Matches  []Match             `json:"matches"`
	Vertices int                 `json:"hull_vertices,omitempty"`
	Err      error               `json:"-"`
	Summary  Summary             `json:"summary"`
}

// Status reports matched, empty or failed.
func (o Outcome) Status() Status {
	switch {
	case o.Err != nil:
		return StatusFailed
	case len(o.Matches) == 0:
		return StatusEmpty
	default:
		return StatusMatched
	}
}

// ErrorMessage returns the error text, or "" for a successful outcome.
func (o Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// MarshalJSON adds the status and error message to the encoded outcome.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	return json.Marshal(struct {
		plain
		Status Status `json:"status"`
		Error  string `json:"error,omitempty"`
	}{plain(o), o.Status(), o.ErrorMessage()})
}

// Observations returns the matched ions without placements.
func (o Outcome) Observations() []ion.Observation {
	out := make([]ion.Observation, len(o.Matches))
	for i, m := range o.Matches {
		out[i] = m.Observation
	}
	return out
}

// Result is the screening of one ion batch against every compound, in compound order.
type Result struct {
	Source      string    `json:"source"`
	Tolerance   float64   `json:"tolerance"`
	Ions        int       `json:"ions"`
	Fingerprint core.Hash `json:"fingerprint"`
	Outcomes    []Outcome `json:"outcomes"`
}

// MatchCount returns the number of matches over all compounds.
func (r *Result) MatchCount() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Matches)
	}
	return n
}

// Failed returns the outcomes that carry an error.
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
