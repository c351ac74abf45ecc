package api

import (
	"time"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/ion"
	"negmdf/domain/screening"
)

// DefaultSource labels ion batches posted without a source.
const DefaultSource = "api"

// ScreenRequest is the body of POST /api/v1/screen.
type ScreenRequest struct {
	Tolerance    *float64              `json:"tolerance"`
	Source       string                `json:"source"`
	Persist      bool                  `json:"persist"`
	Compounds    []compound.Definition `json:"compounds" binding:"required"`
	Observations []ion.Observation     `json:"observations"`
}

// ScreenResponse carries one screened batch.
type ScreenResponse struct {
	RunID       core.RunID          `json:"run_id,omitempty"`
	Source      string              `json:"source"`
	Tolerance   float64             `json:"tolerance"`
	Ions        int                 `json:"ions"`
	Fingerprint core.Hash           `json:"fingerprint"`
	MatchCount  int                 `json:"match_count"`
	Outcomes    []screening.Outcome `json:"outcomes"`
}

// RunResponse is a stored run.
type RunResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ScreenResponse
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newScreenResponse(id core.RunID, result *screening.Result) ScreenResponse {
	return ScreenResponse{
		RunID:       id,
		Source:      result.Source,
		Tolerance:   result.Tolerance,
		Ions:        result.Ions,
		Fingerprint: result.Fingerprint,
		MatchCount:  result.MatchCount(),
		Outcomes:    result.Outcomes,
	}
}
