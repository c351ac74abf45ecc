package screening

import (
	"time"

	"negmdf/domain/core"
)

// Run is a screening result with the identity it was stored under.
type Run struct {
	ID        core.RunID `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Result    Result     `json:"result"`
}

// NewRun assigns a fresh id and timestamp to result.
func NewRun(result *Result) *Run {
	return &Run{
		ID:        core.NewRunID(),
		CreatedAt: time.Now().UTC(),
		Result:    *result,
	}
}

// StoredError is a compound failure message reloaded from storage.
type StoredError string

func (e StoredError) Error() string { return string(e) }
