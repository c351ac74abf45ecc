package ports

import (
	"context"
	"io"
	"time"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/ion"
	"negmdf/domain/screening"
)

// ScreeningRepository persists screening runs.
type ScreeningRepository interface {
	SaveRun(ctx context.Context, run *screening.Run) error
	GetRun(ctx context.Context, id core.RunID) (*screening.Run, error)
	ListRuns(ctx context.Context, filters RunFilters) ([]RunSummary, error)
}

// RunFilters pages through stored runs, newest first.
type RunFilters struct {
	Limit  int
	Offset int
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID          core.RunID `json:"id"`
	Fingerprint core.Hash  `json:"fingerprint"`
	Source      string     `json:"source"`
	Tolerance   float64    `json:"tolerance"`
	CreatedAt   time.Time  `json:"created_at"`
	Compounds   int        `json:"compounds"`
	Matches     int        `json:"matches"`
}

// InputLoader reads windows and ion lists from files.
type InputLoader interface {
	LoadWindow(ctx context.Context, path string) ([]compound.Definition, error)
	LoadIonList(ctx context.Context, path string) (ion.Batch, error)
}

// ResultWriter renders a screening result in a named format.
type ResultWriter interface {
	Write(format string, w io.Writer, result *screening.Result) error
	WriteFile(format, path string, result *screening.Result) error
	OutputPath(dir, input, format string) (string, error)
}
