package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/ion"
	"negmdf/domain/screening"
	"negmdf/internal"
	"negmdf/internal/errors"
	"negmdf/ports"
)

// ScreeningService runs NegMDF screening over files or in-memory inputs,
// writes the outputs and optionally persists each screened ion list.
type ScreeningService struct {
	screener *screening.Screener
	loader   ports.InputLoader
	writer   ports.ResultWriter
	repo     ports.ScreeningRepository
	logger   *internal.Logger
}

// NewScreeningService creates a screening service. repo may be nil when
// persistence is not configured.
func NewScreeningService(screener *screening.Screener, loader ports.InputLoader, writer ports.ResultWriter, repo ports.ScreeningRepository, logger *internal.Logger) *ScreeningService {
	if logger == nil {
		logger = internal.Discard
	}
	return &ScreeningService{
		screener: screener,
		loader:   loader,
		writer:   writer,
		repo:     repo,
		logger:   logger.With("ScreeningService"),
	}
}

// Request screens every ion list against one window file.
type Request struct {
	WindowPath string
	IonLists   []string
	// Output is a file when there is a single ion list and it does not name
	// an existing directory; otherwise a directory for <base>_screened.<ext>.
	Output  string
	Format  string
	Persist bool
}

// BatchReport is the outcome of screening one ion list.
type BatchReport struct {
	Input  string            `json:"input"`
	Output string            `json:"output,omitempty"`
	RunID  core.RunID        `json:"run_id,omitempty"`
	Result *screening.Result `json:"result"`
}

// RunReport collects the batch reports of a Request in ion list order.
type RunReport struct {
	Window    string        `json:"window"`
	Compounds int           `json:"compounds"`
	Batches   []BatchReport `json:"batches"`
}

// ScreenRequest screens in-memory inputs. Tolerance overrides the
// configured tolerance when set.
type ScreenRequest struct {
	Tolerance *float64
	Compounds []compound.Definition
	Batch     ion.Batch
	Persist   bool
}

// Persistent reports whether a repository is configured.
func (s *ScreeningService) Persistent() bool {
	return s.repo != nil
}

// Run loads the window, screens every compound against every ion list and
// writes one output per ion list. Compound-scoped failures are reported in
// the results; any other failure stops the run.
func (s *ScreeningService) Run(ctx context.Context, req Request) (*RunReport, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	outputs, err := s.resolveOutputs(req)
	if err != nil {
		return nil, err
	}

	compounds, err := s.loader.LoadWindow(ctx, req.WindowPath)
	if err != nil {
		return nil, err
	}

	report := &RunReport{Window: req.WindowPath, Compounds: len(compounds)}
	for i, input := range req.IonLists {
		batch, err := s.loader.LoadIonList(ctx, input)
		if err != nil {
			return nil, err
		}

		result, err := s.screener.ScreenBatch(ctx, compounds, batch)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to screen %s", input)
		}

		if err := s.writer.WriteFile(req.Format, outputs[i], result); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", outputs[i])
		}
		s.logger.Info("%s -> %s: %d matches over %d compounds", input, outputs[i], result.MatchCount(), len(result.Outcomes))

		br := BatchReport{Input: input, Output: outputs[i], Result: result}
		if req.Persist {
			if br.RunID, err = s.persist(ctx, result); err != nil {
				return nil, err
			}
		}
		report.Batches = append(report.Batches, br)
	}
	return report, nil
}

// Screen screens in-memory inputs without writing any output file.
func (s *ScreeningService) Screen(ctx context.Context, req ScreenRequest) (*BatchReport, error) {
	if req.Persist && s.repo == nil {
		return nil, errors.Unavailable("persistence is not configured")
	}
	if len(req.Compounds) == 0 {
		return nil, errors.InvalidInput("at least one compound is required")
	}

	screener := s.screener
	if req.Tolerance != nil {
		var err error
		if screener, err = s.screener.Derive(screening.WithTolerance(*req.Tolerance)); err != nil {
			return nil, err
		}
	}

	result, err := screener.ScreenBatch(ctx, req.Compounds, req.Batch)
	if err != nil {
		return nil, err
	}

	br := &BatchReport{Input: req.Batch.Source, Result: result}
	if req.Persist {
		if br.RunID, err = s.persist(ctx, result); err != nil {
			return nil, err
		}
	}
	return br, nil
}

// GetRun loads a stored run.
func (s *ScreeningService) GetRun(ctx context.Context, id core.RunID) (*screening.Run, error) {
	if s.repo == nil {
		return nil, errors.Unavailable("persistence is not configured")
	}
	return s.repo.GetRun(ctx, id)
}

// ListRuns pages through stored runs, newest first.
func (s *ScreeningService) ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	if s.repo == nil {
		return nil, errors.Unavailable("persistence is not configured")
	}
	return s.repo.ListRuns(ctx, filters)
}

func (s *ScreeningService) persist(ctx context.Context, result *screening.Result) (core.RunID, error) {
	run := screening.NewRun(result)
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return "", errors.Wrapf(err, "failed to persist %s", result.Source)
	}
	s.logger.Info("%s stored as run %s (fingerprint %s)", result.Source, run.ID, result.Fingerprint.Short())
	return run.ID, nil
}

func (s *ScreeningService) validate(req Request) error {
	switch {
	case req.WindowPath == "":
		return errors.InvalidInput("window file is required")
	case len(req.IonLists) == 0:
		return errors.InvalidInput("at least one ion list is required")
	case req.Output == "":
		return errors.InvalidInput("output path is required")
	case req.Persist && s.repo == nil:
		return errors.Unavailable("persistence is not configured")
	}
	return nil
}

// resolveOutputs maps each ion list to its output path, creating the
// output directory when needed.
func (s *ScreeningService) resolveOutputs(req Request) ([]string, error) {
	info, statErr := os.Stat(req.Output)
	isDir := statErr == nil && info.IsDir()

	if len(req.IonLists) == 1 && !isDir {
		path, err := s.writer.OutputPath(".", req.IonLists[0], req.Format)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		// an extensionless file is accepted; a different one is not
		want, got := filepath.Ext(path), filepath.Ext(req.Output)
		if got != "" && !strings.EqualFold(got, want) {
			return nil, errors.InvalidInput(fmt.Sprintf("output %s does not match format %s (expected %s)", req.Output, req.Format, want))
		}
		return []string{req.Output}, nil
	}

	if !isDir {
		if err := os.MkdirAll(req.Output, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create output directory %s", req.Output)
		}
	}

	outputs := make([]string, len(req.IonLists))
	seen := make(map[string]string, len(req.IonLists))
	for i, input := range req.IonLists {
		path, err := s.writer.OutputPath(req.Output, input, req.Format)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		if prev, ok := seen[path]; ok {
			return nil, errors.InvalidInput(fmt.Sprintf("%s and %s would both write %s", prev, input, path))
		}
		seen[path] = input
		outputs[i] = path
	}
	return outputs, nil
}
