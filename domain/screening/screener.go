package screening

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/geometry"
	"negmdf/domain/ion"
	"negmdf/internal"
)

// Screener classifies ion lists against compounds' feasible regions.
// It holds no mutable state and is safe for concurrent use.
type Screener struct {
	expander  geometry.Expander
	tolerance float64
	workers   int64
	logger    *internal.Logger
}

// Option configures a Screener.
type Option func(*Screener)

// WithTolerance sets the near-edge distance (default geometry.DefaultTolerance).
func WithTolerance(tolerance float64) Option {
	return func(s *Screener) { s.tolerance = tolerance }
}

// WithMaxPoints caps the per-compound expansion size (0 disables the ceiling).
func WithMaxPoints(maxPoints int) Option {
	return func(s *Screener) { s.expander = geometry.NewExpander(maxPoints) }
}

// WithWorkers bounds how many compounds are screened concurrently.
func WithWorkers(workers int) Option {
	return func(s *Screener) { s.workers = int64(workers) }
}

// WithLogger sets the logger (default internal.Discard).
func WithLogger(logger *internal.Logger) Option {
	return func(s *Screener) { s.logger = logger.With("Screener") }
}

// NewScreener builds a Screener, rejecting negative or non-finite tolerances.
func NewScreener(opts ...Option) (*Screener, error) {
	s := &Screener{
		expander:  geometry.NewExpander(geometry.DefaultMaxPoints),
		tolerance: geometry.DefaultTolerance,
		workers:   int64(runtime.NumCPU()),
		logger:    internal.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.validate()
}

// Derive returns a copy of s with opts applied; s is unchanged.
func (s *Screener) Derive(opts ...Option) (*Screener, error) {
	d := *s
	for _, opt := range opts {
		opt(&d)
	}
	return d.validate()
}

func (s *Screener) validate() (*Screener, error) {
	if math.IsNaN(s.tolerance) || math.IsInf(s.tolerance, 0) || s.tolerance < 0 {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidTolerance, s.tolerance)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s, nil
}

// Tolerance returns the configured near-edge distance.
func (s *Screener) Tolerance() float64 { return s.tolerance }

// Region expands a compound's features and returns the convex hull of the result.
func (s *Screener) Region(c compound.Definition) (geometry.Region, error) {
	if err := c.Validate(); err != nil {
		return geometry.Region{}, err
	}
	points, err := s.expander.Expand(c.BaseMass, c.Features)
	if err != nil {
		return geometry.Region{}, fmt.Errorf("compound %s: %w", c.Name, err)
	}
	s.logger.Debug("%s expanded to %d points", c.Name, len(points))

	region, err := geometry.Hull(points)
	if err != nil {
		return geometry.Region{}, fmt.Errorf("compound %s: %w", c.Name, err)
	}
	return region, nil
}

// Screen returns, in input order, the observations that pass c's parity gate
// and fall inside, on, or within tolerance of c's region.
func (s *Screener) Screen(c compound.Definition, observations []ion.Observation) ([]ion.Observation, error) {
	outcome := s.screen(c, observations)
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	return outcome.Observations(), nil
}

func (s *Screener) screen(c compound.Definition, observations []ion.Observation) Outcome {
	outcome := Outcome{Compound: c, Matches: []Match{}}

	region, err := s.Region(c)
	if err != nil {
		outcome.Err = err
		outcome.Summary = Summarize(nil)
		return outcome
	}
	outcome.Vertices = region.Len()

	for _, o := range observations {
		if !c.Accepts(o.NominalMass) {
			continue
		}
		placement := geometry.Locate(geometry.PointOf(o.NominalMass, o.MassDefect), region, s.tolerance)
		if placement.Matches() {
			outcome.Matches = append(outcome.Matches, Match{Observation: o, Placement: placement})
		}
	}
	outcome.Summary = Summarize(outcome.Matches)
	return outcome
}

// ScreenBatch screens every compound against the batch. Compounds run
// concurrently on at most the configured number of workers; outcomes keep
// compound order. A compound-scoped failure is recorded on its outcome and
// does not stop the others. The returned error is non-nil only for an
// invalid batch or a cancelled context.
func (s *Screener) ScreenBatch(ctx context.Context, compounds []compound.Definition, batch ion.Batch) (*Result, error) {
	for i, o := range batch.Observations {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", batch.Source, i+1, err)
		}
	}

	result := &Result{
		Source:      batch.Source,
		Tolerance:   s.tolerance,
		Ions:        batch.Len(),
		Fingerprint: Fingerprint(s.tolerance, compounds, batch.Observations),
		Outcomes:    make([]Outcome, len(compounds)),
	}

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i := range compounds {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("screening %s cancelled: %w", batch.Source, err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			result.Outcomes[i] = s.screen(compounds[i], batch.Observations)
		}(i)
	}
	wg.Wait()

	for _, o := range result.Outcomes {
		if o.Err != nil {
			s.logger.Warn("%s: %s skipped: %v", batch.Source, o.Compound.Name, o.Err)
			continue
		}
		s.logger.Info("%s: %s matched %d of %d ions (hull %d vertices)",
			batch.Source, o.Compound.Name, len(o.Matches), batch.Len(), o.Vertices)
	}
	return result, nil
}

// Fingerprint hashes the tolerance, compounds and observations so identical
// screening inputs can be recognised across runs.
func Fingerprint(tolerance float64, compounds []compound.Definition, observations []ion.Observation) core.Hash {
	f := core.NewFingerprinter()
	float := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	f.Write(float(tolerance))
	f.Write(strconv.Itoa(len(compounds)))
	for _, c := range compounds {
		f.Write(c.Name)
		f.Write(float(c.BaseMass))
		f.Write(strconv.Itoa(int(c.Parity)))
		f.Write(strconv.Itoa(len(c.Features)))
		for _, feat := range c.Features {
			f.Write(strconv.Itoa(feat.MaxCount))
			f.Write(float(feat.UnitMassDefect))
		}
	}
	f.Write(strconv.Itoa(len(observations)))
	for _, o := range observations {
		f.Write(o.ID)
		f.Write(float(o.RetentionTime))
		f.Write(float(o.ObservedMass))
		f.Write(strconv.Itoa(o.NominalMass))
		f.Write(float(o.MassDefect))
	}
	return f.Sum()
}
