package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/geometry"
	"negmdf/domain/ion"
	"negmdf/domain/screening"
	"negmdf/internal/errors"
	"negmdf/ports"

	"github.com/jmoiron/sqlx"
)

// DefaultListLimit applies when RunFilters.Limit is not positive.
const DefaultListLimit = 50

// created_at is stored as fixed-width UTC text so it sorts the same on every driver.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ScreeningRepositoryImpl implements ScreeningRepository on any sqlx driver
// using ? placeholders rebound per driver (postgres or sqlite).
type ScreeningRepositoryImpl struct {
	db *sqlx.DB
}

// NewScreeningRepository creates a new screening run repository
func NewScreeningRepository(db *sqlx.DB) ports.ScreeningRepository {
	return &ScreeningRepositoryImpl{db: db}
}

type runRow struct {
	ID          string  `db:"id"`
	Fingerprint string  `db:"fingerprint"`
	Source      string  `db:"source"`
	Tolerance   float64 `db:"tolerance"`
	Ions        int     `db:"ions"`
	CreatedAt   string  `db:"created_at"`
}

type outcomeRow struct {
	RunID        string  `db:"run_id"`
	Position     int     `db:"position"`
	Compound     string  `db:"compound"`
	Parity       int     `db:"parity"`
	BaseMass     float64 `db:"base_mass"`
	Features     string  `db:"features"`
	Status       string  `db:"status"`
	ErrorMessage string  `db:"error_message"`
	HullVertices int     `db:"hull_vertices"`
	MatchCount   int     `db:"match_count"`
}

type matchRow struct {
	RunID            string  `db:"run_id"`
	CompoundPosition int     `db:"compound_position"`
	Position         int     `db:"position"`
	IonID            string  `db:"ion_id"`
	RetentionTime    float64 `db:"retention_time"`
	ObservedMass     float64 `db:"observed_mass"`
	NominalMass      int     `db:"nominal_mass"`
	MassDefect       float64 `db:"mass_defect"`
	Placement        string  `db:"placement"`
}

// SaveRun stores a run with its outcomes and matches in one transaction.
func (r *ScreeningRepositoryImpl) SaveRun(ctx context.Context, run *screening.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	res := run.Result
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO screening_runs (id, fingerprint, source, tolerance, ions, created_at)
		VALUES (:id, :fingerprint, :source, :tolerance, :ions, :created_at)
	`, runRow{
		ID:          run.ID.String(),
		Fingerprint: res.Fingerprint.String(),
		Source:      res.Source,
		Tolerance:   res.Tolerance,
		Ions:        res.Ions,
		CreatedAt:   run.CreatedAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return errors.DatabaseError("failed to insert screening run", err)
	}

	for i, o := range res.Outcomes {
		features, err := encodeFeatures(o.Compound.Features)
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to encode features of outcome %d", i), err)
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO screening_outcomes (run_id, position, compound, parity, base_mass, features, status, error_message, hull_vertices, match_count)
			VALUES (:run_id, :position, :compound, :parity, :base_mass, :features, :status, :error_message, :hull_vertices, :match_count)
		`, outcomeRow{
			RunID:        run.ID.String(),
			Position:     i,
			Compound:     o.Compound.Name,
			Parity:       int(o.Compound.Parity),
			BaseMass:     o.Compound.BaseMass,
			Features:     features,
			Status:       string(o.Status()),
			ErrorMessage: o.ErrorMessage(),
			HullVertices: o.Vertices,
			MatchCount:   len(o.Matches),
		})
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert outcome %d", i), err)
		}

		for j, m := range o.Matches {
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO screening_matches (run_id, compound_position, position, ion_id, retention_time, observed_mass, nominal_mass, mass_defect, placement)
				VALUES (:run_id, :compound_position, :position, :ion_id, :retention_time, :observed_mass, :nominal_mass, :mass_defect, :placement)
			`, matchRow{
				RunID:            run.ID.String(),
				CompoundPosition: i,
				Position:         j,
				IonID:            m.ID,
				RetentionTime:    m.RetentionTime,
				ObservedMass:     m.ObservedMass,
				NominalMass:      m.NominalMass,
				MassDefect:       m.MassDefect,
				Placement:        m.Placement.String(),
			})
			if err != nil {
				return errors.DatabaseError(fmt.Sprintf("failed to insert match %d of outcome %d", j, i), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit screening run", err)
	}
	return nil
}

// GetRun loads a run with its outcomes and matches in stored order.
func (r *ScreeningRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*screening.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, fingerprint, source, tolerance, ions, created_at
		FROM screening_runs
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load screening run", err)
	}

	createdAt, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, errors.DatabaseError("invalid created_at on run "+row.ID, err)
	}

	var outcomes []outcomeRow
	if err := r.db.SelectContext(ctx, &outcomes, r.db.Rebind(`
		SELECT run_id, position, compound, parity, base_mass, features, status, error_message, hull_vertices, match_count
		FROM screening_outcomes
		WHERE run_id = ?
		ORDER BY position
	`), id.String()); err != nil {
		return nil, errors.DatabaseError("failed to load screening outcomes", err)
	}

	var matches []matchRow
	if err := r.db.SelectContext(ctx, &matches, r.db.Rebind(`
		SELECT run_id, compound_position, position, ion_id, retention_time, observed_mass, nominal_mass, mass_defect, placement
		FROM screening_matches
		WHERE run_id = ?
		ORDER BY compound_position, position
	`), id.String()); err != nil {
		return nil, errors.DatabaseError("failed to load screening matches", err)
	}

	run := &screening.Run{
		ID:        core.RunID(row.ID),
		CreatedAt: createdAt,
		Result: screening.Result{
			Source:      row.Source,
			Tolerance:   row.Tolerance,
			Ions:        row.Ions,
			Fingerprint: core.Hash(row.Fingerprint),
			Outcomes:    make([]screening.Outcome, len(outcomes)),
		},
	}
	index := make(map[int]int, len(outcomes))
	for i, o := range outcomes {
		index[o.Position] = i
		var features []compound.Feature
		if err := json.Unmarshal([]byte(o.Features), &features); err != nil {
			return nil, errors.DatabaseError(fmt.Sprintf("invalid stored features on outcome %d", o.Position), err)
		}
		outcome := screening.Outcome{
			Compound: compound.Definition{
				Name:     o.Compound,
				BaseMass: o.BaseMass,
				Parity:   compound.Parity(o.Parity),
				Features: features,
			},
			Matches:  make([]screening.Match, 0, o.MatchCount),
			Vertices: o.HullVertices,
		}
		if o.Status == string(screening.StatusFailed) {
			outcome.Err = screening.StoredError(o.ErrorMessage)
		}
		run.Result.Outcomes[i] = outcome
	}

	for _, m := range matches {
		i, ok := index[m.CompoundPosition]
		if !ok {
			return nil, errors.DatabaseError(fmt.Sprintf("match %d references missing outcome %d", m.Position, m.CompoundPosition), nil)
		}
		var placement geometry.Placement
		if err := placement.UnmarshalText([]byte(m.Placement)); err != nil {
			return nil, errors.DatabaseError("invalid stored placement", err)
		}
		run.Result.Outcomes[i].Matches = append(run.Result.Outcomes[i].Matches, screening.Match{
			Observation: ion.Observation{
				ID:            m.IonID,
				RetentionTime: m.RetentionTime,
				ObservedMass:  m.ObservedMass,
				NominalMass:   m.NominalMass,
				MassDefect:    m.MassDefect,
			},
			Placement: placement,
		})
	}
	for i := range run.Result.Outcomes {
		run.Result.Outcomes[i].Summary = screening.Summarize(run.Result.Outcomes[i].Matches)
	}

	return run, nil
}

// encodeFeatures stores a compound's features as a JSON array; nil becomes [].
func encodeFeatures(features []compound.Feature) (string, error) {
	if features == nil {
		features = []compound.Feature{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListRuns returns run summaries, newest first.
func (r *ScreeningRepositoryImpl) ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(`
		SELECT r.id, r.fingerprint, r.source, r.tolerance, r.created_at,
			(SELECT COUNT(*) FROM screening_outcomes o WHERE o.run_id = r.id) AS compounds,
			(SELECT COALESCE(SUM(o.match_count), 0) FROM screening_outcomes o WHERE o.run_id = r.id) AS matches
		FROM screening_runs r
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, errors.DatabaseError("failed to list screening runs", err)
	}
	defer rows.Close()

	summaries := make([]ports.RunSummary, 0)
	for rows.Next() {
		var (
			s         ports.RunSummary
			id, hash  string
			createdAt string
		)
		if err := rows.Scan(&id, &hash, &s.Source, &s.Tolerance, &createdAt, &s.Compounds, &s.Matches); err != nil {
			return nil, errors.DatabaseError("failed to scan screening run", err)
		}
		s.ID = core.RunID(id)
		s.Fingerprint = core.Hash(hash)
		if s.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, errors.DatabaseError("invalid created_at on run "+id, err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
