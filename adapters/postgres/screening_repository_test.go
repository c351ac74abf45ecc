package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/geometry"
	"negmdf/domain/ion"
	"negmdf/domain/screening"
	"negmdf/internal/errors"
	"negmdf/internal/migration"
	"negmdf/ports"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func fixtureRun(source string, createdAt time.Time) *screening.Run {
	a := ion.Observation{ID: "a", RetentionTime: 3.21, ObservedMass: 412.9664, NominalMass: 412, MassDefect: 0.9664}
	b := ion.Observation{ID: "b", RetentionTime: 5.5, ObservedMass: 414.97, NominalMass: 414, MassDefect: 0.97}
	matches := []screening.Match{
		{Observation: b, Placement: geometry.NearEdge},
		{Observation: a, Placement: geometry.OnBoundary},
	}
	result := &screening.Result{
		Source:      source,
		Tolerance:   0.02,
		Ions:        4,
		Fingerprint: core.NewHash([]byte(source)),
		Outcomes: []screening.Outcome{
			{
				Compound: compound.Definition{Name: "PFCA", BaseMass: 412.9664, Parity: compound.Even, Features: []compound.Feature{
					{MaxCount: 5, UnitMassDefect: 49.9968},
					{MaxCount: 2, UnitMassDefect: 1.0034},
				}},
				Matches:  matches,
				Vertices: 5,
				Summary:  screening.Summarize(matches),
			},
			{
				Compound: compound.Definition{Name: "Line", BaseMass: 100.5, Parity: compound.Odd, Features: []compound.Feature{
					{MaxCount: 1, UnitMassDefect: 1.0034},
				}},
				Err:      core.NewDegenerateRegionError(2, "all points are collinear"),
				Summary:  screening.Summarize(nil),
			},
			{
				Compound: compound.Definition{Name: "Quiet", BaseMass: 200, Parity: compound.Even},
				Matches:  []screening.Match{},
				Vertices: 3,
				Summary:  screening.Summarize(nil),
			},
		},
	}
	run := screening.NewRun(result)
	run.CreatedAt = createdAt
	return run
}

func TestScreeningRepositoryRoundTrip(t *testing.T) {
	repo := NewScreeningRepository(newTestDB(t))
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	run := fixtureRun("ions.csv", created)
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, run.Result.Source, got.Result.Source)
	assert.Equal(t, run.Result.Fingerprint, got.Result.Fingerprint)
	assert.Equal(t, 0.02, got.Result.Tolerance)
	assert.Equal(t, 4, got.Result.Ions)
	require.Len(t, got.Result.Outcomes, 3)

	first := got.Result.Outcomes[0]
	assert.Equal(t, run.Result.Outcomes[0].Compound, first.Compound)
	// reloaded compounds carry enough to be screened again
	points, err := geometry.NewExpander(0).Expand(first.Compound.BaseMass, first.Compound.Features)
	require.NoError(t, err)
	assert.Len(t, points, 18)
	assert.Equal(t, 5, first.Vertices)
	assert.Equal(t, run.Result.Outcomes[0].Matches, first.Matches)
	assert.Equal(t, run.Result.Outcomes[0].Summary, first.Summary)

	failed := got.Result.Outcomes[1]
	assert.Equal(t, screening.StatusFailed, failed.Status())
	assert.Equal(t, run.Result.Outcomes[1].ErrorMessage(), failed.ErrorMessage())
	assert.Equal(t, run.Result.Outcomes[1].Compound, failed.Compound)

	assert.Equal(t, screening.StatusEmpty, got.Result.Outcomes[2].Status())
	assert.Empty(t, got.Result.Outcomes[2].Compound.Features)
	assert.Equal(t, run.Result.MatchCount(), got.Result.MatchCount())
}

func TestScreeningRepositoryGetRunNotFound(t *testing.T) {
	repo := NewScreeningRepository(newTestDB(t))

	_, err := repo.GetRun(context.Background(), core.NewRunID())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRunNotFound)
	assert.True(t, core.IsNotFoundError(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestScreeningRepositoryListRuns(t *testing.T) {
	repo := NewScreeningRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	older := fixtureRun("older.csv", base)
	newer := fixtureRun("newer.csv", base.Add(time.Minute))
	require.NoError(t, repo.SaveRun(ctx, older))
	require.NoError(t, repo.SaveRun(ctx, newer))

	runs, err := repo.ListRuns(ctx, ports.RunFilters{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, "newer.csv", runs[0].Source)
	assert.Equal(t, 3, runs[0].Compounds)
	assert.Equal(t, 2, runs[0].Matches)
	assert.True(t, newer.CreatedAt.Equal(runs[0].CreatedAt))
	assert.Equal(t, older.ID, runs[1].ID)

	page, err := repo.ListRuns(ctx, ports.RunFilters{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)
}

func TestScreeningRepositoryListRunsEmpty(t *testing.T) {
	repo := NewScreeningRepository(newTestDB(t))
	runs, err := repo.ListRuns(context.Background(), ports.RunFilters{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)
}

func TestScreeningRepositoryDuplicateRun(t *testing.T) {
	repo := NewScreeningRepository(newTestDB(t))
	ctx := context.Background()

	run := fixtureRun("ions.csv", time.Now())
	require.NoError(t, repo.SaveRun(ctx, run))

	err := repo.SaveRun(ctx, run)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))

	runs, err := repo.ListRuns(ctx, ports.RunFilters{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMigrationIsRepeatable(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, migration.NewRunner().Run(context.Background(), db))
}
