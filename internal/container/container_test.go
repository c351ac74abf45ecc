package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negmdf/domain/core"
	"negmdf/internal"
	"negmdf/internal/config"
	"negmdf/internal/errors"
	"negmdf/ports"
)

func testConfig() *config.Config {
	return &config.Config{
		Screening: config.ScreeningConfig{Tolerance: 0.02, MaxPoints: 1000, Workers: 2},
		Database:  config.DatabaseConfig{Driver: "sqlite"},
		Output:    config.OutputConfig{Format: "csv"},
		LogLevel:  "ERROR",
	}
}

func TestNewWithoutDatabase(t *testing.T) {
	c, err := New(testConfig(), internal.Discard)
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(context.Background()))
	defer c.Close()

	assert.Nil(t, c.DB)
	assert.False(t, c.Service.Persistent())
	assert.Equal(t, 0.02, c.Screener.Tolerance())
}

func TestNewRejectsBadTolerance(t *testing.T) {
	cfg := testConfig()
	cfg.Screening.Tolerance = -1
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTolerance)

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestInitWithSQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Database.URL = ":memory:"

	c, err := New(cfg, internal.Discard)
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(context.Background()))
	defer c.Close()

	require.NotNil(t, c.DB)
	assert.True(t, c.Service.Persistent())

	runs, err := c.Service.ListRuns(context.Background(), ports.RunFilters{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpenDatabaseUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(context.Background(), config.DatabaseConfig{Driver: "nope", URL: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}
