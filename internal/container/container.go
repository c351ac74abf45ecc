package container

import (
	"context"
	"fmt"

	"negmdf/adapters/excel"
	"negmdf/adapters/postgres"
	"negmdf/adapters/writers"
	"negmdf/app"
	"negmdf/domain/screening"
	"negmdf/internal"
	"negmdf/internal/config"
	"negmdf/internal/errors"
	"negmdf/internal/migration"
	"negmdf/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; nil when persistence is disabled
	DB *sqlx.DB

	// Repositories (data access layer)
	ScreeningRepo ports.ScreeningRepository

	Screener *screening.Screener
	Service  *app.ScreeningService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	screener, err := screening.NewScreener(
		screening.WithTolerance(cfg.Screening.Tolerance),
		screening.WithMaxPoints(cfg.Screening.MaxPoints),
		screening.WithWorkers(cfg.Screening.Workers),
		screening.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create screener")
	}
	c.Screener = screener
	c.buildService()

	return c, nil
}

// InitWithDatabase opens the configured database, runs migrations and
// switches the service to persistent mode. It is a no-op when no
// DATABASE_URL is set.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Debug("DATABASE_URL not set, persistence disabled")
		return nil
	}

	db, err := OpenDatabase(ctx, c.Config.Database)
	if err != nil {
		return err
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.ScreeningRepo = postgres.NewScreeningRepository(db)
	c.buildService()

	c.Logger.With("Container").Info("persistence enabled (%s)", c.Config.Database.Driver)
	return nil
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

func (c *Container) buildService() {
	c.Service = app.NewScreeningService(c.Screener, excel.NewLoader(c.Logger), writers.Registry{}, c.ScreeningRepo, c.Logger)
}

// OpenDatabase connects with the configured driver ("postgres" via lib/pq,
// "sqlite" via modernc.org/sqlite) and pings the server.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; a single connection also keeps
		// :memory: databases shared.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
