package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"negmdf/adapters/writers"
	"negmdf/internal"
	"negmdf/internal/config"
	"negmdf/internal/container"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		if writers.IsBrokenPipe(err) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	out     io.Writer
	envFile string
	cfg     *config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:           "negmdf",
		Short:         "Screen ion lists against compound feasible regions in mass-defect space",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.envFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Environment file to load before reading configuration")

	rootCmd.AddCommand(
		c.newScreenCmd(),
		c.newRunsCmd(),
		c.newMigrateCmd(),
	)
	return rootCmd
}

// container builds the dependency container, connecting the database when
// withDB is set.
func (c *cli) container(ctx context.Context, withDB bool) (*container.Container, error) {
	logger := internal.NewLogger(internal.ParseLogLevel(c.cfg.LogLevel))
	ct, err := container.New(c.cfg, logger)
	if err != nil {
		return nil, err
	}
	if withDB {
		if !c.cfg.Database.Enabled() {
			return nil, fmt.Errorf("DATABASE_URL is required for this command")
		}
		if err := ct.InitWithDatabase(ctx); err != nil {
			return nil, err
		}
	}
	return ct, nil
}

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the screening tables in the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// InitWithDatabase runs the migrations.
			ct, err := c.container(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ct.Close()
			_, err = fmt.Fprintf(c.out, "schema up to date (%s)\n", c.cfg.Database.Driver)
			return err
		},
	}
}
