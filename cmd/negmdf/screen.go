package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"negmdf/adapters/writers"
	"negmdf/app"

	"github.com/spf13/cobra"
)

func (c *cli) newScreenCmd() *cobra.Command {
	var (
		req          app.Request
		tolerance    float64
		maxExpansion int
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen one or more ion lists against a NegMDF window",
		Long: `Screen every compound of a window file against each ion list.

With a single ion list and an output that is not an existing directory the
result is written to that file, in the format its extension names unless
--format is given. Otherwise the output is a directory and each
ion list produces <name>_screened.<ext> inside it.

Example: negmdf screen -w window.csv -i sample1.csv -i sample2.csv -o results --format xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("tolerance") {
				c.cfg.Screening.Tolerance = tolerance
			}
			if flags.Changed("max-expansion") {
				c.cfg.Screening.MaxPoints = maxExpansion
			}
			if flags.Changed("workers") {
				c.cfg.Screening.Workers = workers
			}
			if flags.Changed("format") {
				c.cfg.Output.Format = strings.ToLower(req.Format)
			} else if format, ok := formatFor(req.Output); ok && len(req.IonLists) == 1 {
				c.cfg.Output.Format = format
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			req.Format = c.cfg.Output.Format

			ct, err := c.container(cmd.Context(), req.Persist)
			if err != nil {
				return err
			}
			defer ct.Close()

			report, err := ct.Service.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printReport(c, report)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.WindowPath, "window", "w", "", "NegMDF window file (.csv or .xlsx)")
	flags.StringArrayVarP(&req.IonLists, "ions", "i", nil, "Ion list file (.csv or .xlsx); repeatable")
	flags.StringVarP(&req.Output, "output", "o", "", "Output file (single ion list) or directory")
	flags.StringVar(&req.Format, "format", "", fmt.Sprintf("Output format: %s (default from OUTPUT_FORMAT)", strings.Join(writers.Formats(), ", ")))
	flags.Float64Var(&tolerance, "tolerance", 0, "Near-edge distance (default from TOLERANCE)")
	flags.IntVar(&maxExpansion, "max-expansion", 0, "Per-compound combination ceiling, 0 for none (default from MAX_EXPANSION_POINTS)")
	flags.IntVar(&workers, "workers", 0, "Compounds screened concurrently (default from SCREEN_WORKERS)")
	flags.BoolVar(&req.Persist, "persist", false, "Store each screened ion list in the configured database")
	_ = cmd.MarkFlagRequired("window")
	_ = cmd.MarkFlagRequired("ions")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// formatFor returns the registered format whose extension path carries.
func formatFor(path string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", false
	}
	for _, name := range writers.Formats() {
		if e, err := writers.Extension(name); err == nil && e == ext {
			return name, true
		}
	}
	return "", false
}

func printReport(c *cli, report *app.RunReport) error {
	for _, b := range report.Batches {
		r := b.Result
		line := fmt.Sprintf("%s -> %s: %d matches, %d of %d compounds failed, fingerprint %s",
			b.Input, b.Output, r.MatchCount(), len(r.Failed()), len(r.Outcomes), r.Fingerprint.Short())
		if b.RunID != "" {
			line += ", run " + b.RunID.String()
		}
		if _, err := fmt.Fprintln(c.out, line); err != nil {
			return err
		}
		for _, o := range r.Failed() {
			if _, err := fmt.Fprintf(c.out, "  %s: %s\n", o.Compound.Name, o.ErrorMessage()); err != nil {
				return err
			}
		}
	}
	return nil
}
