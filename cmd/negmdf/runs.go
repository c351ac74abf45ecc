package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"negmdf/adapters/writers"
	"negmdf/domain/core"
	"negmdf/ports"

	"github.com/spf13/cobra"
)

func (c *cli) newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored screening runs",
	}
	cmd.AddCommand(c.newRunsListCmd(), c.newRunsShowCmd())
	return cmd
}

func (c *cli) newRunsListCmd() *cobra.Command {
	var filters ports.RunFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := c.container(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ct.Close()

			runs, err := ct.Service.ListRuns(cmd.Context(), filters)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tTOLERANCE\tCOMPOUNDS\tMATCHES\tFINGERPRINT")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%d\t%d\t%s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Source, r.Tolerance, r.Compounds, r.Matches, r.Fingerprint.Short())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&filters.Limit, "limit", 50, "Maximum number of runs")
	cmd.Flags().IntVar(&filters.Offset, "offset", 0, "Runs to skip")
	return cmd
}

func (c *cli) newRunsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a stored run in an output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}

			ct, err := c.container(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ct.Close()

			run, err := ct.Service.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writers.Write(format, c.out, &run.Result)
		},
	}

	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format: csv or jsonl")
	return cmd
}
