package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/herdsync/internal/app"
	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/service/herds"
)

type appRunner func(cmd *cobra.Command, fn func(*app.App) error) error

// monthFlag resolves --month (YYYY-MM) or the current month.
func monthFlag(a *app.App, value string) (models.Month, error) {
	if value == "" {
		return models.MonthOf(a.Now(), a.Location), nil
	}
	return models.ParseMonth(value, a.Location)
}

func newReconcileCmd(run appRunner) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair stored completion flags of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(a *app.App) error {
				m, err := monthFlag(a, month)
				if err != nil {
					return err
				}
				result, err := a.Reconciler.Reconcile(cmd.Context(), m)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: examined %d records, repaired %d\n",
					m.Label(), result.Examined, result.Changed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to reconcile (YYYY-MM), defaults to the current month")
	return cmd
}

func newStatsCmd(run appRunner) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(a *app.App) error {
				m, err := monthFlag(a, month)
				if err != nil {
					return err
				}
				anchor, err := models.ParseDay(m.Start, a.Location)
				if err != nil {
					return err
				}
				stats, err := a.Statistics.Compute(cmd.Context(), anchor)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !stats.HasHerds {
					fmt.Fprintln(out, "no productive herds configured")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DAY\tMILK\tEGGS\tWOOL\tCOMPLETED")
				for _, r := range stats.Records {
					fmt.Fprintf(tw, "%s\t%.1f\t%d\t%.1f\t%t\n", r.Day, r.Milk, r.Eggs, r.Wool, r.IsCompleted)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d/%d days completed (%.2f%%)\n",
					m.Label(), stats.Completed, len(stats.Records), stats.CompletionRate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to report (YYYY-MM), defaults to the current month")
	return cmd
}

func newImportHerdsCmd(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "import-herds FILE",
		Short: "Add the herds listed in a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			inputs, err := herds.ParseManifest(f)
			if err != nil {
				return err
			}

			return run(cmd, func(a *app.App) error {
				n, err := a.Herds.Import(cmd.Context(), inputs)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d herds\n", n)
				return err
			})
		},
	}
}

func newResetCmd(run appRunner) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every herd, goal and record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("refusing to reset without --yes")
			}
			return run(cmd, func(a *app.App) error {
				if err := a.Maintenance.ResetAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all data deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")
	return cmd
}
