package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pianoclips/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.Paths.LedgerPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			store, err := ledger.Open(cfg.Paths.LedgerPath)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			if runID != "" {
				return renderRunArtifacts(cmd, store, runID)
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					humanize.Time(run.StartedAt),
					string(run.Status),
					fmt.Sprintf("%d/%d", run.CompletedKeys, run.KeyCount),
					fmt.Sprintf("%d..%d", run.FirstKey, run.LastKey),
					formatElapsed(run.Elapsed()),
					run.ErrorMessage,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Status", "Keys", "Range", "Elapsed", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the artifacts of a single run")
	return cmd
}

func renderRunArtifacts(cmd *cobra.Command, store *ledger.Store, runID string) error {
	artifacts, err := store.Artifacts(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		if _, err := store.GetRun(cmd.Context(), runID); err != nil {
			return err
		}
	}
	rows := make([][]string, 0, len(artifacts))
	for _, a := range artifacts {
		rows = append(rows, []string{
			strconv.Itoa(a.KeyIndex),
			a.KeyName,
			a.Stage,
			a.Path,
			humanize.IBytes(uint64(max(a.SizeBytes, 0))),
			formatElapsed(a.Duration),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Key", "Name", "Stage", "Path", "Size", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
