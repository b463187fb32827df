package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"credmerge/internal/state"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent merge runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Output.HistoryDBPath == "" {
				return errors.New("output.history_db_path is not configured")
			}
			store, err := state.NewStore(a.cfg.Output.HistoryDBPath)
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if a.cfg.Output.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func historyTable(runs []state.Run) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "OUTCOME", "FILES", "SCANNED", "NEW", "MACHINE", "RECORDS", "ARCHIVED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, r := range runs {
		archived := strconv.Itoa(r.Archived)
		if r.ArchiveFailures > 0 {
			archived = fmt.Sprintf("%d (%d failed)", r.Archived, r.ArchiveFailures)
		}
		t.Row(
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Outcome,
			strconv.Itoa(r.SourceFiles),
			strconv.Itoa(r.TotalScanned),
			strconv.Itoa(r.UniqueNew),
			strconv.Itoa(r.MachineAccountNew),
			strconv.Itoa(r.OutputRecords),
			archived,
		)
	}
	return t.String()
}
