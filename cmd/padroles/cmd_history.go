package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/padroles/internal/archive"
	"github.com/suykerbuyk/padroles/internal/history"
)

var (
	historyLimit   int
	historyAll     bool
	historyCompare bool
	historyTrend   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded audit and repair runs",
	Long: `Lists the runs recorded in the history ledger, newest first. With
--compare the two most recent runs for the corpus are compared outcome by
outcome, and with --trend the valid rate is tracked across the listed runs.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-set]",
	Short: "Restore the records saved by a repair run",
	Long: `Without arguments, lists the backup sets. With a backup set ID, writes every
record in that set back into the corpus root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "List runs for every corpus root")
	historyCmd.Flags().BoolVar(&historyCompare, "compare", false, "Compare the two most recent runs")
	historyCmd.Flags().BoolVar(&historyTrend, "trend", false, "Show the valid-rate trend over the listed runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()

	root := cfg.CorpusRoot
	if historyAll {
		root = ""
	}
	limit := historyLimit
	if historyCompare {
		limit = 2
	}
	runs, err := store.List(cmd.Context(), root, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyCompare {
		if len(runs) < 2 {
			return fmt.Errorf("need two recorded runs to compare, have %d", len(runs))
		}
		if jsonOut {
			return writeJSON(out, history.Compare(runs[1], runs[0]))
		}
		fmt.Fprint(out, history.FormatCompare(runs[1], runs[0]))
		return nil
	}
	if historyTrend {
		tr := history.ComputeTrend(runs)
		if jsonOut {
			return writeJSON(out, tr)
		}
		fmt.Fprint(out, history.FormatTrend(tr))
		return nil
	}
	if jsonOut {
		return writeJSON(out, runs)
	}
	fmt.Fprint(out, history.FormatRuns(runs))
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		sets, err := archive.List(cfg.BackupDir())
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			fmt.Fprintln(out, "no backup sets")
			return nil
		}
		for _, s := range sets {
			names, err := s.Files()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  %d records\n", s.ID, len(names))
		}
		return nil
	}

	set, err := archive.Open(cfg.BackupDir(), args[0])
	if err != nil {
		return err
	}
	names, err := set.Restore(cfg.CorpusRoot)
	for _, name := range names {
		fmt.Fprintf(out, "restored %s\n", name)
	}
	if err != nil {
		return err
	}
	logger.Info("backup set restored", zap.String("set", set.ID), zap.Int("records", len(names)))
	return nil
}
