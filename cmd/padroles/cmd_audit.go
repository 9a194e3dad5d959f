package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/padroles/internal/audit"
	"github.com/suykerbuyk/padroles/internal/config"
	"github.com/suykerbuyk/padroles/internal/history"
	"github.com/suykerbuyk/padroles/internal/repair"
)

var (
	strict           bool
	dryRun           bool
	noBackup         bool
	convertAlternate bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report the validation outcome of every record (read-only)",
	Long: `Runs every record through the validation gates and reports per-outcome
counts with sample file names. Records are never modified.

With --strict the command exits with status 3 when any record is not valid.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair records in place and re-audit the corpus",
	Long: `Completes PAD values, migrates legacy role names, resolves zero-sum role
distributions and flattens nested classifications. A record is written only
when something changed; each original is backed up first unless --no-backup
is given. The corpus is audited before and after.`,
	Args: cobra.NoArgs,
	RunE: runRepair,
}

func init() {
	auditCmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 3 if any record is not valid")

	repairCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	repairCmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not back up records before overwriting them")
	repairCmd.Flags().BoolVar(&convertAlternate, "convert-alternate", false, "Recompute intensities stored under the other formula")
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	cfg, cc, err := loadCorpus()
	if err != nil {
		return err
	}

	rep, err := audit.Run(ctx, cc)
	if err != nil {
		return err
	}
	recordRun(ctx, cfg, history.KindAudit, rep, 0, "")

	out := cmd.OutOrStdout()
	if jsonOut {
		if err := writeJSON(out, rep); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, rep.Format())
	}

	if strict && !rep.Clean() {
		return &exitError{code: 3, msg: fmt.Sprintf("%d of %d records not valid, %d unreadable", rep.Invalid(), rep.Total, len(rep.Errors))}
	}
	return nil
}

type repairOutput struct {
	Before audit.Report  `json:"before"`
	Repair repair.Report `json:"repair"`
	After  *audit.Report `json:"after,omitempty"`
}

func runRepair(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	cfg, cc, err := loadCorpus()
	if err != nil {
		return err
	}

	var res repairOutput
	if res.Before, err = audit.Run(ctx, cc); err != nil {
		return err
	}

	res.Repair, err = repair.Run(ctx, cc, repair.Options{
		DryRun:           dryRun,
		Backup:           cfg.Backup.Enabled && !noBackup,
		BackupDir:        cfg.BackupDir(),
		ConvertAlternate: convertAlternate,
	})
	if err != nil {
		return err
	}

	if !dryRun {
		after, err := audit.Run(ctx, cc)
		if err != nil {
			return err
		}
		res.After = &after
		recordRun(ctx, cfg, history.KindRepair, after, res.Repair.Written, res.Repair.BackupSet)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, res)
	}
	fmt.Fprintln(out, "before:")
	fmt.Fprint(out, res.Before.Format())
	fmt.Fprintln(out)
	fmt.Fprint(out, res.Repair.Format())
	if res.After != nil {
		fmt.Fprintln(out, "\nafter:")
		fmt.Fprint(out, res.After.Format())
	}
	return nil
}

// recordRun adds rep to the history ledger. A ledger failure is logged and
// never fails the command.
func recordRun(ctx context.Context, cfg config.Config, kind string, rep audit.Report, changed int, backupSet string) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	run, err := store.Add(ctx, kind, rep, changed, backupSet, time.Now())
	if err != nil {
		logger.Warn("history write failed", zap.Error(err))
		return
	}
	logger.Debug("run recorded", zap.String("run_id", run.ID), zap.String("kind", kind))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
