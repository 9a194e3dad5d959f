package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/padroles/internal/audit"
	"github.com/suykerbuyk/padroles/internal/watch"
)

var watchDebounce = watch.DefaultDebounce

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-audit records as they change on disk",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed file is audited")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	_, cc, err := loadCorpus()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := watch.New(cc, watchDebounce, func(res audit.Result) {
		if jsonOut {
			_ = writeJSON(out, res)
			return
		}
		switch {
		case res.Err != nil:
			fmt.Fprintf(out, "%-17s %s\n", "unreadable", res.Err)
		case res.Detail != "":
			fmt.Fprintf(out, "%-17s %s (%s)\n", res.Outcome, res.File, res.Detail)
		default:
			fmt.Fprintf(out, "%-17s %s\n", res.Outcome, res.File)
		}
	})
	return w.Run(ctx)
}
