package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suykerbuyk/padroles/internal/config"
	"github.com/suykerbuyk/padroles/internal/corpus"
)

const version = "0.1.0"

var (
	// Global flags
	verbose    bool
	configPath string
	rootDir    string
	jsonOut    bool

	logger *zap.Logger

	// newLogger is replaced in tests.
	newLogger = func(verbose bool) (*zap.Logger, error) {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		return cfg.Build()
	}
)

// exitError carries a specific process exit status.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

var rootCmd = &cobra.Command{
	Use:   "padroles",
	Short: "PAD affect scoring and role-classification integrity for conversation corpora",
	Long: `padroles audits and repairs a corpus of classified conversation records.

Every message gets a complete Pleasure-Arousal-Dominance value, every role
distribution is moved onto the current role taxonomy, and zero-sum
distributions are either spread evenly (short or abstained conversations) or
kept and marked as a role breakdown.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/padroles/config.toml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Corpus root directory (overrides corpus_root)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print machine-readable JSON reports")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies the --root override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if rootDir != "" {
		cfg.CorpusRoot = rootDir
		cfg.Resolve()
	}
	return cfg, nil
}

// loadCorpus resolves the configuration into a corpus context.
func loadCorpus() (config.Config, corpus.Context, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, corpus.Context{}, err
	}
	cc, err := corpus.FromConfig(cfg, logger)
	if err != nil {
		return cfg, corpus.Context{}, err
	}
	return cfg, cc, nil
}
