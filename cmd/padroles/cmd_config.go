package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/padroles/internal/config"
	"github.com/suykerbuyk/padroles/internal/markers"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file (never overwrites)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootDir
		if root == "" {
			root = config.DefaultConfig().CorpusRoot
		} else if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		path, err := config.WriteDefault(root)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config: %s\n", config.CompressHome(path))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "padroles v%s (markers v%s)\n", version, markers.Version)
	},
}
