package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netsim-lab/congestion-runner/runner/manifest"
	"github.com/netsim-lab/congestion-runner/runner/prepare"
	"github.com/netsim-lab/congestion-runner/runner/simargs"
)

var (
	prepareConfigPath   string // Experiment configuration file
	prepareResultsDir   string // Parent directory of run directories
	prepareManifestPath string // Optional SQLite manifest
	prepareAspects      aspectFlags
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Write run directories and print the simulator arguments of each run",
	Run: func(cmd *cobra.Command, args []string) {
		runs, err := prepareAspects.runs()
		if err != nil {
			logrus.Fatalf("Invalid aspect flags: %v", err)
		}

		var store *manifest.Store
		if prepareManifestPath != "" {
			s, err := manifest.Open(prepareManifestPath)
			if err != nil {
				logrus.Fatalf("Failed to open manifest: %v", err)
			}
			defer s.Close()
			store = s
		}

		ctx := context.Background()
		for _, run := range runs {
			res, err := prepare.Prepare(ctx, prepare.Options{
				ConfigPath: prepareConfigPath,
				ResultsDir: prepareResultsDir,
				Run:        run,
				Manifest:   store,
			})
			if err != nil {
				logrus.Fatalf("Prepare failed: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), simargs.Quote(res.Args))
		}
	},
}

func init() {
	prepareCmd.Flags().StringVar(&prepareConfigPath, "config", "config.toml", "Path to the experiment configuration (TOML or YAML)")
	prepareCmd.Flags().StringVar(&prepareResultsDir, "results-dir", "results", "Directory under which run directories are created")
	prepareCmd.Flags().StringVar(&prepareManifestPath, "manifest", "", "SQLite manifest recording prepared runs (disabled when empty)")
	prepareAspects = addAspectFlags(prepareCmd)

	rootCmd.AddCommand(prepareCmd)
}
