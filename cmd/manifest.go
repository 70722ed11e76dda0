package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netsim-lab/congestion-runner/runner/manifest"
)

var manifestPath string // SQLite manifest

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect the manifest of prepared runs",
}

var manifestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prepared runs, ordered by name",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := manifest.Open(manifestPath)
		if err != nil {
			logrus.Fatalf("Failed to open manifest: %v", err)
		}
		defer store.Close()
		if err := printManifest(cmd.Context(), cmd.OutOrStdout(), store); err != nil {
			logrus.Fatalf("Listing manifest failed: %v", err)
		}
	},
}

func printManifest(ctx context.Context, w io.Writer, store *manifest.Store) error {
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.PreparedAt.Format(time.RFC3339), e.ResultsDir)
	}
	return nil
}

func init() {
	manifestCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "runs.db", "SQLite manifest recording prepared runs")
	manifestCmd.AddCommand(manifestListCmd)

	rootCmd.AddCommand(manifestCmd)
}
