package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netsim-lab/congestion-runner/runner/config"
)

var runsAspects aspectFlags

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the run names a set of aspect choices expands to",
	Run: func(cmd *cobra.Command, args []string) {
		runs, err := runsAspects.runs()
		if err != nil {
			logrus.Fatalf("Invalid aspect flags: %v", err)
		}
		if err := printRuns(cmd.OutOrStdout(), runs); err != nil {
			logrus.Fatalf("Listing runs failed: %v", err)
		}
	},
}

func printRuns(w io.Writer, runs []config.Run) error {
	for _, r := range runs {
		name, err := r.Name()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, name)
	}
	return nil
}

func init() {
	runsAspects = addAspectFlags(runsCmd)
	rootCmd.AddCommand(runsCmd)
}
