package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netsim-lab/congestion-runner/runner/config"
	"github.com/netsim-lab/congestion-runner/runner/simargs"
)

var (
	resolveConfigPath string   // Experiment configuration file
	resolveKeys       []string // Keys to print for each run
	resolveArgs       bool     // Also print the simulator argument vector
	resolveAspects    aspectFlags
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the resolved configuration of each run without writing anything",
	Run: func(cmd *cobra.Command, args []string) {
		runs, err := resolveAspects.runs()
		if err != nil {
			logrus.Fatalf("Invalid aspect flags: %v", err)
		}
		for _, run := range runs {
			cfg, err := config.LoadFile(resolveConfigPath, run)
			if err != nil {
				logrus.Fatalf("Failed to load config %s: %v", resolveConfigPath, err)
			}
			if err := printResolved(cmd.OutOrStdout(), cfg, resolveKeys, resolveArgs); err != nil {
				logrus.Fatalf("Resolve failed: %v", err)
			}
		}
	},
}

// printResolved writes the run name, both descriptors and the requested keys of cfg.
func printResolved(w io.Writer, cfg *config.Config, keys []string, withArgs bool) error {
	name, err := cfg.RunName()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "run: %s\n", name)

	delay, err := cfg.DelayAssignment()
	if err != nil {
		return err
	}
	if err := printJSON(w, "delay_assignment", delay); err != nil {
		return err
	}
	packet, err := cfg.PacketPropertiesAssignment()
	if err != nil {
		return err
	}
	if err := printJSON(w, "packet_properties_assignment", packet); err != nil {
		return err
	}

	for _, k := range keys {
		v, err := cfg.Get(k)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s = %s\n", k, simargs.Arg(v))
	}
	if withArgs {
		args, err := simargs.Build(cfg, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "args: %s\n", simargs.Quote(args))
	}
	return nil
}

func printJSON(w io.Writer, label string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", label, err)
	}
	fmt.Fprintf(w, "%s: %s\n", label, data)
	return nil
}

func init() {
	resolveCmd.Flags().StringVar(&resolveConfigPath, "config", "config.toml", "Path to the experiment configuration (TOML or YAML)")
	resolveCmd.Flags().StringArrayVar(&resolveKeys, "key", nil, "Configuration key to print (can be repeated)")
	resolveCmd.Flags().BoolVar(&resolveArgs, "args", false, "Also print the simulator argument vector")
	resolveAspects = addAspectFlags(resolveCmd)

	rootCmd.AddCommand(resolveCmd)
}
