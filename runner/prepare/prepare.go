// Package prepare lays out the results directory of a run: descriptor files
// the simulator reads, plus the argument vector it is started with.
package prepare

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netsim-lab/congestion-runner/runner/config"
	"github.com/netsim-lab/congestion-runner/runner/manifest"
	"github.com/netsim-lab/congestion-runner/runner/simargs"
)

// Options selects what to prepare.
type Options struct {
	ConfigPath string
	ResultsDir string
	Run        config.Run
	// Manifest, when set, receives an entry for the prepared run.
	Manifest *manifest.Store
}

// Result describes a prepared run directory.
type Result struct {
	RunName string
	Dir     string
	Args    []string
	// DelayAssignment is nil when the run has no delay assignment.
	DelayAssignment  json.RawMessage
	PacketProperties json.RawMessage
}

// Prepare resolves opts.Run against the configuration file and writes the run
// directory. The delay assignment file is written only when the run has one;
// the packet-properties file is always written and holds null when absent.
// Preparing the same run twice produces identical files.
func Prepare(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(opts.ConfigPath, opts.Run)
	if err != nil {
		return nil, err
	}
	name, err := cfg.RunName()
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Join(opts.ResultsDir, name))
	if err != nil {
		return nil, err
	}

	delay, err := cfg.DelayAssignment()
	if err != nil {
		return nil, fmt.Errorf("run %s: delay assignment: %w", name, err)
	}
	packet, err := cfg.PacketPropertiesAssignment()
	if err != nil {
		return nil, fmt.Errorf("run %s: packet properties assignment: %w", name, err)
	}
	args, err := simargs.Build(cfg, dir)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	res := &Result{RunName: name, Dir: dir, Args: args}

	if delay != nil {
		if res.DelayAssignment, err = json.Marshal(delay); err != nil {
			return nil, fmt.Errorf("encoding delay assignment: %w", err)
		}
		if err := writeFile(dir, simargs.DelayAssignmentFile, res.DelayAssignment); err != nil {
			return nil, err
		}
	}
	// json.Marshal of a nil *PacketProperties is "null".
	properties, err := json.Marshal(packet)
	if err != nil {
		return nil, fmt.Errorf("encoding packet properties assignment: %w", err)
	}
	if err := writeFile(dir, simargs.PacketPropertiesFile, properties); err != nil {
		return nil, err
	}
	if packet != nil {
		res.PacketProperties = properties
	}

	logrus.Infof("prepared run %q in %s", name, dir)
	logrus.Debugf("args: %s", simargs.Quote(args))

	if opts.Manifest != nil {
		configPath, err := filepath.Abs(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		err = opts.Manifest.Record(ctx, manifest.Entry{
			Name:             name,
			ConfigPath:       configPath,
			ResultsDir:       dir,
			Args:             args,
			DelayAssignment:  res.DelayAssignment,
			PacketProperties: res.PacketProperties,
			PreparedAt:       time.Now(),
		})
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeFile(dir, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
