package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/netsim-lab/congestion-runner/runner"
)

// ReadSource parses a configuration file into a normalized table.
// Files ending in .yaml or .yml are YAML; anything else is TOML.
func ReadSource(path string) (runner.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return runner.AsTable(runner.Normalize(raw))
}

// LoadFile reads the configuration at path and resolves it for run.
func LoadFile(path string, run Run) (*Config, error) {
	source, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Resolve(source, run)
}

// Resolve partitions source into inheritance layers and defaults for run.
// For every non-numeric aspect the run sets, the named profile of that aspect's
// section becomes a layer and the section is dropped from the defaults.
// Everything else, including sections the run does not touch, stays in the defaults.
// source is not modified and the Config shares no tables with it.
func Resolve(source runner.Table, run Run) (*Config, error) {
	defaults := source.Clone()
	var layers []Layer
	for _, a := range Aspects() {
		profile, ok := run[a]
		if !ok || a.Numeric() {
			continue
		}
		raw, ok := defaults[a.Section()]
		if !ok {
			return nil, fmt.Errorf("%w: %s profile %q (no [%s] section)", runner.ErrNoSuchProfile, a.Section(), profile, a.Section())
		}
		section, err := runner.AsTable(raw)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", a.Section(), err)
		}
		values, ok := section[profile]
		if !ok {
			return nil, fmt.Errorf("%w: %s profile %q", runner.ErrNoSuchProfile, a.Section(), profile)
		}
		table, err := runner.AsTable(values)
		if err != nil {
			return nil, fmt.Errorf("%s profile %q: %w", a.Section(), profile, err)
		}
		logrus.Debugf("config: layer %s=%s overrides %d keys", a.Section(), profile, len(table))
		layers = append(layers, Layer{Aspect: a, Profile: profile, Values: table})
		delete(defaults, a.Section())
	}
	return New(run, defaults, layers), nil
}
