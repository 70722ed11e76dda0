// Package config resolves a layered experiment configuration for one Run.
//
// A configuration source holds a default table plus one section per layered
// aspect (input, buffer, control, slacks, scale), each mapping profile names to
// override tables. Resolving a Run picks one profile per aspect the Run sets;
// those tables become inheritance layers above the defaults. At most one layer
// may define any key.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netsim-lab/congestion-runner/runner"
	"github.com/netsim-lab/congestion-runner/runner/assign"
)

// Delays lists the canonical loads. A list-valued key holds one entry per load,
// position i applying to Delays[i].
var Delays = [...]float64{0.9, 0.8, 0.7, 0.6, 0.5}

// Layer is the override table contributed by one aspect's chosen profile.
type Layer struct {
	Aspect  Aspect
	Profile string
	Values  runner.Table
}

// Config is the resolved configuration of one Run. It is never mutated after
// construction and is safe for concurrent use.
type Config struct {
	run      Run
	defaults runner.Table
	layers   []Layer
}

// New builds a Config from an already partitioned source. The defaults and layer
// tables are deep-copied, so later changes by the caller are not observed.
func New(run Run, defaults runner.Table, layers []Layer) *Config {
	if defaults == nil {
		defaults = runner.Table{}
	}
	return &Config{
		run:      run.Clone(),
		defaults: defaults.Clone(),
		layers:   cloneLayers(layers),
	}
}

func cloneLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = Layer{Aspect: l.Aspect, Profile: l.Profile, Values: l.Values.Clone()}
	}
	return out
}

// lookup finds the unresolved value of key: the single layer defining it, else the defaults.
func lookup(layers []Layer, defaults runner.Table, key string) (any, error) {
	var (
		value    any
		definers []string
	)
	for _, l := range layers {
		if v, ok := l.Values[key]; ok {
			value = v
			definers = append(definers, l.Aspect.Section()+"."+l.Profile)
		}
	}
	switch {
	case len(definers) == 1:
		return value, nil
	case len(definers) > 1:
		return nil, fmt.Errorf("%w: key %q is defined by %s", runner.ErrAmbiguousKey, key, strings.Join(definers, ", "))
	}
	if v, ok := defaults[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", runner.ErrMissingKey, key)
}

// byLoad picks the entry of a load-indexed list matching load.
func byLoad(key string, list []any, load float64) (any, error) {
	if len(list) != len(Delays) {
		return nil, fmt.Errorf("%w: %q has %d load-indexed entries, want %d", runner.ErrMissingKey, key, len(list), len(Delays))
	}
	for i, d := range Delays {
		if d == load {
			return list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q has no entry for load %v", runner.ErrMissingKey, key, load)
}

// Get resolves key through the layers and defaults. A list value is
// re-indexed by the run's load. Tables and lists are returned as copies.
func (c *Config) Get(key string) (any, error) {
	v, err := lookup(c.layers, c.defaults, key)
	if err != nil {
		return nil, err
	}
	list, ok := runner.AsList(v)
	if !ok {
		return runner.CloneValue(v), nil
	}
	load, err := c.Load()
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", key, err)
	}
	v, err = byLoad(key, list, load)
	if err != nil {
		return nil, err
	}
	return runner.CloneValue(v), nil
}

// Contains reports whether any layer or the defaults define key.
func (c *Config) Contains(key string) bool {
	for _, l := range c.layers {
		if l.Values.Has(key) {
			return true
		}
	}
	return c.defaults.Has(key)
}

// GetOr resolves key, returning fallback on any missing-key failure: no table
// defines it, or a load-indexed list has no entry for the run's load.
// Ambiguity is still reported.
func (c *Config) GetOr(key string, fallback any) (any, error) {
	v, err := c.Get(key)
	if errors.Is(err, runner.ErrMissingKey) {
		return fallback, nil
	}
	return v, err
}

// Keys returns the sorted union of keys over the layers and defaults.
func (c *Config) Keys() []string {
	seen := make(map[string]bool)
	for k := range c.defaults {
		seen[k] = true
	}
	for _, l := range c.layers {
		for k := range l.Values {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Layers returns copies of the inheritance layers in aspect order.
func (c *Config) Layers() []Layer {
	return cloneLayers(c.layers)
}

// Run returns a copy of the run this configuration was resolved for.
func (c *Config) Run() Run {
	return c.run.Clone()
}

func typed[T any](c *Config, key string, conv func(any) (T, error)) (T, error) {
	var zero T
	v, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	out, err := conv(v)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return out, nil
}

// String resolves key as a string.
func (c *Config) String(key string) (string, error) { return typed(c, key, runner.String) }

// Float resolves key as a number.
func (c *Config) Float(key string) (float64, error) { return typed(c, key, runner.Float) }

// Int resolves key as an integer.
func (c *Config) Int(key string) (int64, error) { return typed(c, key, runner.Int) }

// Bool resolves key as a boolean.
func (c *Config) Bool(key string) (bool, error) { return typed(c, key, runner.Bool) }

// Table resolves key as a sub-table. The result is a copy.
func (c *Config) Table(key string) (runner.Table, error) { return typed(c, key, runner.AsTable) }

// Load returns the run's offered load as a fraction of link capacity.
func (c *Config) Load() (float64, error) {
	v, ok := c.run[Load]
	if !ok {
		return 0, fmt.Errorf("%w: run sets no %s", runner.ErrMissingKey, Load)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", runner.ErrBadValue, Load, v)
	}
	return f, nil
}

// Alpha returns the run's alpha, or nil when the run does not set one.
func (c *Config) Alpha() (*float64, error) {
	v, ok := c.run[Alpha]
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", runner.ErrBadValue, Alpha, v)
	}
	return &f, nil
}

// RunName returns the encoded name of the run.
func (c *Config) RunName() (string, error) {
	return c.run.Name()
}

// NumServers is topology_spt × topology_tors.
func (c *Config) NumServers() (int64, error) {
	spt, err := c.Int("topology_spt")
	if err != nil {
		return 0, err
	}
	tors, err := c.Int("topology_tors")
	if err != nil {
		return 0, err
	}
	return spt * tors, nil
}

// PriorityScheme parses prio_scheme case-insensitively.
func (c *Config) PriorityScheme() (PriorityScheme, error) {
	name, err := c.String("prio_scheme")
	if err != nil {
		return 0, err
	}
	return ParsePriorityScheme(name)
}

// LinkRateGbps is the link_rate key, in Gbit/s.
func (c *Config) LinkRateGbps() (float64, error) {
	return c.Float("link_rate")
}

// LinkRateBps is the link rate in bit/s.
func (c *Config) LinkRateBps() (float64, error) {
	gbps, err := c.LinkRateGbps()
	if err != nil {
		return 0, err
	}
	return gbps * 1e9, nil
}

// PerServerRateBps spreads the offered load of one server over every other server.
func (c *Config) PerServerRateBps() (float64, error) {
	bps, err := c.LinkRateBps()
	if err != nil {
		return 0, err
	}
	load, err := c.Load()
	if err != nil {
		return 0, err
	}
	servers, err := c.NumServers()
	if err != nil {
		return 0, err
	}
	if servers < 2 {
		return 0, fmt.Errorf("%w: topology needs at least 2 servers, got %d", runner.ErrBadValue, servers)
	}
	return bps * load / float64(servers-1), nil
}

// PiasThreshold returns PIAS demotion threshold idx in bytes.
func (c *Config) PiasThreshold(idx int) (int64, error) {
	packets, err := c.Int(fmt.Sprintf("pias_thresh_%d", idx))
	if err != nil {
		return 0, err
	}
	return runner.PacketSize * packets, nil
}

// CustomScript returns the custom_script key if set.
func (c *Config) CustomScript() (string, bool, error) {
	v, err := c.GetOr("custom_script", nil)
	if err != nil || v == nil {
		return "", false, err
	}
	s, err := runner.String(v)
	if err != nil {
		return "", false, fmt.Errorf("custom_script: %w", err)
	}
	return s, true, nil
}

// PlotGenerationBounds splits plot_generation_bounds on whitespace; empty if unset.
func (c *Config) PlotGenerationBounds() ([]string, error) {
	v, err := c.GetOr("plot_generation_bounds", nil)
	if err != nil || v == nil {
		return nil, err
	}
	s, err := runner.String(v)
	if err != nil {
		return nil, fmt.Errorf("plot_generation_bounds: %w", err)
	}
	return strings.Fields(s), nil
}

// DelayAssignment derives the delay assignment, or nil when delay_assignment is unset.
func (c *Config) DelayAssignment() (*assign.DelayAssignment, error) {
	if !c.Contains("delay_assignment") {
		return nil, nil
	}
	table, err := c.Table("delay_assignment")
	if err != nil {
		return nil, err
	}
	gbps, err := c.LinkRateGbps()
	if err != nil {
		return nil, err
	}
	load, err := c.Load()
	if err != nil {
		return nil, err
	}
	a, err := assign.NewDelayAssignmentConfig(table, gbps, load).Assignment()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// PacketPropertiesAssignment derives the packet-properties descriptor, or nil when
// packet_properties_assignment is unset or empty.
func (c *Config) PacketPropertiesAssignment() (*assign.PacketProperties, error) {
	if !c.Contains("packet_properties_assignment") {
		return nil, nil
	}
	table, err := c.Table("packet_properties_assignment")
	if err != nil {
		return nil, err
	}
	return assign.NewPacketPropertiesAssignerConfig(table).Assignment()
}

// Arrivals binds the arrivals table to this run's per-server rate.
func (c *Config) Arrivals() (assign.ArrivalsConfig, error) {
	table, err := c.Table("arrivals")
	if err != nil {
		return assign.ArrivalsConfig{}, err
	}
	rate, err := c.PerServerRateBps()
	if err != nil {
		return assign.ArrivalsConfig{}, err
	}
	return assign.NewArrivalsConfig(table, rate), nil
}
