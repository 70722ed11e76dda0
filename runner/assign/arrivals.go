package assign

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/netsim-lab/congestion-runner/runner"
	"github.com/netsim-lab/congestion-runner/runner/rv"
)

// ArrivalsConfig derives the flow-size and flow-interarrival random variables from an
// arrivals sub-table and the per-server offered load.
type ArrivalsConfig struct {
	table            runner.Table
	perServerRateBps float64
}

// NewArrivalsConfig binds an arrivals sub-table to the per-server rate in bits/sec.
func NewArrivalsConfig(table runner.Table, perServerRateBps float64) ArrivalsConfig {
	return ArrivalsConfig{table: table, perServerRateBps: perServerRateBps}
}

// flowSizeShapes maps a flow_size trigger key to its random variable.
var flowSizeShapes = []struct {
	key   string
	build func(spec runner.Table) (rv.RandomVariable, error)
}{
	{"cdf", empiricalFlowSize},
	{"fixed", fixedFlowSize},
	{"uniform", uniformFlowSize},
}

// FlowSizeRV returns the flow-size distribution in packets.
func (a ArrivalsConfig) FlowSizeRV() (rv.RandomVariable, error) {
	raw, ok := a.table["flow_size"]
	if !ok {
		return nil, fmt.Errorf("%w: arrivals.flow_size", runner.ErrMissingKey)
	}
	spec, err := runner.AsTable(raw)
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size: %w", err)
	}
	for _, shape := range flowSizeShapes {
		if spec.Has(shape.key) {
			logrus.Debugf("flow size: matched %q shape", shape.key)
			return shape.build(spec)
		}
	}
	return nil, fmt.Errorf("%w: unknown random variable with keys %v", runner.ErrUnrecognizedShape, sortedKeys(spec))
}

// empiricalFlowSize reads flow sizes from a CDF file. The integral interpolation
// applies unless the table names another one under "interpolation".
func empiricalFlowSize(spec runner.Table) (rv.RandomVariable, error) {
	path, err := runner.String(spec["cdf"])
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size.cdf: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size.cdf: %w", err)
	}
	interpolation := rv.Integral
	if v, ok := spec["interpolation"]; ok {
		if interpolation, err = rv.ParseInterpolation(fmt.Sprint(v)); err != nil {
			return nil, fmt.Errorf("arrivals.flow_size.interpolation: %w", err)
		}
	}
	return rv.NewEmpirical(abs, interpolation), nil
}

func fixedFlowSize(spec runner.Table) (rv.RandomVariable, error) {
	if n, ok := spec["fixed"].(int64); ok {
		return rv.NewFixedInt(n), nil
	}
	f, err := runner.Float(spec["fixed"])
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size.fixed: %w", err)
	}
	return rv.NewFixed(f), nil
}

func uniformFlowSize(spec runner.Table) (rv.RandomVariable, error) {
	bounds, err := runner.AsTable(spec["uniform"])
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size.uniform: %w", err)
	}
	minInt, minIsInt := bounds["min"].(int64)
	maxInt, maxIsInt := bounds["max"].(int64)
	if minIsInt && maxIsInt {
		return rv.NewUniformInt(minInt, maxInt), nil
	}
	lo, err := runner.Float(bounds["min"])
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size.uniform.min: %w", err)
	}
	hi, err := runner.Float(bounds["max"])
	if err != nil {
		return nil, fmt.Errorf("arrivals.flow_size.uniform.max: %w", err)
	}
	return rv.NewUniform(lo, hi), nil
}

// MeanFlowSize returns the mean flow size in whole packets: the explicit
// mean_flow_size override if present, otherwise the truncated flow-size mean.
func (a ArrivalsConfig) MeanFlowSize() (int64, error) {
	if v, ok := a.table["mean_flow_size"]; ok {
		n, err := runner.Int(v)
		if err != nil {
			return 0, fmt.Errorf("arrivals.mean_flow_size: %w", err)
		}
		return n, nil
	}
	sizeRV, err := a.FlowSizeRV()
	if err != nil {
		return 0, err
	}
	mean, err := sizeRV.Mean()
	if err != nil {
		return 0, err
	}
	if e, ok := sizeRV.(rv.Empirical); ok {
		logrus.Debugf("flow size: %s has mean %g packets with %s interpolation", e.File(), mean, e.Interpolation())
	}
	return int64(mean), nil
}

// MeanFlowSizeInBytes returns the mean flow payload in bytes.
func (a ArrivalsConfig) MeanFlowSizeInBytes() (int64, error) {
	packets, err := a.MeanFlowSize()
	if err != nil {
		return 0, err
	}
	return packets * runner.PacketSize, nil
}

// FlowIntervalRV returns the exponential flow inter-arrival distribution. Its rate is
// chosen so the offered load, counted in link-layer bits (payload plus per-packet
// headers), matches the per-server rate.
func (a ArrivalsConfig) FlowIntervalRV() (rv.Exponential, error) {
	bytes, err := a.MeanFlowSizeInBytes()
	if err != nil {
		return rv.Exponential{}, err
	}
	if bytes <= 0 {
		return rv.Exponential{}, fmt.Errorf("%w: mean flow size must be positive, got %d bytes", runner.ErrBadValue, bytes)
	}
	meanFlowLoadBits := float64(bytes) * runner.BitsPerByte / runner.PacketSize * runner.LinkLayerPacketSize
	interval := rv.NewExponential(a.perServerRateBps / meanFlowLoadBits)
	logrus.Debugf("flow interval: %d-byte mean flows arrive at %g/s per server", bytes, interval.Rate())
	return interval, nil
}

// UseAlphaProbability returns the optional use_alpha_probability value.
func (a ArrivalsConfig) UseAlphaProbability() (*float64, error) {
	v, ok := a.table["use_alpha_probability"]
	if !ok {
		return nil, nil
	}
	f, err := runner.Float(v)
	if err != nil {
		return nil, fmt.Errorf("arrivals.use_alpha_probability: %w", err)
	}
	return &f, nil
}
