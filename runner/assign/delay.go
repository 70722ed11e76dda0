package assign

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/netsim-lab/congestion-runner/runner"
)

// DelayAssignmentConfig generates the delay assignment from a delay_assignment sub-table.
type DelayAssignmentConfig struct {
	table        runner.Table
	linkRateGbps float64
	load         float64
}

// NewDelayAssignmentConfig binds a delay_assignment sub-table to the run's link rate and load.
func NewDelayAssignmentConfig(table runner.Table, linkRateGbps, load float64) DelayAssignmentConfig {
	return DelayAssignmentConfig{table: table, linkRateGbps: linkRateGbps, load: load}
}

// delayShape is one recognized delay_assignment layout. The trigger key selects the
// shape; the required keys must then be present as well.
type delayShape struct {
	trigger  string
	requires []string
	build    func(DelayAssignmentConfig) (DelayAssignment, error)
}

// delayShapes is checked in order; earlier shapes take priority.
var delayShapes []delayShape

// Populated in init to break the initialization cycle through minimum -> Assignment.
func init() {
	delayShapes = []delayShape{
		{trigger: "delay", build: DelayAssignmentConfig.fixed},
		{trigger: "delay_min", requires: []string{"delay_max", "count"}, build: DelayAssignmentConfig.delayRange},
		{trigger: "exp", requires: []string{"use_capping"}, build: DelayAssignmentConfig.exponential},
		{trigger: "gp", build: DelayAssignmentConfig.goodput},
		{trigger: "nfct", build: DelayAssignmentConfig.normalizedFCT},
		{trigger: "file", build: DelayAssignmentConfig.file},
		{trigger: "uniform_min_delay", requires: []string{"uniform_max_delay"}, build: DelayAssignmentConfig.uniform},
		{trigger: "min", build: DelayAssignmentConfig.minimum},
	}
}

// Assignment returns the delay assignment described by the sub-table.
func (c DelayAssignmentConfig) Assignment() (DelayAssignment, error) {
	for _, shape := range delayShapes {
		if !c.table.Has(shape.trigger) {
			continue
		}
		for _, k := range shape.requires {
			if !c.table.Has(k) {
				return DelayAssignment{}, fmt.Errorf("%w: delay_assignment.%s requires %q", runner.ErrMissingKey, shape.trigger, k)
			}
		}
		logrus.Debugf("delay assignment: matched %q shape", shape.trigger)
		return shape.build(c)
	}
	return DelayAssignment{}, fmt.Errorf("%w: unknown delay assignment with keys %v", runner.ErrUnrecognizedShape, sortedKeys(c.table))
}

func single(d Descriptor) DelayAssignment {
	return DelayAssignment{Descriptors: []Descriptor{d}}
}

func (c DelayAssignmentConfig) floatParam(key string) (float64, error) {
	f, err := runner.Float(c.table[key])
	if err != nil {
		return 0, fmt.Errorf("delay_assignment.%s: %w", key, err)
	}
	return f, nil
}

func (c DelayAssignmentConfig) intParam(key string) (int64, error) {
	n, err := runner.Int(c.table[key])
	if err != nil {
		return 0, fmt.Errorf("delay_assignment.%s: %w", key, err)
	}
	return n, nil
}

func (c DelayAssignmentConfig) sizeBounds() (SizeBounds, error) {
	var b SizeBounds
	if c.table.Has("size_upper_bound") {
		n, err := c.intParam("size_upper_bound")
		if err != nil {
			return b, err
		}
		b.SizeUpperBound = &n
	}
	if c.table.Has("size_lower_bound") {
		n, err := c.intParam("size_lower_bound")
		if err != nil {
			return b, err
		}
		b.SizeLowerBound = &n
	}
	return b, nil
}

func (c DelayAssignmentConfig) fixedDescriptor(delay float64) (Descriptor, error) {
	bounds, err := c.sizeBounds()
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Type: TypeFixed, Parameters: FixedParameters{Delay: Float(delay), SizeBounds: bounds}}, nil
}

func (c DelayAssignmentConfig) fixed() (DelayAssignment, error) {
	delay, err := c.floatParam("delay")
	if err != nil {
		return DelayAssignment{}, err
	}
	d, err := c.fixedDescriptor(delay)
	if err != nil {
		return DelayAssignment{}, err
	}
	return single(d), nil
}

// delayRange spaces count fixed delays evenly from delay_min to delay_max inclusive.
func (c DelayAssignmentConfig) delayRange() (DelayAssignment, error) {
	lo, err := c.floatParam("delay_min")
	if err != nil {
		return DelayAssignment{}, err
	}
	hi, err := c.floatParam("delay_max")
	if err != nil {
		return DelayAssignment{}, err
	}
	count, err := c.intParam("count")
	if err != nil {
		return DelayAssignment{}, err
	}
	if count < 2 {
		return DelayAssignment{}, fmt.Errorf("%w: delay_assignment.count must be at least 2, got %d", runner.ErrBadValue, count)
	}
	step := (hi - lo) / float64(count-1)
	out := DelayAssignment{Descriptors: make([]Descriptor, 0, count), Range: true}
	for i := int64(0); i < count; i++ {
		d, err := c.fixedDescriptor(lo + step*float64(i))
		if err != nil {
			return DelayAssignment{}, err
		}
		out.Descriptors = append(out.Descriptors, d)
	}
	return out, nil
}

func (c DelayAssignmentConfig) exponential() (DelayAssignment, error) {
	average, err := c.floatParam("exp")
	if err != nil {
		return DelayAssignment{}, err
	}
	capping, err := runner.Bool(c.table["use_capping"])
	if err != nil {
		return DelayAssignment{}, fmt.Errorf("delay_assignment.use_capping: %w", err)
	}
	bounds, err := c.sizeBounds()
	if err != nil {
		return DelayAssignment{}, err
	}
	return single(Descriptor{
		Type: TypeExponential,
		Parameters: ExponentialParameters{
			Average:    Float(average),
			LinkSpeed:  Float(c.linkRateGbps * 1e9),
			UseCapping: capping,
			SizeBounds: bounds,
		},
	}), nil
}

func (c DelayAssignmentConfig) goodputDescriptor(goodput int64) (DelayAssignment, error) {
	bounds, err := c.sizeBounds()
	if err != nil {
		return DelayAssignment{}, err
	}
	return single(Descriptor{Type: TypeGoodput, Parameters: GoodputParameters{Goodput: goodput, SizeBounds: bounds}}), nil
}

func (c DelayAssignmentConfig) goodput() (DelayAssignment, error) {
	gp, err := c.intParam("gp")
	if err != nil {
		return DelayAssignment{}, err
	}
	return c.goodputDescriptor(gp)
}

// normalizedFCT converts a target normalized flow completion time into a goodput target.
func (c DelayAssignmentConfig) normalizedFCT() (DelayAssignment, error) {
	nfct, err := c.floatParam("nfct")
	if err != nil {
		return DelayAssignment{}, err
	}
	gp := math.Round(8.0 / nfct)
	if math.IsInf(gp, 0) || math.IsNaN(gp) {
		return DelayAssignment{}, fmt.Errorf("%w: delay_assignment.nfct must be non-zero, got %v", runner.ErrBadValue, nfct)
	}
	return c.goodputDescriptor(int64(gp))
}

// file substitutes the integer percent load into the path template ("{}" or "{0}").
func (c DelayAssignmentConfig) file() (DelayAssignment, error) {
	pattern, err := runner.String(c.table["file"])
	if err != nil {
		return DelayAssignment{}, fmt.Errorf("delay_assignment.file: %w", err)
	}
	percent := strconv.FormatInt(int64(c.load*100), 10)
	path, err := filepath.Abs(strings.NewReplacer("{}", percent, "{0}", percent).Replace(pattern))
	if err != nil {
		return DelayAssignment{}, fmt.Errorf("delay_assignment.file: %w", err)
	}
	return single(Descriptor{Type: TypeFile, Parameters: path}), nil
}

func (c DelayAssignmentConfig) uniform() (DelayAssignment, error) {
	lo, err := c.floatParam("uniform_min_delay")
	if err != nil {
		return DelayAssignment{}, err
	}
	hi, err := c.floatParam("uniform_max_delay")
	if err != nil {
		return DelayAssignment{}, err
	}
	return single(Descriptor{Type: TypeUniform, Parameters: UniformParameters{MinDelay: Float(lo), MaxDelay: Float(hi)}}), nil
}

// minimum combines a list of delay_assignment sub-tables, each resolved on its own,
// into a single min descriptor.
func (c DelayAssignmentConfig) minimum() (DelayAssignment, error) {
	list, ok := runner.AsList(c.table["min"])
	if !ok || len(list) == 0 {
		return DelayAssignment{}, fmt.Errorf("%w: delay_assignment.min must be a non-empty list of tables", runner.ErrBadValue)
	}
	parts := make([]Descriptor, 0, len(list))
	for i, raw := range list {
		table, err := runner.AsTable(raw)
		if err != nil {
			return DelayAssignment{}, fmt.Errorf("delay_assignment.min[%d]: %w", i, err)
		}
		part, err := NewDelayAssignmentConfig(table, c.linkRateGbps, c.load).Assignment()
		if err != nil {
			return DelayAssignment{}, fmt.Errorf("delay_assignment.min[%d]: %w", i, err)
		}
		if part.Range {
			return DelayAssignment{}, fmt.Errorf("%w: delay_assignment.min[%d] is a range", runner.ErrBadValue, i)
		}
		parts = append(parts, part.Descriptors...)
	}
	return single(Min(parts...)), nil
}
