// Package assign translates terse configuration sub-tables into the structured
// descriptors and random variables the simulator consumes.
//
// Each generator matches its sub-table against an ordered list of shapes. The
// first shape whose trigger key is present wins; a table matching no shape is
// an ErrUnrecognizedShape error and is never silently defaulted.
package assign

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/netsim-lab/congestion-runner/runner"
	"github.com/netsim-lab/congestion-runner/runner/rv"
)

// Delay descriptor types understood by the simulator.
const (
	TypeFixed       = "fixed"
	TypeExponential = "exponential"
	TypeGoodput     = "goodput"
	TypeUniform     = "uniform"
	TypeFile        = "file"
	TypeMin         = "min"
)

// Descriptor is one delay-assignment distribution: a type tag and its parameters.
type Descriptor struct {
	Type       string `json:"type"`
	Parameters any    `json:"parameters"`
}

// SizeBounds restricts a delay distribution to flows within a size range.
type SizeBounds struct {
	SizeUpperBound *int64 `json:"size_upper_bound,omitempty"`
	SizeLowerBound *int64 `json:"size_lower_bound,omitempty"`
}

// Float is a real-valued descriptor parameter. It always encodes with a
// fractional part or an exponent ("10.0", "1e-05"), never as a bare integer.
type Float float64

// MarshalJSON rejects NaN and infinities with ErrBadValue.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %v is not a finite number", runner.ErrBadValue, v)
	}
	return []byte(rv.FormatFloat(v)), nil
}

// FixedParameters assigns every flow the same delay, in seconds.
type FixedParameters struct {
	Delay Float `json:"delay"`
	SizeBounds
}

// ExponentialParameters draws delays from an exponential distribution.
type ExponentialParameters struct {
	Average    Float `json:"average"`
	LinkSpeed  Float `json:"link_speed"` // bits per second
	UseCapping bool  `json:"use_capping"`
	SizeBounds
}

// GoodputParameters derives delays from a target goodput.
type GoodputParameters struct {
	Goodput int64 `json:"goodput"`
	SizeBounds
}

// UniformParameters draws delays uniformly from [MinDelay, MaxDelay].
type UniformParameters struct {
	MinDelay Float `json:"min_delay"`
	MaxDelay Float `json:"max_delay"`
}

// Min combines descriptors; the simulator assigns the smallest delay any of them yields.
func Min(parts ...Descriptor) Descriptor {
	return Descriptor{Type: TypeMin, Parameters: parts}
}

// DelayAssignment is the simulator-facing delay assignment. It encodes as a single
// JSON object, or as an ordered JSON array when it is a range of descriptors.
type DelayAssignment struct {
	Descriptors []Descriptor
	Range       bool
}

func (a DelayAssignment) MarshalJSON() ([]byte, error) {
	if a.Range {
		return json.Marshal(a.Descriptors)
	}
	if len(a.Descriptors) != 1 {
		return nil, fmt.Errorf("single delay assignment holds %d descriptors", len(a.Descriptors))
	}
	return json.Marshal(a.Descriptors[0])
}

// PacketProperties is the packet-properties assignment descriptor.
type PacketProperties struct {
	Type string `json:"type"`
}
