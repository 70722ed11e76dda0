package rv

import (
	"fmt"
	"strings"

	"github.com/netsim-lab/congestion-runner/runner"
)

// Interpolation selects how an empirical CDF is integrated into a mean.
// The numeric code is what the simulator's empirical random variable expects.
type Interpolation int

const (
	// None uses the right endpoint of each step.
	None Interpolation = iota
	// Continuous uses the midpoint of each step (trapezoid rule).
	Continuous
	// Integral treats CDF values as integer counts: y1 + (y2-y1-1)/2.
	Integral
)

var interpolationNames = map[Interpolation]string{
	None:       "none",
	Continuous: "continuous",
	Integral:   "integral",
}

// Code returns the numeric code passed to the simulator.
func (i Interpolation) Code() int {
	return int(i)
}

func (i Interpolation) String() string {
	if name, ok := interpolationNames[i]; ok {
		return name
	}
	return fmt.Sprintf("interpolation(%d)", int(i))
}

// Interpolate returns the representative value of the segment between y1 and y2.
func (i Interpolation) Interpolate(y1, y2 float64) float64 {
	switch i {
	case Continuous:
		return (y1 + y2) / 2
	case Integral:
		return y1 + (y2-y1-1)/2
	default:
		return y2
	}
}

// Mean integrates cdf pairwise: sum over consecutive points of (x2-x1) * Interpolate(y1, y2).
func (i Interpolation) Mean(cdf []Point) float64 {
	sum := 0.0
	for k := 1; k < len(cdf); k++ {
		prev, cur := cdf[k-1], cdf[k]
		sum += (cur.X - prev.X) * i.Interpolate(prev.Y, cur.Y)
	}
	return sum
}

// ParseInterpolation accepts a policy name (case-insensitive) or its numeric code.
func ParseInterpolation(s string) (Interpolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range interpolationNames {
		if s == name || s == fmt.Sprint(i.Code()) {
			return i, nil
		}
	}
	return None, fmt.Errorf("%w: unknown empirical interpolation %q; valid: none, continuous, integral", runner.ErrUnrecognizedShape, s)
}
