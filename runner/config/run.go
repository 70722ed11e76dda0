package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/netsim-lab/congestion-runner/runner"
)

const nameSeparator = "."

// Run assigns a value to each aspect a run varies. Absent aspects have no override.
type Run map[Aspect]string

// Name encodes the run as its aspect values joined by ".", in declaration order.
// LOAD and ALPHA are written as truncated percentages: 0.7 becomes "70".
func (r Run) Name() (string, error) {
	parts := make([]string, 0, len(r))
	for _, a := range Aspects() {
		v, ok := r[a]
		if !ok {
			continue
		}
		if a.Numeric() {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return "", fmt.Errorf("%w: %s value %q is not a number", runner.ErrBadValue, a, v)
			}
			v = strconv.FormatInt(int64(f*100), 10)
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, nameSeparator), nil
}

// Clone returns an independent copy of r.
func (r Run) Clone() Run {
	out := make(Run, len(r))
	for a, v := range r {
		out[a] = v
	}
	return out
}

// Expand returns the cartesian product of the per-aspect choices, iterating
// aspects in declaration order with the last aspect varying fastest.
// Aspects without choices are absent from every run.
func Expand(choices map[Aspect][]string) []Run {
	runs := []Run{{}}
	for _, a := range Aspects() {
		values := choices[a]
		if len(values) == 0 {
			continue
		}
		next := make([]Run, 0, len(runs)*len(values))
		for _, r := range runs {
			for _, v := range values {
				c := r.Clone()
				c[a] = v
				next = append(next, c)
			}
		}
		runs = next
	}
	return runs
}
