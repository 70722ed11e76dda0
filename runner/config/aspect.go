package config

import (
	"fmt"
	"strings"

	"github.com/netsim-lab/congestion-runner/runner"
)

// Aspect is a configuration dimension a batch of runs may vary.
// Declaration order fixes the field order of run names.
type Aspect int

const (
	Input Aspect = iota
	Buffer
	Control
	Slacks
	Scale
	Load
	Alpha
)

var aspectNames = [...]string{
	Input:   "INPUT",
	Buffer:  "BUFFER",
	Control: "CONTROL",
	Slacks:  "SLACKS",
	Scale:   "SCALE",
	Load:    "LOAD",
	Alpha:   "ALPHA",
}

// Aspects returns every aspect in declaration order.
func Aspects() []Aspect {
	return []Aspect{Input, Buffer, Control, Slacks, Scale, Load, Alpha}
}

func (a Aspect) String() string {
	if a < 0 || int(a) >= len(aspectNames) {
		return fmt.Sprintf("Aspect(%d)", int(a))
	}
	return aspectNames[a]
}

// Section is the configuration-file section holding this aspect's profiles.
func (a Aspect) Section() string {
	return strings.ToLower(a.String())
}

// Numeric reports whether the aspect carries a number rather than a profile name.
// Numeric aspects are read straight from the run and never form a layer.
func (a Aspect) Numeric() bool {
	return a == Load || a == Alpha
}

// ParseAspect maps a case-insensitive aspect name to its Aspect.
func ParseAspect(name string) (Aspect, error) {
	for _, a := range Aspects() {
		if strings.EqualFold(name, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown aspect %q", runner.ErrUnrecognizedShape, name)
}
