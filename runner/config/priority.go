package config

import (
	"fmt"
	"strings"

	"github.com/netsim-lab/congestion-runner/runner"
)

// PriorityScheme selects how switches rank packets. The numeric values are the
// codes the simulator script expects and must not change.
type PriorityScheme int

const (
	PriorityRemainingSize              PriorityScheme = 2
	PriorityBytesSent                  PriorityScheme = 3
	PriorityUnknown                    PriorityScheme = 5
	PriorityLazyRemainingSize          PriorityScheme = 6
	PriorityLazyRemainingSizeBytesSent PriorityScheme = 7
)

var priorityNames = map[string]PriorityScheme{
	"UNKNOWN":                        PriorityUnknown,
	"REMAINING_SIZE":                 PriorityRemainingSize,
	"BYTES_SENT":                     PriorityBytesSent,
	"LAZY_REMAINING_SIZE":            PriorityLazyRemainingSize,
	"LAZY_REMAINING_SIZE_BYTES_SENT": PriorityLazyRemainingSizeBytesSent,
}

// ParsePriorityScheme maps a case-insensitive scheme name to its PriorityScheme.
func ParsePriorityScheme(name string) (PriorityScheme, error) {
	p, ok := priorityNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown priority scheme %q", runner.ErrUnrecognizedShape, name)
	}
	return p, nil
}

// Code returns the simulator-side code.
func (p PriorityScheme) Code() int {
	return int(p)
}

func (p PriorityScheme) String() string {
	for name, v := range priorityNames {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("PriorityScheme(%d)", int(p))
}
