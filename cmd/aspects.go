package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netsim-lab/congestion-runner/runner/config"
)

// aspectFlags holds the repeatable --input, --buffer, ... --alpha values of one command,
// plus the generic --aspect NAME=VALUE form.
type aspectFlags struct {
	byAspect map[config.Aspect]*[]string
	generic  *[]string
}

// addAspectFlags registers one repeatable flag per aspect on cmd.
func addAspectFlags(cmd *cobra.Command) aspectFlags {
	flags := aspectFlags{byAspect: make(map[config.Aspect]*[]string), generic: new([]string)}
	for _, a := range config.Aspects() {
		values := new([]string)
		flags.byAspect[a] = values
		cmd.Flags().StringArrayVar(values, a.Section(), nil,
			fmt.Sprintf("%s %s (can be repeated)", strings.ToLower(a.String()), aspectNoun(a)))
	}
	cmd.Flags().StringArrayVar(flags.generic, "aspect", nil,
		"aspect choice as NAME=VALUE, e.g. control=pias (can be repeated)")
	return flags
}

func aspectNoun(a config.Aspect) string {
	if a.Numeric() {
		return "value"
	}
	return "profile"
}

// runs expands the flag values into the cartesian product of runs.
// --aspect values follow the dedicated flag's values for the same aspect.
func (f aspectFlags) runs() ([]config.Run, error) {
	choices := make(map[config.Aspect][]string, len(f.byAspect))
	for a, values := range f.byAspect {
		if values != nil && len(*values) > 0 {
			choices[a] = append([]string(nil), *values...)
		}
	}
	if f.generic != nil {
		for _, kv := range *f.generic {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || value == "" {
				return nil, fmt.Errorf("--aspect %q: expected NAME=VALUE", kv)
			}
			a, err := config.ParseAspect(name)
			if err != nil {
				return nil, fmt.Errorf("--aspect %q: %w", kv, err)
			}
			choices[a] = append(choices[a], value)
		}
	}
	return config.Expand(choices), nil
}
