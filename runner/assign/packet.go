package assign

import (
	"fmt"
	"sort"

	"github.com/netsim-lab/congestion-runner/runner"
)

// Packet-properties assigner types understood by the simulator.
var packetPropertyTypes = []string{"uniform", "inv_size", "inv_rem_size", "las"}

// PacketPropertiesAssignerConfig generates the packet-properties descriptor from a
// packet_properties_assignment sub-table.
type PacketPropertiesAssignerConfig struct {
	table runner.Table
}

// NewPacketPropertiesAssignerConfig wraps the packet_properties_assignment sub-table.
func NewPacketPropertiesAssignerConfig(table runner.Table) PacketPropertiesAssignerConfig {
	return PacketPropertiesAssignerConfig{table: table}
}

// Assignment returns nil for an empty table. Otherwise the table must consist of
// exactly one known assigner key.
func (c PacketPropertiesAssignerConfig) Assignment() (*PacketProperties, error) {
	if len(c.table) == 0 {
		return nil, nil
	}
	if len(c.table) == 1 {
		for _, name := range packetPropertyTypes {
			if c.table.Has(name) {
				return &PacketProperties{Type: name}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: packet_properties_assignment needs exactly one of %v, got %v",
		runner.ErrUnrecognizedShape, packetPropertyTypes, sortedKeys(c.table))
}

func sortedKeys(t runner.Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
