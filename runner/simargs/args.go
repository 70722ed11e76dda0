// Package simargs builds the positional argument vector of the packet-level
// simulator script for one resolved run.
package simargs

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/netsim-lab/congestion-runner/runner/config"
	"github.com/netsim-lab/congestion-runner/runner/rv"
)

// File names inside a run directory.
const (
	DefaultScript        = "spine_empirical.tcl"
	FlowTraceFile        = "flow.tr"
	DropTraceFile        = "drop.tr"
	DelayAssignmentFile  = "delay_assignment.json"
	PacketPropertiesFile = "packet_properties_assignment.json"
)

// argList accumulates arguments, remembering the first error.
type argList struct {
	cfg  *config.Config
	args []any
	err  error
}

func (l *argList) keys(keys ...string) {
	for _, k := range keys {
		if l.err != nil {
			return
		}
		v, err := l.cfg.Get(k)
		l.add(v, err)
	}
}

func (l *argList) add(v any, err error) {
	if l.err != nil {
		return
	}
	if err != nil {
		l.err = err
		return
	}
	l.args = append(l.args, v)
}

// Build returns the simulator arguments for cfg, with trace and descriptor
// files placed in runDir. The first argument is the absolute script path.
// Descriptor paths are empty when the run has no such descriptor.
func Build(cfg *config.Config, runDir string) ([]string, error) {
	l := &argList{cfg: cfg}

	l.add(Script(cfg))
	l.keys("sim_end", "link_rate", "mean_link_delay", "host_delay",
		"queue_size", "good_queue_size", "connections_per_pair")

	arrivals, err := cfg.Arrivals()
	if err != nil {
		return nil, fmt.Errorf("arrivals: %w", err)
	}
	l.add(arrivals.FlowSizeRV())
	l.add(arrivals.FlowIntervalRV())
	l.add(cfg.Alpha())
	l.add(arrivals.UseAlphaProbability())

	l.keys("max_num_chunks", "enable_multi_path", "per_flow_mp", "source_alg",
		"init_window", "ack_ratio", "slow_start_restart", "dctcp_g", "min_rto",
		"eof_min_rto", "no_eof_min_rto", "prob_cap", "switch_alg", "dctcp_k", "drop_prio")

	scheme, err := cfg.PriorityScheme()
	l.add(int64(scheme.Code()), err)

	l.keys("deque_prio", "keep_order", "drop_low_prio", "prio_num", "ecn_scheme")
	for i := 0; i < 7; i++ {
		l.add(cfg.PiasThreshold(i))
	}
	l.keys("topology_spt", "topology_tors", "topology_spines", "topology_x")

	l.add(filepath.Abs(filepath.Join(runDir, FlowTraceFile)))
	l.add(filepath.Abs(filepath.Join(runDir, DropTraceFile)))

	delay, err := cfg.DelayAssignment()
	l.add(descriptorPath(delay != nil, runDir, DelayAssignmentFile, err))

	l.keys("use_fifo_processing_order", "use_deadline")

	packet, err := cfg.PacketPropertiesAssignment()
	l.add(descriptorPath(packet != nil, runDir, PacketPropertiesFile, err))

	l.keys("expiration_time_controller", "enable_delay", "enable_dupack",
		"enable_early_expiration", "use_true_remaining_size", "rtx_on_eof",
		"reset_window_on_eof", "afabric_ecn_enable")

	if l.err != nil {
		return nil, l.err
	}
	out := make([]string, len(l.args))
	for i, a := range l.args {
		out[i] = Arg(a)
	}
	return out, nil
}

// Script returns the absolute path of custom_script, or of DefaultScript when unset.
func Script(cfg *config.Config) (string, error) {
	script, ok, err := cfg.CustomScript()
	if err != nil {
		return "", err
	}
	if !ok || script == "" {
		script = DefaultScript
	}
	return filepath.Abs(script)
}

func descriptorPath(present bool, runDir, name string, err error) (any, error) {
	if err != nil || !present {
		return nil, err
	}
	return filepath.Abs(filepath.Join(runDir, name))
}

// Arg renders one value the way the simulator script parses it.
func Arg(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return rv.FormatFloat(x)
	case *float64:
		if x == nil {
			return ""
		}
		return rv.FormatFloat(*x)
	case []string:
		return strings.Join(x, " ")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Arg(e)
		}
		return strings.Join(parts, " ")
	case rv.RandomVariable:
		return fmt.Sprintf("create_%s_rv %s", x.Name(), strings.Join(x.Args(), " "))
	default:
		return fmt.Sprint(x)
	}
}

// Quote renders args as a single shell-like line with every argument double-quoted.
func Quote(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = `"` + a + `"`
	}
	return strings.Join(quoted, " ")
}
