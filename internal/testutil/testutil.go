// Package testutil provides shared test infrastructure for the runner packages:
// a sample experiment configuration, file fixtures and float assertions.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// SampleConfig is a complete experiment configuration covering every key the
// simulator argument vector reads, with one profile per layered aspect.
const SampleConfig = `
sim_end = 2.0
link_rate = 10
mean_link_delay = 0.0000002
host_delay = 0.00002
queue_size = 240
good_queue_size = 240
connections_per_pair = 1
max_num_chunks = 1
enable_multi_path = true
per_flow_mp = false
source_alg = "DCTCP-Sack"
init_window = 70
ack_ratio = 1
slow_start_restart = false
dctcp_g = 0.0625
min_rto = 0.002
eof_min_rto = 0.002
no_eof_min_rto = 0.002
prob_cap = 5
switch_alg = "Priority"
dctcp_k = 65
drop_prio = true
prio_scheme = "remaining_size"
deque_prio = true
keep_order = true
drop_low_prio = true
prio_num = 8
ecn_scheme = 2
pias_thresh_0 = 759
pias_thresh_1 = 1132
pias_thresh_2 = 1456
pias_thresh_3 = 1737
pias_thresh_4 = 2010
pias_thresh_5 = 2199
pias_thresh_6 = 2325
topology_spt = 16
topology_tors = 9
topology_spines = 4
topology_x = 1
use_fifo_processing_order = false
use_deadline = false
expiration_time_controller = "none"
enable_delay = true
enable_dupack = false
enable_early_expiration = false
use_true_remaining_size = false
rtx_on_eof = false
reset_window_on_eof = false
afabric_ecn_enable = false

[arrivals]
mean_flow_size = 10

[arrivals.flow_size]
fixed = 10

[input.websearch.arrivals]
use_alpha_probability = 0.25

[input.websearch.arrivals.flow_size]
cdf = "websearch.cdf"

[buffer.shallow]
queue_size = [100, 120, 140, 160, 180]
good_queue_size = [50, 60, 70, 80, 90]

[control.pias]
prio_scheme = "Bytes_Sent"

[control.pias.delay_assignment]
exp = 0.00001
use_capping = true

[control.pias.packet_properties_assignment]
las = true

[slacks.tight.delay_assignment]
delay = 0.0001

[scale.small]
topology_spt = 4
topology_tors = 2
`

// SampleCDF is a three-column CDF referenced by the websearch input profile.
const SampleCDF = `1 0 0.0
1 0 0.5
3 0 1.0
`

// WriteSampleConfig writes SampleConfig and its CDF file into dir and returns the config path.
func WriteSampleConfig(t *testing.T, dir string) string {
	t.Helper()
	WriteFile(t, filepath.Join(dir, "websearch.cdf"), SampleCDF)
	return WriteFile(t, filepath.Join(dir, "config.toml"), SampleConfig)
}

// WriteFile writes content to path, failing the test on error, and returns path.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
