package prepare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim-lab/congestion-runner/internal/testutil"
	"github.com/netsim-lab/congestion-runner/runner"
	"github.com/netsim-lab/congestion-runner/runner/config"
	"github.com/netsim-lab/congestion-runner/runner/manifest"
	"github.com/netsim-lab/congestion-runner/runner/simargs"
)

func setup(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	return dir, testutil.WriteSampleConfig(t, dir)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPrepare_WritesDescriptors(t *testing.T) {
	// GIVEN a run whose control profile assigns delays and packet properties
	dir, configPath := setup(t)
	opts := Options{
		ConfigPath: configPath,
		ResultsDir: "results",
		Run:        config.Run{config.Input: "websearch", config.Control: "pias", config.Load: "0.7"},
	}

	// WHEN the run is prepared
	res, err := Prepare(context.Background(), opts)
	require.NoError(t, err)

	// THEN the run directory is named after the run and holds both descriptors
	assert.Equal(t, "websearch.pias.70", res.RunName)
	assert.Equal(t, filepath.Join(dir, "results", "websearch.pias.70"), res.Dir)
	assert.JSONEq(t,
		`{"type":"exponential","parameters":{"average":0.00001,"link_speed":10000000000,"use_capping":true}}`,
		readFile(t, filepath.Join(res.Dir, simargs.DelayAssignmentFile)))
	assert.JSONEq(t, `{"type":"las"}`, readFile(t, filepath.Join(res.Dir, simargs.PacketPropertiesFile)))

	// AND the argument vector points at them
	assert.Equal(t, filepath.Join(res.Dir, simargs.DelayAssignmentFile), res.Args[46])
	assert.Equal(t, filepath.Join(res.Dir, simargs.PacketPropertiesFile), res.Args[49])
}

func TestPrepare_NoDescriptors_WritesNullPacketProperties(t *testing.T) {
	_, configPath := setup(t)
	res, err := Prepare(context.Background(), Options{
		ConfigPath: configPath,
		ResultsDir: "results",
		Run:        config.Run{config.Load: "0.5"},
	})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(res.Dir, simargs.DelayAssignmentFile))
	assert.Equal(t, "null", readFile(t, filepath.Join(res.Dir, simargs.PacketPropertiesFile)))
	assert.Nil(t, res.DelayAssignment)
	assert.Nil(t, res.PacketProperties)
	assert.Equal(t, "", res.Args[46])
	assert.Equal(t, "", res.Args[49])
}

func TestPrepare_Idempotent(t *testing.T) {
	_, configPath := setup(t)
	opts := Options{
		ConfigPath: configPath,
		ResultsDir: "results",
		Run:        config.Run{config.Control: "pias", config.Load: "0.9"},
	}
	first, err := Prepare(context.Background(), opts)
	require.NoError(t, err)
	delay := readFile(t, filepath.Join(first.Dir, simargs.DelayAssignmentFile))

	second, err := Prepare(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first.Args, second.Args)
	assert.Equal(t, delay, readFile(t, filepath.Join(second.Dir, simargs.DelayAssignmentFile)))
}

func TestPrepare_AmbiguousDelays_WritesNothing(t *testing.T) {
	dir, configPath := setup(t)
	_, err := Prepare(context.Background(), Options{
		ConfigPath: configPath,
		ResultsDir: "results",
		Run:        config.Run{config.Control: "pias", config.Slacks: "tight", config.Load: "0.7"},
	})
	assert.True(t, errors.Is(err, runner.ErrAmbiguousKey), "got %v", err)
	assert.NoDirExists(t, filepath.Join(dir, "results"))
}

func TestPrepare_RecordsManifest(t *testing.T) {
	dir, configPath := setup(t)
	store, err := manifest.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	res, err := Prepare(context.Background(), Options{
		ConfigPath: configPath,
		ResultsDir: "results",
		Run:        config.Run{config.Control: "pias", config.Load: "0.6"},
		Manifest:   store,
	})
	require.NoError(t, err)

	e, err := store.Get(context.Background(), res.RunName)
	require.NoError(t, err)
	assert.Equal(t, configPath, e.ConfigPath)
	assert.Equal(t, res.Args, e.Args)
	assert.JSONEq(t, `{"type":"las"}`, string(e.PacketProperties))
}

func TestPrepare_CanceledContext(t *testing.T) {
	_, configPath := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Prepare(ctx, Options{ConfigPath: configPath, Run: config.Run{config.Load: "0.5"}})
	assert.ErrorIs(t, err, context.Canceled)
}
