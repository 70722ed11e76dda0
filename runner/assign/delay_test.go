package assign

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim-lab/congestion-runner/runner"
)

func assignment(t *testing.T, table runner.Table) DelayAssignment {
	t.Helper()
	a, err := NewDelayAssignmentConfig(table, 10, 0.7).Assignment()
	require.NoError(t, err)
	return a
}

func TestDelayAssignment_Fixed(t *testing.T) {
	a := assignment(t, runner.Table{"delay": "0.0001"})
	require.Len(t, a.Descriptors, 1)
	assert.False(t, a.Range)
	assert.Equal(t, Descriptor{Type: TypeFixed, Parameters: FixedParameters{Delay: 0.0001}}, a.Descriptors[0])
}

func TestDelayAssignment_Range_EvenlySpacedInclusive(t *testing.T) {
	// GIVEN delay_min=10, delay_max=20, count=3
	a := assignment(t, runner.Table{"delay_min": int64(10), "delay_max": int64(20), "count": int64(3)})

	// THEN three fixed descriptors at 10, 15, 20 in order
	require.True(t, a.Range)
	var delays []float64
	for _, d := range a.Descriptors {
		require.Equal(t, TypeFixed, d.Type)
		delays = append(delays, float64(d.Parameters.(FixedParameters).Delay))
	}
	assert.Equal(t, []float64{10, 15, 20}, delays)
}

func TestDelayAssignment_Range_CountBelowTwo_ReturnsError(t *testing.T) {
	_, err := NewDelayAssignmentConfig(runner.Table{"delay_min": 1, "delay_max": 2, "count": 1}, 10, 0.7).Assignment()
	assert.True(t, errors.Is(err, runner.ErrBadValue), "got %v", err)
}

func TestDelayAssignment_Range_MissingCompanion_ReturnsMissingKey(t *testing.T) {
	_, err := NewDelayAssignmentConfig(runner.Table{"delay_min": 1, "delay_max": 2}, 10, 0.7).Assignment()
	assert.True(t, errors.Is(err, runner.ErrMissingKey), "got %v", err)
}

func TestDelayAssignment_Exponential_UsesLinkSpeedInBits(t *testing.T) {
	a := assignment(t, runner.Table{"exp": 0.00001, "use_capping": "true", "size_lower_bound": int64(5)})
	lower := int64(5)
	want := Descriptor{
		Type: TypeExponential,
		Parameters: ExponentialParameters{
			Average:    0.00001,
			LinkSpeed:  10e9,
			UseCapping: true,
			SizeBounds: SizeBounds{SizeLowerBound: &lower},
		},
	}
	assert.Equal(t, want, a.Descriptors[0])
}

func TestDelayAssignment_Goodput(t *testing.T) {
	a := assignment(t, runner.Table{"gp": int64(4), "size_upper_bound": "100"})
	upper := int64(100)
	assert.Equal(t, Descriptor{
		Type:       TypeGoodput,
		Parameters: GoodputParameters{Goodput: 4, SizeBounds: SizeBounds{SizeUpperBound: &upper}},
	}, a.Descriptors[0])
}

func TestDelayAssignment_NormalizedFCT_RoundsToGoodput(t *testing.T) {
	// 8.0 / 3.0 = 2.67 rounds to 3
	a := assignment(t, runner.Table{"nfct": 3.0})
	assert.Equal(t, GoodputParameters{Goodput: 3}, a.Descriptors[0].Parameters)

	_, err := NewDelayAssignmentConfig(runner.Table{"nfct": 0.0}, 10, 0.7).Assignment()
	assert.True(t, errors.Is(err, runner.ErrBadValue), "got %v", err)
}

func TestDelayAssignment_File_SubstitutesPercentLoad(t *testing.T) {
	dir := t.TempDir()
	a := assignment(t, runner.Table{"file": filepath.Join(dir, "delays_{}.json")})
	assert.Equal(t, Descriptor{Type: TypeFile, Parameters: filepath.Join(dir, "delays_70.json")}, a.Descriptors[0])
}

func TestDelayAssignment_File_RelativePathBecomesAbsolute(t *testing.T) {
	a := assignment(t, runner.Table{"file": "delays_{0}.json"})
	path, ok := a.Descriptors[0].Parameters.(string)
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(path), "path %q must be absolute", path)
	assert.Equal(t, "delays_70.json", filepath.Base(path))
}

func TestDelayAssignment_Uniform(t *testing.T) {
	a := assignment(t, runner.Table{"uniform_min_delay": 1, "uniform_max_delay": 3})
	assert.Equal(t, Descriptor{Type: TypeUniform, Parameters: UniformParameters{MinDelay: 1, MaxDelay: 3}}, a.Descriptors[0])
}

func TestDelayAssignment_PriorityOrder_FirstTriggerWins(t *testing.T) {
	// delay outranks gp when both are present
	a := assignment(t, runner.Table{"gp": int64(2), "delay": 1.0})
	assert.Equal(t, TypeFixed, a.Descriptors[0].Type)
}

func TestDelayAssignment_UnknownShape_ReturnsUnrecognizedShape(t *testing.T) {
	_, err := NewDelayAssignmentConfig(runner.Table{"latency": 1}, 10, 0.7).Assignment()
	assert.True(t, errors.Is(err, runner.ErrUnrecognizedShape), "got %v", err)
}

func TestDelayAssignment_JSON_SingleIsObjectRangeIsArray(t *testing.T) {
	single, err := json.Marshal(assignment(t, runner.Table{"delay": 2.5}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"fixed","parameters":{"delay":2.5}}`, string(single))

	ranged, err := json.Marshal(assignment(t, runner.Table{"delay_min": 0, "delay_max": 1, "count": 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"fixed","parameters":{"delay":0}},{"type":"fixed","parameters":{"delay":1}}]`, string(ranged))
}

func TestDelayAssignment_JSON_RealParametersKeepFractionalSpelling(t *testing.T) {
	data, err := json.Marshal(assignment(t, runner.Table{"delay": int64(10)}))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"fixed","parameters":{"delay":10.0}}`, string(data))

	data, err = json.Marshal(assignment(t, runner.Table{"uniform_min_delay": 0.00001, "uniform_max_delay": 2}))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"uniform","parameters":{"min_delay":1e-05,"max_delay":2.0}}`, string(data))
}

func TestFloat_NonFinite_FailsToEncode(t *testing.T) {
	_, err := json.Marshal(FixedParameters{Delay: Float(math.Inf(1))})
	assert.Error(t, err)
}

func TestMin_WrapsDescriptors(t *testing.T) {
	d := Min(
		Descriptor{Type: TypeFixed, Parameters: FixedParameters{Delay: 1}},
		Descriptor{Type: TypeGoodput, Parameters: GoodputParameters{Goodput: 2}},
	)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"min","parameters":[
		{"type":"fixed","parameters":{"delay":1}},
		{"type":"goodput","parameters":{"goodput":2}}]}`, string(data))
}

func TestDelayAssignment_Min_CombinesSubTables(t *testing.T) {
	a := assignment(t, runner.Table{"min": []any{
		runner.Table{"delay": 0.5},
		runner.Table{"gp": int64(4)},
	}})
	assert.Equal(t, Min(
		Descriptor{Type: TypeFixed, Parameters: FixedParameters{Delay: 0.5}},
		Descriptor{Type: TypeGoodput, Parameters: GoodputParameters{Goodput: 4}},
	), a.Descriptors[0])
	assert.False(t, a.Range)
}

func TestDelayAssignment_Min_RejectsRangesAndBadParts(t *testing.T) {
	for name, table := range map[string]runner.Table{
		"range part": {"min": []any{runner.Table{"delay_min": 1, "delay_max": 2, "count": 2}}},
		"empty":      {"min": []any{}},
		"not a list": {"min": 3},
	} {
		_, err := NewDelayAssignmentConfig(table, 10, 0.7).Assignment()
		assert.True(t, errors.Is(err, runner.ErrBadValue), "%s: got %v", name, err)
	}
	_, err := NewDelayAssignmentConfig(runner.Table{"min": []any{runner.Table{"latency": 1}}}, 10, 0.7).Assignment()
	assert.True(t, errors.Is(err, runner.ErrUnrecognizedShape), "got %v", err)
}

func TestDelayAssignment_Golden(t *testing.T) {
	cases := map[string]runner.Table{
		"delay_range":       {"delay_min": int64(10), "delay_max": int64(20), "count": int64(3), "size_upper_bound": int64(100)},
		"delay_exponential": {"exp": 0.00001, "use_capping": true},
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for name, table := range cases {
		// Two independent generations must encode identically.
		first, err := json.MarshalIndent(assignment(t, table), "", "  ")
		require.NoError(t, err)
		second, err := json.MarshalIndent(assignment(t, table), "", "  ")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		g.Assert(t, name, first)
	}
}
