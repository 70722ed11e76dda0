package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim-lab/congestion-runner/runner"
)

func TestRunName_DeclarationOrderAndPercentages(t *testing.T) {
	tests := []struct {
		run  Run
		want string
	}{
		{Run{Input: "foo", Load: "0.7", Alpha: "1.5"}, "foo.70.150"},
		{Run{Load: "0.5", Control: "pias", Input: "web"}, "web.pias.50"},
		{Run{Scale: "small"}, "small"},
		{Run{}, ""},
		// truncation, not rounding: 0.29*100 is 28.999999999999996
		{Run{Load: "0.29"}, "28"},
	}
	for _, tc := range tests {
		got, err := tc.run.Name()
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestRunName_NonNumericLoad_ReturnsBadValue(t *testing.T) {
	_, err := Run{Load: "heavy"}.Name()
	assert.True(t, errors.Is(err, runner.ErrBadValue), "got %v", err)
}

func TestExpand_LastAspectVariesFastest(t *testing.T) {
	runs := Expand(map[Aspect][]string{
		Load:  {"0.9", "0.5"},
		Input: {"a", "b"},
	})
	require.Len(t, runs, 4)
	var names []string
	for _, r := range runs {
		n, err := r.Name()
		require.NoError(t, err)
		names = append(names, n)
	}
	assert.Equal(t, []string{"a.90", "a.50", "b.90", "b.50"}, names)
}

func TestExpand_NoChoices_SingleEmptyRun(t *testing.T) {
	assert.Equal(t, []Run{{}}, Expand(nil))
}

func TestRunClone_Independent(t *testing.T) {
	r := Run{Input: "a"}
	c := r.Clone()
	c[Input] = "b"
	assert.Equal(t, "a", r[Input])
}
