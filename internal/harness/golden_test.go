package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"single_step", "adsorption"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)
			require.Equal(t, name, scenario.Golden)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden_NoGolden(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/zeroed.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestAssertGolden_NoWorksheet(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/missing_site.yaml")
	require.NoError(t, err)
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	err = AssertGolden(t, "missing_site", result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no worksheet")
}

func TestCompareGolden(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/single_step.yaml")
	require.NoError(t, err)
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.NoError(t, CompareGolden(GoldenDir, "single_step", result))

	err = CompareGolden(GoldenDir, "adsorption", result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differs")

	err = CompareGolden(GoldenDir, "absent", result)
	require.Error(t, err)
}
