package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/ir"
)

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_StoresAndReadsBack(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/adsorption.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.NotNil(t, result.Model)

	// The read-back model hashes to the stored key.
	assert.Equal(t, result.Hash, ir.MustModelHash(result.Model))
	assert.Equal(t, []string{"iR"}, result.Model.Surface)
	assert.Contains(t, string(result.Maple), "kr2d:=evalf((101325*6.000000")
	assert.NoError(t, result.CompileErr)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/mixed.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.Maple, second.Maple)
}

func TestRun_CompileErrorIsResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/two_gas.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.Error(t, result.CompileErr)
	assert.Equal(t, KindUnsupportedTopology, ErrorKind(result.CompileErr))
	assert.Empty(t, result.Hash)
	assert.Nil(t, result.Maple)
	assert.True(t, result.Pass)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/single_step.yaml")
	require.NoError(t, err)
	scenario.Assertions = append(scenario.Assertions, Assertion{
		Type: AssertRateConstantForm, Reaction: "r1", Form: "hertz-knudsen",
	})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "hertz-knudsen")
}

func TestRun_DuplicateSpecies(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/single_step.yaml")
	require.NoError(t, err)
	scenario.Species = append(scenario.Species, SpeciesSpec{Label: "iR", Phase: "cat"})
	scenario.Assertions = []Assertion{{Type: AssertError, Kind: KindDuplicateKey, Text: "iR"}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Potential(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/single_step.yaml")
	require.NoError(t, err)
	scenario.Assertions = []Assertion{{Type: AssertEquationContains, Species: "iR", Text: "+r1(t)"}}
	scenario.Golden = ""

	base, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	one, zero, half := 1.0, 0.0, 0.5
	u, ph := -0.3, 0.0
	scenario.Species[0].Electrons = &zero
	scenario.Species[1].Electrons = &one
	scenario.Reactions[0].Electrons = &half
	scenario.Settings.PotentialRHE = &u
	scenario.Settings.PH = &ph

	shifted, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, shifted.Pass, "errors: %v", shifted.Errors)
	assert.NotEqual(t, base.Hash, shifted.Hash)
	assert.NotEqual(t, base.Model.Reactions[0].Forward.Activation, shifted.Model.Reactions[0].Forward.Activation)
}

func TestRun_AdsorptionWithoutSiteArea(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/missing_site_area.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, KindMissingSiteArea, ErrorKind(result.CompileErr))
	assert.Contains(t, result.CompileErr.Error(), "catalyst.areaactivesite")
	assert.True(t, result.Pass)
}
