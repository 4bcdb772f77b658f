package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/testutil"
)

func TestAnalyzeNetwork_Linear(t *testing.T) {
	species, reactions := testutil.AdsorptionStep()
	n := network(t, species, reactions)
	assert.Empty(t, AnalyzeNetwork(n, testutil.SiteSpecies))
}

func TestAnalyzeNetwork_CatalyticCycle(t *testing.T) {
	species, reactions := testutil.Mixed()
	n := network(t, species, reactions)

	warnings := AnalyzeNetwork(n, testutil.SiteSpecies)
	require.Len(t, warnings, 1)
	assert.Equal(t, "info", warnings[0].Level)
	assert.Equal(t, []string{"iA", "iB", "iO", "iA"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "catalytic cycle through the site species")
}

func TestAnalyzeNetwork_CycleAwayFromSite(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species = append(species, testutil.Surface("iS", 0))
	reactions = append(reactions,
		testutil.Rxn("r2", "iR", "none", "iS", "none", 0),
		testutil.Rxn("r3", "iS", "none", "iR", "none", 0),
	)

	warnings := AnalyzeNetwork(network(t, species, reactions), testutil.SiteSpecies)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"iR", "iS", "iR"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "reaction cycle: iR → iS → iR")
}

func TestAnalyzeNetwork_Unreachable(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species = append(species, testutil.Surface("iQ", 0))
	reactions = append(reactions, testutil.Rxn("r2", "iQ", "none", "iR", "none", 0))

	warnings := AnalyzeNetwork(network(t, species, reactions), testutil.SiteSpecies)
	require.Len(t, warnings, 1)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Equal(t, []string{"iO", "iQ"}, warnings[0].Path)
}

func TestAnalyzeNetwork_Deterministic(t *testing.T) {
	species, reactions := chain(40)
	n := network(t, species, reactions)
	first := AnalyzeNetwork(n, testutil.SiteSpecies)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AnalyzeNetwork(n, testutil.SiteSpecies))
	}
}

func TestTarjanSCC_SelfContained(t *testing.T) {
	g := speciesGraph{
		"a": {"b"},
		"b": {"a", "c"},
		"c": {},
	}
	assert.Equal(t, [][]string{{"c"}, {"a", "b"}}, tarjanSCC(g))
}
