package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/testutil"
)

func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidateValidNetwork(t *testing.T) {
	species, reactions := testutil.Mixed()
	errs := Validate(species, reactions, testutil.SiteSpecies)
	assert.Empty(t, errs)
	assert.False(t, HasErrors(errs))
}

func TestValidateMissingSite(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	errs := Validate(species, reactions, "iS")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMissingSiteSpecies, errs[0].Code)
	assert.Equal(t, "site", errs[0].Field)
	assert.True(t, HasErrors(errs))
}

func TestValidateUnknownPhase(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species = append(species, ir.Species{Label: "iZ", RawPhase: "liquid"})

	errs := Validate(species, reactions, testutil.SiteSpecies)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownPhase, errs[0].Code)
	assert.Equal(t, "species[2].phase", errs[0].Field)
	assert.Contains(t, errs[0].Message, "liquid")
}

func TestValidateSitePhaseIsFree(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species[0].Phase, species[0].RawPhase = ir.PhaseUnknown, "site"
	assert.Empty(t, Validate(species, reactions, testutil.SiteSpecies))
}

func TestValidateUnresolvedLabel(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	reactions = append(reactions, testutil.Rxn("r3", "iO", "none", "iX", "none", 0))

	errs := Validate(species, reactions, testutil.SiteSpecies)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnresolvedLabel, errs[0].Code)
	assert.Equal(t, "reactions[1].fs1", errs[0].Field)
	assert.Contains(t, errs[0].Message, `"iX"`)
}

func TestValidateTwoGasParticipants(t *testing.T) {
	species, reactions := testutil.AdsorptionStep()
	species = append(species, testutil.Gas("gB", 0, 32))
	reactions = append(reactions, testutil.Rxn("r4", "gA", "gB", "iR", "none", 0))

	errs := Validate(species, reactions, testutil.SiteSpecies)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrTwoGasParticipants, errs[0].Code)
	assert.Equal(t, "reactions[2].forward", errs[0].Field)
}

func TestValidateMissingMolecularWeight(t *testing.T) {
	species, reactions := testutil.AdsorptionStep()
	species[2].Gas = nil

	errs := Validate(species, reactions, testutil.SiteSpecies)
	assert.Equal(t, []string{ErrMissingMolecularMass}, codes(errs))
}

func TestValidateDuplicates(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species = append(species, testutil.Surface("iR", 0))
	reactions = append(reactions, testutil.Rxn("r1", "iO", "none", "iR", "none", 0))

	errs := Validate(species, reactions, testutil.SiteSpecies)
	assert.Equal(t, []string{ErrDuplicateKey, ErrDuplicateKey}, codes(errs))
	assert.Equal(t, "species[2].label", errs[0].Field)
	assert.Equal(t, "reactions[1].id", errs[1].Field)
}

func TestValidateUntouchedSpeciesIsWarning(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species = append(species, testutil.Surface("iQ", 0))

	errs := Validate(species, reactions, testutil.SiteSpecies)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUntouchedSpecies, errs[0].Code)
	assert.True(t, errs[0].IsWarning())
	assert.False(t, HasErrors(errs))
}

func TestValidateCollectsAll(t *testing.T) {
	species := []ir.Species{
		testutil.Surface("iA", 0),
		{Label: "gA", Phase: ir.PhaseGas, RawPhase: "gas"},
		{Label: "xB", RawPhase: "plasma"},
	}
	reactions := []ir.Reaction{testutil.Rxn("r1", "iA", "none", "iX", "none", 0)}

	errs := Validate(species, reactions, "iO")
	assert.ElementsMatch(t,
		[]string{ErrMissingMolecularMass, ErrUnknownPhase, ErrMissingSiteSpecies, ErrUnresolvedLabel},
		codes(errs))
}

func TestValidateAgreesWithCompile(t *testing.T) {
	species, reactions := testutil.AdsorptionStep()
	species = append(species, testutil.Gas("gB", 0, 32))
	reactions = append(reactions, testutil.Rxn("r4", "gA", "gB", "iR", "none", 0))

	n := network(t, species, reactions)
	assert.True(t, HasErrors(ValidateNetwork(n, testutil.SiteSpecies)))

	_, err := Compile(n, settings(), Options{})
	assert.Error(t, err)
}

func TestValidateEmptySurface(t *testing.T) {
	species := []ir.Species{testutil.Surface("iO", 0), testutil.Gas("gA", 0, 2)}
	reactions := []ir.Reaction{testutil.Rxn("r1", "iO", "gA", "iO", "none", 0)}

	errs := Validate(species, reactions, testutil.SiteSpecies)
	assert.Equal(t, []string{ErrEmptySurface}, codes(errs))
	assert.Equal(t, "species", errs[0].Field)

	_, err := Compile(network(t, species, reactions), settings(), Options{})
	assert.ErrorIs(t, err, ErrNoSurfaceSpecies)
}

func TestValidateInvalidIdentifiers(t *testing.T) {
	species, reactions := testutil.SurfaceStep()
	species = append(species, testutil.Surface("i+Q", 0), testutil.Surface("2H", 0))
	reactions = append(reactions,
		testutil.Rxn("2", "iO", "none", "i+Q", "none", 0),
		testutil.Rxn("r3", "iO", "none", "2H", "none", 0),
	)

	errs := Validate(species, reactions, testutil.SiteSpecies)
	assert.Equal(t, []string{ErrInvalidIdentifier, ErrInvalidIdentifier}, codes(errs))
	assert.Equal(t, "species[2].label", errs[0].Field)
	assert.Equal(t, "reactions[1].id", errs[1].Field)
}

func TestValidateSettingsSiteArea(t *testing.T) {
	species, reactions := testutil.Mixed()

	s := settings()
	assert.Empty(t, ValidateSettings(species, reactions, s))

	s.SiteArea = 0
	errs := ValidateSettings(species, reactions, s)
	assert.Equal(t, []string{ErrMissingSiteArea, ErrMissingSiteArea}, codes(errs))
	assert.Equal(t, "reactions[0].forward", errs[0].Field)
	assert.Equal(t, "reactions[2].reverse", errs[1].Field)

	// Compile fails on the same step.
	_, err := Compile(network(t, species, reactions), s, Options{})
	var missing *MissingSiteAreaError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "r1", missing.ReactionID)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "site", Message: "missing", Code: ErrMissingSiteSpecies, Level: LevelError}
	assert.Equal(t, "[E201] site: missing", e.Error())
}
