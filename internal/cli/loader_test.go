package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/testutil"
)

func TestLoadNetworkTables(t *testing.T) {
	dir := tableNetwork(t)

	loaded, err := LoadNetwork(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, SourceTables, loaded.Source)
	assert.Equal(t, 2, loaded.FileCount)
	assert.Equal(t, filepath.Join(dir, "parameters.txt"), loaded.ConfigPath)
	assert.Equal(t, "iO", loaded.Settings.SiteSpecies)
	assert.Equal(t, 500.0, loaded.Settings.Temperature)
	require.Len(t, loaded.Species, 3)
	require.Len(t, loaded.Reactions, 2)

	network, err := loaded.Network()
	require.NoError(t, err)
	assert.Equal(t, 3, network.Species.Len())
}

func TestLoadNetworkCUE(t *testing.T) {
	dir := writeNetwork(t, map[string]string{
		"parameters.txt": testParameters,
		"network.cue":    testCUENetwork,
	})

	loaded, err := LoadNetwork(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCUE, loaded.Source)
	assert.Equal(t, 1, loaded.FileCount)
	assert.Equal(t, "iR", loaded.Species[1].Label)
	assert.Equal(t, "r2", loaded.Reactions[1].ID)
}

func TestLoadNetworkExplicitConfig(t *testing.T) {
	dir := writeNetwork(t, map[string]string{
		SpeciesFile:   testSpecies,
		ReactionsFile: testReactions,
	})
	params := writeNetwork(t, map[string]string{"run.ini": testParameters})

	loaded, err := LoadNetwork(dir, filepath.Join(params, "run.ini"), nil)
	require.NoError(t, err)
	assert.Equal(t, "iO", loaded.Settings.SiteSpecies)

	_, err = LoadNetwork(dir, filepath.Join(params, "missing.ini"), nil)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadNetworkErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		code  string
	}{
		{
			name:  "no network files",
			files: map[string]string{"parameters.txt": testParameters},
			code:  ErrCodeNoFiles,
		},
		{
			name:  "species without reactions",
			files: map[string]string{"parameters.txt": testParameters, SpeciesFile: testSpecies},
			code:  ErrCodeNoFiles,
		},
		{
			name: "bad reaction energy",
			files: map[string]string{
				"parameters.txt": testParameters,
				SpeciesFile:      testSpecies,
				ReactionsFile:    "label is1 is2 fs1 fs2 G\nr1 iO none iR none low\n",
			},
			code: ErrCodeTableParse,
		},
		{
			name: "cue syntax",
			files: map[string]string{
				"parameters.txt": testParameters,
				"network.cue":    "package network\nspecies: {\n",
			},
			code: ErrCodeLoadFailed,
		},
		{
			name: "cue without species",
			files: map[string]string{
				"parameters.txt": testParameters,
				"network.cue":    "package network\nreaction: {}\n",
			},
			code: ErrCodeSpeciesField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadNetwork(writeNetwork(t, tt.files), "", nil)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeTableParse, Message: "bad cell", File: "rxn.csv", Line: 3}
	assert.Equal(t, "rxn.csv:3: E009: bad cell", err.Error())

	err = &LoadError{Code: ErrCodeGeneric, Message: "boom"}
	assert.Equal(t, "E001: boom", err.Error())
}

func TestMapFieldToErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeSpeciesField, MapFieldToErrorCode("phase"))
	assert.Equal(t, ErrCodeReactionField, MapFieldToErrorCode("alpha"))
	assert.Equal(t, ErrCodeBuildFailed, MapFieldToErrorCode("cue"))
	assert.Equal(t, ErrCodeNetworkField, MapFieldToErrorCode("G"))
}

func TestMapCompileErrorToCode(t *testing.T) {
	_, err := catalog.New(testutil.Surface("iO", 0), testutil.Surface("iO", 1))
	require.Error(t, err)
	assert.Equal(t, compiler.ErrDuplicateKey, MapCompileErrorToCode(err))

	assert.Equal(t, ErrCodeNoSurfaceSpecies, MapCompileErrorToCode(compiler.ErrNoSurfaceSpecies))
	assert.Equal(t, compiler.ErrUnresolvedLabel, MapCompileErrorToCode(&compiler.UnresolvedParticipantError{}))
	assert.Equal(t, compiler.ErrMissingSiteArea, MapCompileErrorToCode(fmt.Errorf("wrapped: %w", &compiler.MissingSiteAreaError{ReactionID: "r2"})))
	assert.Equal(t, compiler.ErrInvalidIdentifier, MapCompileErrorToCode(&compiler.InvalidIdentifierError{Kind: "reaction", Name: "1"}))
	assert.Equal(t, ErrCodeGeneric, MapCompileErrorToCode(errors.New("other")))
}
