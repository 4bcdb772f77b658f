package tables

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/ir"
)

const itm = `
# species of the CO oxidation toy model
label   phase  G      ne   mw     frq
iO      cat    0.0    0    nan    []
iCO     cat    -1.2   0    nan    [2010.3, 350.1,  120]
gCO     gas    0.0    0    28.01  [2143]
aH      aqu    0.0    1    nan    nan
iX      slab   0.0    foo  nan    []     # odd phase, kept raw
`

const rxn = `
label  is1   is2   fs1   fs2   G     ne  alpha
r1     iO    gCO   iCO   none  0.2   0   nan
r2     iCO   aH    iO    None  0.9   1   0.5
`

func TestReadSpecies(t *testing.T) {
	species, err := ReadSpecies(strings.NewReader(itm), "ne")
	require.NoError(t, err)
	require.Len(t, species, 5)

	assert.Equal(t, "iO", species[0].Label)
	assert.Equal(t, ir.PhaseSurface, species[0].Phase)
	assert.Empty(t, species[0].Frequencies)
	assert.Nil(t, species[0].Gas)

	assert.Equal(t, -1.2, species[1].Energy)
	assert.Equal(t, []float64{2010.3, 350.1, 120}, species[1].Frequencies)

	mw, ok := species[2].MolecularWeight()
	require.True(t, ok)
	assert.Equal(t, 28.01, mw)

	assert.Equal(t, ir.PhaseAqueous, species[3].Phase)
	assert.True(t, species[3].HasElectrons)
	assert.Equal(t, 1.0, species[3].Electrons)
	assert.Nil(t, species[3].Frequencies)

	assert.Equal(t, ir.PhaseUnknown, species[4].Phase)
	assert.Equal(t, "slab", species[4].RawPhase)
	assert.False(t, species[4].HasElectrons, "non-numeric electron count is absent")
}

func TestReadSpeciesCustomElectronLabel(t *testing.T) {
	src := "label phase G nel\niO cat 0 2\n"
	species, err := ReadSpecies(strings.NewReader(src), "nel")
	require.NoError(t, err)
	assert.True(t, species[0].HasElectrons)
	assert.Equal(t, 2.0, species[0].Electrons)

	species, err = ReadSpecies(strings.NewReader(src), "ne")
	require.NoError(t, err)
	assert.False(t, species[0].HasElectrons)
}

func TestReadReactions(t *testing.T) {
	reactions, err := ReadReactions(strings.NewReader(rxn), "ne")
	require.NoError(t, err)
	require.Len(t, reactions, 2)

	r1 := reactions[0]
	assert.Equal(t, "r1", r1.ID)
	assert.Equal(t, [4]string{"iO", "gCO", "iCO", ""}, r1.Participants)
	assert.Equal(t, 0.2, r1.Energy)
	assert.Nil(t, r1.Alpha)

	r2 := reactions[1]
	assert.Equal(t, [4]string{"iCO", "aH", "iO", ""}, r2.Participants)
	require.NotNil(t, r2.Alpha)
	assert.Equal(t, 0.5, *r2.Alpha)
	assert.Equal(t, 1.0, r2.Electrons)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		species bool
		line    int
		column  string
	}{
		{"missing G column", "label phase\niO cat\n", true, 1, "G"},
		{"bad energy", "label phase G\n\niO cat abc\n", true, 3, "G"},
		{"short row", "label phase G\niO cat\n", true, 2, ""},
		{"duplicate label", "label phase G\niO cat 0\niO cat 1\n", true, 3, "label"},
		{"bad frequency", "label phase G frq\niO cat 0 [1,x]\n", true, 2, "frq"},
		{"unterminated list", "label phase G frq\niO cat 0 [1,2\n", true, 2, ""},
		{"no header", "# nothing here\n", true, 1, ""},
		{"missing slot column", "label is1 is2 fs1 G\nr1 a b c 0\n", false, 1, "fs2"},
		{"duplicate reaction", "label is1 is2 fs1 fs2 G\nr1 a b c d 0\nr1 a b c d 0\n", false, 3, "label"},
		{"duplicate column", "label phase G g\niO cat 0 0\n", true, 1, "g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.species {
				_, err = ReadSpecies(strings.NewReader(tt.src), "ne")
			} else {
				_, err = ReadReactions(strings.NewReader(tt.src), "ne")
			}
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.column, pe.Column)
		})
	}
}

func TestSplit(t *testing.T) {
	cells, err := split("  a\tb  [1, 2 ,3]   c ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "[1, 2 ,3]", "c"}, cells)

	_, err = split("a ]")
	assert.Error(t, err)
}
