package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

const cueNetwork = `
species: {
	iO: {phase: "cat", G: 0.0, ne: 0}
	iA: {phase: "cat", G: -0.4, frq: [120.5, 300]}
	gA: {phase: "gas", G: 0.2, mw: 28.0}
	aH: {phase: "aqu", G: 0, ne: 1}
}
reaction: {
	r1: {is1: "iO", is2: "gA", fs1: "iA", fs2: "none", G: 0.1}
	r2: {is1: "iA", is2: "aH", fs1: "iO", G: 0.3, ne: 1, alpha: 0.5}
}
`

func TestCompileCUENetwork(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(cueNetwork)
	require.NoError(t, v.Err())

	species, reactions, err := CompileCUE(v, "")
	require.NoError(t, err)
	require.Len(t, species, 4)
	require.Len(t, reactions, 2)

	assert.Equal(t, "iO", species[0].Label)
	assert.True(t, species[0].HasElectrons)

	iA := species[1]
	assert.Equal(t, ir.PhaseSurface, iA.Phase)
	assert.Equal(t, -0.4, iA.Energy)
	assert.False(t, iA.HasElectrons)
	assert.Equal(t, []float64{120.5, 300}, iA.Frequencies)

	mw, ok := species[2].MolecularWeight()
	require.True(t, ok)
	assert.Equal(t, 28.0, mw)

	assert.Equal(t, ir.PhaseAqueous, species[3].Phase)
	assert.Equal(t, 1.0, species[3].Electrons)

	r1 := reactions[0]
	assert.Equal(t, "r1", r1.ID)
	assert.Equal(t, [4]string{"iO", "gA", "iA", ""}, r1.Participants)
	assert.Nil(t, r1.Alpha)

	r2 := reactions[1]
	require.NotNil(t, r2.Alpha)
	assert.Equal(t, 0.5, *r2.Alpha)
	assert.True(t, r2.HasElectrons)
	assert.Equal(t, "", r2.Participants[ir.SlotFS2])

	n := network(t, species, reactions)
	s := config.NewSettings("iO", 400)
	s.SiteArea = 6
	m, err := Compile(n, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, "eqdiA:=diff(ciA(t),t)=+r1(t)-r2(t)", m.Equations[0].Expr)
}

func TestCompileCUECustomElectronLabel(t *testing.T) {
	v := cuecontext.New().CompileString(`
species: iO: {phase: "cat", G: 0, electrons: 2}
`)
	species, _, err := CompileCUE(v, "electrons")
	require.NoError(t, err)
	assert.True(t, species[0].HasElectrons)
	assert.Equal(t, 2.0, species[0].Electrons)
}

func TestCompileCUEMissingSpecies(t *testing.T) {
	v := cuecontext.New().CompileString(`reaction: r1: {is1: "iO", G: 0}`)
	_, _, err := CompileCUE(v, "ne")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "species", ce.Field)
}

func TestCompileSpeciesErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"missing phase", `s: iO: {G: 0}`, "phase"},
		{"missing energy", `s: iO: {phase: "cat"}`, "G"},
		{"energy not a number", `s: iO: {phase: "cat", G: "low"}`, "G"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cuecontext.New().CompileString(tt.src)
			require.NoError(t, v.Err())

			_, err := CompileSpecies(v.LookupPath(cue.ParsePath("s.iO")), "ne")
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCompileReactionNoneSlots(t *testing.T) {
	v := cuecontext.New().CompileString(`r: r7: {is1: "iA", is2: "None", fs1: "-", fs2: "iB", G: 1.5}`)
	r, err := CompileReaction(v.LookupPath(cue.ParsePath("r.r7")), "ne")
	require.NoError(t, err)
	assert.Equal(t, "r7", r.ID)
	assert.Equal(t, [4]string{"iA", "", "", "iB"}, r.Participants)
	assert.Equal(t, 1.5, r.Energy)
	assert.False(t, r.HasElectrons)
}

func TestCompileCUESyntaxError(t *testing.T) {
	v := cuecontext.New().CompileString(`species: {`, cue.Filename("bad.cue"))
	_, _, err := CompileCUE(v, "ne")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.cue")
}
