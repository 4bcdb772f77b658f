package testutil

import (
	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/ir"
)

// SiteSpecies is the bare active site used by every fixture network.
const SiteSpecies = "iO"

// Surface returns a surface species.
func Surface(label string, g float64) ir.Species {
	return ir.Species{Label: label, Phase: ir.PhaseSurface, RawPhase: "cat", Energy: g}
}

// Gas returns a gas-phase species with a molecular weight.
func Gas(label string, g, mw float64) ir.Species {
	return ir.Species{
		Label:    label,
		Phase:    ir.PhaseGas,
		RawPhase: "gas",
		Energy:   g,
		Gas:      &ir.GasProperties{MolecularWeight: mw},
	}
}

// Aqueous returns a solute species.
func Aqueous(label string, g float64) ir.Species {
	return ir.Species{Label: label, Phase: ir.PhaseAqueous, RawPhase: "aqu", Energy: g}
}

// Rxn returns a reaction; pass "" or "none" for empty slots.
func Rxn(id, is1, is2, fs1, fs2 string, g float64) ir.Reaction {
	r := ir.Reaction{ID: id, Energy: g}
	for i, label := range []string{is1, is2, fs1, fs2} {
		if !ir.IsNone(label) {
			r.Participants[i] = label
		}
	}
	return r
}

// SurfaceStep is a site and one adsorbate joined by a single surface step.
func SurfaceStep() ([]ir.Species, []ir.Reaction) {
	return []ir.Species{
			Surface("iO", 0),
			Surface("iR", -1.0),
		}, []ir.Reaction{
			Rxn("r1", "iO", "none", "iR", "none", -0.5),
		}
}

// AdsorptionStep extends SurfaceStep with an adsorption step from the gas phase.
func AdsorptionStep() ([]ir.Species, []ir.Reaction) {
	species, reactions := SurfaceStep()
	species = append(species, Gas("gA", 0.2, 28.0))
	reactions = append(reactions, Rxn("r2", "iO", "gA", "iR", "none", -0.3))
	return species, reactions
}

// Mixed is a small catalytic cycle with a gas reactant, a gas product and a
// solute: gA adsorbs, reacts with an aqueous proton and desorbs as gB.
func Mixed() ([]ir.Species, []ir.Reaction) {
	return []ir.Species{
			Surface("iO", 0),
			Surface("iA", -0.4),
			Surface("iB", -0.7),
			Gas("gA", 0, 28.0),
			Gas("gB", -0.9, 30.0),
			Aqueous("aH", 0),
		}, []ir.Reaction{
			Rxn("r1", "iO", "gA", "iA", "none", 0.1),
			Rxn("r2", "iA", "aH", "iB", "none", 0.2),
			Rxn("r3", "iB", "none", "iO", "gB", 0.3),
		}
}

// MustCatalogs builds the catalog and reaction table of a fixture.
func MustCatalogs(species []ir.Species, reactions []ir.Reaction) (*catalog.Catalog, *catalog.ReactionTable) {
	return catalog.MustNew(species...), catalog.MustNewReactionTable(reactions...)
}
