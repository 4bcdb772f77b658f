package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

// Contribution is one signed flux term destined for a surface species'
// differential equation. Reactions produce contributions; they never touch
// accumulators directly.
type Contribution struct {
	Species string
	Term    ir.FluxTerm
}

// damping holds the transient damping factor appended to every gas and
// aqueous driver in a rate law, once for the integrated form (t) and once for
// the post-solver form (timei).
type damping struct {
	live   string
	solved string
}

func newDamping(s *config.Settings) damping {
	rate, on := s.Damping()
	if !on {
		return damping{}
	}
	return damping{
		live:   fmt.Sprintf("*(1-exp(-%.6E*t))^2", rate),
		solved: fmt.Sprintf("*(1-exp(-%.6E*timei))^2", rate),
	}
}

// half accumulates one direction while the participants are resolved.
type half struct {
	energy   float64
	gasCount int
	mw       float64
	factors  []string
	solved   []string
}

// compileReaction resolves the four participants of r and derives its
// energies, rate constants and rate laws. It is pure: the catalog and
// settings are only read, and the flux contributions are returned in slot
// order for a later sequential reduction.
func compileReaction(r ir.Reaction, cat *catalog.Catalog, s *config.Settings, damp damping, zeroed bool) (ir.CompiledReaction, []Contribution, error) {
	if !ir.IsIdentifier(r.ID) {
		return ir.CompiledReaction{}, nil, &InvalidIdentifierError{Kind: "reaction", Name: r.ID}
	}

	var (
		halves        [2]half
		contributions []Contribution
	)

	for _, slot := range ir.Slots {
		label, used := r.Participant(slot)
		if !used {
			continue
		}
		sp, err := cat.Lookup(label)
		if err != nil {
			return ir.CompiledReaction{}, nil, &UnresolvedParticipantError{ReactionID: r.ID, Slot: slot, Label: label}
		}

		h := &halves[slot.Direction()]
		h.energy += sp.Energy

		switch {
		case sp.Label == s.SiteSpecies || sp.Phase == ir.PhaseSurface:
			h.factors = append(h.factors, "*c"+sp.Label+"(t)")
			h.solved = append(h.solved, "*sc"+sp.Label)
			if sp.Label != s.SiteSpecies {
				contributions = append(contributions, Contribution{
					Species: sp.Label,
					Term:    ir.FluxTerm{Reaction: r.ID, Sign: slot.Sign()},
				})
			}

		case sp.Phase == ir.PhaseGas:
			mw, ok := sp.MolecularWeight()
			if !ok {
				return ir.CompiledReaction{}, nil, &MissingMolecularWeightError{ReactionID: r.ID, Species: sp.Label}
			}
			h.factors = append(h.factors, damp.live+"*P"+sp.Label)
			h.solved = append(h.solved, damp.solved+"*P"+sp.Label)
			h.gasCount++
			h.mw += mw

		case sp.Phase == ir.PhaseAqueous:
			h.factors = append(h.factors, damp.live+"*CSL"+sp.Label)
			h.solved = append(h.solved, damp.solved+"*CSL"+sp.Label)

		default:
			return ir.CompiledReaction{}, nil, &UnknownPhaseError{Species: sp.Label, Phase: sp.RawPhase}
		}
	}

	fwd, rev := halves[ir.Forward], halves[ir.Reverse]
	out := ir.CompiledReaction{
		ID:             r.ID,
		ReactionEnergy: rev.energy - fwd.energy,
	}

	var err error
	out.Forward, err = compileHalf(r.ID, ir.Forward, r.Energy-fwd.energy, out.ReactionEnergy, fwd, s.SiteArea, zeroed)
	if err != nil {
		return ir.CompiledReaction{}, nil, err
	}
	out.Reverse, err = compileHalf(r.ID, ir.Reverse, r.Energy-rev.energy, -out.ReactionEnergy, rev, s.SiteArea, zeroed)
	if err != nil {
		return ir.CompiledReaction{}, nil, err
	}

	kd, ki := "k"+r.ID+"d", "k"+r.ID+"i"
	out.RateExpr = r.ID + ":=(t)-> " + kd + strings.Join(fwd.factors, "") +
		" -" + ki + strings.Join(rev.factors, "") + " : "
	out.SolvedRateExpr = "s" + r.ID + ":= " + kd + strings.Join(fwd.solved, "") +
		" -" + ki + strings.Join(rev.solved, "") + " : "

	return out, contributions, nil
}

func compileHalf(id string, dir ir.Direction, ea, driving float64, h half, siteArea float64, zeroed bool) (ir.HalfRate, error) {
	name := "k" + id + dir.Suffix()
	k, err := Synthesize(name, ea, driving, h.gasCount, h.mw, siteArea)
	if err != nil {
		var topo *UnsupportedReactionTopologyError
		if errors.As(err, &topo) {
			topo.ReactionID = id
			topo.Direction = dir
			return ir.HalfRate{}, topo
		}
		var area *MissingSiteAreaError
		if errors.As(err, &area) {
			area.ReactionID = id
			area.Direction = dir
			return ir.HalfRate{}, area
		}
		return ir.HalfRate{}, fmt.Errorf("reaction %q: %w", id, err)
	}
	if zeroed {
		k = zeroConstant(name)
	}
	factors := h.factors
	if factors == nil {
		factors = []string{}
	}
	return ir.HalfRate{
		Activation: ea,
		Driving:    driving,
		GasCount:   h.gasCount,
		Factors:    factors,
		Constant:   k,
		Law:        name + strings.Join(h.factors, ""),
	}, nil
}
