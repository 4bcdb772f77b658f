// Package potential shifts free energies by an electrochemical correction.
//
// The shift is G += n_e * U, where U is the electrode potential on the SHE
// scale and n_e the electron count of the species or transition state. It
// must run before the compiler reads any energy.
package potential

import (
	"log/slog"
	"math"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

// ElectrodePotential converts the configured RHE potential to the SHE scale:
// U_SHE = U_RHE - pH * k_B * T * ln 10.
// ok is false when any input is missing, in which case the shift is 0.
func ElectrodePotential(s *config.Settings) (u float64, ok bool) {
	ec := s.Electrochemistry
	if ec.PotentialRHE == nil || ec.PH == nil || s.Temperature <= 0 {
		return 0, false
	}
	return *ec.PotentialRHE - *ec.PH*ir.BoltzmannEV*s.Temperature*math.Ln10, true
}

// Skipped names an entry left unshifted because it had no numeric electron count.
type Skipped struct {
	Label string
}

// Adjust shifts the energy of every species that has a numeric electron count.
// Species without one are skipped and logged; the others are still adjusted.
// A zero potential performs no adjustment.
func Adjust(cat *catalog.Catalog, u float64, logger *slog.Logger) []Skipped {
	if u == 0 {
		return nil
	}
	var skipped []Skipped
	for _, s := range cat.All() {
		if !s.HasElectrons {
			logger.Warn("species has no numeric electron count, not adjusted",
				"species", s.Label)
			skipped = append(skipped, Skipped{Label: s.Label})
			continue
		}
		if s.Electrons == 0 {
			continue
		}
		g := s.Energy + s.Electrons*u
		logger.Debug("potential shift", "species", s.Label, "from", s.Energy, "to", g)
		// Label comes from the catalog itself, so SetEnergy cannot fail.
		_ = cat.SetEnergy(s.Label, g)
	}
	return skipped
}

// AdjustReactions shifts transition-state energies the same way.
//
// A reaction carrying a symmetry factor alpha takes its electron count from
// its participants: (1-alpha)(n_is1+n_is2) + alpha(n_fs1+n_fs2). Participants
// that are absent or lack a count contribute 0.
func AdjustReactions(table *catalog.ReactionTable, cat *catalog.Catalog, u float64, logger *slog.Logger) []Skipped {
	if u == 0 {
		return nil
	}
	var skipped []Skipped
	for _, r := range table.All() {
		n, ok := ReactionElectrons(r, cat)
		if !ok {
			logger.Warn("reaction has no numeric electron count, not adjusted",
				"reaction", r.ID)
			skipped = append(skipped, Skipped{Label: r.ID})
			continue
		}
		if n == 0 {
			continue
		}
		_ = table.SetEnergy(r.ID, r.Energy+n*u)
	}
	return skipped
}

// ReactionElectrons returns the electron count used to shift a transition state.
func ReactionElectrons(r ir.Reaction, cat *catalog.Catalog) (float64, bool) {
	if r.Alpha == nil {
		return r.Electrons, r.HasElectrons
	}
	alpha := *r.Alpha
	count := func(slots ...ir.Slot) float64 {
		var n float64
		for _, slot := range slots {
			label, used := r.Participant(slot)
			if !used {
				continue
			}
			s, err := cat.Lookup(label)
			if err != nil || !s.HasElectrons {
				continue
			}
			n += s.Electrons
		}
		return n
	}
	return (1-alpha)*count(ir.SlotIS1, ir.SlotIS2) + alpha*count(ir.SlotFS1, ir.SlotFS2), true
}
