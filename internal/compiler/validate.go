package compiler

import (
	"fmt"

	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrMissingSiteSpecies   = "E201" // site-balance species not in catalog
	ErrUnknownPhase         = "E202" // phase is not cat, gas or aqu
	ErrUnresolvedLabel      = "E203" // reaction participant not in catalog
	ErrTwoGasParticipants   = "E204" // more than one gas participant on one side
	ErrMissingMolecularMass = "E205" // gas species without molecular weight
	ErrDuplicateKey         = "E206" // duplicate species label or reaction id
	ErrUntouchedSpecies     = "E207" // surface species in no reaction (warning)
	ErrEmptySurface         = "E208" // no surface species besides the site species
	ErrInvalidIdentifier    = "E209" // reaction id or species label is not a Maple name
	ErrMissingSiteArea      = "E210" // gas adsorption step without catalyst.areaactivesite
)

// Validation levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// ValidationError represents a network validation problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Level   string `json:"level"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the problem leaves the network compilable.
func (e ValidationError) IsWarning() bool {
	return e.Level == LevelWarning
}

// Validate checks a network against the rules Compile enforces, plus a few
// it tolerates. It returns all problems found (does not fail-fast), in input
// order. A network whose result has no error-level entry compiles.
func Validate(species []ir.Species, reactions []ir.Reaction, site string) []ValidationError {
	var errs []ValidationError

	bySpecies := make(map[string]ir.Species, len(species))
	for i, sp := range species {
		field := fmt.Sprintf("species[%d]", i)

		// E206: duplicate label
		if _, dup := bySpecies[sp.Label]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: fmt.Sprintf("duplicate species label %q", sp.Label),
				Code:    ErrDuplicateKey,
				Level:   LevelError,
			})
			continue
		}
		bySpecies[sp.Label] = sp

		// E209: label must survive as part of a Maple name
		if !ir.IsLabel(sp.Label) {
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: fmt.Sprintf("species label %q is not a valid identifier (letters, digits or _)", sp.Label),
				Code:    ErrInvalidIdentifier,
				Level:   LevelError,
			})
		}

		// E202: unknown phase (the site species may carry any phase)
		if sp.Phase == ir.PhaseUnknown && sp.Label != site {
			errs = append(errs, ValidationError{
				Field:   field + ".phase",
				Message: fmt.Sprintf("species %q has unknown phase %q", sp.Label, sp.RawPhase),
				Code:    ErrUnknownPhase,
				Level:   LevelError,
			})
		}

		// E205: gas without molecular weight
		if sp.Phase == ir.PhaseGas {
			if mw, ok := sp.MolecularWeight(); !ok || mw <= 0 {
				errs = append(errs, ValidationError{
					Field:   field + ".mw",
					Message: fmt.Sprintf("gas species %q needs a positive molecular weight", sp.Label),
					Code:    ErrMissingMolecularMass,
					Level:   LevelError,
				})
			}
		}
	}

	// E201: site species
	if _, ok := bySpecies[site]; !ok {
		errs = append(errs, ValidationError{
			Field:   "site",
			Message: fmt.Sprintf("site-balance species %q not found in species catalog", site),
			Code:    ErrMissingSiteSpecies,
			Level:   LevelError,
		})
	}

	// E208: the ODE system needs at least one surface species
	surface := 0
	for _, sp := range bySpecies {
		if sp.Phase == ir.PhaseSurface && sp.Label != site {
			surface++
		}
	}
	if surface == 0 {
		errs = append(errs, ValidationError{
			Field:   "species",
			Message: fmt.Sprintf("no surface species besides the site-balance species %q", site),
			Code:    ErrEmptySurface,
			Level:   LevelError,
		})
	}

	touched := make(map[string]bool)
	seen := make(map[string]bool, len(reactions))
	for i, r := range reactions {
		field := fmt.Sprintf("reactions[%d]", i)

		// E206: duplicate id
		if seen[r.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate reaction id %q", r.ID),
				Code:    ErrDuplicateKey,
				Level:   LevelError,
			})
			continue
		}
		seen[r.ID] = true

		// E209: reaction ids are bare Maple names
		if !ir.IsIdentifier(r.ID) {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("reaction id %q is not a valid identifier (letter or _ first, then letters, digits or _)", r.ID),
				Code:    ErrInvalidIdentifier,
				Level:   LevelError,
			})
		}

		var gas [2]int
		for _, slot := range ir.Slots {
			label, used := r.Participant(slot)
			if !used {
				continue
			}
			sp, ok := bySpecies[label]
			if !ok {
				// E203: unresolved participant
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.%s", field, slot),
					Message: fmt.Sprintf("reaction %q: participant %q not found in species catalog", r.ID, label),
					Code:    ErrUnresolvedLabel,
					Level:   LevelError,
				})
				continue
			}
			touched[label] = true
			if sp.Phase == ir.PhaseGas {
				gas[slot.Direction()]++
			}
		}

		// E204: two gas participants on one side
		for _, dir := range []ir.Direction{ir.Forward, ir.Reverse} {
			if gas[dir] > 1 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.%s", field, dir),
					Message: fmt.Sprintf("reaction %q: %s direction has %d gas-phase participants (at most 1 supported)", r.ID, dir, gas[dir]),
					Code:    ErrTwoGasParticipants,
					Level:   LevelError,
				})
			}
		}
	}

	// E207: surface species that no reaction touches
	for i, sp := range species {
		if sp.Phase != ir.PhaseSurface || sp.Label == site || touched[sp.Label] {
			continue
		}
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("species[%d]", i),
			Message: fmt.Sprintf("surface species %q takes part in no reaction; its equation is 0", sp.Label),
			Code:    ErrUntouchedSpecies,
			Level:   LevelWarning,
		})
	}

	return errs
}

// ValidateSettings runs Validate for s.SiteSpecies and adds the checks that
// depend on the reactor settings: without a site area, every direction with
// one gas-phase participant is an error (E210).
func ValidateSettings(species []ir.Species, reactions []ir.Reaction, s *config.Settings) []ValidationError {
	errs := Validate(species, reactions, s.SiteSpecies)
	if s.SiteArea > 0 {
		return errs
	}

	gasPhase := make(map[string]bool, len(species))
	for _, sp := range species {
		if sp.Phase == ir.PhaseGas {
			gasPhase[sp.Label] = true
		}
	}
	for i, r := range reactions {
		var gas [2]int
		for _, slot := range ir.Slots {
			if label, used := r.Participant(slot); used && gasPhase[label] {
				gas[slot.Direction()]++
			}
		}
		for _, dir := range []ir.Direction{ir.Forward, ir.Reverse} {
			if gas[dir] != 1 {
				continue
			}
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("reactions[%d].%s", i, dir),
				Message: fmt.Sprintf("reaction %q: %s direction adsorbs from the gas phase and needs catalyst.areaactivesite", r.ID, dir),
				Code:    ErrMissingSiteArea,
				Level:   LevelError,
			})
		}
	}
	return errs
}

// ValidateNetwork validates an already built network.
func ValidateNetwork(n *Network, site string) []ValidationError {
	return Validate(n.Species.All(), n.Reactions.All(), site)
}

// HasErrors reports whether any entry is error-level.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}
