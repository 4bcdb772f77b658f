package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/amk/internal/ir"
)

// The errors in this file are fatal: compilation stops and no partial model
// is returned.

// UnknownPhaseError is returned for a species whose phase is not surface, gas
// or aqueous and which is not the site-balance species.
type UnknownPhaseError struct {
	Species string
	Phase   string
}

func (e *UnknownPhaseError) Error() string {
	return fmt.Sprintf("species %q has unknown phase %q (want cat, gas or aqu)", e.Species, e.Phase)
}

// UnresolvedParticipantError is returned when a reaction slot names a label
// that is not in the species catalog.
type UnresolvedParticipantError struct {
	ReactionID string
	Slot       ir.Slot
	Label      string
}

func (e *UnresolvedParticipantError) Error() string {
	return fmt.Sprintf("reaction %q: %s participant %q not found in species catalog",
		e.ReactionID, e.Slot, e.Label)
}

// UnsupportedReactionTopologyError is returned when one direction of a
// reaction has more than one gas-phase participant.
type UnsupportedReactionTopologyError struct {
	ReactionID string
	Direction  ir.Direction
	Count      int
}

func (e *UnsupportedReactionTopologyError) Error() string {
	if e.ReactionID == "" {
		return fmt.Sprintf("%d gas-phase participants in one direction (at most 1 supported)", e.Count)
	}
	return fmt.Sprintf("reaction %q: %s direction has %d gas-phase participants (at most 1 supported)",
		e.ReactionID, e.Direction, e.Count)
}

// MissingMolecularWeightError is returned when a gas-phase participant has no
// molecular weight for its Hertz-Knudsen prefactor.
type MissingMolecularWeightError struct {
	ReactionID string
	Species    string
}

func (e *MissingMolecularWeightError) Error() string {
	return fmt.Sprintf("reaction %q: gas species %q has no molecular weight", e.ReactionID, e.Species)
}

// MissingSiteSpeciesError is returned when the site-balance species is not
// in the catalog.
type MissingSiteSpeciesError struct {
	Label string
}

func (e *MissingSiteSpeciesError) Error() string {
	return fmt.Sprintf("site-balance species %q not found in species catalog", e.Label)
}

// MissingSiteAreaError is returned when a direction with one gas-phase
// participant needs the Hertz-Knudsen prefactor but no active-site area
// (catalyst.areaactivesite) is configured.
type MissingSiteAreaError struct {
	ReactionID string
	Direction  ir.Direction
}

func (e *MissingSiteAreaError) Error() string {
	if e.ReactionID == "" {
		return "Hertz-Knudsen rate constant needs a positive active-site area (catalyst.areaactivesite)"
	}
	return fmt.Sprintf("reaction %q: %s direction adsorbs from the gas phase and needs a positive active-site area (catalyst.areaactivesite)",
		e.ReactionID, e.Direction)
}

// InvalidIdentifierError is returned for a reaction ID or species label that
// cannot be written as a Maple name.
type InvalidIdentifierError struct {
	Kind string // "reaction" or "species"
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	if e.Kind == "reaction" {
		return fmt.Sprintf("reaction id %q is not a valid identifier (letter or _ first, then letters, digits or _)", e.Name)
	}
	return fmt.Sprintf("species label %q is not a valid identifier (letters, digits or _)", e.Name)
}

// ErrNoSurfaceSpecies is returned when no surface species besides the site
// species exists, leaving the ODE system empty.
var ErrNoSurfaceSpecies = errors.New("no surface species besides the site-balance species")

// IsUnresolvedParticipant reports whether err is or wraps an UnresolvedParticipantError.
func IsUnresolvedParticipant(err error) bool {
	var target *UnresolvedParticipantError
	return errors.As(err, &target)
}

// IsUnsupportedTopology reports whether err is or wraps an UnsupportedReactionTopologyError.
func IsUnsupportedTopology(err error) bool {
	var target *UnsupportedReactionTopologyError
	return errors.As(err, &target)
}

// IsUnknownPhase reports whether err is or wraps an UnknownPhaseError.
func IsUnknownPhase(err error) bool {
	var target *UnknownPhaseError
	return errors.As(err, &target)
}

// IsMissingSiteArea reports whether err is or wraps a MissingSiteAreaError.
func IsMissingSiteArea(err error) bool {
	var target *MissingSiteAreaError
	return errors.As(err, &target)
}
