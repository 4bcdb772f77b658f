package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/amk/internal/ir"
)

// CompileCUE reads a network written in CUE:
//
//	species: {
//		iO: {phase: "cat", G: 0.0}
//		gA: {phase: "gas", G: 0.2, mw: 28.0}
//	}
//	reaction: {
//		r1: {is1: "iO", is2: "gA", fs1: "iA", G: -0.3}
//	}
//
// The electron count of species and reactions is read from the field named
// electronLabel ("ne" by default).
func CompileCUE(v cue.Value, electronLabel string) ([]ir.Species, []ir.Reaction, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}
	if electronLabel == "" {
		electronLabel = "ne"
	}

	speciesVal := v.LookupPath(cue.ParsePath("species"))
	if !speciesVal.Exists() {
		return nil, nil, &CompileError{
			Field:   "species",
			Message: "species is required",
			Pos:     v.Pos(),
		}
	}

	var species []ir.Species
	iter, err := speciesVal.Fields()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}
	for iter.Next() {
		sp, err := CompileSpecies(iter.Value(), electronLabel)
		if err != nil {
			return nil, nil, err
		}
		species = append(species, sp)
	}

	var reactions []ir.Reaction
	reactionVal := v.LookupPath(cue.ParsePath("reaction"))
	if reactionVal.Exists() {
		iter, err := reactionVal.Fields()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		for iter.Next() {
			r, err := CompileReaction(iter.Value(), electronLabel)
			if err != nil {
				return nil, nil, err
			}
			reactions = append(reactions, r)
		}
	}

	return species, reactions, nil
}

// CompileSpecies parses one species struct. The label is the struct's own
// field name.
func CompileSpecies(v cue.Value, electronLabel string) (ir.Species, error) {
	if err := v.Err(); err != nil {
		return ir.Species{}, formatCUEError(err)
	}

	sp := ir.Species{Label: selectorLabel(v)}

	phaseVal := v.LookupPath(cue.ParsePath("phase"))
	if !phaseVal.Exists() {
		return ir.Species{}, &CompileError{
			Field:   "phase",
			Message: fmt.Sprintf("species %s: phase is required", sp.Label),
			Pos:     v.Pos(),
		}
	}
	raw, err := phaseVal.String()
	if err != nil {
		return ir.Species{}, formatCUEError(err)
	}
	sp.RawPhase = raw
	sp.Phase = ir.ParsePhase(raw)

	g, err := requiredFloat(v, "G", sp.Label)
	if err != nil {
		return ir.Species{}, err
	}
	sp.Energy = g

	if ne, ok, err := optionalFloat(v, electronLabel); err != nil {
		return ir.Species{}, err
	} else if ok {
		sp.Electrons, sp.HasElectrons = ne, true
	}

	if mw, ok, err := optionalFloat(v, "mw"); err != nil {
		return ir.Species{}, err
	} else if ok && sp.Phase == ir.PhaseGas {
		sp.Gas = &ir.GasProperties{MolecularWeight: mw}
	}

	frqVal := v.LookupPath(cue.ParsePath("frq"))
	if frqVal.Exists() {
		list, err := frqVal.List()
		if err != nil {
			return ir.Species{}, formatCUEError(err)
		}
		for list.Next() {
			f, err := list.Value().Float64()
			if err != nil {
				return ir.Species{}, formatCUEError(err)
			}
			sp.Frequencies = append(sp.Frequencies, f)
		}
	}

	return sp, nil
}

// CompileReaction parses one reaction struct. Missing slots and the string
// "none" both mean an empty slot.
func CompileReaction(v cue.Value, electronLabel string) (ir.Reaction, error) {
	if err := v.Err(); err != nil {
		return ir.Reaction{}, formatCUEError(err)
	}

	r := ir.Reaction{ID: selectorLabel(v)}

	for _, slot := range ir.Slots {
		slotVal := v.LookupPath(cue.ParsePath(slot.String()))
		if !slotVal.Exists() {
			continue
		}
		label, err := slotVal.String()
		if err != nil {
			return ir.Reaction{}, formatCUEError(err)
		}
		if !ir.IsNone(label) {
			r.Participants[slot] = label
		}
	}

	g, err := requiredFloat(v, "G", r.ID)
	if err != nil {
		return ir.Reaction{}, err
	}
	r.Energy = g

	if ne, ok, err := optionalFloat(v, electronLabel); err != nil {
		return ir.Reaction{}, err
	} else if ok {
		r.Electrons, r.HasElectrons = ne, true
	}

	if alpha, ok, err := optionalFloat(v, "alpha"); err != nil {
		return ir.Reaction{}, err
	} else if ok {
		r.Alpha = &alpha
	}

	return r, nil
}

func selectorLabel(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].String()
}

func requiredFloat(v cue.Value, field, owner string) (float64, error) {
	f, ok, err := optionalFloat(v, field)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s: %s is required", owner, field),
			Pos:     v.Pos(),
		}
	}
	return f, nil
}

func optionalFloat(v cue.Value, field string) (float64, bool, error) {
	fv := v.LookupPath(cue.MakePath(cue.Str(field)))
	if !fv.Exists() {
		return 0, false, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, false, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a number: %v", err),
			Pos:     fv.Pos(),
		}
	}
	return f, true, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
