package tables

import (
	"fmt"
	"io"

	"github.com/roach88/amk/internal/ir"
)

// Species table columns.
const (
	ColLabel = "label"
	ColPhase = "phase"
	ColG     = "G"
	ColMW    = "mw"
	ColFrq   = "frq"
)

// ReadSpecies reads a species table (itm.csv).
//
// Required columns are label, phase and G. The electron count is read from
// the column named electronLabel; a missing or non-numeric cell leaves
// HasElectrons false. mw is read for gas-phase species only.
func ReadSpecies(r io.Reader, electronLabel string) ([]ir.Species, error) {
	rows, err := readTable(r, ColLabel, ColPhase, ColG)
	if err != nil {
		return nil, fmt.Errorf("species table: %w", err)
	}

	seen := make(map[string]int, len(rows))
	species := make([]ir.Species, 0, len(rows))
	for _, rw := range rows {
		label, _ := rw.get(ColLabel)
		if prev, dup := seen[label]; dup {
			return nil, fmt.Errorf("species table: %w", &ParseError{
				Line:    rw.line,
				Column:  ColLabel,
				Message: fmt.Sprintf("duplicate label %q (first on line %d)", label, prev),
			})
		}
		seen[label] = rw.line

		raw, _ := rw.get(ColPhase)
		sp := ir.Species{
			Label:    label,
			RawPhase: raw,
			Phase:    ir.ParsePhase(raw),
		}

		if sp.Energy, err = rw.float(ColG); err != nil {
			return nil, fmt.Errorf("species table: %w", err)
		}

		if electronLabel != "" {
			sp.Electrons, sp.HasElectrons = rw.optionalFloat(electronLabel)
		}

		if sp.Phase == ir.PhaseGas {
			if mw, ok := rw.optionalFloat(ColMW); ok {
				sp.Gas = &ir.GasProperties{MolecularWeight: mw}
			}
		}

		if cell, ok := rw.get(ColFrq); ok && !ir.IsNone(cell) {
			frq, err := parseList(cell)
			if err != nil {
				return nil, fmt.Errorf("species table: %w", &ParseError{
					Line: rw.line, Column: ColFrq, Message: err.Error(),
				})
			}
			sp.Frequencies = frq
		}

		species = append(species, sp)
	}
	return species, nil
}
