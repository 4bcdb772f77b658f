package tables

import (
	"fmt"
	"io"

	"github.com/roach88/amk/internal/ir"
)

// ColAlpha is the optional symmetry-factor column of the reaction table.
const ColAlpha = "alpha"

// ReadReactions reads a reaction table (rxn.csv).
//
// Required columns are label, is1, is2, fs1, fs2 and G, where G is the free
// energy of the transition state. Empty participant slots are written as
// "none".
func ReadReactions(r io.Reader, electronLabel string) ([]ir.Reaction, error) {
	required := []string{ColLabel}
	for _, slot := range ir.Slots {
		required = append(required, slot.String())
	}
	required = append(required, ColG)

	rows, err := readTable(r, required...)
	if err != nil {
		return nil, fmt.Errorf("reaction table: %w", err)
	}

	seen := make(map[string]int, len(rows))
	reactions := make([]ir.Reaction, 0, len(rows))
	for _, rw := range rows {
		id, _ := rw.get(ColLabel)
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("reaction table: %w", &ParseError{
				Line:    rw.line,
				Column:  ColLabel,
				Message: fmt.Sprintf("duplicate reaction %q (first on line %d)", id, prev),
			})
		}
		seen[id] = rw.line

		rx := ir.Reaction{ID: id}
		for _, slot := range ir.Slots {
			label, _ := rw.get(slot.String())
			if !ir.IsNone(label) {
				rx.Participants[slot] = label
			}
		}

		if rx.Energy, err = rw.float(ColG); err != nil {
			return nil, fmt.Errorf("reaction table: %w", err)
		}
		if electronLabel != "" {
			rx.Electrons, rx.HasElectrons = rw.optionalFloat(electronLabel)
		}
		if alpha, ok := rw.optionalFloat(ColAlpha); ok {
			rx.Alpha = &alpha
		}

		reactions = append(reactions, rx)
	}
	return reactions, nil
}
