package catalog

import (
	"fmt"
	"sort"

	"github.com/roach88/amk/internal/ir"
)

// ReactionTable is the in-memory reaction table keyed by reaction ID.
type ReactionTable struct {
	reactions map[string]ir.Reaction
	ids       []string
}

// NewReactionTable builds a reaction table. A repeated ID is an error.
func NewReactionTable(reactions ...ir.Reaction) (*ReactionTable, error) {
	t := &ReactionTable{reactions: make(map[string]ir.Reaction, len(reactions))}
	for _, r := range reactions {
		if r.ID == "" {
			return nil, fmt.Errorf("reaction with empty id")
		}
		if _, dup := t.reactions[r.ID]; dup {
			return nil, &DuplicateKeyError{Kind: "reaction", Key: r.ID}
		}
		t.reactions[r.ID] = r
		t.ids = append(t.ids, r.ID)
	}
	sort.Strings(t.ids)
	return t, nil
}

// MustNewReactionTable is like NewReactionTable but panics on error.
func MustNewReactionTable(reactions ...ir.Reaction) *ReactionTable {
	t, err := NewReactionTable(reactions...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the reaction with the given ID.
func (t *ReactionTable) Lookup(id string) (ir.Reaction, error) {
	r, ok := t.reactions[id]
	if !ok {
		return ir.Reaction{}, &UnknownReactionError{ID: id}
	}
	return r, nil
}

// Len returns the number of reactions.
func (t *ReactionTable) Len() int { return len(t.ids) }

// IDs returns all reaction IDs in sorted order.
func (t *ReactionTable) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// All returns all reactions in sorted ID order.
func (t *ReactionTable) All() []ir.Reaction {
	out := make([]ir.Reaction, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.reactions[id])
	}
	return out
}

// SetEnergy replaces the transition-state energy of a reaction.
// Participants are never touched.
func (t *ReactionTable) SetEnergy(id string, g float64) error {
	r, ok := t.reactions[id]
	if !ok {
		return &UnknownReactionError{ID: id}
	}
	r.Energy = g
	t.reactions[id] = r
	return nil
}

// Clone returns an independent copy of the table.
func (t *ReactionTable) Clone() *ReactionTable {
	out := &ReactionTable{
		reactions: make(map[string]ir.Reaction, len(t.reactions)),
		ids:       t.IDs(),
	}
	for k, v := range t.reactions {
		out.reactions[k] = v
	}
	return out
}
