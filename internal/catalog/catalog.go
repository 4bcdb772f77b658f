// Package catalog holds the species catalog and reaction table of a network.
//
// Both tables are keyed by a unique string and iterate in lexicographic key
// order, which fixes the column order of every downstream rendering.
package catalog

import (
	"fmt"
	"sort"

	"github.com/roach88/amk/internal/ir"
)

// Catalog is the in-memory species table.
type Catalog struct {
	species map[string]ir.Species
	labels  []string
}

// New builds a catalog. A repeated label is an error.
func New(species ...ir.Species) (*Catalog, error) {
	c := &Catalog{species: make(map[string]ir.Species, len(species))}
	for _, s := range species {
		if s.Label == "" {
			return nil, fmt.Errorf("species with empty label")
		}
		if _, dup := c.species[s.Label]; dup {
			return nil, &DuplicateKeyError{Kind: "species", Key: s.Label}
		}
		c.species[s.Label] = s
		c.labels = append(c.labels, s.Label)
	}
	sort.Strings(c.labels)
	return c, nil
}

// MustNew is like New but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustNew(species ...ir.Species) *Catalog {
	c, err := New(species...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the species with the given label.
func (c *Catalog) Lookup(label string) (ir.Species, error) {
	s, ok := c.species[label]
	if !ok {
		return ir.Species{}, &UnknownSpeciesError{Label: label}
	}
	return s, nil
}

// Resolve is Lookup with the "none" sentinel folded in: an empty slot yields
// ok=false and no error.
func (c *Catalog) Resolve(label string) (s ir.Species, ok bool, err error) {
	if ir.IsNone(label) {
		return ir.Species{}, false, nil
	}
	s, err = c.Lookup(label)
	if err != nil {
		return ir.Species{}, false, err
	}
	return s, true, nil
}

// Has reports whether label is in the catalog.
func (c *Catalog) Has(label string) bool {
	_, ok := c.species[label]
	return ok
}

// Len returns the number of species.
func (c *Catalog) Len() int { return len(c.labels) }

// Labels returns all labels in sorted order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// All returns all species in sorted label order.
func (c *Catalog) All() []ir.Species {
	out := make([]ir.Species, 0, len(c.labels))
	for _, l := range c.labels {
		out = append(out, c.species[l])
	}
	return out
}

// SetEnergy replaces the free energy of a species.
// It is the only mutator and exists for the potential adjustment pass.
func (c *Catalog) SetEnergy(label string, g float64) error {
	s, ok := c.species[label]
	if !ok {
		return &UnknownSpeciesError{Label: label}
	}
	s.Energy = g
	c.species[label] = s
	return nil
}

// Clone returns an independent copy, so that an energy shift on the copy
// leaves the receiver untouched.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		species: make(map[string]ir.Species, len(c.species)),
		labels:  c.Labels(),
	}
	for k, v := range c.species {
		out.species[k] = v
	}
	return out
}
