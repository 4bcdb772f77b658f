package catalog

import (
	"errors"
	"fmt"
)

// UnknownSpeciesError is returned when a label is not in the catalog.
type UnknownSpeciesError struct {
	Label string
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("unknown species %q", e.Label)
}

// UnknownReactionError is returned when a reaction ID is not in the table.
type UnknownReactionError struct {
	ID string
}

func (e *UnknownReactionError) Error() string {
	return fmt.Sprintf("unknown reaction %q", e.ID)
}

// DuplicateKeyError is returned when a species label or reaction ID repeats.
type DuplicateKeyError struct {
	Kind string // "species" or "reaction"
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Key)
}

// IsUnknownSpecies reports whether err is or wraps an UnknownSpeciesError.
func IsUnknownSpecies(err error) bool {
	var target *UnknownSpeciesError
	return errors.As(err, &target)
}

// IsDuplicateKey reports whether err is or wraps a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var target *DuplicateKeyError
	return errors.As(err, &target)
}

// IsUnknownReaction reports whether err is or wraps an UnknownReactionError.
func IsUnknownReaction(err error) bool {
	var target *UnknownReactionError
	return errors.As(err, &target)
}
