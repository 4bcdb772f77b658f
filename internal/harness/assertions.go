package harness

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/ir"
)

// Error kinds reported by ErrorKind and matched by error assertions.
const (
	KindUnresolvedParticipant  = "unresolved_participant"
	KindUnsupportedTopology    = "unsupported_topology"
	KindUnknownPhase           = "unknown_phase"
	KindMissingSiteSpecies     = "missing_site_species"
	KindMissingMolecularWeight = "missing_molecular_weight"
	KindMissingSiteArea        = "missing_site_area"
	KindInvalidIdentifier      = "invalid_identifier"
	KindNoSurfaceSpecies       = "no_surface_species"
	KindDuplicateKey           = "duplicate_key"
	KindOther                  = "other"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// ErrorKind classifies a compile error. Returns "" for nil.
func ErrorKind(err error) string {
	var (
		unresolved *compiler.UnresolvedParticipantError
		topology   *compiler.UnsupportedReactionTopologyError
		phase      *compiler.UnknownPhaseError
		site       *compiler.MissingSiteSpeciesError
		mw         *compiler.MissingMolecularWeightError
		area       *compiler.MissingSiteAreaError
		ident      *compiler.InvalidIdentifierError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unresolved):
		return KindUnresolvedParticipant
	case errors.As(err, &topology):
		return KindUnsupportedTopology
	case errors.As(err, &phase):
		return KindUnknownPhase
	case errors.As(err, &site):
		return KindMissingSiteSpecies
	case errors.As(err, &mw):
		return KindMissingMolecularWeight
	case errors.As(err, &area):
		return KindMissingSiteArea
	case errors.As(err, &ident):
		return KindInvalidIdentifier
	case errors.Is(err, compiler.ErrNoSurfaceSpecies):
		return KindNoSurfaceSpecies
	case catalog.IsDuplicateKey(err):
		return KindDuplicateKey
	default:
		return KindOther
	}
}

func findEquation(m *ir.Model, species string) (ir.Equation, bool) {
	for _, eq := range m.Equations {
		if eq.Species == species {
			return eq, true
		}
	}
	return ir.Equation{}, false
}

func findReaction(m *ir.Model, id string) (ir.CompiledReaction, bool) {
	for _, r := range m.Reactions {
		if r.ID == id {
			return r, true
		}
	}
	return ir.CompiledReaction{}, false
}

// assertEquation checks whether the ODE of a species contains a text.
// The site species has no ODE; its site-balance expression is used instead.
func assertEquation(m *ir.Model, a Assertion, want bool) error {
	var expr string
	if a.Species == m.SiteSpecies {
		expr = m.SiteBalance.Expr
	} else {
		eq, ok := findEquation(m, a.Species)
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("differential equation for %s", a.Species),
				Actual:   "no such equation",
			}
		}
		expr = eq.Expr
	}

	if strings.Contains(expr, a.Text) == want {
		return nil
	}
	expected := fmt.Sprintf("%s equation contains %q", a.Species, a.Text)
	if !want {
		expected = fmt.Sprintf("%s equation lacks %q", a.Species, a.Text)
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: expr}
}

// assertRateConstantForm checks the kinetic theory of one half-reaction.
func assertRateConstantForm(m *ir.Model, a Assertion) error {
	r, ok := findReaction(m, a.Reaction)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: "reaction " + a.Reaction, Actual: "not compiled"}
	}
	dir, err := parseDirection(a.Direction)
	if err != nil {
		return err
	}
	got := r.Half(dir).Constant.Form
	if string(got) != a.Form {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s %s constant is %s", a.Reaction, dir, a.Form),
			Actual:   string(got),
		}
	}
	return nil
}

// assertActivationEnergy compares an activation energy within tolerance.
func assertActivationEnergy(m *ir.Model, a Assertion) error {
	r, ok := findReaction(m, a.Reaction)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: "reaction " + a.Reaction, Actual: "not compiled"}
	}
	dir, err := parseDirection(a.Direction)
	if err != nil {
		return err
	}
	tol := a.Tolerance
	if tol == 0 {
		tol = 1e-9
	}
	got := r.Half(dir).Activation
	if math.Abs(got-*a.Value) > tol {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s %s activation %g ± %g eV", a.Reaction, dir, *a.Value, tol),
			Actual:   fmt.Sprintf("%g", got),
		}
	}
	return nil
}

// assertError checks the compile failure kind and, optionally, its message.
func assertError(compileErr error, a Assertion) error {
	if compileErr == nil {
		return &AssertionError{Type: a.Type, Expected: "compile error " + a.Kind, Actual: "compiled"}
	}
	if kind := ErrorKind(compileErr); kind != a.Kind {
		return &AssertionError{Type: a.Type, Expected: "compile error " + a.Kind, Actual: kind + ": " + compileErr.Error()}
	}
	if a.Text != "" && !strings.Contains(compileErr.Error(), a.Text) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("error message contains %q", a.Text),
			Actual:   compileErr.Error(),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type != AssertError && result.Model == nil {
			err = fmt.Errorf("assertion[%d]: %s needs a compiled model: %v", i, assertion.Type, result.CompileErr)
			errs = append(errs, err.Error())
			continue
		}

		switch assertion.Type {
		case AssertEquationContains:
			err = assertEquation(result.Model, assertion, true)
		case AssertEquationLacks:
			err = assertEquation(result.Model, assertion, false)
		case AssertRateConstantForm:
			err = assertRateConstantForm(result.Model, assertion)
		case AssertActivationEnergy:
			err = assertActivationEnergy(result.Model, assertion)
		case AssertError:
			err = assertError(result.CompileErr, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
