package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/amk/internal/ir"
)

// Maple renderings of the physical constants. They are spelled out rather
// than formatted from the float constants so the worksheet text is stable.
const (
	mapleKBH   = "20836612225.1252"
	mapleKBeV  = "8.617333262145E-5"
	mapleAMU   = "1.6605390400E-27"
	mapleKBSI  = "1.3806485200E-23"
	mapleP0    = "101325"
	mapleAngs2 = "1E-20"
)

// Synthesize builds the rate constant named name for one direction of an
// elementary step.
//
// With no gas-phase participant the transition-state (Eyring) form is used;
// with one, the Hertz-Knudsen collision form, whose prefactor needs the
// participant's molecular weight mw (g/mol) and a positive site area (Å²).
// The effective barrier is max(0, ea, driving). A non-positive area with one
// gas participant returns a *MissingSiteAreaError, and two or more gas
// participants an *UnsupportedReactionTopologyError, both without a reaction
// ID; the caller fills it in.
func Synthesize(name string, ea, driving float64, gasCount int, mw, area float64) (ir.RateConstant, error) {
	k := ir.RateConstant{
		Name:    name,
		Barrier: math.Max(0, math.Max(ea, driving)),
	}
	switch gasCount {
	case 0:
		k.Form = ir.FormEyring
		k.Expr = fmt.Sprintf("%s:=evalf(%s*T*exp(-max(0.0,%.6f,%.6f)/(%s*T)) ) : ",
			name, mapleKBH, ea, driving, mapleKBeV)
	case 1:
		if area <= 0 {
			return ir.RateConstant{}, &MissingSiteAreaError{}
		}
		k.Form = ir.FormHertzKnudsen
		k.MolecularWeight = mw
		k.SiteArea = area
		k.Expr = fmt.Sprintf("%s:=evalf((%s*%.6f*%s*exp(-max(0.0,%.6f,%.6f)/(%s*T)))/sqrt(2*Pi*%s*%.6f*%s*T )) : ",
			name, mapleP0, area, mapleAngs2, ea, driving, mapleKBeV, mapleAMU, mw, mapleKBSI)
	default:
		return ir.RateConstant{}, &UnsupportedReactionTopologyError{Count: gasCount}
	}
	return k, nil
}

// zeroConstant replaces a rate constant by 0, switching the direction off.
func zeroConstant(name string) ir.RateConstant {
	return ir.RateConstant{
		Name: name,
		Form: ir.FormZero,
		Expr: name + ":=0 : ",
	}
}
