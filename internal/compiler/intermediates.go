package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

// Intermediates is the species-side skeleton of a model: the site balance,
// one empty flux accumulator per surface species, the initial conditions,
// the solver invocation and the external drivers.
type Intermediates struct {
	Site              string
	Surface           []string
	SiteBalance       ir.SiteBalance
	InitialConditions string
	SolverCall        string
	SolutionParser    []ir.SolutionOutput
	Drivers           []ir.Driver

	accumulators map[string][]ir.FluxTerm
}

// Terms returns the flux terms accumulated so far for a surface species.
func (in *Intermediates) Terms(label string) ([]ir.FluxTerm, bool) {
	terms, ok := in.accumulators[label]
	return terms, ok
}

// ProcessIntermediates classifies every species, in sorted label order.
//
// Surface species other than the site species get an accumulator, a term in
// the site balance, a solver variable, a zero initial condition and a
// solution-parser entry numbered from 2. Gas species become pressure drivers
// and aqueous species concentration drivers; neither gets an equation.
func ProcessIntermediates(cat *catalog.Catalog, s *config.Settings) (*Intermediates, error) {
	site := s.SiteSpecies
	if !cat.Has(site) {
		return nil, &MissingSiteSpeciesError{Label: site}
	}

	in := &Intermediates{
		Site:         site,
		accumulators: make(map[string][]ir.FluxTerm),
	}

	var (
		balance = "c" + site + ":=(t)-> 1.0"
		solved  = "sc" + site + ":= 1.0"
		solver  = "Solution:=dsolve({"
		ics     []string
		index   = 1
	)

	for _, sp := range cat.All() {
		if !ir.IsLabel(sp.Label) {
			return nil, &InvalidIdentifierError{Kind: "species", Name: sp.Label}
		}
		if sp.Label == site {
			continue
		}
		switch sp.Phase {
		case ir.PhaseSurface:
			in.Surface = append(in.Surface, sp.Label)
			in.accumulators[sp.Label] = nil
			in.SiteBalance.Subtracted = append(in.SiteBalance.Subtracted, sp.Label)
			balance += " -c" + sp.Label + "(t)"
			solved += " -sc" + sp.Label
			solver += "eqd" + sp.Label + ", "
			ics = append(ics, "c"+sp.Label+"(0.0)=0.0")
			index++
			in.SolutionParser = append(in.SolutionParser, ir.SolutionOutput{
				Species: sp.Label,
				Index:   index,
				Expr:    fmt.Sprintf("sc%s:=rhs(S[%d]) : ", sp.Label, index),
			})

		case ir.PhaseGas:
			in.Drivers = append(in.Drivers, ir.Driver{
				Species: sp.Label,
				Phase:   ir.PhaseGas,
				Symbol:  "P" + sp.Label,
				Value:   s.Pressure(sp.Label),
			})

		case ir.PhaseAqueous:
			in.Drivers = append(in.Drivers, ir.Driver{
				Species: sp.Label,
				Phase:   ir.PhaseAqueous,
				Symbol:  "CSL" + sp.Label,
				Value:   PerSiteConcentration(s.Concentration(sp.Label), s.SiteArea, s.LayerThickness),
			})

		default:
			return nil, &UnknownPhaseError{Species: sp.Label, Phase: sp.RawPhase}
		}
	}

	if len(in.Surface) == 0 {
		return nil, ErrNoSurfaceSpecies
	}

	in.SiteBalance.Species = site
	in.SiteBalance.Expr = balance + " : "
	in.SiteBalance.SolvedExpr = solved + " : "
	in.InitialConditions = "IC0:= " + strings.Join(ics, ", ") + " : "
	in.SolverCall = solver + "IC0}, numeric, method=rosenbrock, maxfun=0, abserr=1E-16, interr=false);"

	return in, nil
}

// PerSiteConcentration converts a solute concentration (mol/L) into molecules
// per active site, for a site of the given area (Å²) under a liquid layer of
// the given thickness (Å).
func PerSiteConcentration(molar, area, thickness float64) float64 {
	return molar * area * thickness * ir.Avogadro * 1e-27
}

// equationExpr renders the ODE of one surface species.
func equationExpr(label string, terms []ir.FluxTerm) string {
	var b strings.Builder
	b.WriteString("eqd" + label + ":=diff(c" + label + "(t),t)=")
	if len(terms) == 0 {
		b.WriteString("0")
		return b.String()
	}
	for _, t := range terms {
		b.WriteString(t.String())
	}
	return b.String()
}
