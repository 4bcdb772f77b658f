package ir

import "math"

// Model is the compiled symbolic ODE system for one reaction network.
// It is read-only once returned by the compiler.
type Model struct {
	SiteSpecies string  `json:"site_species"`
	Temperature float64 `json:"temperature"`

	// Damping is the transient damping rate constant; 0 means disabled.
	Damping float64 `json:"damping"`

	SiteBalance SiteBalance `json:"site_balance"`

	// Surface lists surface species with a differential equation, sorted.
	Surface   []string   `json:"surface"`
	Equations []Equation `json:"equations"`

	InitialConditions string           `json:"initial_conditions"`
	SolverCall        string           `json:"solver_call"`
	SolutionParser    []SolutionOutput `json:"solution_parser"`

	Drivers   []Driver           `json:"drivers"`
	Reactions []CompiledReaction `json:"reactions"`
}

// SiteBalance is the mass-conservation constraint on the bare active site.
type SiteBalance struct {
	Species    string   `json:"species"`
	Subtracted []string `json:"subtracted"`
	Expr       string   `json:"expr"`
	SolvedExpr string   `json:"solved_expr"`
}

// Equation is the differential equation of one surface species.
type Equation struct {
	Species string     `json:"species"`
	Terms   []FluxTerm `json:"terms"`
	Expr    string     `json:"expr"`
}

// FluxTerm is one signed reaction-rate contribution to an Equation.
type FluxTerm struct {
	Reaction string `json:"reaction"`
	Sign     Sign   `json:"sign"`
}

// String renders the term as it appears in the equation, e.g. "+r1(t)".
func (f FluxTerm) String() string {
	return f.Sign.String() + f.Reaction + "(t)"
}

// SolutionOutput maps a solver output column back to a species.
type SolutionOutput struct {
	Species string `json:"species"`
	Index   int    `json:"index"`
	Expr    string `json:"expr"`
}

// Driver is an externally supplied pressure or per-site concentration.
type Driver struct {
	Species string  `json:"species"`
	Phase   Phase   `json:"phase"`
	Symbol  string  `json:"symbol"`
	Value   float64 `json:"value"`
}

// CompiledReaction holds the derived fields of one reaction.
type CompiledReaction struct {
	ID             string    `json:"id"`
	ReactionEnergy float64   `json:"reaction_energy"` // ΔG = G(final) - G(initial)
	Forward        HalfRate  `json:"forward"`
	Reverse        HalfRate  `json:"reverse"`
	RateExpr       string    `json:"rate_expr"`
	SolvedRateExpr string    `json:"solved_rate_expr"`
}

// Half returns the forward or reverse half of the reaction.
func (c CompiledReaction) Half(d Direction) HalfRate {
	if d == Forward {
		return c.Forward
	}
	return c.Reverse
}

// HalfRate is one direction of an elementary step.
type HalfRate struct {
	Activation float64      `json:"activation"`
	Driving    float64      `json:"driving"`
	GasCount   int          `json:"gas_count"`
	Factors    []string     `json:"factors"`
	Constant   RateConstant `json:"constant"`
	Law        string       `json:"law"`
}

// RateConstantForm names the kinetic theory used for a rate constant.
type RateConstantForm string

const (
	FormEyring       RateConstantForm = "eyring"
	FormHertzKnudsen RateConstantForm = "hertz-knudsen"
	FormZero         RateConstantForm = "zero"
)

// Physical constants shared by the synthesizer and Evaluate.
const (
	BoltzmannOverPlanck = 20836612225.1252   // s^-1 K^-1
	BoltzmannEV         = 8.617333262145e-5  // eV K^-1
	BoltzmannSI         = 1.3806485200e-23   // J K^-1
	AtomicMassUnit      = 1.6605390400e-27   // kg
	StandardPressure    = 101325.0           // Pa
	Avogadro            = 6.02214199e23      // mol^-1
	SquareAngstrom      = 1e-20              // m^2
)

// RateConstant is a synthesized rate-constant definition.
type RateConstant struct {
	Name            string           `json:"name"`
	Form            RateConstantForm `json:"form"`
	Barrier         float64          `json:"barrier"` // max(0, activation, driving)
	MolecularWeight float64          `json:"molecular_weight,omitempty"`
	SiteArea        float64          `json:"site_area,omitempty"`
	Expr            string           `json:"expr"`
}

// Evaluate returns the numeric value of the rate constant at temperature T (K).
func (k RateConstant) Evaluate(T float64) float64 {
	switch k.Form {
	case FormEyring:
		return BoltzmannOverPlanck * T * math.Exp(-k.Barrier/(BoltzmannEV*T))
	case FormHertzKnudsen:
		num := StandardPressure * k.SiteArea * SquareAngstrom * math.Exp(-k.Barrier/(BoltzmannEV*T))
		return num / math.Sqrt(2*math.Pi*AtomicMassUnit*k.MolecularWeight*BoltzmannSI*T)
	default:
		return 0
	}
}
