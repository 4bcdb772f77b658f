package compiler

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/potential"
)

// Network is a species catalog with its reaction table.
type Network struct {
	Species   *catalog.Catalog
	Reactions *catalog.ReactionTable
}

// Options tune a compile.
type Options struct {
	// Workers > 1 compiles reactions concurrently. The reduction into
	// accumulators stays sequential, so the model is identical either way.
	Workers int

	// Zeroed lists reaction IDs whose rate constants are replaced by 0.
	Zeroed map[string]bool

	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// reactionResult is the output of the pure per-reaction phase.
type reactionResult struct {
	compiled      ir.CompiledReaction
	contributions []Contribution
	err           error
}

// Compile builds the symbolic ODE model of a network whose energies are final.
//
// Species are processed first, then every reaction in sorted ID order. Any
// fatal error aborts the whole compile and no model is returned.
func Compile(n *Network, s *config.Settings, opts Options) (*ir.Model, error) {
	logger := opts.logger()

	in, err := ProcessIntermediates(n.Species, s)
	if err != nil {
		return nil, err
	}

	reactions := n.Reactions.All()
	damp := newDamping(s)
	results := make([]reactionResult, len(reactions))

	compileOne := func(i int) {
		r := reactions[i]
		compiled, contributions, err := compileReaction(r, n.Species, s, damp, opts.Zeroed[r.ID])
		results[i] = reactionResult{compiled: compiled, contributions: contributions, err: err}
	}

	if opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i := range reactions {
			g.Go(func() error {
				compileOne(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range reactions {
			compileOne(i)
		}
	}

	// Errors are reported for the first failing reaction in sorted order,
	// whatever the scheduling was.
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
	}

	model := &ir.Model{
		SiteSpecies:       in.Site,
		Temperature:       s.Temperature,
		SiteBalance:       in.SiteBalance,
		Surface:           in.Surface,
		InitialConditions: in.InitialConditions,
		SolverCall:        in.SolverCall,
		SolutionParser:    in.SolutionParser,
		Drivers:           in.Drivers,
		Reactions:         make([]ir.CompiledReaction, 0, len(results)),
	}
	if rate, on := s.Damping(); on {
		model.Damping = rate
	}

	// Sequential reduction: reaction order, then slot order.
	for _, res := range results {
		model.Reactions = append(model.Reactions, res.compiled)
		for _, c := range res.contributions {
			if err := in.apply(c); err != nil {
				return nil, err
			}
		}
	}

	for _, label := range in.Surface {
		terms := in.accumulators[label]
		if len(terms) == 0 {
			logger.Warn("surface species takes part in no reaction, its equation is 0", "species", label)
		}
		model.Equations = append(model.Equations, ir.Equation{
			Species: label,
			Terms:   terms,
			Expr:    equationExpr(label, terms),
		})
	}

	logger.Debug("compiled network",
		"site", in.Site,
		"species", n.Species.Len(),
		"reactions", len(model.Reactions),
		"equations", len(model.Equations))

	return model, nil
}

// apply appends a contribution to its species' accumulator.
func (in *Intermediates) apply(c Contribution) error {
	terms, ok := in.accumulators[c.Species]
	if !ok {
		return fmt.Errorf("reaction %q: no accumulator for species %q", c.Term.Reaction, c.Species)
	}
	in.accumulators[c.Species] = append(terms, c.Term)
	return nil
}

// Build runs the full pipeline on a copy of the network: the optional
// electrode-potential shift, then Compile. The caller's network is not
// modified, so one network can be built many times.
func Build(n *Network, s *config.Settings, opts Options) (*ir.Model, error) {
	logger := opts.logger()

	work := &Network{Species: n.Species.Clone(), Reactions: n.Reactions.Clone()}

	if u, ok := potential.ElectrodePotential(s); ok && u != 0 {
		logger.Debug("applying electrode potential", "u_she", u)
		potential.Adjust(work.Species, u, logger)
		potential.AdjustReactions(work.Reactions, work.Species, u, logger)
	}

	return Compile(work, s, opts)
}
