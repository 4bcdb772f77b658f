// Package sweep runs the path detector: a network is compiled once as is and
// once more per selected reaction with that reaction's rate constants set to
// zero. Comparing the Maple results of the variants shows which steps carry
// the flux.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/maple"
)

// Baseline is the Reaction of the unmodified variant.
const Baseline = ""

// Input is the network and settings shared by every variant.
type Input struct {
	Network  *compiler.Network
	Settings *config.Settings
}

// Options control a sweep.
type Options struct {
	// Dir receives one worksheet per variant. Empty means render only.
	Dir string
	// Base is the worksheet file stem; defaults to "amk".
	Base string

	// Reactions selects the reactions to switch off; nil means all.
	Reactions []string

	// Workers > 1 builds variants concurrently.
	Workers int

	IDs    IDGenerator
	Clock  *Clock
	Logger *slog.Logger
}

// Variant is one compiled and rendered member of a sweep.
type Variant struct {
	BatchID  string
	Seq      int64
	Reaction string // Baseline or the ID of the zeroed reaction
	Model    *ir.Model
	Hash     string
	Maple    []byte
	Path     string // worksheet file, empty when Dir is empty
}

// Name is the variant's file suffix: "base" or the reaction ID.
func (v Variant) Name() string {
	if v.Reaction == Baseline {
		return "base"
	}
	return v.Reaction
}

// Run builds the baseline and every selected variant. Variants come back
// baseline first, then in reaction ID order. Any failure aborts the sweep;
// files already written are left in place.
func Run(ctx context.Context, in Input, opts Options) ([]Variant, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewClock()
	}
	base := opts.Base
	if base == "" {
		base = "amk"
	}

	selected, err := selectReactions(in.Network, opts.Reactions)
	if err != nil {
		return nil, err
	}

	batch := ids.Generate()
	variants := make([]Variant, len(selected)+1)
	variants[0] = Variant{BatchID: batch, Reaction: Baseline}
	for i, id := range selected {
		variants[i+1] = Variant{BatchID: batch, Reaction: id}
	}
	// Seq follows output order, not completion order.
	for i := range variants {
		variants[i].Seq = clock.Next()
	}

	logger.Info("starting sweep", "batch", batch, "variants", len(variants))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i := range variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return build(&variants[i], in, opts.Dir, base, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return variants, nil
}

func build(v *Variant, in Input, dir, base string, logger *slog.Logger) error {
	s := in.Settings.Clone()
	var zeroed map[string]bool
	if v.Reaction != Baseline {
		zeroed = map[string]bool{v.Reaction: true}
		s.MapleOutput = suffixed(s.MapleOutput, v.Reaction)
	}

	m, err := compiler.Build(in.Network, s, compiler.Options{Zeroed: zeroed, Logger: logger})
	if err != nil {
		return fmt.Errorf("variant %s: %w", v.Name(), err)
	}
	v.Model = m
	if v.Hash, err = ir.ModelHash(m); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name(), err)
	}
	if v.Maple, err = maple.Render(m, s); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name(), err)
	}

	if dir == "" {
		return nil
	}
	name := base + ".mpl"
	if v.Reaction != Baseline {
		name = base + "-" + v.Reaction + ".mpl"
	}
	v.Path = filepath.Join(dir, name)
	if err := os.WriteFile(v.Path, v.Maple, 0o644); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name(), err)
	}
	logger.Debug("wrote variant", "reaction", v.Name(), "path", v.Path)
	return nil
}

// selectReactions resolves the requested IDs, or returns all of them.
func selectReactions(n *compiler.Network, requested []string) ([]string, error) {
	if requested == nil {
		return n.Reactions.IDs(), nil
	}
	seen := make(map[string]bool, len(requested))
	var out []string
	for _, id := range requested {
		if seen[id] {
			continue
		}
		if _, err := n.Reactions.Lookup(id); err != nil {
			return nil, err
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// suffixed inserts "-<id>" before the extension of the Maple result file, so
// variants never overwrite each other's results.
func suffixed(name, id string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + id + ext
}
