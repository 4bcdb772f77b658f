package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/maple"
	"github.com/roach88/amk/internal/store"
	"github.com/roach88/amk/internal/sweep"
)

// Harness runs scenarios against a model registry.
type Harness struct {
	store  *store.Store
	clock  *sweep.Clock
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with its own clock, so
// registry seqs start at 1 on every run.
//
// Execution flow:
//  1. Build the species catalog and reaction table
//  2. Compile the network
//  3. Render the Maple worksheet and store the model
//  4. Read the model back and evaluate assertions against it
//
// A compile failure is not an error of Run: it is recorded in the result
// and checked by error assertions. Run fails only when the scenario cannot
// be set up or the registry misbehaves.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  sweep.NewClock(),
		logger: slog.New(slog.DiscardHandler), // Suppress logs in tests
	}

	result := NewResult()
	if err := h.execute(ctx, scenario, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	species, reactions := scenario.network()

	cat, err := catalog.New(species...)
	if err != nil {
		result.CompileErr = err
		return nil
	}
	table, err := catalog.NewReactionTable(reactions...)
	if err != nil {
		result.CompileErr = err
		return nil
	}

	settings := scenario.settings()
	opts := scenario.options()
	opts.Logger = h.logger

	model, err := compiler.Build(&compiler.Network{Species: cat, Reactions: table}, settings, opts)
	if err != nil {
		h.logger.Debug("scenario compile failed", "scenario", scenario.Name, "error", err)
		result.CompileErr = err
		return nil
	}

	worksheet, err := maple.Render(model, settings)
	if err != nil {
		return fmt.Errorf("render maple: %w", err)
	}

	rec, err := store.NewModelRecord(model, worksheet, h.clock.Next())
	if err != nil {
		return fmt.Errorf("hash model: %w", err)
	}
	if _, err := h.store.WriteModel(ctx, rec); err != nil {
		return err
	}

	stored, err := h.store.ReadModel(ctx, rec.Hash)
	if err != nil {
		return fmt.Errorf("read back model: %w", err)
	}

	result.Hash = stored.Hash
	result.Model = stored.Model
	result.Maple = []byte(stored.Maple)
	return nil
}
