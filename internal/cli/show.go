package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Batch    string // list the variants of this batch
	Batches  bool   // list batch IDs
	Maple    bool   // print the stored worksheet of one model
}

// ModelSummary is one stored model as reported by the CLI.
type ModelSummary struct {
	Hash            string `json:"hash"`
	Seq             int64  `json:"seq"`
	Site            string `json:"site"`
	SpeciesCount    int    `json:"species_count"`
	ReactionCount   int    `json:"reaction_count"`
	ModelVersion    string `json:"model_version"`
	CompilerVersion string `json:"compiler_version"`
}

// ModelDetail is one stored model with its compiled reactions.
type ModelDetail struct {
	ModelSummary
	Surface   []string          `json:"surface"`
	Reactions []ReactionSummary `json:"reactions"`
	Maple     string            `json:"maple,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [hash]",
		Short: "Inspect the model registry",
		Long: `Inspect models and sweep batches stored by compile --db and sweep --db.

Without arguments, lists every stored model in the order it was stored.
With a hash (or unique hash prefix), shows that model's reactions.

Examples:
  amk show --db amk.db
  amk show --db amk.db 3f9a1c
  amk show --db amk.db 3f9a1c --maple > model.mpl
  amk show --db amk.db --batches
  amk show --db amk.db --batch 01926d2e-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Batch, "batch", "", "list the variants of a sweep batch")
	cmd.Flags().BoolVar(&opts.Batches, "batches", false, "list sweep batches")
	cmd.Flags().BoolVar(&opts.Maple, "maple", false, "print the stored worksheet of the model")

	return cmd
}

func runShow(ctx context.Context, opts *ShowOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	switch {
	case len(args) == 1:
		return showModel(ctx, formatter, st, args[0], opts.Maple)
	case opts.Batch != "":
		return showBatch(ctx, formatter, st, opts.Batch)
	case opts.Batches:
		return showBatches(ctx, formatter, st)
	default:
		return showModels(ctx, formatter, st)
	}
}

func summary(rec store.ModelRecord) ModelSummary {
	return ModelSummary{
		Hash:            rec.Hash,
		Seq:             rec.Seq,
		Site:            rec.Site,
		SpeciesCount:    rec.SpeciesCount,
		ReactionCount:   rec.ReactionCount,
		ModelVersion:    rec.ModelVersion,
		CompilerVersion: rec.CompilerVersion,
	}
}

func showModels(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	records, err := st.ListModels(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
	}

	models := make([]ModelSummary, 0, len(records))
	for _, rec := range records {
		models = append(models, summary(rec))
	}
	if formatter.Format == "json" {
		return formatter.Success(models)
	}

	rows := make([]table.Row, 0, len(models))
	for _, m := range models {
		rows = append(rows, table.Row{m.Seq, shortHash(m.Hash), m.Site, m.SpeciesCount, m.ReactionCount, m.CompilerVersion})
	}
	formatter.Table(table.Row{"Seq", "Hash", "Site", "Species", "Reactions", "Compiler"}, rows)
	return nil
}

// findModel resolves a full hash or a unique hash prefix.
func findModel(ctx context.Context, st *store.Store, hash string) (store.ModelRecord, error) {
	rec, err := st.ReadModel(ctx, hash)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return rec, err
	}

	records, err := st.ListModels(ctx)
	if err != nil {
		return store.ModelRecord{}, err
	}
	var matches []store.ModelRecord
	for _, r := range records {
		if strings.HasPrefix(r.Hash, hash) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return store.ModelRecord{}, fmt.Errorf("model %s: %w", hash, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return store.ModelRecord{}, fmt.Errorf("hash prefix %s matches %d models", hash, len(matches))
	}
}

func showModel(ctx context.Context, formatter *OutputFormatter, st *store.Store, hash string, worksheet bool) error {
	rec, err := findModel(ctx, st, hash)
	if err != nil {
		code := ErrCodeDatabase
		if errors.Is(err, store.ErrNotFound) {
			code = ErrCodeNotFound
		}
		return formatter.Fail(ExitCommandError, code, err.Error())
	}

	if worksheet && formatter.Format != "json" {
		_, err := fmt.Fprint(formatter.Writer, rec.Maple)
		return err
	}

	detail := ModelDetail{
		ModelSummary: summary(rec),
		Surface:      rec.Model.Surface,
		Reactions:    summarize(rec.Model),
	}
	if formatter.Format == "json" {
		if worksheet {
			detail.Maple = rec.Maple
		}
		return formatter.Success(detail)
	}

	return outputModelText(formatter, detail, rec.Model)
}

func outputModelText(formatter *OutputFormatter, d ModelDetail, m *ir.Model) error {
	w := formatter.Writer
	fmt.Fprintf(w, "Model %s (seq %d)\n", d.Hash, d.Seq)
	fmt.Fprintf(w, "  site: %s  surface: %s\n", d.Site, strings.Join(d.Surface, " "))
	fmt.Fprintf(w, "  T=%g K  damping: %g\n\n", m.Temperature, m.Damping)

	rows := make([]table.Row, 0, len(d.Reactions))
	for _, r := range d.Reactions {
		rows = append(rows, table.Row{
			r.ID,
			fmt.Sprintf("%.3f", r.ReactionEnergy),
			r.ForwardForm,
			fmt.Sprintf("%.3e", r.ForwardConstant),
			r.ReverseForm,
			fmt.Sprintf("%.3e", r.ReverseConstant),
		})
	}
	formatter.Table(table.Row{"Reaction", "ΔG (eV)", "Form fwd", "k fwd (1/s)", "Form rev", "k rev (1/s)"}, rows)
	return nil
}

func showBatch(ctx context.Context, formatter *OutputFormatter, st *store.Store, batchID string) error {
	variants, err := st.ReadBatch(ctx, batchID)
	if err != nil {
		code := ErrCodeDatabase
		if errors.Is(err, store.ErrNotFound) {
			code = ErrCodeNotFound
		}
		return formatter.Fail(ExitCommandError, code, err.Error())
	}

	if formatter.Format == "json" {
		out := SweepResult{BatchID: batchID, Stored: true}
		for _, v := range variants {
			out.Variants = append(out.Variants, VariantSummary{Seq: v.Seq, Reaction: v.ReactionID, Hash: v.ModelHash})
		}
		return formatter.Success(out)
	}

	rows := make([]table.Row, 0, len(variants))
	for _, v := range variants {
		zeroed := v.ReactionID
		if zeroed == "" {
			zeroed = "base"
		}
		rows = append(rows, table.Row{v.Seq, zeroed, shortHash(v.ModelHash)})
	}
	fmt.Fprintf(formatter.Writer, "Batch %s\n", batchID)
	formatter.Table(table.Row{"Seq", "Zeroed", "Hash"}, rows)
	return nil
}

func showBatches(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	batches, err := st.ListBatches(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
	}
	if formatter.Format == "json" {
		return formatter.Success(batches)
	}
	rows := make([]table.Row, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, table.Row{b})
	}
	formatter.Table(table.Row{"Batch"}, rows)
	return nil
}
