package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/store"
	"github.com/roach88/amk/internal/sweep"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Config    string
	Dir       string   // worksheet directory, defaults to the network directory
	Base      string   // worksheet file stem
	Reactions []string // reactions to switch off, default all
	Workers   int
	DB        string
}

// SweepResult is the JSON payload of a sweep.
type SweepResult struct {
	BatchID  string           `json:"batch_id"`
	Variants []VariantSummary `json:"variants"`
	Stored   bool             `json:"stored,omitempty"`
}

// VariantSummary is one member of a sweep as reported by the CLI.
type VariantSummary struct {
	Seq      int64  `json:"seq"`
	Reaction string `json:"reaction,omitempty"` // empty for the baseline
	Hash     string `json:"hash"`
	Path     string `json:"path,omitempty"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep <network-dir>",
		Short: "Write one worksheet per switched-off reaction",
		Long: `Path detector: compile the network once as is and once per selected
reaction with that reaction's rate constants set to zero.

The baseline worksheet is <base>.mpl, variants are <base>-<reaction>.mpl.
Each variant's Maple result file carries the same -<reaction> suffix, so
comparing the runs shows which steps the kinetics depend on.

Examples:
  amk sweep ./network
  amk sweep ./network --reactions r2,r5 --workers 4
  amk sweep ./network --db amk.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "parameters file (default: <network-dir>/parameters.txt)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "worksheet directory (default: <network-dir>)")
	cmd.Flags().StringVar(&opts.Base, "base", "amk", "worksheet file stem")
	cmd.Flags().StringSliceVar(&opts.Reactions, "reactions", nil, "reactions to switch off (default: all)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "build variants concurrently")
	cmd.Flags().StringVar(&opts.DB, "db", "", "store the batch in this registry")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runSweep(ctx context.Context, opts *SweepOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := formatter.Logger()

	loaded, err := LoadNetwork(dir, opts.Config, cmd.Flags())
	if err != nil {
		return outputLoadError(formatter, err)
	}
	for _, w := range loaded.Warnings {
		logger.Warn("parameter fallback", "key", w.Key, "value", w.Value, "message", w.Message)
	}
	network, err := loaded.Network()
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	var st *store.Store
	clock := sweep.NewClock()
	if opts.DB != "" {
		st, err = store.Open(opts.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
		}
		defer st.Close()
		seq, err := st.MaxSeq(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
		}
		clock = sweep.NewClockAt(seq)
	}

	outDir := opts.Dir
	if outDir == "" {
		outDir = dir
	}

	variants, err := sweep.Run(ctx, sweep.Input{Network: network, Settings: loaded.Settings}, sweep.Options{
		Dir:       outDir,
		Base:      opts.Base,
		Reactions: opts.Reactions,
		Workers:   opts.Workers,
		Clock:     clock,
		Logger:    logger,
	})
	if err != nil {
		if catalog.IsUnknownReaction(err) {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("--reactions: %v", err))
		}
		return outputCompileFailure(formatter, err)
	}

	result := SweepResult{BatchID: variants[0].BatchID}
	for _, v := range variants {
		result.Variants = append(result.Variants, VariantSummary{
			Seq:      v.Seq,
			Reaction: v.Reaction,
			Hash:     v.Hash,
			Path:     v.Path,
		})
	}

	if st != nil {
		if err := storeBatch(ctx, st, variants); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
		}
		result.Stored = true
		formatter.VerboseLog("Batch %s stored in %s", result.BatchID, opts.DB)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Sweep %s: %d variant(s)\n\n", result.BatchID, len(variants))
	rows := make([]table.Row, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, table.Row{v.Seq, v.Name(), shortHash(v.Hash), v.Path})
	}
	formatter.Table(table.Row{"Seq", "Zeroed", "Hash", "Worksheet"}, rows)
	return nil
}

// storeBatch writes the variants' models and links them to the batch.
func storeBatch(ctx context.Context, st *store.Store, variants []sweep.Variant) error {
	models := make([]store.ModelRecord, 0, len(variants))
	links := make([]store.VariantRecord, 0, len(variants))
	for _, v := range variants {
		rec, err := store.NewModelRecord(v.Model, v.Maple, v.Seq)
		if err != nil {
			return err
		}
		models = append(models, rec)
		links = append(links, store.VariantRecord{
			BatchID:    v.BatchID,
			ReactionID: v.Reaction,
			Seq:        v.Seq,
			ModelHash:  rec.Hash,
		})
	}
	return st.WriteBatch(ctx, models, links)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
