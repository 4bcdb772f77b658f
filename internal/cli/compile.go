package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/maple"
	"github.com/roach88/amk/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Config  string   // parameters file, overrides lookup in the network directory
	Output  string   // worksheet path; empty writes the worksheet to stdout
	DB      string   // registry path; empty skips storing
	Workers int      // parallel reaction compile
	Zero    []string // reactions compiled with zero rate constants
}

// CompilationResult is the JSON payload of a successful compile.
type CompilationResult struct {
	Hash      string            `json:"hash"`
	Site      string            `json:"site"`
	Surface   []string          `json:"surface"`
	Reactions []ReactionSummary `json:"reactions"`
	Output    string            `json:"output,omitempty"`
	Stored    bool              `json:"stored,omitempty"`
	Maple     string            `json:"maple,omitempty"` // only when Output is empty
}

// ReactionSummary is one compiled reaction as reported by the CLI.
type ReactionSummary struct {
	ID              string  `json:"id"`
	ReactionEnergy  float64 `json:"reaction_energy"`
	ForwardBarrier  float64 `json:"forward_barrier"`
	ReverseBarrier  float64 `json:"reverse_barrier"`
	ForwardForm     string  `json:"forward_form"`
	ReverseForm     string  `json:"reverse_form"`
	ForwardConstant float64 `json:"forward_constant"`
	ReverseConstant float64 `json:"reverse_constant"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <network-dir>",
		Short: "Compile a reaction network to a Maple worksheet",
		Long: `Compile a microkinetic reaction network to Maple input.

The network directory holds parameters.txt and either itm.csv/rxn.csv or
CUE files. The worksheet defines the rate constants, rate laws and ODEs
of every surface species and integrates them with Maple's rosenbrock solver.

Without --output the worksheet is written to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "parameters file (default: <network-dir>/parameters.txt)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "worksheet file path")
	cmd.Flags().StringVar(&opts.DB, "db", "", "store the compiled model in this registry")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "compile reactions concurrently")
	cmd.Flags().StringSliceVar(&opts.Zero, "zero", nil, "reaction IDs compiled with zero rate constants")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, dir string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("Loaded %d species and %d reactions from %s (%s)",
		len(loaded.Species), len(loaded.Reactions), dir, loaded.Source)

	network, err := loaded.Network()
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	zeroed := make(map[string]bool, len(opts.Zero))
	for _, id := range opts.Zero {
		if _, err := network.Reactions.Lookup(id); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("--zero: %v", err))
		}
		zeroed[id] = true
	}

	model, err := compiler.Build(network, loaded.Settings, compiler.Options{
		Workers: opts.Workers,
		Zeroed:  zeroed,
		Logger:  logger,
	})
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	worksheet, err := maple.Render(model, loaded.Settings)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	hash, err := ir.ModelHash(model)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	result := CompilationResult{
		Hash:      hash,
		Site:      model.SiteSpecies,
		Surface:   model.Surface,
		Reactions: summarize(model),
		Output:    opts.Output,
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, worksheet, 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing worksheet: %v", err))
		}
	}

	if opts.DB != "" {
		stored, err := storeModel(ctx, opts.DB, model, worksheet)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
		}
		result.Stored = stored
		formatter.VerboseLog("Model %s stored in %s (new: %v)", hash, opts.DB, stored)
	}

	if opts.Format == "json" {
		if opts.Output == "" {
			result.Maple = string(worksheet)
		}
		return formatter.Success(result)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(worksheet)
		return err
	}
	return outputCompileText(formatter, result, model.Temperature)
}

// storeModel writes the model with the next registry seq.
func storeModel(ctx context.Context, path string, model *ir.Model, worksheet []byte) (bool, error) {
	st, err := store.Open(path)
	if err != nil {
		return false, err
	}
	defer st.Close()

	seq, err := st.MaxSeq(ctx)
	if err != nil {
		return false, err
	}
	rec, err := store.NewModelRecord(model, worksheet, seq+1)
	if err != nil {
		return false, err
	}
	return st.WriteModel(ctx, rec)
}

// summarize extracts the per-reaction report from a model.
func summarize(m *ir.Model) []ReactionSummary {
	out := make([]ReactionSummary, 0, len(m.Reactions))
	for _, r := range m.Reactions {
		out = append(out, ReactionSummary{
			ID:              r.ID,
			ReactionEnergy:  r.ReactionEnergy,
			ForwardBarrier:  r.Forward.Constant.Barrier,
			ReverseBarrier:  r.Reverse.Constant.Barrier,
			ForwardForm:     string(r.Forward.Constant.Form),
			ReverseForm:     string(r.Reverse.Constant.Form),
			ForwardConstant: r.Forward.Constant.Evaluate(m.Temperature),
			ReverseConstant: r.Reverse.Constant.Evaluate(m.Temperature),
		})
	}
	return out
}

// outputCompileText prints the summary and reaction table.
func outputCompileText(formatter *OutputFormatter, result CompilationResult, temperature float64) error {
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d reaction(s), %d surface species at T=%g K\n",
		len(result.Reactions), len(result.Surface), temperature)
	fmt.Fprintf(formatter.Writer, "  site: %s  surface: %s\n", result.Site, strings.Join(result.Surface, " "))
	fmt.Fprintf(formatter.Writer, "  hash: %s\n\n", result.Hash)

	rows := make([]table.Row, 0, len(result.Reactions))
	for _, r := range result.Reactions {
		rows = append(rows, table.Row{
			r.ID,
			fmt.Sprintf("%.3f", r.ReactionEnergy),
			fmt.Sprintf("%.3f", r.ForwardBarrier),
			fmt.Sprintf("%.3f", r.ReverseBarrier),
			r.ForwardForm,
			fmt.Sprintf("%.3e", r.ForwardConstant),
			fmt.Sprintf("%.3e", r.ReverseConstant),
		})
	}
	formatter.Table(table.Row{"Reaction", "ΔG (eV)", "Barrier fwd", "Barrier rev", "Form fwd", "k fwd (1/s)", "k rev (1/s)"}, rows)

	if result.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote Maple worksheet to %s\n", result.Output)
	}
	return nil
}

// outputLoadError reports a failure to read the network directory.
// These are command errors (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		message := loadErr.Message
		if loadErr.File != "" {
			message = fmt.Sprintf("%s: %s", loadErr.File, loadErr.Message)
		} else if loadErr.Pos.IsValid() {
			message = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), loadErr.Message)
		}
		return formatter.Fail(ExitCommandError, loadErr.Code, message)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
}

// outputCompileFailure reports a fatal compile error of the network.
// The network is at fault, not the command (exit code 1).
func outputCompileFailure(formatter *OutputFormatter, err error) error {
	code := MapCompileErrorToCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, "compilation failed", err)
}
