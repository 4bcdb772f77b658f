package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
	Graph  []compiler.GraphWarning    `json:"graph,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <network-dir>",
		Short: "Check a reaction network without compiling it",
		Long: `Check a reaction network without generating a worksheet.

Reports every problem at once: missing site species, unknown phases,
unresolved participants, two gas participants on one side, gas species
without molecular weight, gas adsorption without an active-site area,
labels that are not Maple identifiers, duplicates, a surface with only
the site species and surface species no reaction touches. Valid networks are also analyzed as a graph: surface species
unreachable from the site and reaction cycles are listed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "parameters file (default: <network-dir>/parameters.txt)")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadNetwork(dir, opts.Config, cmd.Flags())
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Validating %d species and %d reactions from %s",
		len(loaded.Species), len(loaded.Reactions), dir)

	result := ValidationResult{
		Errors: compiler.ValidateSettings(loaded.Species, loaded.Reactions, loaded.Settings),
	}
	result.Valid = !compiler.HasErrors(result.Errors)

	// Graph analysis needs a well-formed network.
	if result.Valid {
		network, err := loaded.Network()
		if err != nil {
			return outputCompileFailure(formatter, err)
		}
		result.Graph = compiler.AnalyzeNetwork(network, loaded.Settings.SiteSpecies)
	}

	if opts.Format == "json" {
		return outputValidateJSON(formatter, result)
	}
	return outputValidateText(formatter, result)
}

func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return formatter.Success(result)
	}
	first := firstError(result.Errors)
	if err := formatter.Error(first.Code, first.Message, result); err != nil {
		return err
	}
	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", countErrors(result.Errors)))
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Writer

	if len(result.Errors) > 0 {
		rows := make([]table.Row, 0, len(result.Errors))
		for _, e := range result.Errors {
			rows = append(rows, table.Row{e.Code, e.Level, e.Field, e.Message})
		}
		formatter.Table(table.Row{"Code", "Level", "Field", "Message"}, rows)
		fmt.Fprintln(w)
	}

	if !result.Valid {
		fmt.Fprintf(w, "✗ Validation failed with %d error(s)\n", countErrors(result.Errors))
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", countErrors(result.Errors)))
	}

	for _, g := range result.Graph {
		fmt.Fprintf(w, "%s: %s\n", g.Level, g.Message)
	}
	if len(result.Graph) > 0 {
		fmt.Fprintln(w)
	}

	if n := len(result.Errors); n > 0 {
		fmt.Fprintf(w, "✓ Network valid (%d warning(s))\n", n)
		return nil
	}
	fmt.Fprintln(w, "✓ Network valid")
	return nil
}

func firstError(errs []compiler.ValidationError) compiler.ValidationError {
	for _, e := range errs {
		if !e.IsWarning() {
			return e
		}
	}
	return errs[0]
}

func countErrors(errs []compiler.ValidationError) int {
	n := 0
	for _, e := range errs {
		if !e.IsWarning() {
			n++
		}
	}
	return n
}
