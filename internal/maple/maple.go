// Package maple renders a compiled model as a Maple worksheet.
//
// The worksheet defines the kinetic constants, rate laws and ODEs, integrates
// them with Maple's rosenbrock solver and appends one result row per output
// time to a text file. Rendering is a pure function of the model and the
// settings, so the same inputs always give the same bytes.
package maple

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

// Write renders m to w.
func Write(w io.Writer, m *ir.Model, s *config.Settings) error {
	b, err := Render(m, s)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Render returns the worksheet text.
func Render(m *ir.Model, s *config.Settings) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("maple: nil model")
	}
	if len(s.Time.Values) == 0 {
		return nil, fmt.Errorf("maple: no output time")
	}

	var b bytes.Buffer

	b.WriteString("# Heading\n")
	b.WriteString("restart : \n\n")

	// Output file and column header.
	fmt.Fprintf(&b, "filename1:=FileTools[Text][Open](%q,create,overwrite) : \n", OutputName(s.MapleOutput))
	header := []string{`"catalyst"`, `"timei"`, `"T"`}
	for _, d := range m.Drivers {
		header = append(header, strconv.Quote(d.Symbol))
	}
	header = append(header, strconv.Quote(m.SiteSpecies))
	for _, label := range m.Surface {
		header = append(header, strconv.Quote(label))
	}
	for _, r := range m.Reactions {
		header = append(header, strconv.Quote(r.ID))
	}
	fmt.Fprintf(&b, "fprintf(filename1,\"%%q %%q\\n\", %s ): \n", strings.Join(header, ", "))
	b.WriteString("FileTools[Flush](filename1) : \n\n")

	// Temperature, pressures and per-site concentrations.
	fmt.Fprintf(&b, "T:= %s : \n", number(m.Temperature))
	for _, d := range m.Drivers {
		fmt.Fprintf(&b, "%s:= %s : \n", d.Symbol, number(d.Value))
	}

	b.WriteString("\n# Kinetic constants\n")
	for _, r := range m.Reactions {
		b.WriteString(r.Forward.Constant.Expr + "\n")
		b.WriteString(r.Reverse.Constant.Expr + "\n")
	}

	b.WriteString("\n# Reaction rates:\n")
	for _, r := range m.Reactions {
		b.WriteString(r.RateExpr + "\n")
	}

	b.WriteString("\n# Site-balance equation: \n")
	b.WriteString(m.SiteBalance.Expr + "\n")

	b.WriteString("\n# Differential equations: \n")
	for _, eq := range m.Equations {
		b.WriteString(eq.Expr + " : \n")
	}

	b.WriteString("\n# Initial conditions: \n")
	b.WriteString(m.InitialConditions + "\n")

	b.WriteString("\n# SODE Solver: \n")
	b.WriteString(m.SolverCall + "\n\n")

	// Time control.
	if s.Time.Loop {
		fmt.Fprintf(&b, "for timei in [%s] do \n", strings.Join(s.Time.Values, ", "))
	} else {
		fmt.Fprintf(&b, "timei:= %s : \n", s.Time.Values[0])
	}
	b.WriteString("S:=Solution(timei) : \n")

	b.WriteString("\n# Solution parser: \n")
	for _, p := range m.SolutionParser {
		b.WriteString(p.Expr + "\n")
	}

	b.WriteString("\n# Site-balance equation after solver: \n")
	b.WriteString(m.SiteBalance.SolvedExpr + "\n")

	b.WriteString("\n# Reaction rates after solver: \n")
	for _, r := range m.Reactions {
		b.WriteString(r.SolvedRateExpr + "\n")
	}

	// Result row.
	row := []string{strconv.Quote(s.CatalystName), "timei", "T"}
	for _, d := range m.Drivers {
		row = append(row, d.Symbol)
	}
	row = append(row, "sc"+m.SiteSpecies)
	for _, label := range m.Surface {
		row = append(row, "sc"+label)
	}
	for _, r := range m.Reactions {
		row = append(row, "s"+r.ID)
	}
	fmt.Fprintf(&b, "\nfprintf(filename1,\"%%q %%q\\n\", %s ): \n", strings.Join(row, ", "))
	b.WriteString("FileTools[Flush](filename1) : \n")

	if s.Time.Loop {
		b.WriteString("od: \n")
	}
	b.WriteString("\nclose(filename1) : \n")

	return b.Bytes(), nil
}

// OutputName strips quotes and spaces from the result file name.
func OutputName(name string) string {
	return strings.NewReplacer(`"`, "", "'", "", " ", "").Replace(name)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
