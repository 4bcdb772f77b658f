// Package tables reads species and reaction tables.
//
// A table is a whitespace-delimited text file whose first non-comment line is
// a header naming the columns. Columns may appear in any order; unknown
// columns are ignored. '#' starts a comment that runs to the end of the line.
// A bracketed list such as [120.5, 300] is a single cell even when it
// contains spaces.
package tables

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// ParseError reports a malformed line.
type ParseError struct {
	Line    int
	Column  string
	Message string
}

func (e *ParseError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d: column %s: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// row is one data line, cells keyed by lower-cased column name.
type row struct {
	line  int
	cells map[string]string
}

func (r row) get(column string) (string, bool) {
	v, ok := r.cells[strings.ToLower(column)]
	return v, ok
}

// float parses a required numeric cell.
func (r row) float(column string) (float64, error) {
	v, ok := r.get(column)
	if !ok {
		return 0, &ParseError{Line: r.line, Column: column, Message: "missing value"}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &ParseError{Line: r.line, Column: column, Message: fmt.Sprintf("%q is not a number", v)}
	}
	return f, nil
}

// optionalFloat parses a cell that may be absent, empty or "nan".
func (r row) optionalFloat(column string) (float64, bool) {
	v, ok := r.get(column)
	if !ok || strings.EqualFold(v, "nan") {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// readTable splits r into rows and checks that every required column is
// present in the header.
func readTable(r io.Reader, required ...string) ([]row, error) {
	var (
		header []string
		rows   []row
		line   int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		cells, err := split(text)
		if err != nil {
			return nil, &ParseError{Line: line, Message: err.Error()}
		}
		if len(cells) == 0 {
			continue
		}

		if header == nil {
			for _, c := range cells {
				header = append(header, strings.ToLower(c))
			}
			if err := checkHeader(header, line, required); err != nil {
				return nil, err
			}
			continue
		}

		if len(cells) != len(header) {
			return nil, &ParseError{
				Line:    line,
				Message: fmt.Sprintf("%d cells, header has %d columns", len(cells), len(header)),
			}
		}
		rw := row{line: line, cells: make(map[string]string, len(cells))}
		for i, c := range cells {
			rw.cells[header[i]] = c
		}
		rows = append(rows, rw)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if header == nil {
		return nil, &ParseError{Line: line, Message: "no header row"}
	}
	return rows, nil
}

func checkHeader(header []string, line int, required []string) error {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return &ParseError{Line: line, Column: h, Message: "duplicate column"}
		}
		seen[h] = true
	}
	for _, want := range required {
		if !seen[strings.ToLower(want)] {
			return &ParseError{Line: line, Column: want, Message: "required column missing from header"}
		}
	}
	return nil
}

// split breaks a line on whitespace, keeping [...] groups together.
func split(text string) ([]string, error) {
	var (
		cells []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if cur.Len() > 0 {
			cells = append(cells, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced ']'")
			}
			depth--
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unterminated '['")
	}
	flush()
	return cells, nil
}

// parseList reads a bracketed comma- or space-separated list of numbers.
// A bare number is a one-element list.
func parseList(cell string) ([]float64, error) {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, "[")
	cell = strings.TrimSuffix(cell, "]")
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := cast.ToFloat64E(p)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		out = append(out, f)
	}
	return out, nil
}
