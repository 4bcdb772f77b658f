package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is the fixture directory used by RunWithGolden and AssertGolden.
const GoldenDir = "testdata/golden"

// RunWithGolden executes a scenario and compares its worksheet against
// testdata/golden/{scenario.Golden}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if scenario.Golden == "" {
		return result, nil
	}
	if err := AssertGolden(t, scenario.Golden, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	if result.Maple == nil {
		return fmt.Errorf("golden %s: no worksheet (compile error: %v)", name, result.CompileErr)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, result.Maple)
	return nil
}

// CompareGolden compares a result's worksheet with {dir}/{name}.golden outside
// of a test. It returns nil when they match byte for byte.
func CompareGolden(dir, name string, result *Result) error {
	want, err := os.ReadFile(filepath.Join(dir, name+".golden"))
	if err != nil {
		return fmt.Errorf("golden %s: %w", name, err)
	}
	if !bytes.Equal(want, result.Maple) {
		return fmt.Errorf("golden %s: worksheet differs from %s", name, filepath.Join(dir, name+".golden"))
	}
	return nil
}
