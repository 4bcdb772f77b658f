package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testParameters = `[Catalyst]
sitebalancespecies = iO
areaactivesite = 6.0
[Reactor]
reactortemp = 500
`

const testSpecies = `label  phase  G     mw
iO     cat    0.0   nan
iR     cat    -1.0  nan
gA     gas    0.2   28.0
`

const testReactions = `label  is1  is2   fs1  fs2   G
r1     iO   none  iR   none  -0.5
r2     iO   gA    iR   none  -0.3
`

const testCUENetwork = `package network

species: {
	iO: {phase: "cat", G: 0.0}
	iR: {phase: "cat", G: -1.0}
	gA: {phase: "gas", G: 0.2, mw: 28.0}
}
reaction: {
	r1: {is1: "iO", is2: "none", fs1: "iR", fs2: "none", G: -0.5}
	r2: {is1: "iO", is2: "gA", fs1: "iR", fs2: "none", G: -0.3}
}
`

// writeNetwork creates a network directory holding the given files.
func writeNetwork(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// tableNetwork is the two-reaction adsorption network as tables.
func tableNetwork(t *testing.T) string {
	return writeNetwork(t, map[string]string{
		"parameters.txt": testParameters,
		SpeciesFile:      testSpecies,
		ReactionsFile:    testReactions,
	})
}

// execute runs the root command and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
