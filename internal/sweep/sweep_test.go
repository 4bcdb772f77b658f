package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/testutil"
)

func mixedInput() Input {
	cat, table := testutil.MustCatalogs(testutil.Mixed())
	s := config.NewSettings(testutil.SiteSpecies, 450)
	s.SiteArea = 6
	s.MapleOutput = "results.txt"
	s.Pressures["ga"] = 0.5
	return Input{Network: &compiler.Network{Species: cat, Reactions: table}, Settings: s}
}

func TestRunProducesBaselinePlusOnePerReaction(t *testing.T) {
	dir := t.TempDir()
	variants, err := Run(context.Background(), mixedInput(), Options{
		Dir: dir,
		IDs: testutil.NewFixedIDGenerator("batch-1"),
	})
	require.NoError(t, err)
	require.Len(t, variants, 4)

	assert.Equal(t, Baseline, variants[0].Reaction)
	assert.Equal(t, []string{"r1", "r2", "r3"},
		[]string{variants[1].Reaction, variants[2].Reaction, variants[3].Reaction})

	for i, v := range variants {
		assert.Equal(t, "batch-1", v.BatchID)
		assert.Equal(t, int64(i+1), v.Seq)
		require.NotNil(t, v.Model)

		for _, r := range v.Model.Reactions {
			form := r.Forward.Constant.Form
			if r.ID == v.Reaction {
				assert.Equal(t, ir.FormZero, form, "%s in %s", r.ID, v.Name())
				assert.Contains(t, string(v.Maple), "k"+r.ID+"d:=0 : ")
				assert.Contains(t, string(v.Maple), "k"+r.ID+"i:=0 : ")
			} else {
				assert.NotEqual(t, ir.FormZero, form, "%s in %s", r.ID, v.Name())
			}
		}

		data, err := os.ReadFile(v.Path)
		require.NoError(t, err)
		assert.Equal(t, v.Maple, data)
	}

	assert.Equal(t, filepath.Join(dir, "amk.mpl"), variants[0].Path)
	assert.Equal(t, filepath.Join(dir, "amk-r2.mpl"), variants[2].Path)
	assert.Contains(t, string(variants[0].Maple), `[Open]("results.txt",`)
	assert.Contains(t, string(variants[2].Maple), `[Open]("results-r2.txt",`)

	hashes := map[string]bool{}
	for _, v := range variants {
		hashes[v.Hash] = true
	}
	assert.Len(t, hashes, 4, "every variant is a distinct model")
}

func TestRunParallelMatchesSequential(t *testing.T) {
	in := mixedInput()

	seq, err := Run(context.Background(), in, Options{IDs: testutil.NewFixedIDGenerator("b")})
	require.NoError(t, err)
	par, err := Run(context.Background(), in, Options{IDs: testutil.NewFixedIDGenerator("b"), Workers: 4})
	require.NoError(t, err)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Reaction, par[i].Reaction)
		assert.Equal(t, seq[i].Hash, par[i].Hash)
		assert.Equal(t, seq[i].Maple, par[i].Maple)
		assert.Empty(t, par[i].Path)
	}
}

func TestRunSelectedReactions(t *testing.T) {
	variants, err := Run(context.Background(), mixedInput(), Options{
		Reactions: []string{"r3", "r1", "r3"},
		IDs:       testutil.NewFixedIDGenerator("b"),
		Clock:     NewClockAt(10),
	})
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "r1", variants[1].Reaction)
	assert.Equal(t, "r3", variants[2].Reaction)
	assert.Equal(t, int64(11), variants[0].Seq)
	assert.Equal(t, int64(13), variants[2].Seq)
}

func TestRunUnknownReaction(t *testing.T) {
	_, err := Run(context.Background(), mixedInput(), Options{Reactions: []string{"r9"}})
	assert.True(t, catalog.IsUnknownReaction(err))
}

func TestRunPropagatesCompileErrors(t *testing.T) {
	in := mixedInput()
	in.Settings.SiteSpecies = "iS"

	_, err := Run(context.Background(), in, Options{IDs: testutil.NewFixedIDGenerator("b")})
	var missing *compiler.MissingSiteSpeciesError
	assert.ErrorAs(t, err, &missing)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, mixedInput(), Options{IDs: testutil.NewFixedIDGenerator("b")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestSuffixed(t *testing.T) {
	assert.Equal(t, "out-r1.txt", suffixed("out.txt", "r1"))
	assert.Equal(t, "out-r1", suffixed("out", "r1"))
}
