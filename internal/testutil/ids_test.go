package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/amk/internal/ir"
)

func TestFixedIDGenerator_InOrderThenRepeats(t *testing.T) {
	gen := NewFixedIDGenerator("batch-1", "batch-2")

	assert.Equal(t, "batch-1", gen.Generate())
	assert.Equal(t, "batch-2", gen.Generate())
	assert.Equal(t, "batch-2", gen.Generate())
}

func TestFixedIDGenerator_EmptyDefault(t *testing.T) {
	gen := NewFixedIDGenerator()
	assert.Equal(t, "test-batch-default", gen.Generate())
}

func TestFixedIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedIDGenerator("only")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "only", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestFixtures(t *testing.T) {
	species, reactions := AdsorptionStep()
	cat, table := MustCatalogs(species, reactions)

	assert.Equal(t, []string{"gA", "iO", "iR"}, cat.Labels())
	assert.Equal(t, []string{"r1", "r2"}, table.IDs())

	r2, err := table.Lookup("r2")
	assert.NoError(t, err)
	_, used := r2.Participant(ir.SlotFS2)
	assert.False(t, used)
}
