package rdf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorldNextBlank(t *testing.T) {
	world := NewWorld()
	assert.Equal(t, NewBlank("b1"), world.NextBlank())
	assert.Equal(t, NewBlank("b2"), world.NextBlank())

	world.ResetBlanks()
	assert.Equal(t, NewBlank("b1"), world.NextBlank())

	prefixed := NewWorld(WithBlankPrefix("doc"))
	assert.Equal(t, NewBlank("docb1"), prefixed.NextBlank())
	assert.Equal(t, "doc", prefixed.BlankPrefix())
}

func TestWorldNextBlankConcurrent(t *testing.T) {
	world := NewWorld()

	const workers, perWorker = 8, 100
	ids := make(chan Blank, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- world.NextBlank()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[Blank]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate blank id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
