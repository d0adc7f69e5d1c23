package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator("run")
	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())

	assert.Equal(t, "trace-0001", NewSequentialIDGenerator("").Generate())
}

func TestSequentialIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequentialIDGenerator("")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000, "IDs must be unique")
}

func TestStepClock(t *testing.T) {
	clock := NewStepClock()
	assert.Equal(t, time.Duration(0), clock.Now())

	assert.Equal(t, time.Second, clock.Advance(time.Second))
	assert.Equal(t, 1500*time.Millisecond, clock.Advance(500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, clock.Advance(-time.Second), "never goes backwards")
	assert.Equal(t, 1500*time.Millisecond, clock.Now())

	clock.Reset()
	assert.Equal(t, time.Duration(0), clock.Now())
}

func TestExampleChartIsValid(t *testing.T) {
	c := ExampleChart()
	require.NoError(t, c.Validate())
	assert.Equal(t, "R", c.Root())
	assert.Len(t, ExampleTrace(), 2)
}
