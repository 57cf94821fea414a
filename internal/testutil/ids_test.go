package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDs_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDs("abc12345")

	assert.Equal(t, "abc12345", gen.Generate())
	assert.Equal(t, "abc12345", gen.Generate())
}

func TestFixedIDs_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, "test-id-default", NewFixedIDs("").Generate())
}

func TestFixedIDs_ThreadSafe(t *testing.T) {
	gen := NewFixedIDs("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestSequenceIDs_InOrder(t *testing.T) {
	gen := NewSequenceIDs("a1", "b2")

	assert.Equal(t, "a1", gen.Generate())
	assert.Equal(t, "b2", gen.Generate())
	assert.PanicsWithValue(t, "SequenceIDs: all ids exhausted", func() { gen.Generate() })
}
