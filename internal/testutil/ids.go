package testutil

import "sync"

// FixedIDs returns the same id on every call.
//
// This keeps run ids and SQL session ids stable so that command output and
// translated SQL can be compared byte for byte.
//
// Thread-safety: FixedIDs is stateless and safe for concurrent use.
type FixedIDs struct {
	id string
}

// NewFixedIDs creates a generator for id. An empty id becomes
// "test-id-default".
func NewFixedIDs(id string) *FixedIDs {
	if id == "" {
		id = "test-id-default"
	}
	return &FixedIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDs) Generate() string {
	return g.id
}

// SequenceIDs returns predetermined ids in order.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceIDs creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewSequenceIDs("a1", "b2")
//	gen.Generate() // "a1"
//	gen.Generate() // "b2"
//	gen.Generate() // panic: all ids exhausted
func NewSequenceIDs(ids ...string) *SequenceIDs {
	return &SequenceIDs{ids: ids}
}

// Generate returns the next id.
//
// Panics once every id has been handed out, so a test that generates more
// ids than it declared fails loudly.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
