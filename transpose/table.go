// Package transpose implements the shared transposition table keyed by
// zobrist position hashes.
package transpose

import (
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/sixstone-ai/sixstone/move"
)

// Bound classifies a stored score relative to the search window.
type Bound uint8

const (
	// BoundNone marks an empty slot.
	BoundNone Bound = iota
	// BoundExact scores searched the full window.
	BoundExact
	// BoundLower scores came from a fail-high (beta cutoff).
	BoundLower
	// BoundUpper scores came from a fail-low.
	BoundUpper
)

const entryBytes = 24

// Entry is one stored position. The full 64-bit key is kept so small
// tables used in tests stay collision-safe.
type Entry struct {
	fullKey uint64
	score   int32
	first   int16
	second  int16
	depth   uint8
	bound   Bound
}

// Valid reports whether the slot holds data.
func (e Entry) Valid() bool { return e.bound != BoundNone }

// Score returns the stored score.
func (e Entry) Score() int { return int(e.score) }

// Depth returns the search depth the score was computed at.
func (e Entry) Depth() int { return int(e.depth) }

// Bound returns the score classification.
func (e Entry) Bound() Bound { return e.bound }

// Move returns the stored best move, if any.
func (e Entry) Move() (move.Move, bool) {
	if e.first < 0 {
		return move.Move{}, false
	}
	return move.Move{First: int(e.first), Second: int(e.second)}, true
}

// Table is a fixed-size power-of-two hash table with depth-preferred
// replacement. Not safe for concurrent writers; the engine searches on a
// single goroutine.
type Table struct {
	entries []Entry
	mask    uint64

	created    atomic.Uint64
	lookups    atomic.Uint64
	hits       atomic.Uint64
	stores     atomic.Uint64
	t2Collides atomic.Uint64
}

// Reset sizes the table to a fraction of total system memory and clears it.
func (t *Table) Reset(fraction float64) {
	desired := int(float64(memory.TotalMemory()) * fraction / entryBytes)
	t.ResetTo(desired)
}

// ResetTo sizes the table to at most desired entries, rounded down to a
// power of two, and clears it. Tests use small explicit sizes.
func (t *Table) ResetTo(desired int) {
	numElems := 1
	for numElems<<1 <= desired {
		numElems <<= 1
	}
	t.entries = make([]Entry, numElems)
	t.mask = uint64(numElems - 1)
	t.created.Store(uint64(numElems))
	t.lookups.Store(0)
	t.hits.Store(0)
	t.stores.Store(0)
	t.t2Collides.Store(0)
	log.Info().Int("num-elems", numElems).
		Int("estimated-total-memory-bytes", numElems*entryBytes).
		Msg("transposition-table-reset")
}

// Lookup probes the table; ok is false on an empty slot or a key collision.
func (t *Table) Lookup(key uint64) (Entry, bool) {
	t.lookups.Add(1)
	e := t.entries[key&t.mask]
	if !e.Valid() || e.fullKey != key {
		return Entry{}, false
	}
	t.hits.Add(1)
	return e, true
}

// Store writes an entry unless the slot already holds a deeper result for a
// different position. Same-key entries are always refreshed.
func (t *Table) Store(key uint64, depth int, bound Bound, score int, m move.Move, hasMove bool) {
	idx := key & t.mask
	old := t.entries[idx]
	if old.Valid() && old.fullKey != key {
		t.t2Collides.Add(1)
		if int(old.depth) > depth {
			return
		}
	}
	e := Entry{
		fullKey: key,
		score:   int32(score),
		depth:   uint8(depth),
		bound:   bound,
		first:   -1,
		second:  -1,
	}
	if hasMove {
		e.first = int16(m.First)
		e.second = int16(m.Second)
	}
	t.entries[idx] = e
	t.stores.Add(1)
}

// Stats returns lookup, hit and store counters since the last reset.
func (t *Table) Stats() (lookups, hits, stores, collisions uint64) {
	return t.lookups.Load(), t.hits.Load(), t.stores.Load(), t.t2Collides.Load()
}

// LogStats emits the counters at debug level.
func (t *Table) LogStats() {
	lookups, hits, stores, collisions := t.Stats()
	log.Debug().Uint64("lookups", lookups).Uint64("hits", hits).
		Uint64("stores", stores).Uint64("collisions", collisions).
		Msg("transposition-table-stats")
}
