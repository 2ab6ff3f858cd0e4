// Package zobrist provides incremental position fingerprints.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import "lukechampine.com/frand"

const bignum = 1<<63 - 2

// NumSides is the number of stone owners hashed per cell.
const NumSides = 2

// Table holds one random 64-bit constant per (cell, side). It is built once
// and never mutated afterwards; share a single instance per board geometry.
type Table struct {
	keys  [][NumSides]uint64
	cells int
}

// New seeds a table for a board with the given number of cells.
func New(cells int) *Table {
	t := &Table{
		keys:  make([][NumSides]uint64, cells),
		cells: cells,
	}
	for i := 0; i < cells; i++ {
		for s := 0; s < NumSides; s++ {
			t.keys[i][s] = frand.Uint64n(bignum) + 1
		}
	}
	return t
}

// Cells returns the geometry the table was seeded for.
func (t *Table) Cells() int { return t.cells }

// Toggle XORs the constant for (cell, side) in or out of key. Placing and
// retracting a stone are the same operation.
func (t *Table) Toggle(key uint64, cell, side int) uint64 {
	return key ^ t.keys[cell][side]
}
