package move

import "fmt"

// NoCell is the sentinel for an absent second stone. The opening move of a
// game places a single stone; every other move places two.
const NoCell = -1

// Move is an ordered pair of cell indices. First is always a real cell;
// Second may be NoCell for the single-stone opening move.
type Move struct {
	First  int
	Second int
}

// New returns a two-stone move.
func New(first, second int) Move {
	return Move{First: first, Second: second}
}

// Single returns a one-stone opening move.
func Single(cell int) Move {
	return Move{First: cell, Second: NoCell}
}

// IsSingle reports whether the move places only one stone.
func (m Move) IsSingle() bool {
	return m.Second == NoCell
}

// Cells returns the cells this move places, in order.
func (m Move) Cells() []int {
	if m.IsSingle() {
		return []int{m.First}
	}
	return []int{m.First, m.Second}
}

// Contains reports whether the move places a stone on cell.
func (m Move) Contains(cell int) bool {
	return m.First == cell || (m.Second != NoCell && m.Second == cell)
}

// Equals compares two moves ignoring stone order.
func (m Move) Equals(o Move) bool {
	if m.First == o.First && m.Second == o.Second {
		return true
	}
	return m.First == o.Second && m.Second == o.First
}

func (m Move) String() string {
	if m.IsSingle() {
		return fmt.Sprintf("(%d)", m.First)
	}
	return fmt.Sprintf("(%d,%d)", m.First, m.Second)
}
