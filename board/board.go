// Package board implements the 19x19 grid with the incremental line index,
// the dynamic candidate frontier, and the snapshot stack used by search
// backtracking.
package board

import (
	"strings"

	"github.com/sixstone-ai/sixstone/move"
	"github.com/sixstone-ai/sixstone/zobrist"
)

// Color is a cell owner.
type Color uint8

const (
	Empty Color = iota
	Black
	White
)

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// side maps a stone color to a 0-based index for score and zobrist tables.
func (c Color) side() int { return int(c) - 1 }

const (
	// Size is the board dimension.
	Size = 19
	// NumCells is the total cell count.
	NumCells = Size * Size
	// WinCount is the run length that wins the game.
	WinCount = 6
	// LineLength is the length of every indexed line window.
	LineLength = 6

	numDirs = 4

	midGameThreshold  = 20
	lateGameThreshold = 40
)

// The four axes: horizontal, vertical, main diagonal, anti-diagonal.
var (
	dirDX = [numDirs]int{0, 1, 1, 1}
	dirDY = [numDirs]int{1, 0, 1, -1}
)

// ToIndex converts a coordinate to a cell index.
func ToIndex(row, col int) int { return row*Size + col }

// ToRow returns the row of a cell index.
func ToRow(cell int) int { return cell / Size }

// ToCol returns the column of a cell index.
func ToCol(cell int) int { return cell % Size }

// ValidPos reports whether a coordinate is on the board.
func ValidPos(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// ValidCell reports whether a cell index is on the board.
func ValidCell(cell int) bool { return cell >= 0 && cell < NumCells }

type snapshot struct {
	frontier   []int
	minRow     int
	maxRow     int
	minCol     int
	maxCol     int
	pieceCount int
}

// Board is the grid plus every structure maintained incrementally around it:
// the line index with per-owner score aggregates, the candidate frontier,
// and the zobrist key. It is created once per game and mutated in place by
// strictly nested apply/retract pairs.
type Board struct {
	grid [NumCells]Color

	zob *zobrist.Table
	key uint64

	lines      []line
	linesAt    [NumCells * numDirs][]int32
	linesBuilt bool
	scores     [2]int

	inFrontier [NumCells]bool
	frontier   []int
	minRow     int
	maxRow     int
	minCol     int
	maxCol     int
	pieceCount int

	snapshots []snapshot

	overlineWins bool
}

// New creates an empty board sharing the given zobrist table. The candidate
// frontier is seeded around the center. Overlines count as wins by default.
func New(zob *zobrist.Table) *Board {
	b := &Board{
		zob:          zob,
		overlineWins: true,
		minRow:       Size / 2,
		maxRow:       Size / 2,
		minCol:       Size / 2,
		maxCol:       Size / 2,
	}
	b.seedFrontier()
	return b
}

// SetOverlineWins toggles whether runs longer than six count as wins.
func (b *Board) SetOverlineWins(v bool) { b.overlineWins = v }

// OverlineWins reports the overline rule in effect.
func (b *Board) OverlineWins() bool { return b.overlineWins }

func (b *Board) seedFrontier() {
	center := Size / 2
	for r := center - 2; r <= center+2; r++ {
		for c := center - 2; c <= center+2; c++ {
			cell := ToIndex(r, c)
			b.inFrontier[cell] = true
			b.frontier = append(b.frontier, cell)
		}
	}
}

// Get returns the owner of a cell.
func (b *Board) Get(cell int) Color { return b.grid[cell] }

// IsEmpty reports whether the cell is unoccupied.
func (b *Board) IsEmpty(cell int) bool {
	return ValidCell(cell) && b.grid[cell] == Empty
}

// PieceCount returns the number of stones on the board.
func (b *Board) PieceCount() int { return b.pieceCount }

// Key returns the incrementally maintained zobrist key.
func (b *Board) Key() uint64 { return b.key }

// RecomputeKey rebuilds the zobrist key from scratch. Only used to seed a
// fresh search; the key is otherwise maintained by ApplyStone/RetractStone.
func (b *Board) RecomputeKey() uint64 {
	key := uint64(0)
	for cell, c := range b.grid {
		if c != Empty {
			key = b.zob.Toggle(key, cell, c.side())
		}
	}
	b.key = key
	return key
}

// searchRadius is the frontier growth radius: small early, wider as the
// board fills up.
func (b *Board) searchRadius() int {
	switch {
	case b.pieceCount >= lateGameThreshold:
		return 4
	case b.pieceCount >= midGameThreshold:
		return 3
	}
	return 2
}

// SearchBounds returns the stone bounding box expanded by the current search
// radius, clamped to the board: minRow, maxRow, minCol, maxCol.
func (b *Board) SearchBounds() (int, int, int, int) {
	r := b.searchRadius()
	return max(0, b.minRow-r), min(Size-1, b.maxRow+r),
		max(0, b.minCol-r), min(Size-1, b.maxCol+r)
}

// ApplyStone places a stone and updates every incremental structure: the
// grid, the zobrist key, the ≤24 lines through the cell, the score
// aggregates, and the candidate frontier. Must be paired with RetractStone
// in strict LIFO order during search.
func (b *Board) ApplyStone(cell int, c Color) {
	b.grid[cell] = c
	b.key = b.zob.Toggle(b.key, cell, c.side())
	b.pieceCount++
	if b.linesBuilt {
		b.updateLines(cell, c.side(), 1)
	}
	b.growFrontier(cell)
}

// RetractStone is the exact inverse of ApplyStone for the grid, key, piece
// count and line index. Frontier and bounds are restored by PopState.
func (b *Board) RetractStone(cell int, c Color) {
	b.grid[cell] = Empty
	b.key = b.zob.Toggle(b.key, cell, c.side())
	b.pieceCount--
	if b.linesBuilt {
		b.updateLines(cell, c.side(), -1)
	}
}

// ApplyMove pushes one frontier snapshot and places the move's stones.
func (b *Board) ApplyMove(m move.Move, c Color) {
	b.PushState()
	for _, cell := range m.Cells() {
		b.ApplyStone(cell, c)
	}
}

// RetractMove undoes ApplyMove: stones in reverse order, then the snapshot.
func (b *Board) RetractMove(m move.Move, c Color) {
	cells := m.Cells()
	for i := len(cells) - 1; i >= 0; i-- {
		b.RetractStone(cells[i], c)
	}
	b.PopState()
}

// growFrontier removes the newly occupied cell from the frontier, widens the
// bounding box, and adds empty neighbors within the current radius.
func (b *Board) growFrontier(cell int) {
	row, col := ToRow(cell), ToCol(cell)
	if b.inFrontier[cell] {
		b.inFrontier[cell] = false
		for i, f := range b.frontier {
			if f == cell {
				b.frontier = append(b.frontier[:i], b.frontier[i+1:]...)
				break
			}
		}
	}
	b.minRow = min(b.minRow, row)
	b.maxRow = max(b.maxRow, row)
	b.minCol = min(b.minCol, col)
	b.maxCol = max(b.maxCol, col)

	radius := b.searchRadius()
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			nr, nc := row+dr, col+dc
			if !ValidPos(nr, nc) {
				continue
			}
			n := ToIndex(nr, nc)
			if !b.inFrontier[n] && b.grid[n] == Empty {
				b.inFrontier[n] = true
				b.frontier = append(b.frontier, n)
			}
		}
	}
}

// Frontier returns a copy of the candidate cell list.
func (b *Board) Frontier() []int {
	out := make([]int, len(b.frontier))
	copy(out, b.frontier)
	return out
}

// InFrontier reports whether a cell is currently a candidate.
func (b *Board) InFrontier(cell int) bool {
	return ValidCell(cell) && b.inFrontier[cell]
}

// EnsureCandidate force-adds an empty cell to the frontier. Used when a
// defense or win point falls outside the radius heuristic.
func (b *Board) EnsureCandidate(cell int) bool {
	if !b.IsEmpty(cell) || b.inFrontier[cell] {
		return false
	}
	b.inFrontier[cell] = true
	b.frontier = append(b.frontier, cell)
	return true
}

// EnsureCandidates force-adds several cells, returning how many were new.
func (b *Board) EnsureCandidates(cells []int) int {
	added := 0
	for _, cell := range cells {
		if b.EnsureCandidate(cell) {
			added++
		}
	}
	return added
}

// ExpandFrontierInBounds adds every empty cell inside the stone bounding box
// expanded by extra. Used as a mid/late-game top-up; the frontier is never
// silently narrowed.
func (b *Board) ExpandFrontierInBounds(extra int) int {
	added := 0
	r1, r2 := max(0, b.minRow-extra), min(Size-1, b.maxRow+extra)
	c1, c2 := max(0, b.minCol-extra), min(Size-1, b.maxCol+extra)
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			cell := ToIndex(r, c)
			if !b.inFrontier[cell] && b.grid[cell] == Empty {
				b.inFrontier[cell] = true
				b.frontier = append(b.frontier, cell)
				added++
			}
		}
	}
	return added
}

// PushState snapshots the frontier list, bounding box and piece count. Grid
// and line state are not captured; they are restored by exact-inverse
// retracts, so the snapshot cost tracks the frontier size.
func (b *Board) PushState() {
	front := make([]int, len(b.frontier))
	copy(front, b.frontier)
	b.snapshots = append(b.snapshots, snapshot{
		frontier:   front,
		minRow:     b.minRow,
		maxRow:     b.maxRow,
		minCol:     b.minCol,
		maxCol:     b.maxCol,
		pieceCount: b.pieceCount,
	})
}

// PopState restores the most recent snapshot. Must nest strictly LIFO with
// PushState; out-of-order restores corrupt the frontier irrecoverably.
func (b *Board) PopState() {
	last := len(b.snapshots) - 1
	st := b.snapshots[last]
	b.snapshots = b.snapshots[:last]

	for _, cell := range b.frontier {
		b.inFrontier[cell] = false
	}
	b.frontier = b.frontier[:0]
	for _, cell := range st.frontier {
		b.inFrontier[cell] = true
	}
	b.frontier = append(b.frontier, st.frontier...)
	b.minRow, b.maxRow = st.minRow, st.maxRow
	b.minCol, b.maxCol = st.minCol, st.maxCol
	b.pieceCount = st.pieceCount
}

// CheckWinAt reports whether the stone at cell completes a winning run for
// c on any axis. Runs longer than six win unless the overline rule is off.
func (b *Board) CheckWinAt(cell int, c Color) bool {
	row, col := ToRow(cell), ToCol(cell)
	for dir := 0; dir < numDirs; dir++ {
		count := 1
		r, cc := row+dirDX[dir], col+dirDY[dir]
		for ValidPos(r, cc) && b.grid[ToIndex(r, cc)] == c {
			count++
			r += dirDX[dir]
			cc += dirDY[dir]
		}
		r, cc = row-dirDX[dir], col-dirDY[dir]
		for ValidPos(r, cc) && b.grid[ToIndex(r, cc)] == c {
			count++
			r -= dirDX[dir]
			cc -= dirDY[dir]
		}
		if b.isWinRun(count) {
			return true
		}
	}
	return false
}

func (b *Board) isWinRun(count int) bool {
	if count == WinCount {
		return true
	}
	return count > WinCount && b.overlineWins
}

// CheckWinIfPlace reports whether placing c on cell would win, without
// mutating the board.
func (b *Board) CheckWinIfPlace(cell int, c Color) bool {
	return b.checkWinWithTemps(cell, c, cell, move.NoCell)
}

// CheckWinIfPlaceTwo reports whether placing c on both cells at once would
// win, without mutating the board.
func (b *Board) CheckWinIfPlaceTwo(p1, p2 int, c Color) bool {
	return b.checkWinWithTemps(p1, c, p1, p2) || b.checkWinWithTemps(p2, c, p1, p2)
}

func (b *Board) checkWinWithTemps(cell int, c Color, tempA, tempB int) bool {
	row, col := ToRow(cell), ToCol(cell)
	occupied := func(r, cc int) bool {
		idx := ToIndex(r, cc)
		return idx == tempA || idx == tempB || b.grid[idx] == c
	}
	for dir := 0; dir < numDirs; dir++ {
		count := 1
		r, cc := row+dirDX[dir], col+dirDY[dir]
		for ValidPos(r, cc) && occupied(r, cc) {
			count++
			r += dirDX[dir]
			cc += dirDY[dir]
		}
		r, cc = row-dirDX[dir], col-dirDY[dir]
		for ValidPos(r, cc) && occupied(r, cc) {
			count++
			r -= dirDX[dir]
			cc -= dirDY[dir]
		}
		if b.isWinRun(count) {
			return true
		}
	}
	return false
}

// FirstEmptyCells returns the first n empty cells in index order. This is
// the last-resort legal fallback when every other move source comes up dry.
func (b *Board) FirstEmptyCells(n int) []int {
	out := make([]int, 0, n)
	for cell := 0; cell < NumCells; cell++ {
		if b.grid[cell] == Empty {
			out = append(out, cell)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// String renders the position for debugging.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b.grid[ToIndex(r, c)] {
			case Black:
				sb.WriteString(" X")
			case White:
				sb.WriteString(" O")
			default:
				sb.WriteString(" .")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
