// Package threat detects standing threats on the board and analyzes the
// threat potential of individual placements.
package threat

import (
	"sort"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/pattern"
)

// Axis vectors mirror the board's: horizontal, vertical, both diagonals.
var (
	dirDX = [4]int{0, 1, 1, 1}
	dirDY = [4]int{1, 0, 1, -1}
)

// Threat is one standing run and the cells that refute or slow it. Defense
// holds at most two cells; an open four needs both ends covered, anything
// else one or two key points.
type Threat struct {
	Cells   []int
	Shape   pattern.Pattern
	Defense []int
}

// Evaluator scans a board for standing threats. It holds no state beyond
// the board handle; every call rescans the current position.
type Evaluator struct {
	b *board.Board
}

// NewEvaluator wraps a board.
func NewEvaluator(b *board.Board) *Evaluator {
	return &Evaluator{b: b}
}

// DetectAll returns every run-based threat c currently holds, strongest
// first. Each contiguous run is reported once per axis.
func (e *Evaluator) DetectAll(c board.Color) []Threat {
	var checked [board.NumCells][4]bool
	var out []Threat

	r1, r2, c1, c2 := e.b.SearchBounds()
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			cell := board.ToIndex(row, col)
			if e.b.Get(cell) != c {
				continue
			}
			for dir := 0; dir < 4; dir++ {
				if checked[cell][dir] {
					continue
				}
				if th, ok := e.scanRun(row, col, dir, c, &checked); ok {
					out = append(out, th)
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Shape.Rank() > out[j].Shape.Rank()
	})
	return out
}

// scanRun walks the contiguous run through (row,col) on one axis, marks its
// cells visited, and classifies it together with any one-gap extension.
func (e *Evaluator) scanRun(row, col, dir int, c board.Color, checked *[board.NumCells][4]bool) (Threat, bool) {
	dx, dy := dirDX[dir], dirDY[dir]

	// Rewind to the run start.
	for board.ValidPos(row-dx, col-dy) && e.b.Get(board.ToIndex(row-dx, col-dy)) == c {
		row -= dx
		col -= dy
	}

	var cells []int
	r, cc := row, col
	for board.ValidPos(r, cc) && e.b.Get(board.ToIndex(r, cc)) == c {
		cell := board.ToIndex(r, cc)
		checked[cell][dir] = true
		cells = append(cells, cell)
		r += dx
		cc += dy
	}
	count := len(cells)

	beforeR, beforeC := row-dx, col-dy
	afterR, afterC := r, cc
	beforeOpen := board.ValidPos(beforeR, beforeC) && e.b.Get(board.ToIndex(beforeR, beforeC)) == board.Empty
	afterOpen := board.ValidPos(afterR, afterC) && e.b.Get(board.ToIndex(afterR, afterC)) == board.Empty
	blocked := 0
	if !beforeOpen {
		blocked++
	}
	if !afterOpen {
		blocked++
	}

	// One-gap extension on either side; take the longer one.
	gapCell := -1
	gapRun := 0
	if afterOpen {
		if n := e.runLength(afterR+dx, afterC+dy, dx, dy, c); n > gapRun {
			gapRun = n
			gapCell = board.ToIndex(afterR, afterC)
		}
	}
	if beforeOpen {
		if n := e.runLength(beforeR-dx, beforeC-dy, -dx, -dy, c); n > gapRun {
			gapRun = n
			gapCell = board.ToIndex(beforeR, beforeC)
		}
	}

	effective := count
	gapped := false
	if gapRun > 0 {
		effective += gapRun
		gapped = true
	}
	space := e.openSpan(beforeR, beforeC, -dx, -dy) + e.openSpan(afterR, afterC, dx, dy)

	shape := pattern.Classify(effective, blocked, gapped, space)
	if shape == pattern.None || !shape.Medium() {
		return Threat{}, false
	}

	th := Threat{Cells: cells, Shape: shape}
	th.Defense = e.defensePositions(shape, gapCell, beforeOpen, afterOpen, beforeR, beforeC, afterR, afterC)
	if len(th.Defense) == 0 {
		return Threat{}, false
	}
	return th, true
}

// runLength counts same-color stones starting at (r,c) along (dx,dy).
func (e *Evaluator) runLength(r, c, dx, dy int, owner board.Color) int {
	n := 0
	for board.ValidPos(r, c) && e.b.Get(board.ToIndex(r, c)) == owner {
		n++
		r += dx
		c += dy
	}
	return n
}

// openSpan counts consecutive empty cells starting at (r,c) along (dx,dy),
// capped at the win length.
func (e *Evaluator) openSpan(r, c, dx, dy int) int {
	n := 0
	for n < board.WinCount && board.ValidPos(r, c) && e.b.Get(board.ToIndex(r, c)) == board.Empty {
		n++
		r += dx
		c += dy
	}
	return n
}

// defensePositions picks at most two refutation cells. Open fours demand
// both ends; gapped shapes want the gap filled first.
func (e *Evaluator) defensePositions(shape pattern.Pattern, gapCell int, beforeOpen, afterOpen bool, beforeR, beforeC, afterR, afterC int) []int {
	var out []int
	add := func(cell int) {
		if len(out) >= 2 || cell < 0 {
			return
		}
		for _, have := range out {
			if have == cell {
				return
			}
		}
		out = append(out, cell)
	}
	if gapCell >= 0 && (shape == pattern.JumpFour || shape == pattern.JumpThree) {
		add(gapCell)
	}
	if shape == pattern.LiveFour || shape.NearWinning() {
		if beforeOpen {
			add(board.ToIndex(beforeR, beforeC))
		}
		if afterOpen {
			add(board.ToIndex(afterR, afterC))
		}
		return out
	}
	if beforeOpen {
		add(board.ToIndex(beforeR, beforeC))
	}
	if afterOpen {
		add(board.ToIndex(afterR, afterC))
	}
	add(gapCell)
	return out
}

// Counts tallies threats by severity tier.
func Counts(threats []Threat) (critical, high int) {
	for _, th := range threats {
		switch {
		case th.Shape.Critical():
			critical++
		case th.Shape.High():
			high++
		}
	}
	return critical, high
}

// DefenseCells flattens the defense points of c's threats at or above the
// given severity, strongest threats first, deduplicated.
func (e *Evaluator) DefenseCells(c board.Color, minRank int) []int {
	seen := map[int]bool{}
	var out []int
	for _, th := range e.DetectAll(c) {
		if th.Shape.Rank() < minRank {
			continue
		}
		for _, cell := range th.Defense {
			if !seen[cell] && e.b.IsEmpty(cell) {
				seen[cell] = true
				out = append(out, cell)
			}
		}
	}
	return out
}

// FourRunEndpoints brute-forces the empty endpoints of every run of four or
// more stones of c. It is the fallback when the structured scan reports a
// critical threat but yields no defense cell.
func FourRunEndpoints(b *board.Board, c board.Color) []int {
	seen := map[int]bool{}
	var out []int
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			cell := board.ToIndex(row, col)
			if b.Get(cell) != c {
				continue
			}
			for dir := 0; dir < 4; dir++ {
				dx, dy := dirDX[dir], dirDY[dir]
				// Only score runs from their first stone.
				if board.ValidPos(row-dx, col-dy) && b.Get(board.ToIndex(row-dx, col-dy)) == c {
					continue
				}
				n := 0
				r, cc := row, col
				for board.ValidPos(r, cc) && b.Get(board.ToIndex(r, cc)) == c {
					n++
					r += dx
					cc += dy
				}
				if n < 4 {
					continue
				}
				for _, end := range [][2]int{{row - dx, col - dy}, {r, cc}} {
					if board.ValidPos(end[0], end[1]) {
						e := board.ToIndex(end[0], end[1])
						if b.Get(e) == board.Empty && !seen[e] {
							seen[e] = true
							out = append(out, e)
						}
					}
				}
			}
		}
	}
	return out
}
