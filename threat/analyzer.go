package threat

import (
	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/pattern"
)

// PointThreat summarizes what placing one stone on a cell would create
// across all four axes, including compound shapes spanning two axes.
type PointThreat struct {
	Best  pattern.Pattern
	Score int

	Fours  int
	Threes int

	DoubleFour  bool
	DoubleThree bool
	FourThree   bool
}

// Compound reports whether the placement creates a multi-axis threat that a
// single defensive stone cannot cover.
func (pt PointThreat) Compound() bool {
	return pt.DoubleFour || pt.DoubleThree || pt.FourThree
}

// AnalyzePoint evaluates the hypothetical placement of a c stone on cell.
// The board is not mutated. The empty cell itself counts as part of each
// run it would join, with one-gap extensions on both sides.
func AnalyzePoint(b *board.Board, cell int, c board.Color) PointThreat {
	var pt PointThreat
	if !b.IsEmpty(cell) {
		return pt
	}
	row, col := board.ToRow(cell), board.ToCol(cell)

	for dir := 0; dir < 4; dir++ {
		dx, dy := dirDX[dir], dirDY[dir]
		shape := analyzeAxis(b, row, col, dx, dy, c)
		if shape == pattern.None {
			continue
		}
		pt.Score += shape.Score()
		if shape.Rank() > pt.Best.Rank() {
			pt.Best = shape
		}
		switch {
		case shape.Critical() || shape == pattern.JumpFour:
			pt.Fours++
		case shape == pattern.LiveThree || shape == pattern.JumpThree:
			pt.Threes++
		}
	}

	switch {
	case pt.Fours >= 2:
		pt.DoubleFour = true
		pt.Score += pattern.DoubleFour.Score()
	case pt.Fours >= 1 && pt.Threes >= 1:
		pt.FourThree = true
		pt.Score += pattern.DoubleFour.Score()
	case pt.Threes >= 2:
		pt.DoubleThree = true
		pt.Score += pattern.DoubleThree.Score()
	}
	if pt.Compound() && pt.Best.Rank() < pattern.DoubleThree.Rank() {
		if pt.DoubleFour {
			pt.Best = pattern.DoubleFour
		} else {
			pt.Best = pattern.DoubleThree
		}
	}
	return pt
}

// analyzeAxis classifies the run a stone on (row,col) would form along one
// axis: contiguous stones on both sides, a single gap extension per side,
// and the openness of both ends.
func analyzeAxis(b *board.Board, row, col, dx, dy int, c board.Color) pattern.Pattern {
	count := 1
	gapped := false

	fwd, fwdGap := sideRun(b, row, col, dx, dy, c)
	bwd, bwdGap := sideRun(b, row, col, -dx, -dy, c)
	count += fwd + bwd
	if fwdGap > 0 || bwdGap > 0 {
		gapped = true
		if fwdGap >= bwdGap {
			count += fwdGap
		} else {
			count += bwdGap
		}
	}

	fr, fc := row+dx*(fwd+1), col+dy*(fwd+1)
	br, bc := row-dx*(bwd+1), col-dy*(bwd+1)
	blocked := 0
	if !cellOpen(b, fr, fc) {
		blocked++
	}
	if !cellOpen(b, br, bc) {
		blocked++
	}
	space := openSpanAt(b, fr, fc, dx, dy) + openSpanAt(b, br, bc, -dx, -dy)

	return pattern.Classify(count, blocked, gapped, space)
}

// sideRun returns the contiguous run length on one side of the anchor plus
// the length of a run sitting behind a single empty gap.
func sideRun(b *board.Board, row, col, dx, dy int, c board.Color) (run, gapRun int) {
	r, cc := row+dx, col+dy
	for board.ValidPos(r, cc) && b.Get(board.ToIndex(r, cc)) == c {
		run++
		r += dx
		cc += dy
	}
	if board.ValidPos(r, cc) && b.Get(board.ToIndex(r, cc)) == board.Empty {
		r += dx
		cc += dy
		for board.ValidPos(r, cc) && b.Get(board.ToIndex(r, cc)) == c {
			gapRun++
			r += dx
			cc += dy
		}
	}
	return run, gapRun
}

func cellOpen(b *board.Board, r, c int) bool {
	return board.ValidPos(r, c) && b.Get(board.ToIndex(r, c)) == board.Empty
}

func openSpanAt(b *board.Board, r, c, dx, dy int) int {
	n := 0
	for n < board.WinCount && cellOpen(b, r, c) {
		n++
		r += dx
		c += dy
	}
	return n
}
