package board

import (
	"github.com/sixstone-ai/sixstone/pattern"
)

// line is one six-cell window on an axis. A window scores for an owner only
// while the other owner has no stone in it; mixed windows are dead.
type line struct {
	cells  [LineLength]int32
	counts [2]int8
	pats   [2]pattern.Pattern
}

func (l *line) contribution(side int) int {
	if l.counts[1-side] > 0 {
		return 0
	}
	return l.pats[side].Score()
}

// reevaluate refreshes both cached patterns from the counts.
func (l *line) reevaluate() {
	for side := 0; side < 2; side++ {
		if l.counts[1-side] > 0 || l.counts[side] == 0 {
			l.pats[side] = pattern.None
		} else {
			l.pats[side] = pattern.ClassifyWindow(int(l.counts[side]), LineLength)
		}
	}
}

// BuildLines enumerates every six-cell window on the four axes, indexes them
// by member cell, and seeds the per-owner score aggregates from the current
// grid. Call once per game; afterwards ApplyStone/RetractStone keep the
// index current.
func (b *Board) BuildLines() {
	b.lines = b.lines[:0]
	for i := range b.linesAt {
		b.linesAt[i] = nil
	}
	b.scores = [2]int{}

	for dir := 0; dir < numDirs; dir++ {
		for row := 0; row < Size; row++ {
			for col := 0; col < Size; col++ {
				endRow := row + dirDX[dir]*(LineLength-1)
				endCol := col + dirDY[dir]*(LineLength-1)
				if !ValidPos(endRow, endCol) {
					continue
				}
				var ln line
				for k := 0; k < LineLength; k++ {
					cell := ToIndex(row+dirDX[dir]*k, col+dirDY[dir]*k)
					ln.cells[k] = int32(cell)
					if c := b.grid[cell]; c != Empty {
						ln.counts[c.side()]++
					}
				}
				ln.reevaluate()
				idx := int32(len(b.lines))
				b.lines = append(b.lines, ln)
				for k := 0; k < LineLength; k++ {
					slot := int(ln.cells[k])*numDirs + dir
					b.linesAt[slot] = append(b.linesAt[slot], idx)
				}
				for side := 0; side < 2; side++ {
					b.scores[side] += b.lines[idx].contribution(side)
				}
			}
		}
	}
	b.linesBuilt = true
}

// LinesBuilt reports whether the line index is active.
func (b *Board) LinesBuilt() bool { return b.linesBuilt }

// updateLines adjusts every window through cell for a stone of side being
// added (delta=1) or removed (delta=-1), keeping the score aggregates exact.
func (b *Board) updateLines(cell, side, delta int) {
	for dir := 0; dir < numDirs; dir++ {
		for _, idx := range b.linesAt[cell*numDirs+dir] {
			ln := &b.lines[idx]
			for s := 0; s < 2; s++ {
				b.scores[s] -= ln.contribution(s)
			}
			ln.counts[side] += int8(delta)
			ln.reevaluate()
			for s := 0; s < 2; s++ {
				b.scores[s] += ln.contribution(s)
			}
		}
	}
}

// Score returns the aggregate window score for one owner.
func (b *Board) Score(c Color) int { return b.scores[c.side()] }

// Evaluate returns the score difference from one owner's perspective.
func (b *Board) Evaluate(perspective Color) int {
	me := perspective.side()
	return b.scores[me] - b.scores[1-me]
}

// EvaluateIncrement estimates the score swing of placing a stone for c on
// cell without mutating the board. Windows the opponent still scores in
// credit their full value as defense; windows open for c credit the pattern
// upgrade.
func (b *Board) EvaluateIncrement(cell int, c Color) int {
	me := c.side()
	opp := 1 - me
	delta := 0
	for dir := 0; dir < numDirs; dir++ {
		for _, idx := range b.linesAt[cell*numDirs+dir] {
			ln := &b.lines[idx]
			if ln.counts[opp] > 0 {
				if ln.counts[me] == 0 {
					delta += ln.pats[opp].Score()
				}
				continue
			}
			delta += pattern.ClassifyWindow(int(ln.counts[me])+1, LineLength).Score() -
				ln.pats[me].Score()
		}
	}
	return delta
}

// BestPatternThrough returns the strongest pattern c holds in any window
// through cell.
func (b *Board) BestPatternThrough(cell int, c Color) pattern.Pattern {
	me := c.side()
	best := pattern.None
	for dir := 0; dir < numDirs; dir++ {
		for _, idx := range b.linesAt[cell*numDirs+dir] {
			ln := &b.lines[idx]
			if ln.counts[1-me] > 0 {
				continue
			}
			if ln.pats[me].Rank() > best.Rank() {
				best = ln.pats[me]
			}
		}
	}
	return best
}

// SameOpenLine reports whether both cells sit in one window the opponent of
// c has not touched. Used as a pair-synergy signal by move ordering.
func (b *Board) SameOpenLine(p1, p2 int, c Color) bool {
	opp := 1 - c.side()
	for dir := 0; dir < numDirs; dir++ {
		for _, idx := range b.linesAt[p1*numDirs+dir] {
			ln := &b.lines[idx]
			if ln.counts[opp] > 0 {
				continue
			}
			for k := 0; k < LineLength; k++ {
				if int(ln.cells[k]) == p2 {
					return true
				}
			}
		}
	}
	return false
}

// SharedActiveLine reports whether both cells sit in one window that the
// opponent of c has not touched and that already holds at least one c
// stone. Stricter than SameOpenLine: the pair must work an existing run,
// not merely an empty corridor.
func (b *Board) SharedActiveLine(p1, p2 int, c Color) bool {
	me := c.side()
	for dir := 0; dir < numDirs; dir++ {
		for _, idx := range b.linesAt[p1*numDirs+dir] {
			ln := &b.lines[idx]
			if ln.counts[1-me] > 0 || ln.counts[me] == 0 {
				continue
			}
			for k := 0; k < LineLength; k++ {
				if int(ln.cells[k]) == p2 {
					return true
				}
			}
		}
	}
	return false
}

// recomputeScores rebuilds the aggregates from the raw window state. Test
// oracle for the incremental bookkeeping.
func (b *Board) recomputeScores() [2]int {
	var totals [2]int
	for i := range b.lines {
		for side := 0; side < 2; side++ {
			totals[side] += b.lines[i].contribution(side)
		}
	}
	return totals
}
