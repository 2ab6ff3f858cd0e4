// Package movegen produces and ranks candidate two-stone moves from the
// board's candidate frontier.
package movegen

import (
	"sort"

	"github.com/samber/lo"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/move"
	"github.com/sixstone-ai/sixstone/threat"
)

const (
	// topCellCap bounds the cells kept for pair formation.
	topCellCap = 12
	// winProbeCap bounds the cells probed for a pair win.
	winProbeCap = 24
	// synergyBonus rewards pairs sharing an open window.
	synergyBonus = 100
)

// ScoredMove is a candidate with its ordering score.
type ScoredMove struct {
	Move  move.Move
	Score int
}

// PositionWeight favors central placement, fading linearly with manhattan
// distance from the board center.
func PositionWeight(cell int) int {
	center := board.Size / 2
	d := abs(board.ToRow(cell)-center) + abs(board.ToCol(cell)-center)
	return max(0, 20-d)
}

// CellScore rates placing a single stone for c on cell: incremental window
// swing plus the per-point threat analysis plus position weight.
func CellScore(b *board.Board, cell int, c board.Color) int {
	pt := threat.AnalyzePoint(b, cell, c)
	return b.EvaluateIncrement(cell, c) + pt.Score + PositionWeight(cell)
}

type scoredCell struct {
	cell  int
	score int
}

// rankedCells scores every empty frontier cell for c, best first.
func rankedCells(b *board.Board, c board.Color) []scoredCell {
	cells := lo.Filter(b.Frontier(), func(cell int, _ int) bool {
		return b.IsEmpty(cell)
	})
	scored := lo.Map(cells, func(cell int, _ int) scoredCell {
		return scoredCell{cell: cell, score: CellScore(b, cell, c)}
	})
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// FindWinningMove looks for an immediate win: first a single stone that
// completes six, then any pair among the strongest frontier cells. The
// returned pair always carries two stones when a second empty cell exists.
func FindWinningMove(b *board.Board, c board.Color) (move.Move, bool) {
	scored := rankedCells(b, c)
	for _, sc := range scored {
		if b.CheckWinIfPlace(sc.cell, c) {
			return move.New(sc.cell, partnerFor(b, c, sc.cell, scored)), true
		}
	}
	probe := scored
	if len(probe) > winProbeCap {
		probe = probe[:winProbeCap]
	}
	for i := 0; i < len(probe); i++ {
		for j := i + 1; j < len(probe); j++ {
			if b.CheckWinIfPlaceTwo(probe[i].cell, probe[j].cell, c) {
				return move.New(probe[i].cell, probe[j].cell), true
			}
		}
	}
	return move.Move{}, false
}

// partnerFor picks the best-ranked cell other than first, falling back to a
// full-board scan so the move never drops a legal second stone.
func partnerFor(b *board.Board, c board.Color, first int, scored []scoredCell) int {
	for _, sc := range scored {
		if sc.cell != first {
			return sc.cell
		}
	}
	for _, cell := range b.FirstEmptyCells(2) {
		if cell != first {
			return cell
		}
	}
	return move.NoCell
}

// BestPartner returns the strongest second stone to pair with first.
func BestPartner(b *board.Board, c board.Color, first int) int {
	return partnerFor(b, c, first, rankedCells(b, c))
}

// Generate returns up to limit ranked two-stone moves. Pairs are formed
// from the strongest cells; sharing an open window earns a synergy bonus.
func Generate(b *board.Board, c board.Color, limit int) []ScoredMove {
	scored := rankedCells(b, c)
	if len(scored) == 0 {
		return nil
	}
	if len(scored) == 1 {
		return []ScoredMove{{Move: move.Single(scored[0].cell), Score: scored[0].score}}
	}
	top := scored
	if len(top) > topCellCap {
		top = top[:topCellCap]
	}
	var out []ScoredMove
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			s := top[i].score + top[j].score
			if b.SameOpenLine(top[i].cell, top[j].cell, c) {
				s += synergyBonus
			}
			out = append(out, ScoredMove{Move: move.New(top[i].cell, top[j].cell), Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GenerateDefending returns ranked moves whose first stone is pinned to a
// required defense cell; the second stone ranges over the best cells.
func GenerateDefending(b *board.Board, c board.Color, fixed int, limit int) []ScoredMove {
	scored := rankedCells(b, c)
	var out []ScoredMove
	for _, sc := range scored {
		if sc.cell == fixed {
			continue
		}
		s := sc.score
		if b.SameOpenLine(fixed, sc.cell, c) {
			s += synergyBonus
		}
		out = append(out, ScoredMove{Move: move.New(fixed, sc.cell), Score: s})
		if len(out) == limit {
			break
		}
	}
	if len(out) == 0 && b.IsEmpty(fixed) {
		out = append(out, ScoredMove{Move: move.Single(fixed)})
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
