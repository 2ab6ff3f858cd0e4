package threat

import (
	"testing"

	"github.com/matryer/is"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/pattern"
	"github.com/sixstone-ai/sixstone/zobrist"
)

var testZob = zobrist.New(board.NumCells)

func newBoard() *board.Board {
	b := board.New(testZob)
	b.BuildLines()
	return b
}

func place(b *board.Board, c board.Color, coords ...[2]int) {
	for _, rc := range coords {
		b.ApplyStone(board.ToIndex(rc[0], rc[1]), c)
	}
}

func hasThreat(threats []Threat, shape pattern.Pattern) *Threat {
	for i := range threats {
		if threats[i].Shape == shape {
			return &threats[i]
		}
	}
	return nil
}

func TestDetectLiveThree(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7})

	threats := NewEvaluator(b).DetectAll(board.Black)
	th := hasThreat(threats, pattern.LiveThree)
	is.True(th != nil)
	is.Equal(len(th.Defense), 2)
	is.True(containsCell(th.Defense, board.ToIndex(9, 4)))
	is.True(containsCell(th.Defense, board.ToIndex(9, 8)))
}

func TestOpenFourDefendsBothEnds(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.White, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	threats := NewEvaluator(b).DetectAll(board.White)
	th := hasThreat(threats, pattern.LiveFour)
	is.True(th != nil)
	is.Equal(len(th.Defense), 2)
	is.True(containsCell(th.Defense, board.ToIndex(9, 4)))
	is.True(containsCell(th.Defense, board.ToIndex(9, 9)))
}

func TestRushFourSingleDefense(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.White, [2]int{9, 4})
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	threats := NewEvaluator(b).DetectAll(board.Black)
	th := hasThreat(threats, pattern.RushFour)
	is.True(th != nil)
	is.Equal(th.Defense, []int{board.ToIndex(9, 9)})
}

func TestJumpThreeDefendsGapFirst(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 8})

	threats := NewEvaluator(b).DetectAll(board.Black)
	th := hasThreat(threats, pattern.JumpThree)
	is.True(th != nil)
	is.Equal(th.Defense[0], board.ToIndex(9, 7))
}

func TestCounts(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.White, [2]int{9, 4})
	place(b, board.Black,
		[2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8}, // rush four
		[2]int{4, 4}, [2]int{5, 5}, [2]int{6, 6}) // live three

	threats := NewEvaluator(b).DetectAll(board.Black)
	critical, high := Counts(threats)
	is.True(critical >= 1)
	is.True(high >= 1)
}

func TestDefenseCellsRankFilter(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.White, [2]int{9, 4})
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	ev := NewEvaluator(b)
	cells := ev.DefenseCells(board.Black, pattern.RushFour.Rank())
	is.True(containsCell(cells, board.ToIndex(9, 9)))
	none := ev.DefenseCells(board.Black, pattern.Five.Rank())
	is.Equal(len(none), 0)
}

func TestFourRunEndpoints(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.White, [2]int{9, 4})
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	ends := FourRunEndpoints(b, board.Black)
	is.Equal(ends, []int{board.ToIndex(9, 9)})
}

func TestAnalyzePointDoubleThree(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 7}, [2]int{9, 8}, [2]int{7, 9}, [2]int{8, 9})

	pt := AnalyzePoint(b, board.ToIndex(9, 9), board.Black)
	is.True(pt.DoubleThree)
	is.True(pt.Compound())
	is.True(pt.Score > 2*pattern.LiveThree.Score())
}

func TestAnalyzePointDoubleFour(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black,
		[2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8},
		[2]int{6, 9}, [2]int{7, 9}, [2]int{8, 9})

	pt := AnalyzePoint(b, board.ToIndex(9, 9), board.Black)
	is.True(pt.DoubleFour)
	is.Equal(pt.Fours, 2)
}

func TestAnalyzePointOccupied(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 9})
	pt := AnalyzePoint(b, board.ToIndex(9, 9), board.Black)
	is.Equal(pt.Score, 0)
	is.Equal(pt.Best, pattern.None)
}

func TestAnalyzePointGap(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	// Anchor at (9,7) joins stones at 5,6 and 9: a gapped four.
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 9})
	pt := AnalyzePoint(b, board.ToIndex(9, 7), board.Black)
	is.True(pt.Best.Rank() >= pattern.JumpThree.Rank())
}

func containsCell(cells []int, cell int) bool {
	for _, c := range cells {
		if c == cell {
			return true
		}
	}
	return false
}
