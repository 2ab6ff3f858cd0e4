package threatspace

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/threat"
	"github.com/sixstone-ai/sixstone/zobrist"
)

var testZob = zobrist.New(board.NumCells)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	m.Run()
}

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

func TestSearchFindsImmediateWin(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	m, ok, err := New(b).Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(ok)
	is.True(b.CheckWinIfPlaceTwo(m.First, m.Second, board.Black))
}

func TestSearchQuietPositionNotProven(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 9})
	place(b, board.White, [2]int{9, 10}, [2]int{10, 10})

	keyBefore := b.Key()
	_, ok, err := New(b).Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(!ok)
	is.Equal(b.Key(), keyBefore) // search leaves the board untouched
}

func TestSearchHonorsContext(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 7}, [2]int{9, 8}, [2]int{9, 9})
	place(b, board.White, [2]int{7, 7}, [2]int{7, 8})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := New(b).Search(ctx, board.Black)
	is.True(err != nil)
	is.True(!ok)
}

func TestDoubleOpenThreeIsNotForced(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	// Two independent open threes on unrelated runs: two stones per turn
	// answer whatever single-run threat either one turns into.
	place(b, board.Black,
		[2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7},
		[2]int{3, 15}, [2]int{4, 15}, [2]int{5, 15})
	place(b, board.White, [2]int{15, 2}, [2]int{15, 3})

	s := New(b)
	s.MaxDepth = 2
	s.AttackLimit = 8
	s.DefenseLimit = 4
	_, ok, err := s.Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(!ok)

	p := NewPN(b)
	p.NodeBudget = 10000
	_, ok, err = p.Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(!ok)
}

func TestTripleThreatChainWins(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	// Three open threes crossing at (9,9): one stone there makes three
	// fours at once, which two defensive stones cannot cover.
	place(b, board.Black,
		[2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8},
		[2]int{6, 9}, [2]int{7, 9}, [2]int{8, 9},
		[2]int{6, 6}, [2]int{7, 7}, [2]int{8, 8})
	place(b, board.White, [2]int{15, 15}, [2]int{15, 16}, [2]int{14, 15})

	m, ok, err := New(b).Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(ok)
	is.True(m.Contains(board.ToIndex(9, 9)))

	_, ok, err = NewPN(b).Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(ok)
}

func TestPNFindsImmediateWin(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	m, ok, err := NewPN(b).Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(ok)
	is.True(b.CheckWinIfPlaceTwo(m.First, m.Second, board.Black))
}

func TestPNQuietPositionNotProven(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 9})
	place(b, board.White, [2]int{10, 10})

	keyBefore := b.Key()
	p := NewPN(b)
	p.NodeBudget = 5000
	_, ok, err := p.Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(!ok)
	is.Equal(b.Key(), keyBefore)
}

func TestAttackMovesAreForcing(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	moves := AttackMoves(b, board.Black, DefaultAttackLimit)
	is.True(len(moves) > 0)
	is.True(len(moves) <= DefaultAttackLimit)

	quiet := newBoard()
	place(quiet, board.Black, [2]int{9, 9})
	is.Equal(len(AttackMoves(quiet, board.Black, DefaultAttackLimit)), 0)
}

func TestDefenseMovesAnswerNonCriticalThreat(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	// A lone live three names no critical defense point, yet the defender
	// plainly has replies. Returning none here would let the AND node read
	// the position as unanswerable.
	place(b, board.Black, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})
	place(b, board.White, [2]int{3, 3})

	moves := DefenseMoves(b, board.White, board.Black, DefaultDefenseLimit)
	is.True(len(moves) > 0)
	is.True(len(moves) <= DefaultDefenseLimit)
}

func TestDoubleThreeCrossNotForced(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	// Two crossing open twos: one placement at (9,9) builds two threes at
	// once, but threes leave the defender a full turn to answer. Neither
	// searcher may report a win from here.
	place(b, board.Black,
		[2]int{9, 7}, [2]int{9, 8},
		[2]int{7, 9}, [2]int{8, 9})

	s := New(b)
	s.MaxDepth = 2
	s.AttackLimit = 8
	s.DefenseLimit = 4
	_, ok, err := s.Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(!ok)

	p := NewPN(b)
	p.NodeBudget = 10000
	p.MaxDepth = 2
	p.AttackLimit = 8
	p.DefenseLimit = 4
	_, ok, err = p.Search(context.Background(), board.Black)
	is.NoErr(err)
	is.True(!ok)
}

func TestAttackMovesLeaveStandingThreat(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.Black,
		[2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8},
		[2]int{7, 9}, [2]int{8, 9})
	place(b, board.White, [2]int{12, 12})

	moves := AttackMoves(b, board.Black, DefaultAttackLimit)
	is.True(len(moves) > 0)
	keyBefore := b.Key()
	for _, m := range moves {
		b.ApplyMove(m, board.Black)
		critical, high := threat.Counts(threat.NewEvaluator(b).DetectAll(board.Black))
		b.RetractMove(m, board.Black)
		is.True(critical > 0 || high >= 2)
	}
	is.Equal(b.Key(), keyBefore)
}

func TestDefenseMovesCoverRushFour(t *testing.T) {
	is := is.New(t)
	b := newBoard()
	place(b, board.White, [2]int{9, 4})
	place(b, board.Black, [2]int{9, 5}, [2]int{9, 6}, [2]int{9, 7}, [2]int{9, 8})

	moves := DefenseMoves(b, board.White, board.Black, DefaultDefenseLimit)
	is.True(len(moves) > 0)
	// The named defense point leads; generator top-ups follow it.
	is.True(moves[0].Contains(board.ToIndex(9, 9)))
}
