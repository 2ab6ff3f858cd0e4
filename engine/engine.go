// Package engine orchestrates one full turn: win probe, urgent defense,
// forced-win proof, then heuristic search, with a guaranteed-legal
// fallback at the end of the chain.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sixstone-ai/sixstone/alphabeta"
	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/config"
	"github.com/sixstone-ai/sixstone/move"
	"github.com/sixstone-ai/sixstone/movegen"
	"github.com/sixstone-ai/sixstone/pattern"
	"github.com/sixstone-ai/sixstone/threat"
	"github.com/sixstone-ai/sixstone/threatspace"
	"github.com/sixstone-ai/sixstone/transpose"
	"github.com/sixstone-ai/sixstone/zobrist"
)

// ErrInvalidMove rejects opponent input that is off the board or lands on
// an occupied cell. The engine's own state is untouched when it is
// returned.
var ErrInvalidMove = errors.New("invalid opponent move")

const (
	bookStoneLimit   = 8
	topUpThreshold   = 20
	topUpExtra       = 2
	maxCriticalCover = 2
)

// Engine owns the board and every searcher for one game.
type Engine struct {
	cfg *config.Config
	zob *zobrist.Table
	b   *board.Board
	tt  *transpose.Table
	ev  *threat.Evaluator

	solver *alphabeta.Solver
	book   *Book

	me       board.Color
	assigned bool
}

// New builds an engine from the configuration. The transposition table is
// sized once here; Reset reuses it.
func New(cfg *config.Config) (*Engine, error) {
	book, err := LoadBook()
	if err != nil {
		return nil, fmt.Errorf("opening book: %w", err)
	}
	e := &Engine{
		cfg:  cfg,
		zob:  zobrist.New(board.NumCells),
		tt:   &transpose.Table{},
		book: book,
	}
	e.tt.Reset(cfg.TTFraction)
	e.initBoard()
	return e, nil
}

func (e *Engine) initBoard() {
	e.b = board.New(e.zob)
	e.b.SetOverlineWins(e.cfg.OverlineWins)
	e.b.BuildLines()
	e.ev = threat.NewEvaluator(e.b)
	e.solver = alphabeta.New(e.b, e.tt)
	e.solver.MaxDepth = e.cfg.MaxDepth
	e.solver.CandidateLimit = e.cfg.CandidateLimit
}

// Reset prepares for a new game: fresh board, lines, frontier, ordering
// state and color assignment. The table keeps its memory but is cleared.
func (e *Engine) Reset() {
	e.initBoard()
	e.tt.Reset(e.cfg.TTFraction)
	e.assigned = false
	log.Info().Msg("engine-reset")
}

// Board exposes the current position, mainly for tests and UIs.
func (e *Engine) Board() *board.Board { return e.b }

// Color returns the color the engine plays, once assigned.
func (e *Engine) Color() board.Color { return e.me }

// NextMove commits the opponent's move (nil on the very first turn of the
// engine's game as Black) and returns the engine's reply, already applied
// to the internal board. The reply is always legal, whatever the budget.
func (e *Engine) NextMove(ctx context.Context, oppMove *move.Move) (move.Move, error) {
	if !e.assigned {
		if oppMove == nil {
			e.me = board.Black
		} else {
			e.me = board.White
		}
		e.assigned = true
		log.Info().Str("color", e.me.String()).Msg("color-assigned")
	}
	if oppMove != nil {
		if err := e.commitOpponent(*oppMove); err != nil {
			return move.Move{}, err
		}
	}

	// The opening move of the game places a single stone.
	if e.b.PieceCount() == 0 {
		center := board.ToIndex(board.Size/2, board.Size/2)
		m := move.Single(center)
		e.commit(m)
		return m, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.MoveTimeLimit)
	defer cancel()
	start := time.Now()

	if e.b.PieceCount() >= topUpThreshold {
		e.b.ExpandFrontierInBounds(topUpExtra)
	}

	m := e.selectMove(ctx)
	e.commit(m)
	log.Info().Str("move", m.String()).Dur("elapsed", time.Since(start)).
		Int("stones", e.b.PieceCount()).Msg("move-played")
	return m, nil
}

// selectMove runs the decision chain. Every stage either returns a move or
// falls through to the next; the final stage cannot fail.
func (e *Engine) selectMove(ctx context.Context) move.Move {
	opp := e.me.Other()

	if m, ok := movegen.FindWinningMove(e.b, e.me); ok {
		log.Debug().Str("move", m.String()).Msg("winning-move")
		return m
	}

	if m, ok := e.urgentDefense(opp); ok {
		return m
	}

	if m, ok := e.compoundPreScan(opp); ok {
		return m
	}

	if m, ok := e.bookMove(opp); ok {
		return m
	}

	if m, ok := e.forcedWin(ctx); ok {
		return m
	}

	if m, ok := e.softDefense(opp); ok {
		return m
	}

	if m, score, err := e.solver.Solve(ctx, e.me); err == nil {
		log.Debug().Int("score", score).Msg("alphabeta-move")
		return m
	} else if !errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Err(err).Msg("alphabeta-failed")
	}

	return e.fallback()
}

// urgentDefense answers standing critical threats. With more than two
// independent critical threats the two strongest get covered and the
// position is logged as lost.
func (e *Engine) urgentDefense(opp board.Color) (move.Move, bool) {
	threats := e.ev.DetectAll(opp)
	critical, _ := threat.Counts(threats)
	if critical == 0 {
		return move.Move{}, false
	}
	if critical > maxCriticalCover {
		log.Warn().Int("critical-threats", critical).
			Msg("more-critical-threats-than-coverable")
	}
	cells := e.ev.DefenseCells(opp, pattern.RushFour.Rank())
	if len(cells) == 0 {
		// The structured scan saw a four it cannot name a refutation
		// for; fall back to raw run endpoints.
		cells = threat.FourRunEndpoints(e.b, opp)
		log.Warn().Int("endpoints", len(cells)).
			Msg("threat-scan-inconsistency")
	}
	if len(cells) == 0 {
		return move.Move{}, false
	}
	e.b.EnsureCandidates(cells)
	m := e.pairFrom(cells)
	log.Debug().Str("move", m.String()).Msg("urgent-defense")
	return m, true
}

// compoundPreScan blocks the opponent's best double-threat placement
// before it exists.
func (e *Engine) compoundPreScan(opp board.Color) (move.Move, bool) {
	bestCell := move.NoCell
	bestScore := 0
	for _, cell := range e.b.Frontier() {
		if !e.b.IsEmpty(cell) {
			continue
		}
		pt := threat.AnalyzePoint(e.b, cell, opp)
		if pt.Compound() && pt.Score > bestScore {
			bestCell, bestScore = cell, pt.Score
		}
	}
	if bestCell == move.NoCell {
		return move.Move{}, false
	}
	m := move.New(bestCell, movegen.BestPartner(e.b, e.me, bestCell))
	log.Debug().Str("move", m.String()).Msg("compound-block")
	return m, true
}

// bookMove consults the opening templates in quiet early positions.
func (e *Engine) bookMove(opp board.Color) (move.Move, bool) {
	if !e.cfg.OpeningBook || e.b.PieceCount() > bookStoneLimit {
		return move.Move{}, false
	}
	if len(e.ev.DetectAll(opp)) > 0 || len(e.ev.DetectAll(e.me)) > 0 {
		return move.Move{}, false
	}
	m, ok := e.book.Suggest(e.b)
	if ok {
		log.Debug().Str("move", m.String()).Msg("book-move")
	}
	return m, ok
}

// forcedWin runs the proof-number searcher within its node budget, then
// the recursive threat-space searcher, under the dedicated time slice.
func (e *Engine) forcedWin(ctx context.Context) (move.Move, bool) {
	tsCtx, cancel := context.WithTimeout(ctx, e.cfg.ThreatSpaceTimeLimit)
	defer cancel()

	pn := threatspace.NewPN(e.b)
	pn.NodeBudget = e.cfg.PNNodeBudget
	if m, ok, err := pn.Search(tsCtx, e.me); err == nil && ok {
		log.Info().Str("move", m.String()).Msg("proof-number-win")
		return m, true
	}
	if m, ok, err := threatspace.New(e.b).Search(tsCtx, e.me); err == nil && ok {
		log.Info().Str("move", m.String()).Msg("threat-space-win")
		return m, true
	}
	return move.Move{}, false
}

// softDefense covers high (non-critical) threats before handing the
// position to full search.
func (e *Engine) softDefense(opp board.Color) (move.Move, bool) {
	cells := e.ev.DefenseCells(opp, pattern.LiveThree.Rank())
	if len(cells) == 0 {
		return move.Move{}, false
	}
	e.b.EnsureCandidates(cells)
	m := e.pairFrom(cells)
	log.Debug().Str("move", m.String()).Msg("soft-defense")
	return m, true
}

// pairFrom builds a two-stone move from priority cells, topping up with
// the best partner when only one cell is given.
func (e *Engine) pairFrom(cells []int) move.Move {
	if len(cells) >= 2 {
		return move.New(cells[0], cells[1])
	}
	p := movegen.BestPartner(e.b, e.me, cells[0])
	if p == move.NoCell {
		return move.Single(cells[0])
	}
	return move.New(cells[0], p)
}

// fallback never fails on a board with an empty cell left.
func (e *Engine) fallback() move.Move {
	if moves := movegen.Generate(e.b, e.me, 1); len(moves) > 0 {
		log.Debug().Str("move", moves[0].Move.String()).Msg("fallback-generator")
		return moves[0].Move
	}
	empties := e.b.FirstEmptyCells(2)
	switch len(empties) {
	case 0:
		// Full board; nothing legal exists. Callers treat this as a
		// finished game.
		return move.Move{First: move.NoCell, Second: move.NoCell}
	case 1:
		return move.Single(empties[0])
	}
	log.Debug().Msg("fallback-full-scan")
	return move.New(empties[0], empties[1])
}

func (e *Engine) commitOpponent(m move.Move) error {
	opp := e.me.Other()
	for _, cell := range m.Cells() {
		if !e.b.IsEmpty(cell) {
			return fmt.Errorf("%w: cell %d", ErrInvalidMove, cell)
		}
	}
	if !m.IsSingle() && m.First == m.Second {
		return fmt.Errorf("%w: duplicate cell %d", ErrInvalidMove, m.First)
	}
	for _, cell := range m.Cells() {
		e.b.ApplyStone(cell, opp)
	}
	return nil
}

// commit permanently applies the engine's own move, no snapshot involved.
func (e *Engine) commit(m move.Move) {
	if m.First == move.NoCell {
		return
	}
	for _, cell := range m.Cells() {
		e.b.ApplyStone(cell, e.me)
	}
}
