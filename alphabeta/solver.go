// Package alphabeta implements the iterative-deepening principal variation
// searcher that picks a move when no forced line exists.
package alphabeta

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/move"
	"github.com/sixstone-ai/sixstone/movegen"
	"github.com/sixstone-ai/sixstone/pattern"
	"github.com/sixstone-ai/sixstone/threat"
	"github.com/sixstone-ai/sixstone/threatspace"
	"github.com/sixstone-ai/sixstone/transpose"
)

const (
	// WinScore dominates every heuristic evaluation; actual win scores
	// are WinScore minus the ply they occur at, preferring faster wins.
	WinScore = 100_000_000

	// aspirationWindow brackets the previous iteration's score.
	aspirationWindow = 5000

	maxPly = 64

	// DefaultMaxDepth is the deepest iteration attempted.
	DefaultMaxDepth = 8
	// DefaultCandidateLimit caps moves considered per node.
	DefaultCandidateLimit = 20

	lmrDepthMin = 4
	lmrMoveMin  = 4

	quiescenceMaxPly = 4
)

// ErrNoMoves means the position offered no legal candidate at the root.
var ErrNoMoves = errors.New("no candidate moves at root")

// Solver searches with negamax over two-stone moves. One instance per
// engine; killers and history persist across iterations within a turn and
// are cleared by Reset.
type Solver struct {
	b  *board.Board
	tt *transpose.Table
	ev *threat.Evaluator

	MaxDepth       int
	CandidateLimit int

	killers [maxPly][2]move.Move
	history [board.NumCells]int

	nodes    atomic.Uint64
	qNodes   atomic.Uint64
	cutoffs  atomic.Uint64
	ttCuts   atomic.Uint64
	lastBest move.Move
}

// New wraps a board and a shared transposition table.
func New(b *board.Board, tt *transpose.Table) *Solver {
	return &Solver{
		b:              b,
		tt:             tt,
		ev:             threat.NewEvaluator(b),
		MaxDepth:       DefaultMaxDepth,
		CandidateLimit: DefaultCandidateLimit,
	}
}

// Reset clears move-ordering state between turns.
func (s *Solver) Reset() {
	s.killers = [maxPly][2]move.Move{}
	s.history = [board.NumCells]int{}
}

// Solve runs iterative deepening for c under the ctx deadline and returns
// the best move of the last completed iteration. Hitting the deadline is a
// normal completion as long as one iteration finished.
func (s *Solver) Solve(ctx context.Context, c board.Color) (move.Move, int, error) {
	s.nodes.Store(0)
	s.qNodes.Store(0)
	s.cutoffs.Store(0)
	s.ttCuts.Store(0)

	var best move.Move
	var bestScore int
	haveBest := false

	g := errgroup.Group{}
	done := make(chan struct{})
	g.Go(func() error {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				n := s.nodes.Load()
				log.Debug().Uint64("nodes", n).
					Float64("nps", float64(n)/time.Since(start).Seconds()).
					Msg("search-progress")
			}
		}
	})

	var searchErr error
	for depth := 2; depth <= s.MaxDepth; depth += 2 {
		alpha, beta := -WinScore, WinScore
		if haveBest {
			alpha = bestScore - aspirationWindow
			beta = bestScore + aspirationWindow
		}
		m, score, err := s.searchRoot(ctx, depth, alpha, beta, c)
		if err == nil && haveBest && (score <= alpha || score >= beta) {
			// Aspiration miss: redo the iteration full-width.
			m, score, err = s.searchRoot(ctx, depth, -WinScore, WinScore, c)
		}
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				searchErr = err
			}
			break
		}
		best, bestScore, haveBest = m, score, true
		s.lastBest = m
		log.Debug().Int("depth", depth).Int("score", score).
			Str("move", m.String()).Uint64("nodes", s.nodes.Load()).
			Msg("iteration-complete")
		if score >= WinScore-maxPly {
			break
		}
	}
	close(done)
	if err := g.Wait(); err != nil {
		log.Err(err).Msg("stats-ticker")
	}
	s.tt.LogStats()

	if searchErr != nil {
		return move.Move{}, 0, searchErr
	}
	if !haveBest {
		return move.Move{}, 0, ErrNoMoves
	}
	return best, bestScore, nil
}

// searchRoot is the depth-1 layer of negamax that remembers which child
// produced the score.
func (s *Solver) searchRoot(ctx context.Context, depth, alpha, beta int, c board.Color) (move.Move, int, error) {
	moves := s.orderedMoves(c, 0)
	if len(moves) == 0 {
		return move.Move{}, 0, ErrNoMoves
	}
	var best move.Move
	bestScore := -WinScore * 2
	for i, rm := range moves {
		score, err := s.scoreMove(ctx, rm, depth, 1, alpha, beta, c, i)
		if err != nil {
			return move.Move{}, 0, err
		}
		if score > bestScore {
			bestScore = score
			best = rm.m
		}
		alpha = max(alpha, score)
		if alpha >= beta {
			break
		}
	}
	return best, bestScore, nil
}

// scoreMove applies one move and searches below it with PVS and late move
// reductions.
func (s *Solver) scoreMove(ctx context.Context, rm rankedMove, depth, ply, alpha, beta int, c board.Color, idx int) (int, error) {
	s.b.ApplyMove(rm.m, c)
	defer s.b.RetractMove(rm.m, c)

	if s.moveWins(rm.m, c) {
		return WinScore - ply, nil
	}

	childDepth := depth - 1
	if rm.forcing && depth < s.MaxDepth {
		// Threat extension: forcing moves get searched a ply deeper.
		childDepth++
	}

	if idx >= lmrMoveMin && depth >= lmrDepthMin && !rm.forcing && !rm.defensive {
		reduced, err := s.negamax(ctx, childDepth-1, ply+1, -alpha-1, -alpha, c.Other())
		if err != nil {
			return 0, err
		}
		if -reduced <= alpha {
			return -reduced, nil
		}
	} else if idx > 0 {
		// Null-window probe before a full re-search.
		probe, err := s.negamax(ctx, childDepth, ply+1, -alpha-1, -alpha, c.Other())
		if err != nil {
			return 0, err
		}
		if -probe <= alpha || -probe >= beta {
			return -probe, nil
		}
	}
	score, err := s.negamax(ctx, childDepth, ply+1, -beta, -alpha, c.Other())
	if err != nil {
		return 0, err
	}
	return -score, nil
}

func (s *Solver) negamax(ctx context.Context, depth, ply, alpha, beta int, onTurn board.Color) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes.Add(1)

	alphaOrig := alpha
	key := s.b.Key()
	var ttMove move.Move
	hasTTMove := false
	if entry, ok := s.tt.Lookup(key); ok {
		if entry.Depth() >= depth {
			score := scoreFromTT(entry.Score(), ply)
			switch entry.Bound() {
			case transpose.BoundExact:
				s.ttCuts.Add(1)
				return score, nil
			case transpose.BoundLower:
				alpha = max(alpha, score)
			case transpose.BoundUpper:
				beta = min(beta, score)
			}
			if alpha >= beta {
				s.ttCuts.Add(1)
				return score, nil
			}
		}
		ttMove, hasTTMove = entry.Move()
	}

	if depth <= 0 || ply >= maxPly {
		return s.quiescence(ctx, 0, ply, alpha, beta, onTurn)
	}

	moves := s.orderedMoves(onTurn, ply)
	if hasTTMove {
		promoteTTMove(moves, ttMove)
	}
	if len(moves) == 0 {
		return s.evaluate(onTurn), nil
	}

	var best move.Move
	haveBest := false
	bestScore := -WinScore * 2
	for i, rm := range moves {
		score, err := s.scoreMove(ctx, rm, depth, ply, alpha, beta, onTurn, i)
		if err != nil {
			return 0, err
		}
		if score > bestScore {
			bestScore = score
			best = rm.m
			haveBest = true
		}
		alpha = max(alpha, score)
		if alpha >= beta {
			s.cutoffs.Add(1)
			s.recordKiller(ply, rm.m)
			s.history[rm.m.First] += depth * depth
			if !rm.m.IsSingle() {
				s.history[rm.m.Second] += depth * depth
			}
			break
		}
	}

	bound := transpose.BoundExact
	if bestScore <= alphaOrig {
		bound = transpose.BoundUpper
	} else if bestScore >= beta {
		bound = transpose.BoundLower
	}
	s.tt.Store(key, depth, bound, scoreToTT(bestScore, ply), best, haveBest)
	return bestScore, nil
}

// Win scores carry their distance from the root, so the same position
// reached at a different ply would replay a stale distance straight from
// the table. Stored entries hold the distance from the node instead:
// scoreToTT rebases on the way in, scoreFromTT on the way out.
func scoreToTT(score, ply int) int {
	if score >= WinScore-maxPly {
		return score + ply
	}
	if score <= -(WinScore - maxPly) {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score >= WinScore-maxPly {
		return score - ply
	}
	if score <= -(WinScore - maxPly) {
		return score + ply
	}
	return score
}

// quiescence extends along forcing moves only, so the evaluation never
// lands in the middle of an unresolved four.
func (s *Solver) quiescence(ctx context.Context, qply, ply, alpha, beta int, onTurn board.Color) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.qNodes.Add(1)

	standPat := s.evaluate(onTurn)
	if qply >= quiescenceMaxPly || ply >= maxPly {
		return standPat, nil
	}
	if standPat >= beta {
		return standPat, nil
	}
	alpha = max(alpha, standPat)

	best := standPat
	for _, m := range threatspace.AttackMoves(s.b, onTurn, 4) {
		s.b.ApplyMove(m, onTurn)
		var score int
		if s.moveWins(m, onTurn) {
			score = WinScore - ply
		} else {
			reply, err := s.quiescence(ctx, qply+1, ply+1, -beta, -alpha, onTurn.Other())
			if err != nil {
				s.b.RetractMove(m, onTurn)
				return 0, err
			}
			score = -reply
		}
		s.b.RetractMove(m, onTurn)
		best = max(best, score)
		alpha = max(alpha, score)
		if alpha >= beta {
			break
		}
	}
	return best, nil
}

func (s *Solver) evaluate(perspective board.Color) int {
	return s.b.Evaluate(perspective)
}

func (s *Solver) moveWins(m move.Move, c board.Color) bool {
	if s.b.CheckWinAt(m.First, c) {
		return true
	}
	return !m.IsSingle() && s.b.CheckWinAt(m.Second, c)
}

type rankedMove struct {
	m         move.Move
	score     int
	forcing   bool
	defensive bool
}

// orderedMoves builds the candidate list for the side to move. When the
// opponent holds a critical threat the list collapses to defending moves.
func (s *Solver) orderedMoves(onTurn board.Color, ply int) []rankedMove {
	var out []rankedMove

	defense := s.ev.DefenseCells(onTurn.Other(), pattern.RushFour.Rank())
	if len(defense) > 0 {
		if len(defense) >= 2 {
			out = append(out, rankedMove{
				m:         move.New(defense[0], defense[1]),
				score:     WinScore / 2,
				defensive: true,
			})
		}
		for _, cell := range defense {
			for _, sm := range movegen.GenerateDefending(s.b, onTurn, cell, 4) {
				out = append(out, rankedMove{m: sm.Move, score: sm.Score, defensive: true})
			}
		}
	} else {
		for _, sm := range movegen.Generate(s.b, onTurn, s.CandidateLimit) {
			pt := threat.AnalyzePoint(s.b, sm.Move.First, onTurn)
			forcing := pt.Fours > 0 || pt.Compound()
			out = append(out, rankedMove{m: sm.Move, score: sm.Score, forcing: forcing})
		}
	}

	for i := range out {
		out[i].score += s.history[out[i].m.First]
		if !out[i].m.IsSingle() {
			out[i].score += s.history[out[i].m.Second]
		}
		if ply < maxPly {
			for _, k := range s.killers[ply] {
				if out[i].m.Equals(k) {
					out[i].score += WinScore / 4
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	if len(out) > s.CandidateLimit {
		out = out[:s.CandidateLimit]
	}
	return out
}

func (s *Solver) recordKiller(ply int, m move.Move) {
	if ply >= maxPly || s.killers[ply][0].Equals(m) {
		return
	}
	s.killers[ply][1] = s.killers[ply][0]
	s.killers[ply][0] = m
}

// promoteTTMove bumps the stored best move to the front, if present.
func promoteTTMove(moves []rankedMove, ttMove move.Move) {
	for i := range moves {
		if moves[i].m.Equals(ttMove) {
			moves[0], moves[i] = moves[i], moves[0]
			return
		}
	}
}

// Nodes returns the node counters of the latest Solve.
func (s *Solver) Nodes() (uint64, uint64) {
	return s.nodes.Load(), s.qNodes.Load()
}
