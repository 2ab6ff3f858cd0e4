// Package threatspace proves forced wins by chaining critical threats. The
// attacker may only play moves that create a four or a compound threat; the
// defender answers with the threat's defense points. Two searchers share the
// move generators: a plain recursive AND/OR search and a proof-number
// variant that runs first under a node budget.
package threatspace

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/move"
	"github.com/sixstone-ai/sixstone/movegen"
	"github.com/sixstone-ai/sixstone/pattern"
	"github.com/sixstone-ai/sixstone/threat"
)

const (
	// DefaultAttackLimit bounds forcing moves tried per OR node.
	DefaultAttackLimit = 12
	// DefaultDefenseLimit bounds replies tried per AND node.
	DefaultDefenseLimit = 6
	// DefaultMaxDepth is the forcing-sequence depth in attacker moves.
	DefaultMaxDepth = 5
)

// Searcher is the plain recursive threat-space searcher. Proven positions
// are memoized by zobrist key for the lifetime of one Search call.
type Searcher struct {
	b  *board.Board
	ev *threat.Evaluator

	AttackLimit  int
	DefenseLimit int
	MaxDepth     int

	memo  map[uint64]move.Move
	nodes int
}

// New wraps a board with default limits.
func New(b *board.Board) *Searcher {
	return &Searcher{
		b:            b,
		ev:           threat.NewEvaluator(b),
		AttackLimit:  DefaultAttackLimit,
		DefenseLimit: DefaultDefenseLimit,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Search hunts a forced win for the attacker. ok is true only when every
// defender reply in the tree was refuted. A deadline on ctx aborts with
// context.DeadlineExceeded and no conclusion.
func (s *Searcher) Search(ctx context.Context, attacker board.Color) (move.Move, bool, error) {
	s.memo = make(map[uint64]move.Move)
	s.nodes = 0
	m, proven, err := s.orNode(ctx, attacker, s.MaxDepth)
	if err != nil {
		return move.Move{}, false, err
	}
	if proven {
		log.Debug().Int("nodes", s.nodes).Str("move", m.String()).
			Msg("threat-space-proof")
	}
	return m, proven, nil
}

// orNode: attacker to move; proven if some forcing move defeats every reply.
func (s *Searcher) orNode(ctx context.Context, attacker board.Color, depth int) (move.Move, bool, error) {
	if err := ctx.Err(); err != nil {
		return move.Move{}, false, err
	}
	s.nodes++

	if m, ok := movegen.FindWinningMove(s.b, attacker); ok {
		return m, true, nil
	}
	if depth == 0 {
		return move.Move{}, false, nil
	}
	// Only proofs are cached; a failure at one depth says nothing about
	// deeper searches of the same position.
	if m, seen := s.memo[s.b.Key()]; seen {
		return m, true, nil
	}

	for _, m := range AttackMoves(s.b, attacker, s.AttackLimit) {
		s.b.ApplyMove(m, attacker)
		refuted, err := s.andNode(ctx, attacker, depth)
		s.b.RetractMove(m, attacker)
		if err != nil {
			return move.Move{}, false, err
		}
		if !refuted {
			s.memo[s.b.Key()] = m
			return m, true, nil
		}
	}
	return move.Move{}, false, nil
}

// andNode: defender to move; returns true when some reply refutes the
// attack, i.e. survives every continuation.
func (s *Searcher) andNode(ctx context.Context, attacker board.Color, depth int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.nodes++
	defender := attacker.Other()

	// A defender win trumps everything.
	if _, ok := movegen.FindWinningMove(s.b, defender); ok {
		return true, nil
	}

	defenses := DefenseMoves(s.b, defender, attacker, s.DefenseLimit)
	if len(defenses) == 0 {
		// Nothing slows the threat down.
		return false, nil
	}
	for _, dm := range defenses {
		s.b.ApplyMove(dm, defender)
		_, proven, err := s.orNode(ctx, attacker, depth-1)
		s.b.RetractMove(dm, defender)
		if err != nil {
			return false, err
		}
		if !proven {
			return true, nil
		}
	}
	return false, nil
}

// AttackMoves returns forcing candidates. Both stones of a candidate work
// the same run: pairs of threat cells sharing an open window. Splitting the
// pair across two unrelated runs dilutes each threat to something two
// defensive stones answer, so those pairs are never forcing. Each candidate
// pair is then vetted whole: only moves whose simulated position carries a
// critical or compound threat survive.
func AttackMoves(b *board.Board, attacker board.Color, limit int) []move.Move {
	type cand struct {
		cell  int
		score int
	}
	var cands []cand
	for _, cell := range b.Frontier() {
		if !b.IsEmpty(cell) {
			continue
		}
		pt := threat.AnalyzePoint(b, cell, attacker)
		if pt.Fours > 0 || pt.Compound() || pt.Best.Rank() >= pattern.LiveThree.Rank() {
			cands = append(cands, cand{cell: cell, score: pt.Score})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	if len(cands) == 0 {
		return nil
	}

	var out []move.Move
	add := func(m move.Move) {
		if len(out) < limit && forcingMove(b, m, attacker) {
			out = append(out, m)
		}
	}
	paired := make(map[int]bool)
	for i := 0; i < len(cands) && len(out) < limit; i++ {
		for j := i + 1; j < len(cands) && len(out) < limit; j++ {
			if b.SharedActiveLine(cands[i].cell, cands[j].cell, attacker) {
				add(move.New(cands[i].cell, cands[j].cell))
				paired[cands[i].cell] = true
				paired[cands[j].cell] = true
			}
		}
	}
	// A lone threat cell still attacks with a generic supporting stone,
	// subject to the same vetting.
	for _, c := range cands {
		if len(out) >= limit {
			break
		}
		if paired[c.cell] {
			continue
		}
		if p := movegen.BestPartner(b, attacker, c.cell); p != move.NoCell {
			add(move.New(c.cell, p))
		}
	}
	return out
}

// forcingMove applies the pair and keeps it only when the resulting
// position holds a critical threat, or compounds two high ones. Scoring
// the stones separately before placement overstates pairs whose halves
// never combine into anything the defender must answer.
func forcingMove(b *board.Board, m move.Move, attacker board.Color) bool {
	b.ApplyMove(m, attacker)
	critical, high := threat.Counts(threat.NewEvaluator(b).DetectAll(attacker))
	b.RetractMove(m, attacker)
	return critical > 0 || high >= 2
}

// DefenseMoves returns defender replies: pairs drawn from the defense
// points of the attacker's standing critical threats, topped up with the
// strongest generator moves. The top-up matters: an empty result must mean
// the defender has no legal reply at all, never merely that no defense
// point was named, or unproven attacks read as unanswerable.
func DefenseMoves(b *board.Board, defender, attacker board.Color, limit int) []move.Move {
	ev := threat.NewEvaluator(b)
	cells := ev.DefenseCells(attacker, pattern.RushFour.Rank())

	var out []move.Move
	add := func(m move.Move) {
		if len(out) >= limit {
			return
		}
		for _, have := range out {
			if have.Equals(m) {
				return
			}
		}
		out = append(out, m)
	}

	for i := 0; i < len(cells); i++ {
		for j := i + 1; j < len(cells); j++ {
			add(move.New(cells[i], cells[j]))
		}
	}
	if len(cells) == 1 {
		if p := movegen.BestPartner(b, defender, cells[0]); p != move.NoCell {
			add(move.New(cells[0], p))
		} else {
			add(move.Single(cells[0]))
		}
	}
	for _, sm := range movegen.Generate(b, defender, limit) {
		add(sm.Move)
	}
	return out
}
