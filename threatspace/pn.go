package threatspace

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/move"
)

// DefaultNodeBudget bounds the proof tree size.
const DefaultNodeBudget = 80000

const pnInf = 1 << 30

// pnNode is one node of the proof tree. An OR node has the attacker to
// move; proof/disproof numbers are measured with respect to proving the
// attacker's forced win.
type pnNode struct {
	m        move.Move
	orNode   bool
	proof    int
	disproof int
	children []*pnNode
	expanded bool
}

// PNSearcher proves forced wins by repeatedly expanding the most-proving
// node until the root is (dis)proven or the node budget runs out. It shares
// the forcing-move generators with the recursive searcher.
type PNSearcher struct {
	b *board.Board

	NodeBudget   int
	AttackLimit  int
	DefenseLimit int
	MaxDepth     int

	nodes int
}

// NewPN wraps a board with default limits.
func NewPN(b *board.Board) *PNSearcher {
	return &PNSearcher{
		b:            b,
		NodeBudget:   DefaultNodeBudget,
		AttackLimit:  DefaultAttackLimit,
		DefenseLimit: DefaultDefenseLimit,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Search runs proof-number search for the attacker. ok is true only when
// the root proof number reaches zero within the budget.
func (p *PNSearcher) Search(ctx context.Context, attacker board.Color) (move.Move, bool, error) {
	p.nodes = 1
	root := &pnNode{orNode: true, proof: 1, disproof: 1}

	for root.proof != 0 && root.disproof != 0 && p.nodes < p.NodeBudget {
		if err := ctx.Err(); err != nil {
			return move.Move{}, false, err
		}
		p.expandMostProving(root, attacker)
	}

	if root.proof == 0 {
		for _, c := range root.children {
			if c.proof == 0 {
				log.Debug().Int("nodes", p.nodes).Str("move", c.m.String()).
					Msg("proof-number-proof")
				return c.m, true, nil
			}
		}
	}
	return move.Move{}, false, nil
}

// expandMostProving walks the most-proving path, expands its leaf, and
// backs the new numbers up while unwinding the board.
func (p *PNSearcher) expandMostProving(root *pnNode, attacker board.Color) {
	path := []*pnNode{root}
	cur := root
	orDepth := 0
	for cur.expanded {
		next := mostPromisingChild(cur)
		p.b.ApplyMove(next.m, moverFor(cur, attacker))
		if cur.orNode {
			orDepth++
		}
		path = append(path, next)
		cur = next
	}

	p.expand(cur, attacker, orDepth)
	setProofNumbers(cur)

	for i := len(path) - 2; i >= 0; i-- {
		p.b.RetractMove(path[i+1].m, moverFor(path[i], attacker))
		setProofNumbers(path[i])
	}
}

// moverFor returns who plays the moves leading out of node.
func moverFor(node *pnNode, attacker board.Color) board.Color {
	if node.orNode {
		return attacker
	}
	return attacker.Other()
}

// expand generates the node's children and scores terminal ones in place.
func (p *PNSearcher) expand(node *pnNode, attacker board.Color, orDepth int) {
	// Terminal nodes keep their numbers; never grow children under them.
	if node.proof == 0 || node.disproof == 0 {
		return
	}
	defender := attacker.Other()
	node.expanded = true

	if node.orNode {
		if orDepth >= p.MaxDepth {
			node.proof, node.disproof = pnInf, 0
			node.expanded = false
			return
		}
		for _, m := range AttackMoves(p.b, attacker, p.AttackLimit) {
			child := &pnNode{m: m, proof: 1, disproof: 1}
			if p.winsImmediately(m, attacker) {
				child.proof, child.disproof = 0, pnInf
			}
			node.children = append(node.children, child)
			p.nodes++
		}
		if len(node.children) == 0 {
			// No forcing continuation: the win is unprovable here.
			node.proof, node.disproof = pnInf, 0
			node.expanded = false
		}
		return
	}

	for _, m := range DefenseMoves(p.b, defender, attacker, p.DefenseLimit) {
		child := &pnNode{m: m, orNode: true, proof: 1, disproof: 1}
		if p.winsImmediately(m, defender) {
			child.proof, child.disproof = pnInf, 0
		}
		node.children = append(node.children, child)
		p.nodes++
	}
	if len(node.children) == 0 {
		// The standing threat cannot be answered.
		node.proof, node.disproof = 0, pnInf
		node.expanded = false
	}
}

func (p *PNSearcher) winsImmediately(m move.Move, c board.Color) bool {
	if m.IsSingle() {
		return p.b.CheckWinIfPlace(m.First, c)
	}
	return p.b.CheckWinIfPlaceTwo(m.First, m.Second, c)
}

// setProofNumbers recomputes a node's numbers from its children.
func setProofNumbers(node *pnNode) {
	if !node.expanded {
		return
	}
	if node.orNode {
		proof := pnInf
		disproof := 0
		for _, c := range node.children {
			proof = min(proof, c.proof)
			disproof = min(pnInf, disproof+c.disproof)
		}
		node.proof, node.disproof = proof, disproof
		return
	}
	proof := 0
	disproof := pnInf
	for _, c := range node.children {
		proof = min(pnInf, proof+c.proof)
		disproof = min(disproof, c.disproof)
	}
	node.proof, node.disproof = proof, disproof
}

// mostPromisingChild picks the unsolved child matching the parent's driving
// number. Solved children are skipped; they cannot make progress.
func mostPromisingChild(node *pnNode) *pnNode {
	unsolved := func(c *pnNode) bool { return c.proof > 0 && c.disproof > 0 }
	if node.orNode {
		for _, c := range node.children {
			if c.proof == node.proof && unsolved(c) {
				return c
			}
		}
	} else {
		for _, c := range node.children {
			if c.disproof == node.disproof && unsolved(c) {
				return c
			}
		}
	}
	for _, c := range node.children {
		if unsolved(c) {
			return c
		}
	}
	return node.children[0]
}
