package search

import (
	"context"
	"math/bits"

	"github.com/mpalmer/c4solver/pkg/board"
	"github.com/mpalmer/c4solver/pkg/book"
	"go.uber.org/atomic"

	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// minScore and maxScore bound the solver's score scale: 21 corresponds to a
// win on the earliest possible ply, and distance-to-mate is monotone in ply.
const (
	minScore int8 = -21
	maxScore int8 = 21
)

// Negamax holds the mutable state threaded through a single search: the
// transposition table, an optional opening book, and the node counter.
type Negamax struct {
	Table *Table
	Book  *book.Book

	nodes atomic.Uint64
}

// NewNegamax returns a search ready to run against table, optionally
// consulting bk at ply 12. bk may be nil.
func NewNegamax(table *Table, bk *book.Book) *Negamax {
	return &Negamax{Table: table, Book: bk}
}

// Nodes returns the number of positions visited (Search calls made) so far.
func (n *Negamax) Nodes() uint64 {
	return n.nodes.Load()
}

// Search is the negamax core: it returns the score of pos from the
// perspective of the side to move, bounded to the window [alpha, beta].
// ctx is checked once per node for an optional host-visible interrupt; it
// is not part of the core contract, so a cancelled
// context simply stops the search early and its return value must be
// discarded by the caller.
func (n *Negamax) Search(ctx context.Context, pos *board.Position, alpha, beta int8) int8 {
	n.nodes.Inc()

	if contextx.IsCancelled(ctx) {
		return alpha
	}

	ply := pos.Ply()

	// 1. Terminal status.
	switch pos.Status() {
	case board.Draw:
		return 0
	case board.Player1Win, board.Player2Win:
		return -22 + int8((ply+1)/2)
	}

	// 2. Window tightening from ply-bound.
	maxPossible := maxScore - int8(ply/2)
	minPossible := minScore + int8((ply+1)/2)
	if maxPossible <= alpha {
		return maxPossible
	}
	if minPossible >= beta {
		return minPossible
	}

	// 3. Immediate win.
	if _, ok := pos.HasImmediateWin(); ok {
		return maxPossible
	}

	// 4. Book probe.
	if ply == 12 && n.Book != nil {
		if score, ok := n.Book.Lookup(pos); ok {
			return score
		}
	}

	// 5. Opponent forced-response handling.
	threats := pos.OpponentThreats()
	switch threats.PopCount() {
	case 0:
		// continue
	case 1:
		col := firstThreatColumn(threats)
		row, err := pos.Make(col)
		if err != nil {
			panic(err) // unreachable: col came from the playable bitmap
		}
		v := -n.Search(ctx, pos, -beta, -alpha)
		pos.Unmake(col, row)
		return v
	default:
		return minPossible
	}

	// 6. TT probe.
	hash := pos.Hash()
	if v, bound, ok := n.Table.Get(hash); ok {
		switch bound {
		case ExactBound:
			return v
		case LowerBound:
			if v >= beta {
				return v
			}
			alpha = max8(alpha, v)
		case UpperBound:
			if v <= alpha {
				return v
			}
			beta = min8(beta, v)
		}
	}

	// 7 & 8. Expansion, fail-hard cutoff, fall-through store.
	for _, col := range pos.CandidateMoveOrder() {
		row, err := pos.Make(col)
		if err != nil {
			panic(err) // unreachable: col came from CandidateMoveOrder
		}
		v := -n.Search(ctx, pos, -beta, -alpha)
		pos.Unmake(col, row)

		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			n.Table.Put(hash, beta, LowerBound)
			return beta
		}
	}

	n.Table.Put(hash, alpha, UpperBound)
	return alpha
}

// firstThreatColumn returns the column of the single set bit in a
// one-threat bitmap.
func firstThreatColumn(b board.Bitboard) board.Col {
	return board.Col(bits.TrailingZeros64(uint64(b)) / 8)
}

func max8(a, b int8) int8 {
	if a > b {
		return a
	}
	return b
}

func min8(a, b int8) int8 {
	if a < b {
		return a
	}
	return b
}
