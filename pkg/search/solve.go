package search

import (
	"context"

	"github.com/mpalmer/c4solver/pkg/board"
)

// Solve runs the null-window iterative-deepening driver to exhaustion and
// returns the exact score of pos from the perspective of the side to move.
//
// The window narrows by one null-window negamax call per iteration; each
// call's midpoint is biased away from zero so that later iterations reuse
// transposition-table entries written by earlier ones rather than
// re-deriving the same sub-window.
func (n *Negamax) Solve(ctx context.Context, pos *board.Position) int8 {
	ply := pos.Ply()

	// A position already decided by the move that produced it falls outside
	// the window bounds below (they assume the game is still undecided at
	// this ply): return its terminal value directly, the same value
	// Search's own terminal check would give any window.
	switch pos.Status() {
	case board.Player1Win, board.Player2Win:
		return -22 + int8((ply+1)/2)
	}

	lo := minScore + int8((ply+1)/2)
	hi := maxScore - int8(ply/2)

	for lo < hi {
		med := lo + (hi-lo)/2
		switch {
		case med >= 0 && hi/2 > med:
			med = max8(med, hi/2)
		case med <= 0 && lo/2 < med:
			med = min8(med, lo/2)
		}

		r := n.Search(ctx, pos, med, med+1)
		if r <= med {
			hi = med
		} else {
			lo = med + 1
		}
	}
	return lo
}
