// Package solver wires the bitboard position, the negamax search and the
// opening book into a single host-facing entry point.
package solver

import (
	"context"
	"fmt"

	"github.com/mpalmer/c4solver/pkg/board"
	"github.com/mpalmer/c4solver/pkg/book"
	"github.com/mpalmer/c4solver/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// defaultTableBits sizes the transposition table at 2^defaultTableBits
// slots (each slot is one 8-byte word) absent an explicit WithTableBits --
// the host-binding default; native/benchmark callers pass WithTableBits(23).
const defaultTableBits = 20

// SentinelScore is returned alongside ErrIllegalMove: a value the true
// score range [-21,21] never reaches.
const SentinelScore int8 = -128

// options are solver creation options.
type options struct {
	tableBits uint
	seed      int64
}

// Option is a solver creation option.
type Option func(*options)

// WithTableBits overrides the transposition table size: 2^bits slots.
func WithTableBits(bits uint) Option {
	return func(o *options) {
		o.tableBits = bits
	}
}

// WithZobristSeed overrides the default Zobrist hash seed.
func WithZobristSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// Solve parses moves -- a string of column digits '0'..'6', one per ply,
// alternating players starting with Player1 -- replays them from the empty
// board, and returns the exact score of the resulting position from the
// perspective of the side to move.
//
// bookBlob, if non-nil, is the raw 4,200,899-record opening book blob, which
// Solve parses with github.com/mpalmer/c4solver/pkg/book.Load; book lookups
// are skipped entirely when it is nil.
func Solve(ctx context.Context, moves string, bookBlob []byte, opts ...Option) (int8, error) {
	o := options{tableBits: defaultTableBits, seed: board.DefaultZobristSeed}
	for _, fn := range opts {
		fn(&o)
	}

	zt := board.NewZobristTable(o.seed)
	pos := board.NewPositionWithZobrist(zt)

	for i := 0; i < len(moves); i++ {
		col, err := board.ParseCol(moves[i])
		if err != nil {
			return SentinelScore, fmt.Errorf("solver: invalid move %q at ply %d: %w", moves[i], i, board.ErrIllegalMove)
		}
		if _, err := pos.Make(col); err != nil {
			return SentinelScore, fmt.Errorf("solver: %w", err)
		}
	}

	var bk *book.Book
	if bookBlob != nil {
		var err error
		bk, err = book.Load(bookBlob)
		if err != nil {
			return 0, fmt.Errorf("solver: %w", err)
		}
	}

	logw.Infof(ctx, "Solving position (ply=%v, table_bits=%v) %v", pos.Ply(), o.tableBits, version)

	table := search.NewTable(o.tableBits)
	n := search.NewNegamax(table, bk)

	score := n.Solve(ctx, pos)

	logw.Infof(ctx, "Solved: score=%v nodes=%v", score, n.Nodes())
	return score, nil
}
