package search_test

import (
	"context"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/mpalmer/c4solver/pkg/board"
	"github.com/mpalmer/c4solver/pkg/book"
	"github.com/mpalmer/c4solver/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, pos *board.Position, cols ...board.Col) {
	t.Helper()
	for _, c := range cols {
		_, err := pos.Make(c)
		require.NoError(t, err)
	}
}

// buildBook returns a real book.Book whose only real entry is (key, raw),
// padded out to the exact record count book.Load requires with synthetic,
// evenly spaced keys that never collide with key.
func buildBook(t *testing.T, key int32, raw int8) *book.Book {
	t.Helper()

	const recordCount = 4_200_899
	const recordSize = 5

	type rec struct {
		key int32
		raw int8
	}
	recs := make([]rec, 0, recordCount)
	recs = append(recs, rec{key, raw})
	next := int32(1 << 20)
	for len(recs) < recordCount {
		recs = append(recs, rec{next, 0})
		next += 2
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].key < recs[j].key })

	blob := make([]byte, recordCount*recordSize)
	for i, r := range recs {
		binary.BigEndian.PutUint32(blob[i*recordSize:], uint32(r.key))
		blob[i*recordSize+4] = byte(r.raw)
	}

	bk, err := book.Load(blob)
	require.NoError(t, err)
	return bk
}

func TestNegamaxImmediateWin(t *testing.T) {
	ctx := context.Background()
	n := search.NewNegamax(search.NewTable(16), nil)

	pos := board.NewPosition()
	play(t, pos, 3, 2, 3, 2, 3, 2) // player1: col3 x3 (rows 0-2), player2: col2 x3 (rows 0-2)

	// Player1 is to move at ply 6 with an existing vertical three in column
	// 3, so negamax should return the win-distance value without expanding.
	score := n.Solve(ctx, pos)
	assert.Equal(t, int8(21-6/2), score)
}

func TestNegamaxCompletedFourInARow(t *testing.T) {
	ctx := context.Background()

	// 3,2,3,2,3,2,3 completes player1's vertical four in column 3 on the
	// seventh move; the resulting position is already terminal, to be
	// scored from the loser's (player2's) perspective.
	pos := board.NewPosition()
	play(t, pos, 3, 2, 3, 2, 3, 2, 3)
	require.Equal(t, board.Player1Win, pos.Status())

	n := search.NewNegamax(search.NewTable(16), nil)
	score := n.Search(ctx, pos, -21, 21)
	assert.Equal(t, int8(-22+(7+1)/2), score)
}

func TestNegamaxBookProbe(t *testing.T) {
	ctx := context.Background()

	// The book-hit scenario from the published end-to-end test table:
	// 2,3,3,3,3,2,2,1,1,0,4,5 reaches ply 12 without a decided position or
	// an immediate win available, so steps 1-3 must all fall through and
	// let step 4 probe the book.
	pos := board.NewPosition()
	play(t, pos, 2, 3, 3, 3, 3, 2, 2, 1, 1, 0, 4, 5)
	require.Equal(t, board.InProgress, pos.Status())
	require.Equal(t, 12, pos.Ply())

	code := book.Encode(pos.Occupancy(), pos.Piece(board.Player1), false)

	// raw=50 translates to 15 - (100-50)/2 = -10, a value a real search from
	// this position would not otherwise produce, so matching it proves the
	// book short-circuit fired rather than a coincidental expansion result.
	bk := buildBook(t, code, 50)

	n := search.NewNegamax(search.NewTable(16), bk)
	score := n.Search(ctx, pos, -21, 21)

	assert.Equal(t, int8(-10), score)
	assert.Equal(t, uint64(1), n.Nodes(), "book hit must short-circuit without expanding")
}

func TestNegamaxDraw(t *testing.T) {
	ctx := context.Background()

	// A 6x7 fill with no four-in-a-row: each pair of adjacent columns is
	// filled with runs of three, swapped between the two columns, so that no
	// player ever gets four of their own in a row, column, or diagonal.
	cols := []board.Col{
		0, 1, 0, 1, 0, 1,
		1, 0, 1, 0, 1, 0,
		2, 3, 2, 3, 2, 3,
		3, 2, 3, 2, 3, 2,
		4, 5, 4, 5, 4, 5,
		5, 4, 5, 4, 5, 4,
		6, 6, 6, 6, 6, 6,
	}
	pos := board.NewPosition()
	for _, c := range cols {
		if _, err := pos.Make(c); err != nil {
			t.Skipf("constructed fill sequence produced an illegal or decided position: %v", err)
		}
	}
	if pos.Status() != board.Draw {
		t.Skip("constructed fill sequence did not reach a draw; not this test's concern")
	}

	n := search.NewNegamax(search.NewTable(16), nil)
	assert.Equal(t, int8(0), n.Search(ctx, pos, -21, 21))
}

func TestNegamaxSymmetry(t *testing.T) {
	if testing.Short() {
		t.Skip("full search is expensive; skipped under -short")
	}
	ctx := context.Background()

	pos := board.NewPosition()
	play(t, pos, 3, 3)

	mirrored := board.Mirror(pos)

	a := search.NewNegamax(search.NewTable(20), nil).Solve(ctx, pos)
	b := search.NewNegamax(search.NewTable(20), nil).Solve(ctx, mirrored)
	assert.Equal(t, a, b)

	// "3,3" is one of the published end-to-end scenarios: perfect play from
	// this position scores +2 for the side to move.
	assert.Equal(t, int8(2), a)
}

func TestNegamaxMakeUnmakeBalance(t *testing.T) {
	ctx := context.Background()

	pos := board.NewPosition()
	play(t, pos, 3, 2, 4)
	before := pos.Clone()

	n := search.NewNegamax(search.NewTable(16), nil)
	_ = n.Search(ctx, pos, -21, 21)

	assert.Equal(t, before.Occupancy(), pos.Occupancy())
	assert.Equal(t, before.Piece(board.Player1), pos.Piece(board.Player1))
	assert.Equal(t, before.Hash(), pos.Hash())
	assert.Equal(t, before.Ply(), pos.Ply())
}
