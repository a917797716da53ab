package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalMove is returned by Make when the attempted move is not legal:
// the column is out of range, full, or the position is already decided.
var ErrIllegalMove = errors.New("board: illegal move")

// Position represents a Connect Four position: the combined occupancy, the
// player-one occupancy subset, and the scalar game state needed to resume
// search or apply another move.
type Position struct {
	set Bitboard // 1 where either player has a piece.
	p1  Bitboard // 1 where Player1 has a piece (valid only where set is 1).

	ply    int
	status Status
	hash   Hash

	zt *ZobristTable
}

// NewPosition returns an empty starting position using the package-default
// Zobrist table.
func NewPosition() *Position {
	return NewPositionWithZobrist(defaultZobrist)
}

// NewPositionWithZobrist returns an empty starting position hashed with the
// given table -- used by callers that want a non-default seed (e.g. to keep
// a diagnostic run from colliding with a long-lived process's table).
func NewPositionWithZobrist(zt *ZobristTable) *Position {
	return &Position{zt: zt}
}

// Clone returns an independent copy of the position.
func (p *Position) Clone() *Position {
	cp := *p
	return &cp
}

// Ply returns the number of moves played so far.
func (p *Position) Ply() int {
	return p.ply
}

// Turn returns the side to move: Player1 when ply is even.
func (p *Position) Turn() Player {
	if p.ply%2 == 0 {
		return Player1
	}
	return Player2
}

// Status returns the current game outcome.
func (p *Position) Status() Status {
	return p.status
}

// Hash returns the current Zobrist hash.
func (p *Position) Hash() Hash {
	return p.hash
}

// Occupancy returns the combined occupancy bitboard.
func (p *Position) Occupancy() Bitboard {
	return p.set
}

// Piece returns the bitboard of cells occupied by the given player.
func (p *Position) Piece(side Player) Bitboard {
	if side == Player1 {
		return p.p1
	}
	return p.set &^ p.p1
}

// Playable returns the set of currently legal drop cells.
func (p *Position) Playable() Bitboard {
	return Playable(p.set)
}

// columnHeight returns the number of occupied cells in the column.
func (p *Position) columnHeight(col Col) int {
	return (p.set & colMask(int(col))).PopCount()
}

// Make attempts to drop a piece into the given column. It returns the row
// the piece landed on, for O(1) Unmake. Fails when the status is not
// InProgress, the column index is out of range, or the column is full.
func (p *Position) Make(col Col) (int, error) {
	if col < 0 || int(col) >= NumCols {
		return 0, fmt.Errorf("%w: column %v out of range", ErrIllegalMove, col)
	}
	if p.status != InProgress {
		return 0, fmt.Errorf("%w: position already decided (%v)", ErrIllegalMove, p.status)
	}

	row := p.columnHeight(col)
	if row >= NumRows {
		return 0, fmt.Errorf("%w: column %v is full", ErrIllegalMove, col)
	}

	turn := p.Turn()
	cell := BitMask(int(col), row)

	p.set |= cell
	if turn == Player1 {
		p.p1 |= cell
	}
	p.hash ^= p.zt.cell[col][row][turn]
	p.ply++

	switch {
	case HasFourInARow(p.Piece(turn)):
		p.status = WinFor(turn)
	case p.ply == NumCols*NumRows:
		p.status = Draw
	default:
		p.status = InProgress
	}

	return row, nil
}

// Unmake reverses the most recent Make(col), which must have landed on the
// given row. No validation: the caller pledges this reverses the last move.
func (p *Position) Unmake(col Col, row int) {
	p.ply--
	turn := p.Turn() // turn flips back to whoever just moved

	cell := BitMask(int(col), row)
	p.set &^= cell
	p.p1 &^= cell
	p.hash ^= p.zt.cell[col][row][turn]
	p.status = InProgress
}

// HasImmediateWin reports whether the side to move has a playable cell in
// its own winning-squares set, and if so, the winning column.
func (p *Position) HasImmediateWin() (Col, bool) {
	wins := WinningSquares(p.Piece(p.Turn()), p.set) & p.Playable()
	if wins == 0 {
		return 0, false
	}
	return firstColumn(wins), true
}

// OpponentThreats returns the intersection of the opponent's winning
// squares with the currently playable bitmap: the set of columns that, if
// played by the side to move, must be played to avoid an immediate loss.
func (p *Position) OpponentThreats() Bitboard {
	opp := p.Turn().Opponent()
	return WinningSquares(p.Piece(opp), p.set) & p.Playable()
}

// scoredCol is a candidate column annotated with its move-ordering score and
// its index in the fixed center-out preference order.
type scoredCol struct {
	col   Col
	score int
	pref  int
}

// less orders scoredCol descending by score, ties broken by ascending pref
// (i.e. the center-out order).
func (a scoredCol) less(b scoredCol) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.pref < b.pref
}

// CandidateMoveOrder returns the legal columns ordered by the number of new
// winning squares dropping into them creates for the side to move, ties
// broken by the fixed center-out preference order [3,4,2,5,1,6,0].
func (p *Position) CandidateMoveOrder() []Col {
	playable := p.Playable()
	turn := p.Turn()

	var candidates []scoredCol
	for pref, col := range centerOut {
		cell := BitMask(int(col), p.columnHeight(col))
		if playable&cell == 0 {
			continue
		}

		row, err := p.Make(col)
		if err != nil {
			continue // unreachable: playable implies legal
		}
		score := WinningSquares(p.Piece(turn), p.set).PopCount()
		p.Unmake(col, row)

		candidates = append(candidates, scoredCol{col: col, score: score, pref: pref})
	}

	// Insertion sort: stable, and the slice is at most NumCols long.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].less(candidates[j-1]); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	ret := make([]Col, len(candidates))
	for i, c := range candidates {
		ret[i] = c.col
	}
	return ret
}

// firstColumn returns the column of the lowest set bit in a winning-squares
// style bitmap.
func firstColumn(b Bitboard) Col {
	for c := 0; c < NumCols; c++ {
		if b&colMask(c) != 0 {
			return Col(c)
		}
	}
	return 0
}

// Mirror reflects the position across the vertical axis: column c <-> 6-c.
func Mirror(p *Position) *Position {
	m := &Position{ply: p.ply, status: p.status, zt: p.zt}
	for c := 0; c < NumCols; c++ {
		height := (p.set & colMask(c)).PopCount()
		for row := 0; row < height; row++ {
			mc := NumCols - 1 - c
			cell := BitMask(mc, row)

			turn := Player2
			if p.p1.IsSet(c, row) {
				turn = Player1
				m.p1 |= cell
			}
			m.set |= cell
			m.hash ^= p.zt.cell[mc][row][turn]
		}
	}
	return m
}

// String renders the board bottom row first, rows separated by '/', one
// character per column within a row.
func (p *Position) String() string {
	var sb strings.Builder
	for row := 0; row < NumRows; row++ {
		if row != 0 {
			sb.WriteRune('/')
		}
		for col := 0; col < NumCols; col++ {
			switch {
			case !p.set.IsSet(col, row):
				sb.WriteRune('-')
			case p.p1.IsSet(col, row):
				sb.WriteRune('1')
			default:
				sb.WriteRune('2')
			}
		}
	}
	return sb.String()
}
