// Package book implements the compressed opening book: a canonical
// Huffman-style position encoding, a flat sorted-by-key on-disk record
// format, and symmetry-aware binary-search lookup.
package book

import "github.com/mpalmer/c4solver/pkg/board"

// Encode computes the canonical code for a position given its combined
// occupancy and player-one subset. Columns are traversed 0..6 (or 6..0 when
// reversed is true, giving the column-mirrored code). Within each column,
// cells are walked upward from row 0: each occupied cell appends a '1' bit
// followed by a player bit (0 for Player1, 1 for Player2); after the last
// occupied cell (full columns included) a single '0' bit terminates the
// column. The accumulated value is left-shifted one extra bit (leaving the
// LSB zero) and returned as a signed 32-bit integer.
//
// For positions with at most 12 pieces this is injective (more pieces need
// more than 32 bits, and the high bits are lost): no two distinct such
// positions produce the same code, and Decode inverts it exactly for any
// code produced from a position with exactly 12 pieces -- the opening
// book's domain, where every column contributes exactly 2*height+1 bits and
// the total is always 31, aligning the code's most significant meaningful
// bit with bit 30 as Decode expects.
func Encode(set, p1 board.Bitboard, reversed bool) int32 {
	var v uint32

	for i := 0; i < board.NumCols; i++ {
		col := i
		if reversed {
			col = board.NumCols - 1 - i
		}

		row := 0
		for row < board.NumRows && set.IsSet(col, row) {
			v = (v << 1) | 1

			playerBit := uint32(1) // Player2
			if p1.IsSet(col, row) {
				playerBit = 0 // Player1
			}
			v = (v << 1) | playerBit

			row++
		}
		v <<= 1 // terminator: '0' bit
	}

	v <<= 1 // final extra left shift, LSB zero
	return int32(v)
}

// Decode inverts Encode(..., false) for a code produced from a 12-piece
// position (the opening book's exclusive domain). It reads bits from bit 30
// downward: a '0' bit closes the current column and advances to the next
// (resetting row to 0); a '1' bit consumes the next bit as the player
// indicator, sets the cell at (col, row) for that player, and increments
// row.
func Decode(code int32) (set, p1 board.Bitboard) {
	v := uint32(code) >> 1 // undo the final left shift

	bitPos := 30
	nextBit := func() int {
		if bitPos < 0 {
			return 0
		}
		b := int((v >> uint(bitPos)) & 1)
		bitPos--
		return b
	}

	for col := 0; col < board.NumCols; col++ {
		row := 0
		for ; row < board.NumRows; row++ {
			if nextBit() == 0 {
				break // terminator: column done
			}

			cell := board.BitMask(col, row)
			set |= cell
			if nextBit() == 0 {
				p1 |= cell
			}
		}
		if row == board.NumRows {
			nextBit() // a full column still carries its terminator
		}
	}
	return set, p1
}
