// Package search contains the negamax core, the transposition table and the
// iterative-deepening driver.
package search

import (
	"github.com/mpalmer/c4solver/pkg/board"
	"go.uber.org/atomic"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

const (
	// exactRange bounds the magnitude of an exact score: [-25,25].
	exactRange = 25
	// boundOffset is added/subtracted to fold the bound kind into the byte.
	boundOffset = 50
)

// encodeValue packs a score and its bound into a single signed byte:
// exact values pass through unchanged, an upper bound adds boundOffset
// (landing in (25,100]), and a lower bound subtracts it (landing in
// [-100,-25)).
func encodeValue(score int8, bound Bound) int8 {
	switch bound {
	case UpperBound:
		return score + boundOffset
	case LowerBound:
		return score - boundOffset
	default:
		return score
	}
}

// decodeValue is the inverse of encodeValue.
func decodeValue(v int8) (int8, Bound) {
	switch {
	case v < -exactRange:
		return v + boundOffset, LowerBound
	case v > exactRange:
		return v - boundOffset, UpperBound
	default:
		return v, ExactBound
	}
}

// Table is a fixed-size, direct-mapped transposition table. Each slot packs
// the top 56 bits of the Zobrist key and a signed value byte encoding both
// the bound type and the score into a single 64-bit word, per entry. A
// zero-valued slot is treated as empty: it can never arise from a real
// write because Put always ORs in the (non-zero after truncation, in
// the overwhelming majority of cases) key bits and a non-zero-safe value
// byte -- see Get's key-match check, which is the actual source of truth.
type Table struct {
	slots []atomic.Uint64
	mask  uint64
}

// NewTable allocates a table with 2^bits slots.
func NewTable(bits uint) *Table {
	n := uint64(1) << bits
	return &Table{
		slots: make([]atomic.Uint64, n),
		mask:  n - 1,
	}
}

// Bits returns the log2 of the slot count the table was built with.
func (t *Table) Bits() uint {
	n := uint64(len(t.slots))
	bits := uint(0)
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}

// Put unconditionally overwrites the slot addressed by the key's low bits.
func (t *Table) Put(key board.Hash, score int8, bound Bound) {
	addr := uint64(key) & t.mask
	packed := (uint64(key) >> 8 << 8) | uint64(uint8(encodeValue(score, bound)))
	t.slots[addr].Store(packed)
}

// Get returns the stored (score, bound) for key, if the slot's truncated key
// matches. A zero slot -- the table's zero value -- is never reported as a
// hit, so the initial cleared table cannot produce a false positive.
func (t *Table) Get(key board.Hash) (score int8, bound Bound, ok bool) {
	addr := uint64(key) & t.mask
	packed := t.slots[addr].Load()
	if packed == 0 {
		return 0, 0, false
	}
	if packed>>8<<8 != uint64(key)>>8<<8 {
		return 0, 0, false
	}

	v, b := decodeValue(int8(uint8(packed)))
	return v, b, true
}
