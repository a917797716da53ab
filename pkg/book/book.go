package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/mpalmer/c4solver/pkg/board"
)

// recordSize is the on-disk width of one entry: a 4-byte big-endian signed
// key followed by a 1-byte signed raw eval.
const recordSize = 5

// recordCount is the exact number of 12-ply positions the book covers.
const recordCount = 4_200_899

// ErrBookLoadFailure is returned by Load when the blob's length doesn't
// match the expected record count, or it cannot otherwise be parsed.
var ErrBookLoadFailure = errors.New("book: load failure")

// corrections overrides translated scores for keys with documented
// evaluation errors in the source file.
var corrections = map[int32]int8{
	-689592004: 7,
	2101158888: 4,
	1599634104: 2,
}

// entry is a single book record: a canonical position code and its
// translated (and, where documented, corrected) score.
type entry struct {
	key   int32
	score int8
}

// Book is an immutable, sorted-by-key opening book covering every 12-ply
// position, loaded once from a flat on-disk blob.
type Book struct {
	entries []entry
}

// Load parses a book blob. The blob must decode to exactly recordCount
// fixed-width records, sorted ascending by key; anything else is an
// ErrBookLoadFailure.
func Load(blob []byte) (*Book, error) {
	if len(blob)%recordSize != 0 || len(blob)/recordSize != recordCount {
		return nil, fmt.Errorf("%w: got %d bytes, want %d records of %d bytes",
			ErrBookLoadFailure, len(blob), recordCount, recordSize)
	}

	entries := make([]entry, recordCount)
	for i := range entries {
		rec := blob[i*recordSize : (i+1)*recordSize]

		key := int32(binary.BigEndian.Uint32(rec[:4]))
		raw := int8(rec[4])

		score := translateEval(raw)
		if corrected, ok := corrections[key]; ok {
			score = corrected
		}

		entries[i] = entry{key: key, score: score}
	}

	for i := 1; i < len(entries); i++ {
		if entries[i-1].key > entries[i].key {
			return nil, fmt.Errorf("%w: records not sorted ascending by key at index %d", ErrBookLoadFailure, i)
		}
	}

	return &Book{entries: entries}, nil
}

// translateEval maps the book's plies-to-mate byte encoding into the
// solver's score scale.
func translateEval(b int8) int8 {
	switch {
	case b > 0:
		return int8(15 - (100-int(b))/2)
	case b < 0:
		return int8(-15 - (-99-int(b))/2)
	default:
		return 0
	}
}

// Lookup probes the book for pos, trying the direct code first and the
// column-mirrored code on a miss.
func (bk *Book) Lookup(pos *board.Position) (int8, bool) {
	set, p1 := pos.Occupancy(), pos.Piece(board.Player1)

	if score, ok := bk.Get(Encode(set, p1, false)); ok {
		return score, true
	}
	return bk.Get(Encode(set, p1, true))
}

// Get probes the book directly by canonical code, bypassing Lookup's
// position encoding and mirror fallback.
func (bk *Book) Get(code int32) (int8, bool) {
	return bk.find(code)
}

// find binary-searches the sorted entries for an exact key match.
func (bk *Book) find(code int32) (int8, bool) {
	i := sort.Search(len(bk.entries), func(i int) bool {
		return bk.entries[i].key >= code
	})
	if i < len(bk.entries) && bk.entries[i].key == code {
		return bk.entries[i].score, true
	}
	return 0, false
}
