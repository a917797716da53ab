package board

import "fmt"

// Col is a validated column index in [0, NumCols).
type Col int8

// ParseCol parses a single zero-indexed column digit, '0'..'6'.
func ParseCol(b byte) (Col, error) {
	if b < '0' || b > '6' {
		return 0, fmt.Errorf("invalid column digit: %q", b)
	}
	return Col(b - '0'), nil
}

func (c Col) String() string {
	return fmt.Sprintf("%d", int(c))
}

// centerOut is the fixed column preference order used for move ordering
// and as the tie-break among equally-scored columns: center-out.
var centerOut = [NumCols]Col{3, 4, 2, 5, 1, 6, 0}
