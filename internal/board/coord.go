package board

import (
	"errors"
	"fmt"
)

const Size = 10

// Rows and Cols are the wire tokens in board order. Columns are matched as
// whole tokens, so "10" is never read as "1" followed by "0".
var (
	Rows = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	Cols = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
)

var ErrInvalidCoord = errors.New("invalid coordinate")

// Coord is a zero-based (row, column) pair on a board.
type Coord struct {
	Row int
	Col int
}

func ParseCoord(row, col string) (Coord, error) {
	r := indexOf(Rows, row)
	if r < 0 {
		return Coord{}, fmt.Errorf("%w: row %q", ErrInvalidCoord, row)
	}
	c := indexOf(Cols, col)
	if c < 0 {
		return Coord{}, fmt.Errorf("%w: column %q", ErrInvalidCoord, col)
	}
	return Coord{Row: r, Col: c}, nil
}

func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Index is the arena slot of c. Callers must check Valid first.
func (c Coord) Index() int { return c.Row*Size + c.Col }

func (c Coord) RowToken() string { return Rows[c.Row] }
func (c Coord) ColToken() string { return Cols[c.Col] }

func (c Coord) String() string {
	if !c.Valid() {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return c.RowToken() + c.ColToken()
}

func CoordOf(index int) Coord {
	return Coord{Row: index / Size, Col: index % Size}
}

func indexOf(tokens []string, tok string) int {
	for i, t := range tokens {
		if t == tok {
			return i
		}
	}
	return -1
}
