package board

// Adjacent returns the up to eight coordinates one step away from c,
// clipped at the board edges.
func Adjacent(c Coord) []Coord {
	return block(c, false)
}

// Area is Adjacent plus c itself, in row-major order.
func Area(c Coord) []Coord {
	return block(c, true)
}

// Cross returns c and its orthogonal neighbours that lie on the board.
func Cross(c Coord) []Coord {
	out := []Coord{}
	for _, d := range []Coord{{-1, 0}, {0, -1}, {0, 0}, {0, 1}, {1, 0}} {
		n := Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if n.Valid() {
			out = append(out, n)
		}
	}
	return out
}

func block(c Coord, self bool) []Coord {
	out := make([]Coord, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 && !self {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if n.Valid() {
				out = append(out, n)
			}
		}
	}
	return out
}
