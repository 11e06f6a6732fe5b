package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCoord(t *testing.T, row, col string) Coord {
	t.Helper()
	c, err := ParseCoord(row, col)
	require.NoError(t, err)
	return c
}

// placeFleet lays the catalog out on rows A..E starting at column 1.
func placeFleet(t *testing.T, b *Board) {
	t.Helper()
	for i, spec := range Catalog {
		require.NoError(t, b.PlaceShip(spec.Name, Coord{Row: i, Col: 0}, false))
	}
}

func TestParseCoord(t *testing.T) {
	cases := []struct {
		row, col string
		want     Coord
		wantErr  bool
	}{
		{row: "A", col: "1", want: Coord{0, 0}},
		{row: "J", col: "10", want: Coord{9, 9}},
		{row: "C", col: "7", want: Coord{2, 6}},
		{row: "K", col: "1", wantErr: true},
		{row: "a", col: "1", wantErr: true},
		{row: "A", col: "0", wantErr: true},
		{row: "A", col: "11", wantErr: true},
		{row: "A", col: "01", wantErr: true},
		{row: "", col: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.row+tc.col, func(t *testing.T) {
			got, err := ParseCoord(tc.row, tc.col)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidCoord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.row+tc.col, got.String())
		})
	}
}

func TestBoard_HundredDistinctStableCells(t *testing.T) {
	b := New()
	seen := map[*Cell]bool{}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			cell := b.At(Coord{Row: r, Col: c})
			require.NotNil(t, cell)
			assert.Equal(t, Coord{Row: r, Col: c}, cell.Coord)
			assert.Same(t, cell, b.At(Coord{Row: r, Col: c}))
			seen[cell] = true
		}
	}
	assert.Len(t, seen, 100)
	assert.Nil(t, b.At(Coord{Row: 10, Col: 0}))
	assert.Nil(t, b.At(Coord{Row: 0, Col: -1}))
}

func TestPlacementRun(t *testing.T) {
	run, ok := PlacementRun(Coord{Row: 0, Col: 6}, 4, false)
	require.True(t, ok)
	assert.Equal(t, []Coord{{0, 6}, {0, 7}, {0, 8}, {0, 9}}, run)

	run, ok = PlacementRun(Coord{Row: 5, Col: 2}, 5, true)
	require.True(t, ok)
	assert.Equal(t, Coord{9, 2}, run[4])

	_, ok = PlacementRun(Coord{Row: 0, Col: 7}, 4, false)
	assert.False(t, ok)
	_, ok = PlacementRun(Coord{Row: 6, Col: 0}, 5, true)
	assert.False(t, ok)
}

func TestPlaceShip(t *testing.T) {
	b := New()
	require.NoError(t, b.PlaceShip(Battleship, mustCoord(t, "B", "3"), true))

	ship := b.Ship(3)
	assert.True(t, ship.Placed)
	require.Len(t, ship.Cells, 4)
	for slot, idx := range ship.Cells {
		cell := b.Cell(idx)
		assert.Equal(t, 3, cell.Ship)
		assert.Equal(t, slot+1, cell.Slot)
		assert.True(t, cell.Vertical)
		assert.Equal(t, 2, cell.Coord.Col)
	}
	assert.Equal(t, 4, b.OccupiedCount())
}

func TestPlaceShip_FailuresLeaveBoardUntouched(t *testing.T) {
	cases := []struct {
		name     string
		ship     ShipName
		at       Coord
		vertical bool
		wantErr  error
	}{
		{name: "unknown ship", ship: "canoe", at: Coord{5, 5}, wantErr: ErrUnknownShip},
		{name: "off the right edge", ship: Aircraft, at: Coord{5, 6}, wantErr: ErrOutOfBounds},
		{name: "off the bottom edge", ship: Submarine, at: Coord{8, 0}, vertical: true, wantErr: ErrOutOfBounds},
		{name: "collides with destroyer", ship: Cruiser, at: Coord{0, 1}, vertical: true, wantErr: ErrCollision},
		{name: "already placed", ship: Destroyer, at: Coord{7, 7}, wantErr: ErrAlreadyPlaced},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New()
			require.NoError(t, b.PlaceShip(Destroyer, Coord{0, 0}, false))
			before := *b

			err := b.PlaceShip(tc.ship, tc.at, tc.vertical)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, before.cells, b.cells)
			assert.Equal(t, 1, b.PlacedCount())
		})
	}
}

func TestClearShips(t *testing.T) {
	b := New()
	placeFleet(t, b)
	require.True(t, b.FleetComplete())
	assert.Equal(t, FleetCells, b.OccupiedCount())

	b.ClearShips()
	assert.Zero(t, b.OccupiedCount())
	assert.Zero(t, b.PlacedCount())
	for _, ship := range b.Ships() {
		assert.Empty(t, ship.Cells)
	}
	// the fleet can be laid out again afterwards
	placeFleet(t, b)
	assert.True(t, b.FleetComplete())
}

func TestShipDestroyed(t *testing.T) {
	b := New()
	placeFleet(t, b)

	b.At(Coord{0, 0}).Destroyed = true
	assert.False(t, b.ShipDestroyed(0))
	b.At(Coord{0, 1}).Destroyed = true
	assert.True(t, b.ShipDestroyed(0))
	assert.False(t, b.AllShipsDestroyed())

	for _, ship := range b.Ships() {
		for _, idx := range ship.Cells {
			b.Cell(idx).Destroyed = true
		}
	}
	assert.True(t, b.AllShipsDestroyed())
}

func TestTraps(t *testing.T) {
	b := New()
	placeFleet(t, b)

	require.ErrorIs(t, b.PlaceMine(Coord{0, 0}), ErrMineOnShip)
	require.NoError(t, b.PlaceMine(Coord{9, 9}))
	require.ErrorIs(t, b.PlaceShield(Coord{9, 9}), ErrTrapOccupied)
	require.NoError(t, b.PlaceShield(Coord{0, 0}))
	require.ErrorIs(t, b.PlaceMine(Coord{10, 0}), ErrInvalidCoord)

	mines, shields := b.TrapCount()
	assert.Equal(t, 1, mines)
	assert.Equal(t, 1, shields)
}

func TestPlaceShip_RejectsMinedCell(t *testing.T) {
	b := New()
	require.NoError(t, b.PlaceMine(Coord{0, 1}))

	err := b.PlaceShip(Destroyer, Coord{0, 0}, false)
	require.ErrorIs(t, err, ErrMineOnShip)
	assert.False(t, b.At(Coord{0, 0}).HasShip())
	assert.False(t, b.At(Coord{0, 1}).HasShip())
	assert.Equal(t, 0, b.PlacedCount())

	require.NoError(t, b.PlaceShip(Destroyer, Coord{1, 0}, false))
}

func TestAdjacentAndArea(t *testing.T) {
	cases := []struct {
		name     string
		at       Coord
		adjacent int
	}{
		{name: "corner", at: Coord{0, 0}, adjacent: 3},
		{name: "far corner", at: Coord{9, 9}, adjacent: 3},
		{name: "edge", at: Coord{0, 5}, adjacent: 5},
		{name: "interior", at: Coord{4, 4}, adjacent: 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adj := Adjacent(tc.at)
			assert.Len(t, adj, tc.adjacent)
			assert.NotContains(t, adj, tc.at)
			for _, c := range adj {
				assert.True(t, c.Valid())
				assert.LessOrEqual(t, abs(c.Row-tc.at.Row), 1)
				assert.LessOrEqual(t, abs(c.Col-tc.at.Col), 1)
			}

			area := Area(tc.at)
			assert.Len(t, area, tc.adjacent+1)
			assert.Contains(t, area, tc.at)
		})
	}
}

func TestAdjacent_DoesNotWrap(t *testing.T) {
	for _, c := range Adjacent(Coord{Row: 3, Col: 9}) {
		assert.NotEqual(t, 0, c.Col, "wrapped to column 1: %v", c)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
