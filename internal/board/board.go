package board

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownShip   = errors.New("unknown ship")
	ErrAlreadyPlaced = errors.New("ship already placed")
	ErrOutOfBounds   = errors.New("placement runs off the board")
	ErrCollision     = errors.New("cell already holds a ship")
	ErrTrapOccupied  = errors.New("cell already holds a trap")
	ErrMineOnShip    = errors.New("mines must be placed on open water")
	ErrCellDestroyed = errors.New("cell already destroyed")
	ErrShipNotPlaced = errors.New("ship not placed")
	ErrAlreadyHealed = errors.New("ship already healed")
	ErrNothingToHeal = errors.New("ship has no destroyed cells")
)

const noShip = -1

// Cell is one position on a board. It refers to its ship by fleet index.
type Cell struct {
	Coord     Coord
	Ship      int
	Slot      int
	Vertical  bool
	Destroyed bool
	Revealed  bool
	Mine      bool
	Shield    bool
}

func (c *Cell) HasShip() bool { return c.Ship != noShip }
func (c *Cell) Alive() bool   { return c.HasShip() && !c.Destroyed }

// Board is the 10x10 arena owned by one seat together with that seat's fleet.
type Board struct {
	cells [Size * Size]Cell
	ships []Ship
}

func New() *Board {
	b := &Board{ships: newFleet()}
	for i := range b.cells {
		b.cells[i] = Cell{Coord: CoordOf(i), Ship: noShip}
	}
	return b
}

// At returns the cell at c, or nil when c is off the board. The pointer is
// stable for the lifetime of the board.
func (b *Board) At(c Coord) *Cell {
	if !c.Valid() {
		return nil
	}
	return &b.cells[c.Index()]
}

func (b *Board) Cell(index int) *Cell { return &b.cells[index] }

func (b *Board) Ships() []Ship { return b.ships }

func (b *Board) Ship(i int) *Ship { return &b.ships[i] }

// ShipOf returns the ship occupying cell, if any.
func (b *Board) ShipOf(cell *Cell) *Ship {
	if cell == nil || !cell.HasShip() {
		return nil
	}
	return &b.ships[cell.Ship]
}

// PlacementRun returns the length consecutive coordinates starting at start,
// walking columns for horizontal ships and rows for vertical ones.
func PlacementRun(start Coord, length int, vertical bool) ([]Coord, bool) {
	run := make([]Coord, 0, length)
	for i := 0; i < length; i++ {
		c := start
		if vertical {
			c.Row += i
		} else {
			c.Col += i
		}
		if !c.Valid() {
			return nil, false
		}
		run = append(run, c)
	}
	return run, true
}

// PlaceShip binds the named ship to its run starting at start. The board is
// untouched when an error is returned.
func (b *Board) PlaceShip(name ShipName, start Coord, vertical bool) error {
	i, spec, ok := LookupShip(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownShip, name)
	}
	ship := &b.ships[i]
	if ship.Placed {
		return fmt.Errorf("%w: %s", ErrAlreadyPlaced, name)
	}
	run, ok := PlacementRun(start, spec.Length, vertical)
	if !ok {
		return fmt.Errorf("%w: %s at %s", ErrOutOfBounds, name, start)
	}
	for _, c := range run {
		cell := b.At(c)
		if cell.HasShip() {
			return fmt.Errorf("%w: %s", ErrCollision, c)
		}
		if cell.Mine {
			return fmt.Errorf("%w: %s", ErrMineOnShip, c)
		}
	}

	ship.Cells = ship.Cells[:0]
	for slot, c := range run {
		cell := b.At(c)
		cell.Ship = i
		cell.Slot = slot + 1
		cell.Vertical = vertical
		ship.Cells = append(ship.Cells, c.Index())
	}
	ship.Placed = true
	ship.Vertical = vertical
	return nil
}

// ClearShips returns every ship to the unplaced state and releases its cells.
func (b *Board) ClearShips() {
	for i := range b.ships {
		ship := &b.ships[i]
		for _, idx := range ship.Cells {
			cell := &b.cells[idx]
			cell.Ship = noShip
			cell.Slot = 0
			cell.Vertical = false
		}
		ship.Cells = nil
		ship.Placed = false
		ship.Vertical = false
	}
}

func (b *Board) PlacedCount() int {
	n := 0
	for i := range b.ships {
		if b.ships[i].Placed {
			n++
		}
	}
	return n
}

func (b *Board) OccupiedCount() int {
	n := 0
	for i := range b.cells {
		if b.cells[i].HasShip() {
			n++
		}
	}
	return n
}

// FleetComplete reports whether every catalog ship is on the board.
func (b *Board) FleetComplete() bool {
	return b.PlacedCount() == len(Catalog) && b.OccupiedCount() == FleetCells
}

func (b *Board) ShipDestroyed(i int) bool {
	ship := &b.ships[i]
	if !ship.Placed {
		return false
	}
	for _, idx := range ship.Cells {
		if !b.cells[idx].Destroyed {
			return false
		}
	}
	return true
}

func (b *Board) AllShipsDestroyed() bool {
	for i := range b.ships {
		if !b.ShipDestroyed(i) {
			return false
		}
	}
	return true
}

func (b *Board) PlaceMine(c Coord) error {
	cell := b.At(c)
	if cell == nil {
		return fmt.Errorf("%w: %s", ErrInvalidCoord, c)
	}
	if cell.Mine || cell.Shield {
		return fmt.Errorf("%w: %s", ErrTrapOccupied, c)
	}
	if cell.HasShip() {
		return fmt.Errorf("%w: %s", ErrMineOnShip, c)
	}
	cell.Mine = true
	return nil
}

func (b *Board) PlaceShield(c Coord) error {
	cell := b.At(c)
	if cell == nil {
		return fmt.Errorf("%w: %s", ErrInvalidCoord, c)
	}
	if cell.Mine || cell.Shield {
		return fmt.Errorf("%w: %s", ErrTrapOccupied, c)
	}
	if cell.Destroyed {
		return fmt.Errorf("%w: %s", ErrCellDestroyed, c)
	}
	cell.Shield = true
	return nil
}

func (b *Board) TrapCount() (mines, shields int) {
	for i := range b.cells {
		if b.cells[i].Mine {
			mines++
		}
		if b.cells[i].Shield {
			shields++
		}
	}
	return mines, shields
}

// Revealed lists the revealed cells in arena order.
func (b *Board) Revealed() []*Cell {
	var out []*Cell
	for i := range b.cells {
		if b.cells[i].Revealed {
			out = append(out, &b.cells[i])
		}
	}
	return out
}
