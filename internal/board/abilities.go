package board

import (
	"errors"
	"fmt"
)

// The abilities below act on a single board and are not reachable from the
// instruction set yet; they exist so a product decision can wire them
// without touching the arena model.

var ErrShipSunk = errors.New("ship already sunk")

// Sonar reveals every cell in the area around c and returns the cells that
// were newly revealed.
func (b *Board) Sonar(c Coord) []*Cell {
	var out []*Cell
	for _, n := range Area(c) {
		cell := b.At(n)
		if !cell.Revealed {
			cell.Revealed = true
			out = append(out, cell)
		}
	}
	return out
}

// AirStrike destroys the area around c. Shielded cells are spared and
// lose their shield.
func (b *Board) AirStrike(c Coord) []*Cell {
	return b.strikeAll(Area(c))
}

// Missile destroys c and its orthogonal neighbours.
func (b *Board) Missile(c Coord) []*Cell {
	return b.strikeAll(Cross(c))
}

func (b *Board) strikeAll(coords []Coord) []*Cell {
	var out []*Cell
	for _, n := range coords {
		cell := b.At(n)
		if cell.Shield {
			cell.Shield = false
			continue
		}
		if cell.Destroyed {
			continue
		}
		cell.Destroyed = true
		cell.Revealed = true
		out = append(out, cell)
	}
	return out
}

// Heal restores up to two destroyed cells of a damaged ship. Each ship can
// be healed once.
func (b *Board) Heal(name ShipName) ([]*Cell, error) {
	i, _, ok := LookupShip(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShip, name)
	}
	ship := &b.ships[i]
	switch {
	case !ship.Placed:
		return nil, fmt.Errorf("%w: %s", ErrShipNotPlaced, name)
	case ship.Healed:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyHealed, name)
	case b.ShipDestroyed(i):
		return nil, fmt.Errorf("%w: %s", ErrShipSunk, name)
	}

	var healed []*Cell
	for _, idx := range ship.Cells {
		if len(healed) == 2 {
			break
		}
		cell := &b.cells[idx]
		if cell.Destroyed {
			cell.Destroyed = false
			healed = append(healed, cell)
		}
	}
	if len(healed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToHeal, name)
	}
	ship.Healed = true
	return healed, nil
}
