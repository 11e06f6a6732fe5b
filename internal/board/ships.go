package board

type ShipName string

const (
	Destroyer  ShipName = "destroyer"
	Submarine  ShipName = "submarine"
	Cruiser    ShipName = "cruiser"
	Battleship ShipName = "battleship"
	Aircraft   ShipName = "aircraft"
)

type ShipSpec struct {
	Name   ShipName
	Length int
}

// Catalog is the fixed fleet every seat places, in catalog order.
var Catalog = []ShipSpec{
	{Name: Destroyer, Length: 2},
	{Name: Submarine, Length: 3},
	{Name: Cruiser, Length: 3},
	{Name: Battleship, Length: 4},
	{Name: Aircraft, Length: 5},
}

// FleetCells is the number of cells a fully placed fleet occupies.
const FleetCells = 17

func LookupShip(name ShipName) (int, ShipSpec, bool) {
	for i, spec := range Catalog {
		if spec.Name == name {
			return i, spec, true
		}
	}
	return -1, ShipSpec{}, false
}

// Ship records the arena indices of the cells it occupies rather than
// pointers to them.
type Ship struct {
	Name     ShipName
	Length   int
	Placed   bool
	Vertical bool
	Cells    []int
	Healed   bool
}

func newFleet() []Ship {
	fleet := make([]Ship, len(Catalog))
	for i, spec := range Catalog {
		fleet[i] = Ship{Name: spec.Name, Length: spec.Length}
	}
	return fleet
}

// Origin is the first cell of a placed ship.
func (s *Ship) Origin() (Coord, bool) {
	if !s.Placed || len(s.Cells) == 0 {
		return Coord{}, false
	}
	return CoordOf(s.Cells[0]), true
}
