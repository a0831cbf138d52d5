package battleship

import "fmt"

type Orientation uint8

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

func (o Orientation) String() string {
	switch o {
	case OrientationHorizontal:
		return "horizontal"
	case OrientationVertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", o)
	}
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horizontal":
		*o = OrientationHorizontal
	case "vertical":
		*o = OrientationVertical
	default:
		return fmt.Errorf("unknown orientation: %q", text)
	}
	return nil
}

func (o Orientation) Toggle() Orientation {
	if o == OrientationHorizontal {
		return OrientationVertical
	}
	return OrientationHorizontal
}

// Returns the i-th cell covered by a ship anchored at (x, y).
func (o Orientation) step(x, y, i int) Coordinates {
	if o == OrientationHorizontal {
		return NewCoordinates(x+i, y)
	}
	return NewCoordinates(x, y+i)
}

const (
	ShipIdCarrier    = "carrier"
	ShipIdBattleship = "battleship"
	ShipIdCruiser    = "cruiser"
	ShipIdSubmarine  = "submarine"
	ShipIdDestroyer  = "destroyer"
)

type Ship struct {
	Id          string        `json:"id"`
	Name        string        `json:"name"`
	Size        int           `json:"size"`
	Hits        int           `json:"hits"`
	Placed      bool          `json:"placed"`
	Orientation Orientation   `json:"orientation"`
	Coordinates []Coordinates `json:"coordinates"`
}

func NewShip(id, name string, size int) Ship {
	return Ship{
		Id:          id,
		Name:        name,
		Size:        size,
		Orientation: OrientationHorizontal,
		Coordinates: make([]Coordinates, 0, size),
	}
}

func (sh Ship) IsSunk() bool {
	return sh.Hits >= sh.Size
}

// Fleet keeps the order in which ships are offered for placement.
type Fleet []Ship

// Every side plays the same five ships.
func NewFleet() Fleet {
	return Fleet{
		NewShip(ShipIdCarrier, "Portaaviones", 5),
		NewShip(ShipIdBattleship, "Acorazado", 4),
		NewShip(ShipIdCruiser, "Crucero", 3),
		NewShip(ShipIdSubmarine, "Submarino", 3),
		NewShip(ShipIdDestroyer, "Destructor", 2),
	}
}

// Copy returns a fleet whose ships and coordinate slices are not shared with f.
func (f Fleet) Copy() Fleet {
	newFleet := make(Fleet, len(f))
	for i, ship := range f {
		ship.Coordinates = append(make([]Coordinates, 0, ship.Size), ship.Coordinates...)
		newFleet[i] = ship
	}
	return newFleet
}

// Returns -1 if no ship has this id.
func (f Fleet) Index(shipId string) int {
	for i := range f {
		if f[i].Id == shipId {
			return i
		}
	}
	return -1
}

func (f Fleet) NextUnplaced() (Ship, bool) {
	for _, ship := range f {
		if !ship.Placed {
			return ship, true
		}
	}
	return Ship{}, false
}

func (f Fleet) AllPlaced() bool {
	_, found := f.NextUnplaced()
	return !found
}

func (f Fleet) TotalSize() int {
	total := 0
	for _, ship := range f {
		total += ship.Size
	}
	return total
}

func (f Fleet) SunkenShips() int {
	sunk := 0
	for _, ship := range f {
		if ship.IsSunk() {
			sunk++
		}
	}
	return sunk
}

// IsDestroyed reports whether every ship in the fleet is sunk.
func (f Fleet) IsDestroyed() bool {
	for _, ship := range f {
		if !ship.IsSunk() {
			return false
		}
	}
	return true
}

// CheckWinCondition is called with the attacked side's fleet after every shot.
func CheckWinCondition(fleet Fleet) bool {
	return fleet.IsDestroyed()
}
