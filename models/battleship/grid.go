package battleship

import "fmt"

// Side length of every board. Fixed for both sides.
const BoardSize int = 10

type CellStatus uint8

const (
	CellStatusEmpty CellStatus = iota
	CellStatusShip
	CellStatusHit
	CellStatusMiss
)

var cellStatusNames = [...]string{"EMPTY", "SHIP", "HIT", "MISS"}

func (cs CellStatus) String() string {
	if int(cs) < len(cellStatusNames) {
		return cellStatusNames[cs]
	}
	return fmt.Sprintf("CellStatus(%d)", cs)
}

func (cs CellStatus) MarshalText() ([]byte, error) {
	return []byte(cs.String()), nil
}

func (cs *CellStatus) UnmarshalText(text []byte) error {
	for i, name := range cellStatusNames {
		if name == string(text) {
			*cs = CellStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell status: %q", text)
}

// HIT and MISS are terminal; an attacked cell is never targeted again.
func (cs CellStatus) IsResolved() bool {
	return cs == CellStatusHit || cs == CellStatusMiss
}

// X is the column and Y is the row, both zero-based.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

func (c Coordinates) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// Label renders the board notation used in narrative text, e.g. "B3".
func (c Coordinates) Label() string {
	return fmt.Sprintf("%c%d", rune('A'+c.X), c.Y+1)
}

type Cell struct {
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Status CellStatus `json:"status"`
	ShipId string     `json:"ship_id,omitempty"`
}

// Grid is addressed as grid[row][column], i.e. grid[y][x].
type Grid [][]Cell

// Creates a new default grid.
// All cells are empty and carry no ship id.
func NewGrid() Grid {
	grid := make(Grid, BoardSize)

	for y := 0; y < BoardSize; y++ {
		grid[y] = make([]Cell, BoardSize)
		for x := 0; x < BoardSize; x++ {
			grid[y][x] = Cell{X: x, Y: y, Status: CellStatusEmpty}
		}
	}
	return grid
}

// Copy returns a grid that shares no cells with g.
func (g Grid) Copy() Grid {
	newGrid := make(Grid, len(g))
	for y := range g {
		newGrid[y] = make([]Cell, len(g[y]))
		copy(newGrid[y], g[y])
	}
	return newGrid
}

func (g Grid) Cell(c Coordinates) Cell {
	return g[c.Y][c.X]
}

func (g Grid) CountStatus(status CellStatus) int {
	count := 0
	for y := range g {
		for x := range g[y] {
			if g[y][x].Status == status {
				count++
			}
		}
	}
	return count
}
