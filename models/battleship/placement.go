package battleship

// IsValidPlacement reports whether a ship of the given size fits at
// anchor (x, y) without leaving the board or touching a used cell.
// It must be checked before every call to PlaceShip.
func IsValidPlacement(grid Grid, size, x, y int, orientation Orientation) bool {
	if x < 0 || y < 0 || size < 1 {
		return false
	}

	if orientation == OrientationHorizontal {
		if x+size > BoardSize || y >= BoardSize {
			return false
		}
	} else {
		if y+size > BoardSize || x >= BoardSize {
			return false
		}
	}

	for i := 0; i < size; i++ {
		cell := grid.Cell(orientation.step(x, y, i))
		if cell.Status != CellStatusEmpty || cell.ShipId != "" {
			return false
		}
	}
	return true
}

// PlaceShip writes the ship into a copy of grid and returns it with the
// placed ship. The input grid is left untouched.
//
// No validation happens here: the caller must have confirmed
// IsValidPlacement for the same arguments, otherwise cells get overwritten.
func PlaceShip(grid Grid, ship Ship, x, y int, orientation Orientation) (Grid, Ship) {
	newGrid := grid.Copy()
	coordinates := make([]Coordinates, 0, ship.Size)

	for i := 0; i < ship.Size; i++ {
		c := orientation.step(x, y, i)
		newGrid[c.Y][c.X].Status = CellStatusShip
		newGrid[c.Y][c.X].ShipId = ship.Id
		coordinates = append(coordinates, c)
	}

	ship.Placed = true
	ship.Orientation = orientation
	ship.Coordinates = coordinates
	return newGrid, ship
}

// PlacementPreview returns the in-bounds cells a ship would cover from
// anchor (x, y) and whether the placement is valid. Used for hover hints.
func PlacementPreview(grid Grid, size, x, y int, orientation Orientation) ([]Coordinates, bool) {
	coordinates := make([]Coordinates, 0, size)
	for i := 0; i < size; i++ {
		if c := orientation.step(x, y, i); c.InBounds() {
			coordinates = append(coordinates, c)
		}
	}
	return coordinates, IsValidPlacement(grid, size, x, y, orientation)
}
