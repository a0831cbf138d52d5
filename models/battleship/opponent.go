package battleship

import cerr "github.com/saeidalz13/battleship-solo/internal/error"

// SelectOpponentMove samples untried cells of the player's grid at random.
// After MaxOpponentMoveAttempts misses it scans row by row and returns the
// first untried cell. It keeps no memory of earlier hits.
//
// ErrNoUntriedCell means it was called on a fully resolved grid, which the
// orchestrator never does.
func SelectOpponentMove(rng Randomizer, grid Grid) (Coordinates, error) {
	for attempts := 0; attempts < MaxOpponentMoveAttempts; attempts++ {
		c := randomCoordinates(rng)
		if !grid.Cell(c).Status.IsResolved() {
			return c, nil
		}
	}

	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if !grid[y][x].Status.IsResolved() {
				return NewCoordinates(x, y), nil
			}
		}
	}

	return Coordinates{}, cerr.ErrNoUntriedCell
}
