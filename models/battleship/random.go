package battleship

import (
	"math/rand/v2"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Per ship. A 10x10 board with 17 ship cells never gets close.
	MaxPlacementAttempts int = 10000

	MaxOpponentMoveAttempts int = 200
)

// Randomizer is satisfied by *rand.Rand from math/rand/v2.
type Randomizer interface {
	IntN(n int) int
}

func NewRandomizer(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func randomCoordinates(rng Randomizer) Coordinates {
	return NewCoordinates(rng.IntN(BoardSize), rng.IntN(BoardSize))
}

func randomOrientation(rng Randomizer) Orientation {
	if rng.IntN(2) == 0 {
		return OrientationHorizontal
	}
	return OrientationVertical
}

// PlaceShipsRandomly places every ship of the template on a fresh grid,
// one after another, without backtracking. Exhausting the retries for any
// ship returns ErrPlacementStarvation.
func PlaceShipsRandomly(rng Randomizer, template Fleet) (Grid, Fleet, error) {
	grid := NewGrid()
	placed := make(Fleet, 0, len(template))

	for _, ship := range template {
		ship.Hits = 0
		ship.Placed = false
		ship.Coordinates = nil

		attempts := 0
		for {
			if attempts == MaxPlacementAttempts {
				return nil, nil, cerr.ErrRandomPlacementExhausted(ship.Id, attempts)
			}
			attempts++

			orientation := randomOrientation(rng)
			anchor := randomCoordinates(rng)
			if !IsValidPlacement(grid, ship.Size, anchor.X, anchor.Y, orientation) {
				continue
			}

			var placedShip Ship
			grid, placedShip = PlaceShip(grid, ship, anchor.X, anchor.Y, orientation)
			placed = append(placed, placedShip)
			break
		}
	}

	return grid, placed, nil
}
