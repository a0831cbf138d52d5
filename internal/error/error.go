package error

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPlacement    = errors.New("ship does not fit at this position")
	ErrCellAlreadyAttacked = errors.New("position already attacked")
	ErrOutOfGridBound      = errors.New("position out of game grid bound")
	ErrNotPlayerTurn       = errors.New("not the player's turn")
	ErrNotOpponentTurn     = errors.New("not the opponent's turn")
	ErrPhaseMismatch       = errors.New("action not allowed in current phase")
	ErrShipNotFound        = errors.New("ship does not exist in fleet")
	ErrShipAlreadyPlaced   = errors.New("ship already placed")
	ErrNoShipSelected      = errors.New("no ship selected")
	ErrPlacementStarvation = errors.New("random placement exhausted its retries")
	ErrNoUntriedCell       = errors.New("no untried cell left on grid")
	ErrGameNotExists       = errors.New("game does not exist")
	ErrSessionNotFound     = errors.New("session does not exist")
	ErrInvalidAction       = errors.New("invalid action")
)

func ErrGameNotExist(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrGameNotExists, gameUuid)
}

func ErrSessionNotExist(sessionId string) error {
	return fmt.Errorf("%w, id: %s", ErrSessionNotFound, sessionId)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrOutOfGridBound, x, y)
}

func ErrAttackPositionAlreadyFilled(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrCellAlreadyAttacked, x, y)
}

func ErrPlacementRejected(shipId string, x, y int, orientation string) error {
	return fmt.Errorf("%w\tship: %s\tx: %d\ty: %d\torientation: %s", ErrInvalidPlacement, shipId, x, y, orientation)
}

func ErrActionInPhase(action, phase string) error {
	return fmt.Errorf("%w\taction: %s\tphase: %s", ErrPhaseMismatch, action, phase)
}

func ErrShipNotExist(shipId string) error {
	return fmt.Errorf("%w, id: %s", ErrShipNotFound, shipId)
}

func ErrShipPlaced(shipId string) error {
	return fmt.Errorf("%w, id: %s", ErrShipAlreadyPlaced, shipId)
}

// Returned when the fleet cannot fit the board; it is a configuration
// error and must not be retried.
func ErrRandomPlacementExhausted(shipId string, attempts int) error {
	return fmt.Errorf("%w\tship: %s\tattempts: %d", ErrPlacementStarvation, shipId, attempts)
}

func ErrUnknownAction(kind uint8) error {
	return fmt.Errorf("%w, kind: %d", ErrInvalidAction, kind)
}
