package battleship

import (
	"fmt"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type ActionKind uint8

const (
	ActionSelectShip ActionKind = iota
	ActionToggleOrientation
	ActionCellClick
	ActionAutoPlace
	ActionReset
	ActionOpponentTurn
)

var actionKindNames = [...]string{"SELECT_SHIP", "TOGGLE_ORIENTATION", "CELL_CLICK", "AUTO_PLACE", "RESET", "OPPONENT_TURN"}

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", k)
}

// Action is one input to the engine. X/Y are used by cell clicks and
// ShipId by ship selection.
type Action struct {
	Kind   ActionKind
	ShipId string
	X      int
	Y      int
}

func SelectShip(shipId string) Action { return Action{Kind: ActionSelectShip, ShipId: shipId} }
func ToggleOrientation() Action       { return Action{Kind: ActionToggleOrientation} }
func CellClick(x, y int) Action       { return Action{Kind: ActionCellClick, X: x, Y: y} }
func AutoPlace() Action               { return Action{Kind: ActionAutoPlace} }
func Reset() Action                   { return Action{Kind: ActionReset} }
func OpponentTurn() Action            { return Action{Kind: ActionOpponentTurn} }

// Engine sequences placement, battle and game over. It owns the random
// source used for the opponent fleet and the opponent's shots; every other
// input lives in State.
type Engine struct {
	rng Randomizer
}

func NewEngine(rng Randomizer) *Engine {
	return &Engine{rng: rng}
}

// Apply is the single (state, action) -> state transition. A rejected
// action returns the untouched input state together with the error.
func (e *Engine) Apply(state State, action Action) (State, error) {
	var (
		next State
		err  error
	)

	switch action.Kind {
	case ActionSelectShip:
		next, err = e.selectShip(state, action.ShipId)
	case ActionToggleOrientation:
		next, err = e.toggleOrientation(state)
	case ActionCellClick:
		next, err = e.cellClick(state, action.X, action.Y)
	case ActionAutoPlace:
		next, err = e.autoPlace(state)
	case ActionReset:
		next, err = e.reset(state)
	case ActionOpponentTurn:
		next, err = e.opponentTurn(state)
	default:
		err = cerr.ErrUnknownAction(uint8(action.Kind))
	}

	if err != nil {
		return state, err
	}
	return next, nil
}

// Replay applies actions in order starting from a new game. With the same
// seed it reproduces the same snapshot.
func (e *Engine) Replay(actions []Action) (State, error) {
	state := NewState()
	for i, action := range actions {
		next, err := e.Apply(state, action)
		if err != nil {
			return state, fmt.Errorf("action %d (%s): %w", i, action.Kind, err)
		}
		state = next
	}
	return state, nil
}

func (e *Engine) selectShip(s State, shipId string) (State, error) {
	if s.Phase != PhasePlacement {
		return s, cerr.ErrActionInPhase(ActionSelectShip.String(), s.Phase.String())
	}

	idx := s.PlayerFleet.Index(shipId)
	if idx == -1 {
		return s, cerr.ErrShipNotExist(shipId)
	}
	if s.PlayerFleet[idx].Placed {
		return s, cerr.ErrShipPlaced(shipId)
	}

	s.SelectedShipId = shipId
	return s, nil
}

func (e *Engine) toggleOrientation(s State) (State, error) {
	if s.Phase != PhasePlacement {
		return s, cerr.ErrActionInPhase(ActionToggleOrientation.String(), s.Phase.String())
	}
	s.Orientation = s.Orientation.Toggle()
	return s, nil
}

func (e *Engine) cellClick(s State, x, y int) (State, error) {
	if !NewCoordinates(x, y).InBounds() {
		return s, cerr.ErrXorYOutOfGridBound(x, y)
	}

	switch s.Phase {
	case PhasePlacement:
		return e.placeSelectedShip(s, x, y)
	case PhasePlaying:
		if s.Turn != SidePlayer {
			return s, cerr.ErrNotPlayerTurn
		}
		return e.playerAttack(s, x, y)
	default:
		return s, cerr.ErrActionInPhase(ActionCellClick.String(), s.Phase.String())
	}
}

func (e *Engine) placeSelectedShip(s State, x, y int) (State, error) {
	if s.SelectedShipId == "" {
		return s, cerr.ErrNoShipSelected
	}

	idx := s.PlayerFleet.Index(s.SelectedShipId)
	if idx == -1 {
		return s, cerr.ErrShipNotExist(s.SelectedShipId)
	}
	ship := s.PlayerFleet[idx]
	if ship.Placed {
		return s, cerr.ErrShipPlaced(ship.Id)
	}

	if !IsValidPlacement(s.PlayerGrid, ship.Size, x, y, s.Orientation) {
		return s, cerr.ErrPlacementRejected(ship.Id, x, y, s.Orientation.String())
	}

	grid, placedShip := PlaceShip(s.PlayerGrid, ship, x, y, s.Orientation)
	fleet := s.PlayerFleet.Copy()
	fleet[idx] = placedShip

	s.PlayerGrid = grid
	s.PlayerFleet = fleet
	s = s.withEvents(newShipPlacedEvent(placedShip))

	if nextShip, found := fleet.NextUnplaced(); found {
		s.SelectedShipId = nextShip.Id
		return s, nil
	}

	s.SelectedShipId = ""
	return e.startBattle(s)
}

func (e *Engine) autoPlace(s State) (State, error) {
	if s.Phase != PhasePlacement {
		return s, cerr.ErrActionInPhase(ActionAutoPlace.String(), s.Phase.String())
	}

	grid, fleet, err := PlaceShipsRandomly(e.rng, NewFleet())
	if err != nil {
		return s, err
	}

	s.PlayerGrid = grid
	s.PlayerFleet = fleet
	s.SelectedShipId = ""
	return e.startBattle(s)
}

// The opponent fleet is generated wholesale once the player's is complete.
func (e *Engine) startBattle(s State) (State, error) {
	grid, fleet, err := PlaceShipsRandomly(e.rng, NewFleet())
	if err != nil {
		return s, err
	}

	s.OpponentGrid = grid
	s.OpponentFleet = fleet
	s.Phase = PhasePlaying
	s.Turn = SidePlayer
	return s.withEvents(Event{Kind: EventBattleStarted}), nil
}

func (e *Engine) playerAttack(s State, x, y int) (State, error) {
	if s.OpponentGrid[y][x].Status.IsResolved() {
		return s, cerr.ErrAttackPositionAlreadyFilled(x, y)
	}

	grid, fleet, outcome := ResolveAttack(s.OpponentGrid, s.OpponentFleet, x, y)
	outcome.Attacker = SidePlayer

	s.OpponentGrid = grid
	s.OpponentFleet = fleet
	s = s.withEvents(newShotEvent(outcome))

	if CheckWinCondition(fleet) {
		s.Phase = PhaseGameOver
		s.Winner = SidePlayer
		return s.withEvents(Event{Kind: EventVictory}), nil
	}

	s.Turn = SideOpponent
	return s, nil
}

func (e *Engine) opponentTurn(s State) (State, error) {
	if s.Phase != PhasePlaying {
		return s, cerr.ErrActionInPhase(ActionOpponentTurn.String(), s.Phase.String())
	}
	if s.Turn != SideOpponent {
		return s, cerr.ErrNotOpponentTurn
	}

	move, err := SelectOpponentMove(e.rng, s.PlayerGrid)
	if err != nil {
		return s, err
	}

	grid, fleet, outcome := ResolveAttack(s.PlayerGrid, s.PlayerFleet, move.X, move.Y)
	outcome.Attacker = SideOpponent

	s.PlayerGrid = grid
	s.PlayerFleet = fleet
	s = s.withEvents(newShotEvent(outcome))

	if CheckWinCondition(fleet) {
		s.Phase = PhaseGameOver
		s.Winner = SideOpponent
		return s.withEvents(Event{Kind: EventDefeat}), nil
	}

	s.Turn = SidePlayer
	return s, nil
}

// Reset is refused only while the opponent's shot is pending.
func (e *Engine) reset(s State) (State, error) {
	if s.OpponentToMove() {
		return s, cerr.ErrNotPlayerTurn
	}
	return newState(EventReset), nil
}
