package battleship

import "fmt"

type Side uint8

const (
	SideNone Side = iota
	SidePlayer
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "PLAYER"
	case SideOpponent:
		return "OPPONENT"
	default:
		return "NONE"
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PLAYER":
		*s = SidePlayer
	case "OPPONENT":
		*s = SideOpponent
	case "NONE", "":
		*s = SideNone
	default:
		return fmt.Errorf("unknown side: %q", text)
	}
	return nil
}

func (s Side) Other() Side {
	switch s {
	case SidePlayer:
		return SideOpponent
	case SideOpponent:
		return SidePlayer
	default:
		return SideNone
	}
}

type AttackKind uint8

const (
	AttackMiss AttackKind = iota
	AttackHit
)

func (k AttackKind) String() string {
	if k == AttackHit {
		return "HIT"
	}
	return "MISS"
}

func (k AttackKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AttackKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "HIT":
		*k = AttackHit
	case "MISS":
		*k = AttackMiss
	default:
		return fmt.Errorf("unknown attack kind: %q", text)
	}
	return nil
}

// AttackOutcome carries what a presentation layer needs to narrate a shot.
// Attacker is left as SideNone by ResolveAttack and filled by the caller.
type AttackOutcome struct {
	Attacker    Side        `json:"attacker"`
	Coordinates Coordinates `json:"coordinates"`
	Kind        AttackKind  `json:"kind"`
	Sunk        bool        `json:"sunk"`
	ShipId      string      `json:"ship_id,omitempty"`
	ShipName    string      `json:"ship_name,omitempty"`
}

// ResolveAttack is the only code path that changes a cell to HIT/MISS or
// a ship's hit counter. Grid and fleet are copied; exactly one cell and at
// most one ship change.
//
// The target must be EMPTY or SHIP. Re-attacking a resolved cell is a
// caller bug and its result is unspecified.
func ResolveAttack(grid Grid, fleet Fleet, x, y int) (Grid, Fleet, AttackOutcome) {
	newGrid := grid.Copy()
	newFleet := fleet.Copy()
	outcome := AttackOutcome{Coordinates: NewCoordinates(x, y), Kind: AttackMiss}

	cell := &newGrid[y][x]
	if cell.Status != CellStatusShip {
		cell.Status = CellStatusMiss
		return newGrid, newFleet, outcome
	}

	cell.Status = CellStatusHit
	outcome.Kind = AttackHit

	if idx := newFleet.Index(cell.ShipId); idx != -1 {
		ship := &newFleet[idx]
		if ship.Hits < ship.Size {
			ship.Hits++
		}
		outcome.ShipId = ship.Id
		outcome.ShipName = ship.Name
		outcome.Sunk = ship.IsSunk()
	}

	return newGrid, newFleet, outcome
}
