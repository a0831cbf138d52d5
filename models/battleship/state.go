package battleship

import "fmt"

type Phase uint8

const (
	PhasePlacement Phase = iota
	PhasePlaying
	PhaseGameOver
)

var phaseNames = [...]string{"PLACEMENT", "PLAYING", "GAME_OVER"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", text)
}

// State is an immutable snapshot of a solo game. Transitions build a new
// State and never write into the slices of the one they started from.
type State struct {
	Phase          Phase       `json:"phase"`
	Turn           Side        `json:"turn"`
	Winner         Side        `json:"winner"`
	PlayerGrid     Grid        `json:"player_grid"`
	OpponentGrid   Grid        `json:"opponent_grid"`
	PlayerFleet    Fleet       `json:"player_fleet"`
	OpponentFleet  Fleet       `json:"opponent_fleet"`
	SelectedShipId string      `json:"selected_ship_id,omitempty"`
	Orientation    Orientation `json:"orientation"`
	Events         []Event     `json:"events"`
}

func newState(first EventKind) State {
	fleet := NewFleet()
	s := State{
		Phase:          PhasePlacement,
		Turn:           SidePlayer,
		Winner:         SideNone,
		PlayerGrid:     NewGrid(),
		OpponentGrid:   NewGrid(),
		PlayerFleet:    fleet,
		OpponentFleet:  NewFleet(),
		SelectedShipId: fleet[0].Id,
		Orientation:    OrientationHorizontal,
	}
	return s.withEvents(Event{Kind: first})
}

func NewState() State {
	return newState(EventWelcome)
}

// Events are appended to a fresh slice so earlier snapshots keep their log.
func (s State) withEvents(events ...Event) State {
	log := make([]Event, len(s.Events), len(s.Events)+len(events))
	copy(log, s.Events)
	for _, ev := range events {
		ev.Seq = len(log) + 1
		log = append(log, ev)
	}
	s.Events = log
	return s
}

// Returns the events appended after the snapshot that had seen events.
func (s State) EventsSince(seen int) []Event {
	if seen >= len(s.Events) {
		return nil
	}
	if seen < 0 {
		seen = 0
	}
	return s.Events[seen:]
}

// PlayerInputAllowed reports whether the player may act on the boards.
func (s State) PlayerInputAllowed() bool {
	return s.Phase == PhasePlacement || (s.Phase == PhasePlaying && s.Turn == SidePlayer)
}

func (s State) OpponentToMove() bool {
	return s.Phase == PhasePlaying && s.Turn == SideOpponent
}

// PlacementPreview reports the cells the selected ship would cover from
// (x, y) with the current orientation.
func (s State) PlacementPreview(x, y int) ([]Coordinates, bool) {
	if s.Phase != PhasePlacement || s.SelectedShipId == "" {
		return nil, false
	}
	idx := s.PlayerFleet.Index(s.SelectedShipId)
	if idx == -1 {
		return nil, false
	}
	return PlacementPreview(s.PlayerGrid, s.PlayerFleet[idx].Size, x, y, s.Orientation)
}
