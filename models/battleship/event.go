package battleship

import "fmt"

type EventKind uint8

const (
	EventWelcome EventKind = iota
	EventReset
	EventShipPlaced
	EventBattleStarted
	EventShot
	EventVictory
	EventDefeat
)

var eventKindNames = [...]string{"WELCOME", "RESET", "SHIP_PLACED", "BATTLE_STARTED", "SHOT", "VICTORY", "DEFEAT"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(text []byte) error {
	for i, name := range eventKindNames {
		if name == string(text) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind: %q", text)
}

// Event is one entry of the narrative log. Structured fields are enough
// to build localized text; String gives a default English line.
type Event struct {
	Seq         int            `json:"seq"`
	Kind        EventKind      `json:"kind"`
	ShipId      string         `json:"ship_id,omitempty"`
	ShipName    string         `json:"ship_name,omitempty"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Outcome     *AttackOutcome `json:"outcome,omitempty"`
}

func newShotEvent(outcome AttackOutcome) Event {
	return Event{
		Kind:        EventShot,
		ShipId:      outcome.ShipId,
		ShipName:    outcome.ShipName,
		Coordinates: &outcome.Coordinates,
		Outcome:     &outcome,
	}
}

func newShipPlacedEvent(ship Ship) Event {
	anchor := ship.Coordinates[0]
	return Event{Kind: EventShipPlaced, ShipId: ship.Id, ShipName: ship.Name, Coordinates: &anchor}
}

func (e Event) String() string {
	switch e.Kind {
	case EventWelcome:
		return "Welcome, Commander. Deploy your fleet to start the battle."
	case EventReset:
		return "System reset. Awaiting orders."
	case EventShipPlaced:
		if e.Coordinates == nil {
			return fmt.Sprintf("%s deployed.", e.ShipName)
		}
		return fmt.Sprintf("%s deployed at %s.", e.ShipName, e.Coordinates.Label())
	case EventBattleStarted:
		return "Battle started. Man your battle stations!"
	case EventVictory:
		return "VICTORY! The whole enemy fleet has been neutralized."
	case EventDefeat:
		return "Fleet destroyed! We have lost the battle."
	case EventShot:
		if e.Outcome == nil {
			return e.Kind.String()
		}
		return e.Outcome.describe()
	default:
		return e.Kind.String()
	}
}

func (o AttackOutcome) describe() string {
	label := o.Coordinates.Label()

	if o.Attacker == SideOpponent {
		switch {
		case o.Sunk:
			return fmt.Sprintf("ALERT! The enemy has sunk our %s.", o.ShipName)
		case o.Kind == AttackHit:
			return fmt.Sprintf("Incoming hit on our %s!", o.ShipName)
		default:
			return fmt.Sprintf("The enemy fired into the water at %s.", label)
		}
	}

	switch {
	case o.Sunk:
		return fmt.Sprintf("Confirmed! You sank the enemy %s.", o.ShipName)
	case o.Kind == AttackHit:
		return fmt.Sprintf("Hit confirmed at %s!", label)
	default:
		return fmt.Sprintf("Missed shot at %s.", label)
	}
}
