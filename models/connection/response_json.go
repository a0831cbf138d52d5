package connection

import (
	"time"

	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateGame struct {
	GameUuid string `json:"game_uuid"`
}

type RespShip struct {
	Id          string           `json:"id"`
	Name        string           `json:"name"`
	Size        int              `json:"size"`
	Hits        int              `json:"hits"`
	Sunk        bool             `json:"sunk"`
	Placed      bool             `json:"placed"`
	Orientation mb.Orientation   `json:"orientation"`
	Coordinates []mb.Coordinates `json:"coordinates,omitempty"`
}

// RespEvent stamps an engine event with its default text and the time the
// server sent it.
type RespEvent struct {
	mb.Event
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type RespGameState struct {
	GameUuid       string         `json:"game_uuid"`
	Phase          mb.Phase       `json:"phase"`
	Turn           mb.Side        `json:"turn"`
	Winner         mb.Side        `json:"winner"`
	SelectedShipId string         `json:"selected_ship_id,omitempty"`
	Orientation    mb.Orientation `json:"orientation"`
	PlayerGrid     mb.Grid        `json:"player_grid"`
	OpponentGrid   mb.Grid        `json:"opponent_grid"`
	PlayerFleet    []RespShip     `json:"player_fleet"`
	OpponentFleet  []RespShip     `json:"opponent_fleet"`
	Events         []RespEvent    `json:"events"`
}

// NewRespGameState builds what the client may see of a snapshot. The
// opponent's ships stay hidden until hit, and their coordinates until sunk.
// Only events after the first `seen` ones are included.
func NewRespGameState(gameUuid string, state mb.State, seen int, at time.Time) RespGameState {
	newEvents := state.EventsSince(seen)
	events := make([]RespEvent, 0, len(newEvents))
	for _, ev := range newEvents {
		events = append(events, RespEvent{Event: ev, Text: ev.String(), At: at})
	}

	return RespGameState{
		GameUuid:       gameUuid,
		Phase:          state.Phase,
		Turn:           state.Turn,
		Winner:         state.Winner,
		SelectedShipId: state.SelectedShipId,
		Orientation:    state.Orientation,
		PlayerGrid:     state.PlayerGrid,
		OpponentGrid:   MaskGrid(state.OpponentGrid),
		PlayerFleet:    newRespFleet(state.PlayerFleet, false),
		OpponentFleet:  newRespFleet(state.OpponentFleet, true),
		Events:         events,
	}
}

// MaskGrid hides untouched ship cells.
func MaskGrid(grid mb.Grid) mb.Grid {
	masked := grid.Copy()
	for y := range masked {
		for x := range masked[y] {
			if masked[y][x].Status == mb.CellStatusShip {
				masked[y][x].Status = mb.CellStatusEmpty
				masked[y][x].ShipId = ""
			}
		}
	}
	return masked
}

func newRespFleet(fleet mb.Fleet, hidden bool) []RespShip {
	ships := make([]RespShip, 0, len(fleet))
	for _, ship := range fleet {
		resp := RespShip{
			Id:          ship.Id,
			Name:        ship.Name,
			Size:        ship.Size,
			Hits:        ship.Hits,
			Sunk:        ship.IsSunk(),
			Placed:      ship.Placed,
			Orientation: ship.Orientation,
			Coordinates: ship.Coordinates,
		}
		if hidden && !resp.Sunk {
			resp.Orientation = mb.OrientationHorizontal
			resp.Coordinates = nil
		}
		ships = append(ships, resp)
	}
	return ships
}

type RespPreview struct {
	Coordinates []mb.Coordinates `json:"coordinates"`
	Valid       bool             `json:"valid"`
}

type RespEndGame struct {
	Winner mb.Side `json:"winner"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
