package api

import (
	"encoding/json"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

// Every incoming message is a mc.Message whose payload depends on its code.
type Request struct {
	payload []byte
}

func NewRequest(payload []byte) Request {
	return Request{payload: payload}
}

// Action translates a client signal into an engine action.
func (r Request) Action(code uint8) (mb.Action, error) {
	switch code {
	case mc.CodeSelectShip:
		var req mc.Message[mc.ReqSelectShip]
		if err := json.Unmarshal(r.payload, &req); err != nil {
			return mb.Action{}, err
		}
		return mb.SelectShip(req.Payload.ShipId), nil

	case mc.CodeCellClick:
		var req mc.Message[mc.ReqCellClick]
		if err := json.Unmarshal(r.payload, &req); err != nil {
			return mb.Action{}, err
		}
		return mb.CellClick(req.Payload.X, req.Payload.Y), nil

	case mc.CodeToggleOrientation:
		return mb.ToggleOrientation(), nil

	case mc.CodeAutoPlace:
		return mb.AutoPlace(), nil

	case mc.CodeReset:
		return mb.Reset(), nil

	default:
		return mb.Action{}, cerr.ErrUnknownAction(code)
	}
}

func (r Request) Preview() (mc.ReqPreview, error) {
	var req mc.Message[mc.ReqPreview]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		return mc.ReqPreview{}, err
	}
	return req.Payload, nil
}
