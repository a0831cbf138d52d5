package connection

const (
	CodeSessionID uint8 = iota

	// Starts a new solo game for the session, replacing any previous one
	CodeCreateGame
	CodeSelectShip
	CodeToggleOrientation

	// Places the selected ship during placement, fires during battle
	CodeCellClick
	CodeAutoPlace
	CodeReset
	CodePreview

	// Pushed after every accepted action and every opponent move
	CodeGameState
	CodeEndGame

	// The engine refused the action; state is unchanged
	CodeInvalidAction
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
