package api

import (
	"context"
	"log"
	"time"

	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

// sessionLoop owns one websocket session and the game it plays. Every
// write to the connection and every engine transition happens on the
// goroutine that runs it.
type sessionLoop struct {
	rp          *RequestProcessor
	session     *mc.Session
	serverInet  pqtype.Inet
	game        *mb.Game
	seenEvents  int
	opponentDue <-chan time.Time
}

func newSessionLoop(rp *RequestProcessor, session *mc.Session, serverInet pqtype.Inet) *sessionLoop {
	return &sessionLoop{
		rp:         rp,
		session:    session,
		serverInet: serverInet,
	}
}

func (sl *sessionLoop) run() {
	sessionId := sl.session.Id()
	done := make(chan struct{})

	defer func() {
		close(done)
		if sl.game != nil {
			sl.rp.gameManager.TerminateGame(sl.game.Uuid())
		}
		if sl.session.Conn() != nil {
			_ = sl.session.Conn().Close()
		}
		sl.rp.sessionManager.TerminateSession(sessionId)
		log.Printf("session terminated: %s\n", sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := sl.write(resp); err != nil {
		return
	}

	incoming := make(chan []byte)
	readErr := make(chan error, 1)
	go sl.read(incoming, readErr, done)

sessionLoop:
	for {
		select {
		case err := <-readErr:
			log.Printf("stopped reading session %s: %s\n", sessionId, err)
			break sessionLoop

		case payload := <-incoming:
			if err := sl.handlePayload(payload); err != nil {
				break sessionLoop
			}

		case <-sl.opponentDue:
			sl.opponentDue = nil
			if err := sl.playOpponentTurn(); err != nil {
				break sessionLoop
			}
		}

		if sl.game != nil && sl.opponentDue == nil && sl.game.State().OpponentToMove() {
			sl.opponentDue = time.After(sl.rp.opponentDelay())
		}
	}
}

// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
func (sl *sessionLoop) read(incoming chan<- []byte, readErr chan<- error, done <-chan struct{}) {
	for {
		_, payload, err := sl.rp.sessionManager.ReadFromSessionConn(sl.session)
		if err != nil {
			readErr <- err
			return
		}

		select {
		case incoming <- payload:
		case <-done:
			return
		}
	}
}

func (sl *sessionLoop) write(msg interface{}) error {
	return sl.rp.sessionManager.WriteToSessionConn(sl.session, msg, mc.MessageTypeJSON)
}

// Only transport failures are returned; anything the client did wrong is
// answered on the connection.
func (sl *sessionLoop) handlePayload(payload []byte) error {
	code, err := mc.FetchCodeFromMsg(payload)
	if err != nil {
		msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
		msg.AddError("incoming req payload must contain 'code' field", "")
		return sl.write(msg)
	}

	switch code {
	case mc.CodeCreateGame:
		return sl.createGame()

	case mc.CodeSelectShip, mc.CodeToggleOrientation, mc.CodeCellClick, mc.CodeAutoPlace, mc.CodeReset:
		action, err := NewRequest(payload).Action(code)
		if err != nil {
			return sl.writeInvalidAction(err, "invalid request payload")
		}
		return sl.applyAction(action)

	case mc.CodePreview:
		return sl.preview(payload)

	default:
		msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
		msg.AddError("", "invalid code in the incoming payload")
		return sl.write(msg)
	}
}

// A new game replaces the current one unless the opponent is about to move.
func (sl *sessionLoop) createGame() error {
	if sl.game != nil {
		if sl.game.State().OpponentToMove() {
			sl.rp.metrics.RejectedActions.WithLabelValues("CREATE_GAME").Inc()
			return sl.writeInvalidAction(cerr.ErrNotPlayerTurn, "wait for the opponent's move")
		}
		sl.rp.gameManager.TerminateGame(sl.game.Uuid())
	}

	sl.game = sl.rp.gameManager.CreateGame()
	sl.seenEvents = 0
	sl.opponentDue = nil
	sl.session.SetGameUuid(sl.game.Uuid())
	sl.rp.metrics.GamesCreated.Inc()

	if sl.rp.analytics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
		if err := sl.rp.analytics.IncrementGamesCreatedCount(ctx, sl.serverInet); err != nil {
			// for now not killing the game for it
			log.Println(err)
		}
		cancel()
	}

	log.Printf("game created\tsession: %s\tgame: %s\n", sl.session.Id(), sl.game.Uuid())

	msg := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)
	msg.AddPayload(mc.RespCreateGame{GameUuid: sl.game.Uuid()})
	if err := sl.write(msg); err != nil {
		return err
	}

	return sl.pushState(sl.game.State())
}

func (sl *sessionLoop) applyAction(action mb.Action) error {
	if sl.game == nil {
		return sl.writeInvalidAction(cerr.ErrGameNotExists, "create a game first")
	}

	state, err := sl.game.Apply(action)
	if err != nil {
		sl.rp.metrics.RejectedActions.WithLabelValues(action.Kind.String()).Inc()
		log.Printf("action rejected\tgame: %s\taction: %s\terr: %s\n", sl.game.Uuid(), action.Kind, err)
		return sl.writeInvalidAction(err, "action rejected")
	}

	// a reset starts a new event log
	if action.Kind == mb.ActionReset {
		sl.seenEvents = 0
		sl.opponentDue = nil
	}

	return sl.pushState(state)
}

func (sl *sessionLoop) playOpponentTurn() error {
	if sl.game == nil {
		return nil
	}

	state, err := sl.game.Apply(mb.OpponentTurn())
	if err != nil {
		// the game moved on since the timer was armed
		log.Printf("opponent turn skipped\tgame: %s\terr: %s\n", sl.game.Uuid(), err)
		return nil
	}

	return sl.pushState(state)
}

func (sl *sessionLoop) preview(payload []byte) error {
	if sl.game == nil {
		return sl.writeInvalidAction(cerr.ErrGameNotExists, "create a game first")
	}

	req, err := NewRequest(payload).Preview()
	if err != nil {
		return sl.writeInvalidAction(err, "invalid request payload")
	}

	coords, valid := sl.game.State().PlacementPreview(req.X, req.Y)
	msg := mc.NewMessage[mc.RespPreview](mc.CodePreview)
	msg.AddPayload(mc.RespPreview{Coordinates: coords, Valid: valid})
	return sl.write(msg)
}

// Sends the snapshot with the events the client has not seen yet, then
// the end of game signal once a winner exists.
func (sl *sessionLoop) pushState(state mb.State) error {
	newEvents := state.EventsSince(sl.seenEvents)
	sl.observe(newEvents)

	msg := mc.NewMessage[mc.RespGameState](mc.CodeGameState)
	msg.AddPayload(mc.NewRespGameState(sl.game.Uuid(), state, sl.seenEvents, time.Now()))
	if err := sl.write(msg); err != nil {
		return err
	}
	sl.seenEvents = len(state.Events)

	if state.Phase != mb.PhaseGameOver || !containsGameEnd(newEvents) {
		return nil
	}

	sl.recordWinner(state.Winner)
	endMsg := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	endMsg.AddPayload(mc.RespEndGame{Winner: state.Winner})
	return sl.write(endMsg)
}

func (sl *sessionLoop) observe(events []mb.Event) {
	for _, ev := range events {
		if ev.Kind == mb.EventShot && ev.Outcome != nil {
			sl.rp.metrics.Shots.WithLabelValues(ev.Outcome.Attacker.String(), ev.Outcome.Kind.String()).Inc()
		}
	}
}

func (sl *sessionLoop) recordWinner(winner mb.Side) {
	sl.rp.metrics.GamesFinished.WithLabelValues(winner.String()).Inc()
	log.Printf("game over\tgame: %s\twinner: %s\n", sl.game.Uuid(), winner)

	if sl.rp.analytics == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := sl.rp.analytics.RecordWinner(ctx, sl.serverInet, winner); err != nil {
		log.Println(err)
	}
}

func (sl *sessionLoop) writeInvalidAction(err error, message string) error {
	msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidAction)
	msg.AddError(err.Error(), message)
	return sl.write(msg)
}

func containsGameEnd(events []mb.Event) bool {
	for _, ev := range events {
		if ev.Kind == mb.EventVictory || ev.Kind == mb.EventDefeat {
			return true
		}
	}
	return false
}
