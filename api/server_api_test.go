package api

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

const testReadTimeout = time.Second * 5

var dialer = websocket.Dialer{
	HandshakeTimeout: 10 * time.Second,
}

func newTestServer(t *testing.T, opts ...Option) (*RequestProcessor, *httptest.Server) {
	t.Helper()

	opts = append([]Option{WithSeed(7), WithOpponentDelay(0, 0)}, opts...)
	rp := NewRequestProcessor(opts...)

	srv := httptest.NewServer(rp.Routes())
	t.Cleanup(srv.Close)
	return rp, srv
}

// Dials the server and consumes the session id message.
func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/battleship"
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	var respSessionId mc.Message[mc.RespSessionId]
	code, raw := readMsg(t, conn)
	if code != mc.CodeSessionID {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeSessionID, code)
	}
	if err := json.Unmarshal(raw, &respSessionId); err != nil {
		t.Fatal(err)
	}
	if respSessionId.Payload.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) (uint8, []byte) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(testReadTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	code, err := mc.FetchCodeFromMsg(raw)
	if err != nil {
		t.Fatal(err)
	}
	return code, raw
}

func send(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()

	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}
}

func readGameState(t *testing.T, conn *websocket.Conn) mc.RespGameState {
	t.Helper()

	code, raw := readMsg(t, conn)
	if code != mc.CodeGameState {
		t.Fatalf("expected code: %d\tgot: %d (%s)", mc.CodeGameState, code, raw)
	}

	var msg mc.Message[mc.RespGameState]
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	return msg.Payload
}

func createGame(t *testing.T, conn *websocket.Conn) mc.RespGameState {
	t.Helper()

	send(t, conn, mc.NewSignal(mc.CodeCreateGame))

	code, raw := readMsg(t, conn)
	if code != mc.CodeCreateGame {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeCreateGame, code)
	}
	var msg mc.Message[mc.RespCreateGame]
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Payload.GameUuid == "" {
		t.Fatal("expected a game uuid")
	}

	state := readGameState(t, conn)
	if state.GameUuid != msg.Payload.GameUuid || state.Phase != mb.PhasePlacement {
		t.Fatalf("unexpected initial state: %s %s", state.GameUuid, state.Phase)
	}
	return state
}

func expectInvalidAction(t *testing.T, conn *websocket.Conn) *mc.RespErr {
	t.Helper()

	code, raw := readMsg(t, conn)
	if code != mc.CodeInvalidAction {
		t.Fatalf("expected code: %d\tgot: %d (%s)", mc.CodeInvalidAction, code, raw)
	}
	var msg mc.Message[mc.NoPayload]
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Error == nil {
		t.Fatal("expected error details in invalid action response")
	}
	return msg.Error
}

// Fires at every cell in order until the game ends and returns the winner
// together with the number of shots the player took.
func playToEnd(t *testing.T, conn *websocket.Conn) (mb.Side, int) {
	t.Helper()

	shots := 0
	for y := 0; y < mb.BoardSize; y++ {
		for x := 0; x < mb.BoardSize; x++ {
			send(t, conn, mc.Message[mc.ReqCellClick]{Code: mc.CodeCellClick, Payload: mc.ReqCellClick{X: x, Y: y}})
			shots++

			state := readGameState(t, conn)
			if state.Phase != mb.PhaseGameOver {
				if state.Turn != mb.SideOpponent {
					t.Fatalf("expected turn: %s\tgot: %s", mb.SideOpponent, state.Turn)
				}
				state = readGameState(t, conn)
			}

			if state.Phase == mb.PhaseGameOver {
				code, raw := readMsg(t, conn)
				if code != mc.CodeEndGame {
					t.Fatalf("expected code: %d\tgot: %d", mc.CodeEndGame, code)
				}
				var endMsg mc.Message[mc.RespEndGame]
				if err := json.Unmarshal(raw, &endMsg); err != nil {
					t.Fatal(err)
				}
				if endMsg.Payload.Winner != state.Winner {
					t.Fatalf("expected winner: %s\tgot: %s", state.Winner, endMsg.Payload.Winner)
				}
				return state.Winner, shots
			}

			if state.Turn != mb.SidePlayer {
				t.Fatalf("expected turn: %s\tgot: %s", mb.SidePlayer, state.Turn)
			}
		}
	}

	t.Fatal("game did not end after every cell was attacked")
	return mb.SideNone, shots
}

func TestInvalidCode(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv)

	tests := []struct {
		name         string
		reqPayload   []byte
		expectedCode uint8
	}{
		{name: "random invalid code", reqPayload: []byte(`{"code": 255}`), expectedCode: mc.CodeInvalidSignal},
		{name: "another invalid code", reqPayload: []byte(`{"code": 200}`), expectedCode: mc.CodeInvalidSignal},
		{name: "no json", reqPayload: []byte(`hello`), expectedCode: mc.CodeSignalAbsent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, test.reqPayload); err != nil {
				t.Fatal(err)
			}

			code, _ := readMsg(t, conn)
			if code != test.expectedCode {
				t.Fatalf("expected code: %d\tgot: %d", test.expectedCode, code)
			}
		})
	}
}

func TestActionWithoutGame(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, mc.NewSignal(mc.CodeAutoPlace))
	respErr := expectInvalidAction(t, conn)
	if respErr.ErrorDetails != cerr.ErrGameNotExists.Error() {
		t.Fatalf("expected error: %s\tgot: %s", cerr.ErrGameNotExists, respErr.ErrorDetails)
	}
}

func TestPlacementFlow(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv)
	initial := createGame(t, conn)

	if initial.SelectedShipId != mb.ShipIdCarrier || len(initial.Events) != 1 || initial.Events[0].Kind != mb.EventWelcome {
		t.Fatalf("unexpected initial state: %+v", initial)
	}

	send(t, conn, mc.Message[mc.ReqPreview]{Code: mc.CodePreview, Payload: mc.ReqPreview{X: 8, Y: 0}})
	code, raw := readMsg(t, conn)
	if code != mc.CodePreview {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodePreview, code)
	}
	var preview mc.Message[mc.RespPreview]
	if err := json.Unmarshal(raw, &preview); err != nil {
		t.Fatal(err)
	}
	if preview.Payload.Valid || len(preview.Payload.Coordinates) != 2 {
		t.Fatalf("expected invalid preview with 2 in-bound cells\tgot: %+v", preview.Payload)
	}

	send(t, conn, mc.Message[mc.ReqSelectShip]{Code: mc.CodeSelectShip, Payload: mc.ReqSelectShip{ShipId: mb.ShipIdDestroyer}})
	state := readGameState(t, conn)
	if state.SelectedShipId != mb.ShipIdDestroyer || len(state.Events) != 0 {
		t.Fatalf("expected destroyer selected without new events\tgot: %s %d", state.SelectedShipId, len(state.Events))
	}

	send(t, conn, mc.NewSignal(mc.CodeToggleOrientation))
	state = readGameState(t, conn)
	if state.Orientation != mb.OrientationVertical {
		t.Fatalf("expected orientation: %s\tgot: %s", mb.OrientationVertical, state.Orientation)
	}

	send(t, conn, mc.Message[mc.ReqCellClick]{Code: mc.CodeCellClick, Payload: mc.ReqCellClick{X: 0, Y: 0}})
	state = readGameState(t, conn)
	if len(state.Events) != 1 || state.Events[0].Kind != mb.EventShipPlaced || state.Events[0].Text == "" {
		t.Fatalf("expected a single ship placed event\tgot: %+v", state.Events)
	}
	if state.PlayerGrid[1][0].Status != mb.CellStatusShip {
		t.Fatalf("expected ship at (0,1)\tgot: %s", state.PlayerGrid[1][0].Status)
	}

	// overlapping the destroyer
	send(t, conn, mc.Message[mc.ReqCellClick]{Code: mc.CodeCellClick, Payload: mc.ReqCellClick{X: 0, Y: 1}})
	expectInvalidAction(t, conn)

	send(t, conn, mc.NewSignal(mc.CodeAutoPlace))
	state = readGameState(t, conn)
	if state.Phase != mb.PhasePlaying || state.Turn != mb.SidePlayer {
		t.Fatalf("expected playing on player turn\tgot: %s %s", state.Phase, state.Turn)
	}
	if state.OpponentGrid.CountStatus(mb.CellStatusShip) != 0 {
		t.Fatal("opponent ships must not be visible")
	}
	if state.PlayerGrid.CountStatus(mb.CellStatusShip) != mb.NewFleet().TotalSize() {
		t.Fatalf("expected player ship cells: %d\tgot: %d", mb.NewFleet().TotalSize(), state.PlayerGrid.CountStatus(mb.CellStatusShip))
	}

	send(t, conn, mc.NewSignal(mc.CodeReset))
	state = readGameState(t, conn)
	if state.Phase != mb.PhasePlacement || len(state.Events) != 1 || state.Events[0].Kind != mb.EventReset {
		t.Fatalf("expected a fresh placement phase with a reset event\tgot: %s %+v", state.Phase, state.Events)
	}
}

func TestFullGameRecordsMetrics(t *testing.T) {
	rp, srv := newTestServer(t)
	conn := dial(t, srv)
	createGame(t, conn)

	send(t, conn, mc.NewSignal(mc.CodeAutoPlace))
	readGameState(t, conn)

	winner, shots := playToEnd(t, conn)
	if winner != mb.SidePlayer && winner != mb.SideOpponent {
		t.Fatalf("expected a winner\tgot: %s", winner)
	}

	m := rp.Metrics()
	if got := testutil.ToFloat64(m.GamesCreated); got != 1 {
		t.Fatalf("expected games created: %d\tgot: %v", 1, got)
	}
	if got := testutil.ToFloat64(m.GamesFinished.WithLabelValues(winner.String())); got != 1 {
		t.Fatalf("expected games finished by %s: %d\tgot: %v", winner, 1, got)
	}

	playerShots := testutil.ToFloat64(m.Shots.WithLabelValues("PLAYER", "HIT")) + testutil.ToFloat64(m.Shots.WithLabelValues("PLAYER", "MISS"))
	if int(playerShots) != shots {
		t.Fatalf("expected player shots: %d\tgot: %v", shots, playerShots)
	}

	// the game is over, so further clicks are refused
	send(t, conn, mc.Message[mc.ReqCellClick]{Code: mc.CodeCellClick, Payload: mc.ReqCellClick{X: 0, Y: 0}})
	expectInvalidAction(t, conn)
	if got := testutil.ToFloat64(m.RejectedActions.WithLabelValues(mb.ActionCellClick.String())); got != 1 {
		t.Fatalf("expected rejected clicks: %d\tgot: %v", 1, got)
	}
}

func TestInputDuringOpponentTurnRejected(t *testing.T) {
	_, srv := newTestServer(t, WithOpponentDelay(time.Millisecond*300, time.Millisecond*300))
	conn := dial(t, srv)
	createGame(t, conn)

	send(t, conn, mc.NewSignal(mc.CodeAutoPlace))
	readGameState(t, conn)

	send(t, conn, mc.Message[mc.ReqCellClick]{Code: mc.CodeCellClick, Payload: mc.ReqCellClick{X: 4, Y: 4}})
	state := readGameState(t, conn)
	if state.Turn != mb.SideOpponent {
		t.Fatalf("expected turn: %s\tgot: %s", mb.SideOpponent, state.Turn)
	}

	send(t, conn, mc.Message[mc.ReqCellClick]{Code: mc.CodeCellClick, Payload: mc.ReqCellClick{X: 5, Y: 5}})
	respErr := expectInvalidAction(t, conn)
	if respErr.ErrorDetails != cerr.ErrNotPlayerTurn.Error() {
		t.Fatalf("expected error: %s\tgot: %s", cerr.ErrNotPlayerTurn, respErr.ErrorDetails)
	}

	send(t, conn, mc.NewSignal(mc.CodeCreateGame))
	expectInvalidAction(t, conn)

	state = readGameState(t, conn)
	if state.Turn != mb.SidePlayer || len(state.Events) != 1 || state.Events[0].Outcome.Attacker != mb.SideOpponent {
		t.Fatalf("expected the opponent's shot\tgot: %s %+v", state.Turn, state.Events)
	}
}

func TestAnalyticsRecorded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_won_(player|opponent)\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, srv := newTestServer(t, WithQuerier(sqlc.New(db)))
	conn := dial(t, srv)
	createGame(t, conn)

	send(t, conn, mc.NewSignal(mc.CodeAutoPlace))
	readGameState(t, conn)
	playToEnd(t, conn)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, srv := newTestServer(t, WithMetrics(reg))
	conn := dial(t, srv)
	createGame(t, conn)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status: %d\tgot: %d", http.StatusOK, resp.StatusCode)
	}

	count, err := testutil.GatherAndCount(reg, "battleship_games_created_total")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected metric series: %d\tgot: %d", 1, count)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "invalid stage", opt: WithStage("staging")},
		{name: "invalid port", opt: WithPort(0)},
		{name: "negative delay", opt: WithOpponentDelay(-time.Second, time.Second)},
		{name: "inverted delay", opt: WithOpponentDelay(time.Second*2, time.Second)},
		{name: "nil registry", opt: WithMetrics(nil)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected NewRequestProcessor to panic")
				}
			}()
			NewRequestProcessor(test.opt)
		})
	}
}

func TestOpponentDelayInRange(t *testing.T) {
	rp := NewRequestProcessor(WithOpponentDelay(time.Second, time.Second*2))
	for range 100 {
		delay := rp.opponentDelay()
		if delay < time.Second || delay > time.Second*2 {
			t.Fatalf("expected delay in [1s, 2s]\tgot: %s", delay)
		}
	}

	if addr := NewRequestProcessor(WithPort(7171)).Addr(); addr != "0.0.0.0:7171" {
		t.Fatalf("expected addr: %s\tgot: %s", "0.0.0.0:7171", addr)
	}
}

func TestGetServerIpNet(t *testing.T) {
	ipNet, err := getServerIpNet(&net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 8000})
	if err != nil {
		t.Fatal(err)
	}
	if !ipNet.IP.Equal(net.ParseIP("10.0.0.5")) {
		t.Fatalf("expected ip: %s\tgot: %s", "10.0.0.5", ipNet.IP)
	}
	if ones, bits := ipNet.Mask.Size(); ones != 32 || bits != 32 {
		t.Fatalf("expected /32 mask\tgot: /%d of %d", ones, bits)
	}
}
