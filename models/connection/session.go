package connection

import (
	"errors"
	"log"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxWriteWsRetries uint8 = 2
	backOffFactor     uint8 = 2
)

const (
	MessageTypeBytes uint8 = iota
	MessageTypeJSON
)

type ConnectionHandler interface {
	handleReadFromConnErr(err error, retries uint8) uint8
	writeToConnWithRetry(msg interface{}, msgType uint8) error
	onConnErr(err error) uint8
}

// Session is one websocket client. Only the session's own loop writes to
// the connection and only its reader goroutine reads from it.
type Session struct {
	id        string
	conn      *websocket.Conn
	gameUuid  string
	createdAt time.Time
	backOff   time.Duration
}

func NewSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		createdAt: time.Now(),
		backOff:   time.Second,
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

func (s *Session) GameUuid() string {
	return s.gameUuid
}

func (s *Session) SetGameUuid(gameUuid string) {
	s.gameUuid = gameUuid
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) remoteAddr() string {
	if s.conn == nil {
		return "<nil>"
	}
	return s.conn.RemoteAddr().String()
}

func (s *Session) onConnErr(err error) uint8 {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Println("timeout error:", err)
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		log.Println("high server load/traffic error:", err)
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
		log.Println("close error:", err)
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension) {
		log.Println("critical error:", err)
		return ConnLoopBreak
	}

	// Payloads the client should never send (binary frames, bad UTF-8,
	// oversized messages) end the session instead of being retried.
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived) {
		log.Println("non-critical error:", err)
		return ConnLoopBreak
	}

	log.Println("unexpected error:", err)
	return ConnLoopBreak
}

// Writes to the connection of that session and retries with a linear
// back off on transient errors.
func (s *Session) writeToConnWithRetry(msg interface{}, msgType uint8) error {
	var retries uint8

	for {
		var err error

		switch msgType {
		case MessageTypeJSON:
			err = s.conn.WriteJSON(msg)

		case MessageTypeBytes:
			respBytes, ok := msg.([]byte)
			if !ok {
				return NewConnErr(ConnInvalidMsgType).AddDesc("msg type expected: []byte got invalid")
			}
			err = s.conn.WriteMessage(websocket.TextMessage, respBytes)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid message type to write with retry")
		}

		if err == nil {
			return nil
		}

		if s.onConnErr(err) != ConnLoopRetry {
			return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop").WithCause(err)
		}

		if retries >= maxWriteWsRetries {
			log.Printf("max retries reached for writing to ws [%s]: %s\n", s.remoteAddr(), err)
			return NewConnErr(ConnLoopBreak).WithCause(err)
		}

		retries++
		log.Printf("writing to ws failed [%s]; retrying... (retry no. %d)\n", s.remoteAddr(), retries)
		time.Sleep(time.Duration(retries*backOffFactor) * s.backOff)
	}
}

// Handles the errors that occur when reading from the ws connection.
// ConnLoopContinue means the read may be retried.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopRetry:
		if retries < maxWriteWsRetries {
			log.Printf("failed to read from ws conn [%s]; retrying... (retry no. %d)\n", s.remoteAddr(), retries+1)
			time.Sleep(time.Duration((retries+1)*backOffFactor) * s.backOff)
			return ConnLoopContinue
		}
		return ConnLoopBreak

	default:
		log.Printf("break ws conn loop [%s] due to: %s\n", s.remoteAddr(), err)
		return ConnLoopBreak
	}
}

var _ ConnectionHandler = (*Session)(nil)
