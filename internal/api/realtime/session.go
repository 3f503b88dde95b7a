package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// session owns one websocket connection. Only writePump writes to the
// connection; everything else goes through send.
type session struct {
	conn *websocket.Conn
	json adapter.JSON
	name string

	mu     sync.Mutex
	out    chan []byte
	closed bool
	done   chan struct{}
}

func newSession(conn *websocket.Conn, j adapter.JSON, name string) *session {
	return &session{
		conn: conn,
		json: j,
		name: name,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// send queues a message and reports whether it was queued.
// A client that cannot keep up is disconnected.
func (s *session) send(msg ServerMessage) bool {
	payload, err := s.json.Marshal(msg)
	if err != nil {
		logger.Error(err, zap.String("session", s.name), zap.String("type", msg.Type))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.out <- payload:
		return true
	default:
		logger.Warn("Disconnecting slow websocket client", zap.String("session", s.name))
		s.closeLocked()
		return false
	}
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
	close(s.done)
}

// Done is closed when the session starts shutting down
func (s *session) Done() <-chan struct{} {
	return s.done
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("Websocket write failed", zap.String("session", s.name), zap.Error(err))
				s.close()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}

// readPump delivers client frames to handle until the connection fails or closes
func (s *session) readPump(handle func(ClientMessage)) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket closed unexpectedly", zap.String("session", s.name), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := s.json.Unmarshal(data, &msg); err != nil {
			s.send(errorMessage("", badFrame(err)))
			continue
		}
		handle(msg)
	}
}
