package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/logging"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// WebSocket constants.
const (
	// wsBufferSize is the read and write buffer size of the upgrader.
	wsBufferSize = 64 * 1024

	// defaultSendBuffer is the per-session outbound queue length.
	defaultSendBuffer = 256

	// defaultPingInterval and defaultPongTimeout apply when config leaves them zero.
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 10 * time.Second
)

var (
	errSessionClosed  = errors.New("websocket session closed")
	errSendBufferFull = errors.New("websocket send buffer full")
)

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(_ *http.Request) bool {
		// The cockpit is served from arbitrary dev origins.
		return true
	},
}

// wsSession adapts one WebSocket connection to monitoring.Session.
//
// SendText only enqueues; writePump owns all writes to the connection.
// A session whose queue overflows closes itself, so the hub drops it and
// the peer sees a close frame instead of silently missing events.
type wsSession struct {
	id     string
	conn   *websocket.Conn
	logger *logging.Logger

	mu     sync.Mutex
	send   chan string
	closed bool
}

func newWSSession(conn *websocket.Conn, buffer int, logger *logging.Logger) *wsSession {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &wsSession{
		id:     uuid.NewString(),
		conn:   conn,
		logger: logger,
		send:   make(chan string, buffer),
	}
}

// ID implements monitoring.Session.
func (c *wsSession) ID() string { return c.id }

// IsOpen implements monitoring.Session.
func (c *wsSession) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// SendText implements monitoring.Session. It never blocks.
func (c *wsSession) SendText(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errSessionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.closeLocked()
		return errSendBufferFull
	}
}

// Close stops the write pump, which then closes the connection.
func (c *wsSession) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *wsSession) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// handleEvents upgrades the request and registers the connection as an
// observer. Every monitoring event is then pushed as one text frame.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := newWSSession(conn, s.wsCfg.SendBuffer, s.logger)
	s.logger.Info("websocket connected", "session_id", session.id, "remote", r.RemoteAddr)

	go session.writePump(s.wsCfg)
	s.hub.Register(session)
	go session.readPump(s.hub, s.wsCfg)
}

// readPump reads frames until the peer goes away. Inbound text is logged
// and otherwise ignored.
func (c *wsSession) readPump(hub *monitoring.Hub, cfg config.WebSocketConfig) {
	defer func() {
		hub.Unregister(c)
		c.Close() //nolint:errcheck // Always nil
		c.conn.Close()
		c.logger.Info("websocket disconnected", "session_id", c.id)
	}()

	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	}
	pingInterval, pongWait := wsTimings(cfg)

	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "session_id", c.id, "error", err)
			} else {
				c.logger.Debug("websocket closed", "session_id", c.id, "error", err)
			}
			return
		}

		// Any client frame counts as liveness.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))

		if msgType == websocket.TextMessage {
			c.logger.Info("websocket message received", "session_id", c.id, "payload", string(message))
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *wsSession) writePump(cfg config.WebSocketConfig) {
	pingInterval, pongWait := wsTimings(cfg)
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Best-effort close frame
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(pongWait))
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				c.Close() //nolint:errcheck // Always nil
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close() //nolint:errcheck // Always nil
				return
			}
		}
	}
}

func wsTimings(cfg config.WebSocketConfig) (pingInterval, pongWait time.Duration) {
	pingInterval = time.Duration(cfg.PingInterval) * time.Second
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	pongWait = time.Duration(cfg.PongTimeout) * time.Second
	if pongWait <= 0 {
		pongWait = defaultPongTimeout
	}
	return pingInterval, pongWait
}
