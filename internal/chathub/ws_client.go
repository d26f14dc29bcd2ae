package chathub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = config.WSWriteWait
	pongWait       = config.WSPongWait
	pingPeriod     = config.WSPingPeriod
	maxMessageSize = config.WSMaxMessageSize
)

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	UserID uint
	RoomID uint
	Conn   *websocket.Conn

	id      string
	handler InboundHandler
	log     *logrus.Entry

	mu          sync.Mutex
	send        chan models.ChatEnvelope
	closed      bool
	closeCode   int
	closeReason string
}

func NewWebSocketClient(conn *websocket.Conn, roomID, userID uint, handler InboundHandler, log *logrus.Logger) *WebSocketClient {
	id := uuid.NewString()
	return &WebSocketClient{
		UserID:  userID,
		RoomID:  roomID,
		Conn:    conn,
		id:      id,
		handler: handler,
		send:    make(chan models.ChatEnvelope, config.WSSendBuffer),
		log: loggerOrDefault(log).WithFields(logrus.Fields{
			"component": "ws_client",
			"room_id":   roomID,
			"user_id":   userID,
			"conn_id":   id,
		}),
	}
}

func (c *WebSocketClient) GetUserID() uint { return c.UserID }
func (c *WebSocketClient) GetRoomID() uint { return c.RoomID }
func (c *WebSocketClient) ConnID() string  { return c.id }

func (c *WebSocketClient) Deliver(env models.ChatEnvelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- env:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WebSocketClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.send)
}

func (c *WebSocketClient) closeFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeCode == 0 {
		return websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	return websocket.FormatCloseMessage(c.closeCode, c.closeReason)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.handler.Disconnect(c.RoomID, c.UserID, c)
		c.Close(websocket.CloseNormalClosure, "")
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("unexpected websocket close")
			}
			return
		}

		var msg models.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.WithError(err).Debug("dropping malformed frame")
			continue
		}
		c.handler.HandleInbound(context.Background(), c.RoomID, c.UserID, msg)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, c.closeFrame())
				return
			}
			if err := c.Conn.WriteJSON(env); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RejectConn closes a connection that never became a registered client.
func RejectConn(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
	conn.Close()
}

func loggerOrDefault(log *logrus.Logger) *logrus.Logger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
