package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 10000

	// Outbound events buffered per client; a client that falls this far behind is dropped.
	sendBufferSize = 256
)

// Client is one authenticated websocket connection.
type Client struct {
	hub      *Hub
	handler  *Handler
	conn     *websocket.Conn
	send     chan []byte
	userID   uint
	subjects []string

	// Room channels the client is attached to; guarded by hub.mu.
	rooms map[uint]bool
}

// Message is the wire envelope of every event in both directions.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func newClient(hub *Hub, handler *Handler, conn *websocket.Conn, userID uint, subjects []string) *Client {
	return &Client{
		hub:      hub,
		handler:  handler,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		userID:   userID,
		subjects: subjects,
		rooms:    make(map[uint]bool),
	}
}

// readPump feeds inbound frames to the handler until the peer goes away.
// It owns the unregister so a dead reader always detaches the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.extendReadDeadline()
	c.conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", c.userID).Warn("Websocket read failed")
			}
			return
		}
		c.handler.handleMessage(c, frame)
	}
}

func (c *Client) extendReadDeadline() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// writePump drains the send buffer, one frame per event, and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				// dropped by the hub
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, event); err != nil {
				logrus.WithError(err).WithField("user_id", c.userID).Debug("Websocket write failed")
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
