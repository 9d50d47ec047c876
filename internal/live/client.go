package live

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

var (
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// Toucher refreshes presence while a socket is open.
type Toucher interface {
	Touch(ctx context.Context, uid string) error
}

type Client struct {
	UID      string
	Conn     *websocket.Conn
	Send     chan []byte
	Presence Toucher
}

func NewClient(uid string, conn *websocket.Conn, presence Toucher) *Client {
	return &Client{
		UID:      uid,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Presence: presence,
	}
}

// ReadPump only services control frames; clients never write data. It
// returns when the peer goes away.
func (c *Client) ReadPump() {
	c.Conn.SetReadLimit(int64(maxMessageSize))
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[live] %s read: %v", c.UID, err)
			}
			return
		}
	}
}

// WritePump drains Send and pings; it closes the connection when Send is
// closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	c.touch()
	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.touch()
		}
	}
}

func (c *Client) touch() {
	if c.Presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Presence.Touch(ctx, c.UID); err != nil {
		log.Printf("[live] presence touch %s: %v", c.UID, err)
	}
}
