package socket

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nekoden/nekoden/internal/identity"
	"github.com/nekoden/nekoden/nekoden/config"
)

// Client is one websocket connection. Writes only happen on the write pump;
// everything else queues onto send.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	identity *identity.Identity
}

func newClient(hub *Hub, conn *websocket.Conn, id *identity.Identity) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, config.SocketSendBuffer),
		done:     make(chan struct{}),
		identity: id,
	}
}

func (c *Client) String() string {
	who := "anonymous"
	if c.identity != nil {
		who = c.identity.UserID
	}
	if c.conn == nil {
		return who
	}
	return fmt.Sprintf("%s (%s)", who, c.conn.RemoteAddr())
}

// enqueue reports false when the client is gone or its queue is full.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// reply queues an event for this client only.
func (c *Client) reply(event string, data any) {
	msg, err := encode(event, data)
	if err != nil {
		slog.Error("Failed to encode reply",
			slog.String("type", "error"),
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	if !c.enqueue(msg) {
		c.hub.unregister(c)
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) writePump() {
	ticker := time.NewTicker(config.SocketPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(config.SocketWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(config.SocketWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

// readPump hands every frame to handle until the connection fails.
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(config.SocketMaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(config.SocketPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(config.SocketPongTimeout))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Websocket read failed",
					slog.String("type", "ws"),
					slog.String("client", c.String()),
					slog.Any("error", err))
			}
			return
		}
		handle(c, payload)
	}
}
