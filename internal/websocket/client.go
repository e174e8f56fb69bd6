package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one member's connection, subscribed to the board of one room.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	roomID int64
	send   chan []byte

	// lagged is signalled when the hub had to drop an update for this
	// client. Its view of the board is stale from then on.
	lagged chan struct{}
}

func NewClient(hub *Hub, conn *ws.Conn, roomID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		roomID: roomID,
		send:   make(chan []byte, sendBufferSize),
		lagged: make(chan struct{}, 1),
	}
}

func (c *Client) markLagged() {
	select {
	case c.lagged <- struct{}{}:
	default:
	}
}

// Run subscribes the client to its room and serves it until the peer goes
// away, the request context ends, or the client falls behind.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)
	defer c.conn.CloseNow()

	// Members never send anything; CloseRead handles control frames and
	// cancels ctx once the peer disconnects.
	ctx = c.conn.CloseRead(ctx)
	c.serve(ctx)
}

func (c *Client) serve(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(ws.StatusGoingAway, "unsubscribed")
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-c.lagged:
			// The client reconnects and reloads the board.
			c.conn.Close(ws.StatusTryAgainLater, "missed updates, reload chores")
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
