package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/roomsync/internal/auth"
)

// RoomResolver returns the room the request's caller belongs to.
type RoomResolver func(r *http.Request) (roomID int64, ok bool)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and subscribes them to the caller's room. Browsers attach the
// session cookie to cross-site upgrades too, so handshakes from another
// origin are refused unless its host matches one of originPatterns.
func HandleWebSocket(hub *Hub, resolve RoomResolver, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, ok := resolve(r)
		if !ok {
			http.Error(w, "not in a room", http.StatusNotFound)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		// The connection ends with the caller's session.
		ctx, cancel := auth.SessionDeadline(r.Context())
		defer cancel()

		client := NewClient(hub, conn, roomID)
		client.Run(ctx)
	}
}
