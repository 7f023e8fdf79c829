package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/fmarinoa/el-impostor-game/internal/middleware"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Game clients connect from arbitrary origins; session tokens gate
	// access instead.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents upgrades the connection and streams the room's change events
// until the client disconnects. The stream is one-way; clients mutate state
// through the JSON API and re-fetch the snapshot after a reconnect.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	code := p.ByName("code")

	sess, _ := middleware.SessionFrom(r.Context())
	if !strings.EqualFold(sess.RoomCode, code) {
		http.Error(w, `{"error":"token does not match room"}`, http.StatusForbidden)
		return
	}

	room, _, err := s.rooms.Snapshot(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	// Subscriptions are keyed by the canonical (uppercase) code.
	code = room.Code

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "room_code", code, "error", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(code)
	defer s.hub.Unsubscribe(code, sub)

	slog.Info("Subscriber connected", "room_code", code, "player_id", sess.PlayerID)

	// Drain reads so close and pong frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				slog.Info("Subscriber disconnected", "room_code", code, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
