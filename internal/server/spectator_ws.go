// ABOUTME: Spectator websocket endpoint: init snapshot then a one-way event feed
// ABOUTME: A dead or slow spectator never touches gameplay

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cyberdreadx/the-crucible/internal/hub"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be less than pongWait
)

// handleSpectatorWS subscribes a read-only observer to the event feed.
func (s *Server) handleSpectatorWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("spectator upgrade failed", "error", err)
		return
	}
	conn := &wsConn{ws: ws}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events, subID := s.hub.Subscribe(ctx)
	s.logger.Debug("spectator connected", "sub_id", subID)

	// The init frame carries the current world so the dashboard can paint
	// before the first event arrives.
	if err := conn.Send(map[string]any{
		"type":  "init",
		"live":  s.matchmaker.LiveSessions(),
		"queue": s.matchmaker.QueueStatus(),
	}); err != nil {
		_ = ws.Close()
		return
	}

	// Read pump: spectators send nothing meaningful, but reading services
	// pong frames and detects the close.
	go func() {
		defer cancel()
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.spectatorWritePump(ctx, conn, events)
	_ = ws.Close()
	s.logger.Debug("spectator disconnected", "sub_id", subID)
}

// spectatorWritePump forwards hub events until the subscription ends. A
// failed send abandons the spectator; the deferred cancel unsubscribes.
func (s *Server) spectatorWritePump(ctx context.Context, conn *wsConn, events <-chan hub.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.Send(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.mu.Lock()
			_ = conn.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.ws.WriteMessage(websocket.PingMessage, nil)
			conn.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
