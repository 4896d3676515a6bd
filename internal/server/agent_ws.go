// ABOUTME: Agent websocket endpoint: join handshake, then the frame loop
// ABOUTME: Disconnects and protocol breaks route into matchmaker removal

package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cyberdreadx/the-crucible/internal/arena"
)

const (
	writeTimeout = 10 * time.Second
	joinTimeout  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Agents and dashboards connect from anywhere.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// agentFrame is every inbound message an agent may send.
type agentFrame struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Move string `json:"move,omitempty"`
}

// wsConn adapts a websocket to the arena's Conn. Gorilla allows one
// concurrent writer, so sends serialize on the mutex.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// handleAgentWS runs one agent connection from handshake to removal.
func (s *Server) handleAgentWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("agent upgrade failed", "error", err)
		return
	}
	conn := &wsConn{ws: ws}

	agent, err := s.joinHandshake(ws, conn)
	if err != nil {
		_ = conn.Send(map[string]any{"type": "error", "message": err.Error()})
		_ = ws.Close()
		return
	}

	_ = conn.Send(map[string]any{
		"type":     "connected",
		"agent_id": agent.ID,
		"name":     agent.Name,
	})

	s.readLoop(ws, agent, conn)
}

// joinHandshake reads the mandatory first frame and registers the agent.
func (s *Server) joinHandshake(ws *websocket.Conn, conn *wsConn) (*arena.Agent, error) {
	_ = ws.SetReadDeadline(time.Now().Add(joinTimeout))
	var frame agentFrame
	if err := ws.ReadJSON(&frame); err != nil {
		return nil, fmt.Errorf("reading join frame: %w", err)
	}
	if frame.Type != "join" {
		return nil, fmt.Errorf("first message must be join, got %q", frame.Type)
	}

	agent, err := s.matchmaker.Register(conn, frame.Name)
	if err != nil {
		return nil, err
	}
	_ = ws.SetReadDeadline(time.Time{})
	return agent, nil
}

// readLoop dispatches frames until the connection dies, then removes the
// agent, which forfeits any session it was bound to.
func (s *Server) readLoop(ws *websocket.Conn, agent *arena.Agent, conn *wsConn) {
	defer func() {
		s.matchmaker.Remove(agent.ID)
		_ = ws.Close()
	}()

	for {
		var frame agentFrame
		if err := ws.ReadJSON(&frame); err != nil {
			s.logger.Debug("agent connection closed", "agent_id", agent.ID, "error", err)
			return
		}
		s.dispatch(agent, conn, frame)
	}
}

// dispatch handles one inbound frame. Protocol violations get an error
// frame back; they never take the connection down.
func (s *Server) dispatch(agent *arena.Agent, conn *wsConn, frame agentFrame) {
	switch frame.Type {
	case "heartbeat":
		if err := s.matchmaker.Heartbeat(agent.ID); err != nil {
			s.logger.Debug("heartbeat for unknown agent", "agent_id", agent.ID)
			return
		}
		_ = conn.Send(map[string]any{"type": "heartbeat_ack"})

	case "queue":
		position, size, err := s.matchmaker.Enqueue(agent.ID)
		if err != nil {
			_ = conn.Send(map[string]any{"type": "error", "message": err.Error()})
			return
		}
		if position > 0 {
			_ = conn.Send(map[string]any{
				"type":       "queued",
				"position":   position,
				"queue_size": size,
			})
		}

	case "move":
		if err := s.matchmaker.HandleMove(agent.ID, frame.Move); err != nil {
			_ = conn.Send(map[string]any{"type": "error", "message": err.Error()})
		}

	case "join":
		_ = conn.Send(map[string]any{"type": "error", "message": "already joined"})

	default:
		_ = conn.Send(map[string]any{
			"type":    "error",
			"message": fmt.Sprintf("unknown message type %q", frame.Type),
		})
	}
}
