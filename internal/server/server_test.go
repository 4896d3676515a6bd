// ABOUTME: End-to-end tests over real HTTP and websocket connections
// ABOUTME: Covers the join handshake, match flow, spectating, and REST surface

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberdreadx/the-crucible/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Arena.Variants = []string{"tic_tac_toe"}
	cfg.Arena.CleanupDelay = time.Hour

	s, err := New(cfg, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(s.routes())
	t.Cleanup(func() {
		ts.Close()
		s.matchmaker.Close()
		s.hub.Close()
		_ = s.archive.Close()
	})
	return s, ts
}

func wsURL(ts *httptest.Server, path string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + path
}

func dialWS(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts, path), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, ws.ReadJSON(&frame))
	return frame
}

// readUntil drains frames until one of the wanted type arrives.
func readUntil(t *testing.T, ws *websocket.Conn, frameType string) map[string]any {
	t.Helper()
	for range 50 {
		frame := readFrame(t, ws)
		if frame["type"] == frameType {
			return frame
		}
	}
	t.Fatalf("never saw a %s frame", frameType)
	return nil
}

func sendFrame(t *testing.T, ws *websocket.Conn, frame map[string]any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(frame))
}

func joinAgent(t *testing.T, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	ws := dialWS(t, ts, "/ws/play")
	sendFrame(t, ws, map[string]any{"type": "join", "name": name})
	frame := readFrame(t, ws)
	require.Equal(t, "connected", frame["type"])
	require.Equal(t, name, frame["name"])
	require.NotEmpty(t, frame["agent_id"])
	return ws
}

func TestAgentWS_JoinHandshake(t *testing.T) {
	_, ts := newTestServer(t)
	joinAgent(t, ts, "alice")
}

func TestAgentWS_FirstFrameMustBeJoin(t *testing.T) {
	_, ts := newTestServer(t)

	ws := dialWS(t, ts, "/ws/play")
	sendFrame(t, ws, map[string]any{"type": "queue"})

	frame := readFrame(t, ws)
	assert.Equal(t, "error", frame["type"])
	assert.Contains(t, frame["message"], "join")

	// The server closes the connection after the protocol violation.
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var discard map[string]any
	assert.Error(t, ws.ReadJSON(&discard))
}

func TestAgentWS_JoinRequiresName(t *testing.T) {
	_, ts := newTestServer(t)

	ws := dialWS(t, ts, "/ws/play")
	sendFrame(t, ws, map[string]any{"type": "join"})

	frame := readFrame(t, ws)
	assert.Equal(t, "error", frame["type"])
}

func TestAgentWS_HeartbeatAck(t *testing.T) {
	_, ts := newTestServer(t)

	ws := joinAgent(t, ts, "alice")
	sendFrame(t, ws, map[string]any{"type": "heartbeat"})

	frame := readFrame(t, ws)
	assert.Equal(t, "heartbeat_ack", frame["type"])
}

func TestAgentWS_FullMatch(t *testing.T) {
	_, ts := newTestServer(t)

	wsA := joinAgent(t, ts, "alice")
	wsB := joinAgent(t, ts, "bob")

	sendFrame(t, wsA, map[string]any{"type": "queue"})
	queued := readFrame(t, wsA)
	require.Equal(t, "queued", queued["type"])
	assert.Equal(t, float64(1), queued["position"])

	sendFrame(t, wsB, map[string]any{"type": "queue"})

	startA := readUntil(t, wsA, "match_start")
	assert.Equal(t, "tic_tac_toe", startA["game"])
	assert.Equal(t, "bob", startA["opponent"])
	startB := readUntil(t, wsB, "match_start")
	assert.Equal(t, "alice", startB["opponent"])

	challenge := readUntil(t, wsA, "challenge")
	assert.Equal(t, true, challenge["your_turn"], "first enqueued agent moves first")

	// Alice takes the top row.
	moves := []struct {
		ws   *websocket.Conn
		move string
	}{
		{wsA, "0,0"}, {wsB, "1,1"}, {wsA, "0,1"}, {wsB, "2,2"}, {wsA, "0,2"},
	}
	for _, m := range moves {
		sendFrame(t, m.ws, map[string]any{"type": "move", "move": m.move})
		// Wait for the refreshed prompt (or the end) before the next move.
		time.Sleep(20 * time.Millisecond)
	}

	endA := readUntil(t, wsA, "match_end")
	assert.Equal(t, "alice", endA["winner"])
	readUntil(t, wsB, "match_end")
}

func TestAgentWS_MoveRejected(t *testing.T) {
	_, ts := newTestServer(t)

	wsA := joinAgent(t, ts, "alice")
	wsB := joinAgent(t, ts, "bob")
	sendFrame(t, wsA, map[string]any{"type": "queue"})
	sendFrame(t, wsB, map[string]any{"type": "queue"})
	readUntil(t, wsB, "match_start")

	// Bob moves out of turn.
	sendFrame(t, wsB, map[string]any{"type": "move", "move": "0,0"})
	frame := readUntil(t, wsB, "move_rejected")
	assert.Equal(t, "move_rejected", frame["type"])
}

func TestAgentWS_DisconnectForfeits(t *testing.T) {
	s, ts := newTestServer(t)

	wsA := joinAgent(t, ts, "alice")
	wsB := joinAgent(t, ts, "bob")
	sendFrame(t, wsA, map[string]any{"type": "queue"})
	sendFrame(t, wsB, map[string]any{"type": "queue"})
	readUntil(t, wsA, "match_start")

	require.NoError(t, wsB.Close())

	end := readUntil(t, wsA, "match_end")
	assert.Equal(t, "alice", end["winner"])
	assert.Equal(t, true, end["forfeit"])

	require.Eventually(t, func() bool {
		return s.matchmaker.AgentCount() == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSpectatorWS_InitAndEvents(t *testing.T) {
	_, ts := newTestServer(t)

	spec := dialWS(t, ts, "/ws/spectate")
	initFrame := readFrame(t, spec)
	require.Equal(t, "init", initFrame["type"])
	assert.Contains(t, initFrame, "live")
	assert.Contains(t, initFrame, "queue")

	wsA := joinAgent(t, ts, "alice")
	sendFrame(t, wsA, map[string]any{"type": "queue"})

	update := readUntil(t, spec, "queue_update")
	assert.Equal(t, float64(1), update["queue_size"])
}

func TestAPI_Health(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func getJSON(t *testing.T, ts *httptest.Server, path string) map[string]any {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAPI_Status(t *testing.T) {
	_, ts := newTestServer(t)
	joinAgent(t, ts, "alice")

	status := getJSON(t, ts, "/api/status")
	assert.Equal(t, float64(1), status["agents_connected"])
	assert.Equal(t, false, status["royale_active"])
}

func TestAPI_Games(t *testing.T) {
	_, ts := newTestServer(t)

	games := getJSON(t, ts, "/api/games")
	list := games["games"].([]any)
	assert.Len(t, list, 8)
}

func TestAPI_LeaderboardEmpty(t *testing.T) {
	_, ts := newTestServer(t)

	board := getJSON(t, ts, "/api/leaderboard")
	assert.Empty(t, board["leaderboard"])
}

func TestAPI_LeaderboardBadLimit(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/leaderboard?limit=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RecentMatchesEmpty(t *testing.T) {
	_, ts := newTestServer(t)

	matches := getJSON(t, ts, "/api/matches/recent")
	assert.Empty(t, matches["matches"])
}

func TestAPI_ExhibitionValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/exhibition/poker", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/api/exhibition/chess")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestAPI_RoyaleLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	body := strings.NewReader(`{"tributes": ["alice", "bob"]}`)
	resp, err := http.Post(ts.URL+"/api/royale/start", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := getJSON(t, ts, "/api/royale")
	assert.Equal(t, true, snap["running"])
	assert.Equal(t, float64(2), snap["alive"])

	// A second start conflicts.
	resp2, err := http.Post(ts.URL+"/api/royale/start", "application/json",
		strings.NewReader(`{"tributes": ["c", "d"]}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	resp3, err := http.Post(ts.URL+"/api/royale/stop", "application/json", nil)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestDocs_Served(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/skill.md", "/heartbeat.md"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "markdown")
	}

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	notFound, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer notFound.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
}
