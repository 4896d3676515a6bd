// ABOUTME: Tests for the matchmaker: FIFO pairing, placement, forfeit, watchdog
// ABOUTME: Uses an in-memory fake connection that records pushed frames

package arena

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberdreadx/the-crucible/internal/game"
	"github.com/cyberdreadx/the-crucible/internal/hub"
	"github.com/cyberdreadx/the-crucible/internal/ledger"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []map[string]any
	closed bool
}

func (c *fakeConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, v.(map[string]any))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// typed returns all recorded frames with the given type.
func (c *fakeConn) typed(frameType string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, f := range c.frames {
		if f["type"] == frameType {
			out = append(out, f)
		}
	}
	return out
}

type fixture struct {
	mm     *Matchmaker
	hub    *hub.Hub
	scores *ledger.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := hub.New(nil)
	t.Cleanup(h.Close)
	scores := ledger.New(nil)
	mm := New(Config{
		Variants:     []game.Variant{game.VariantTicTacToe},
		CleanupDelay: time.Hour, // keep finished sessions visible during tests
	}, h, scores, nil, nil)
	return &fixture{mm: mm, hub: h, scores: scores}
}

func (f *fixture) join(t *testing.T, name string) (*Agent, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	agent, err := f.mm.Register(conn, name)
	require.NoError(t, err)
	return agent, conn
}

func TestMatchmaker_RegisterRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.mm.Register(&fakeConn{}, "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestMatchmaker_FIFOPairing(t *testing.T) {
	f := newFixture(t)

	a, _ := f.join(t, "A")
	b, _ := f.join(t, "B")
	c, _ := f.join(t, "C")
	d, _ := f.join(t, "D")

	pos, size, err := f.mm.Enqueue(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, size)

	for _, agent := range []*Agent{b, c, d} {
		_, _, err := f.mm.Enqueue(agent.ID)
		require.NoError(t, err)
	}

	// The two oldest pair first: (A,B) then (C,D).
	sessions := f.mm.LiveSessions()
	require.Len(t, sessions, 2)
	byP1 := map[string]string{}
	for _, s := range sessions {
		byP1[s["player1"].(string)] = s["player2"].(string)
	}
	assert.Equal(t, "B", byP1["A"])
	assert.Equal(t, "D", byP1["C"])

	status := f.mm.QueueStatus()
	assert.Equal(t, 0, status.Size)
}

func TestMatchmaker_PlacementIsExclusive(t *testing.T) {
	f := newFixture(t)

	a, _ := f.join(t, "A")
	_, _, err := f.mm.Enqueue(a.ID)
	require.NoError(t, err)

	// Re-enqueueing a queued agent must not duplicate it.
	pos, size, err := f.mm.Enqueue(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, size)

	b, _ := f.join(t, "B")
	_, _, err = f.mm.Enqueue(b.ID)
	require.NoError(t, err)

	// Both are in a session now; enqueue must be a no-op.
	_, _, err = f.mm.Enqueue(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.mm.QueueStatus().Size)

	f.mm.mu.Lock()
	for _, agent := range f.mm.agents {
		assert.Equal(t, PlacementInSession, agent.Placement)
		assert.NotEmpty(t, agent.SessionID)
	}
	f.mm.mu.Unlock()
}

func TestMatchmaker_MatchStartFrames(t *testing.T) {
	f := newFixture(t)

	a, connA := f.join(t, "A")
	b, connB := f.join(t, "B")
	f.mm.Enqueue(a.ID)
	f.mm.Enqueue(b.ID)

	starts := connA.typed("match_start")
	require.Len(t, starts, 1)
	assert.Equal(t, "tic_tac_toe", starts[0]["game"])
	assert.Equal(t, "B", starts[0]["opponent"])
	assert.NotEmpty(t, starts[0]["session_id"])

	require.Len(t, connB.typed("match_start"), 1)
	assert.Equal(t, "A", connB.typed("match_start")[0]["opponent"])

	// Both seats get an opening challenge.
	require.NotEmpty(t, connA.typed("challenge"))
	require.NotEmpty(t, connB.typed("challenge"))
}

func TestMatchmaker_FullMatchFlow(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	events, _ := f.hub.Subscribe(ctx)

	a, connA := f.join(t, "A")
	b, connB := f.join(t, "B")
	f.mm.Enqueue(a.ID)
	f.mm.Enqueue(b.ID)

	// A is the first mover (X). Top-row win in five moves.
	seq := []struct {
		id   string
		move string
	}{
		{a.ID, "0,0"}, {b.ID, "1,1"}, {a.ID, "0,1"}, {b.ID, "2,2"}, {a.ID, "0,2"},
	}
	for _, m := range seq {
		require.NoError(t, f.mm.HandleMove(m.id, m.move))
	}

	ends := connA.typed("match_end")
	require.Len(t, ends, 1)
	assert.Equal(t, "A", ends[0]["winner"])
	assert.NotContains(t, ends[0], "forfeit")
	require.Len(t, connB.typed("match_end"), 1)

	// Both agents return to idle and may queue again.
	f.mm.mu.Lock()
	assert.Equal(t, PlacementIdle, f.mm.agents[a.ID].Placement)
	assert.Equal(t, PlacementIdle, f.mm.agents[b.ID].Placement)
	f.mm.mu.Unlock()

	// Ledger recorded exactly one game each.
	assert.Equal(t, 1, f.scores.Lookup("A").Wins)
	assert.Equal(t, 1, f.scores.Lookup("B").Losses)
	assert.Equal(t, 1, f.scores.Lookup("A").Games)

	// Spectators saw the full event sequence.
	var types []string
	for len(types) < 8 {
		select {
		case e := <-events:
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out after events %v", types)
		}
	}
	assert.Equal(t, []string{
		"queue_update", "queue_update", "match_start",
		"move_made", "move_made", "move_made", "move_made", "move_made",
	}, types[:8])
}

func TestMatchmaker_RejectedMoveFrame(t *testing.T) {
	f := newFixture(t)

	a, _ := f.join(t, "A")
	b, connB := f.join(t, "B")
	f.mm.Enqueue(a.ID)
	f.mm.Enqueue(b.ID)

	// B moving out of turn gets a rejection frame and nothing else changes.
	require.NoError(t, f.mm.HandleMove(b.ID, "0,0"))
	assert.Len(t, connB.typed("move_rejected"), 1)

	assert.ErrorIs(t, f.mm.HandleMove("ghost", "0,0"), ErrAgentNotFound)
}

func TestMatchmaker_MoveWithoutSession(t *testing.T) {
	f := newFixture(t)
	a, _ := f.join(t, "A")

	assert.ErrorIs(t, f.mm.HandleMove(a.ID, "0,0"), ErrNotInSession)
}

func TestMatchmaker_DisconnectForfeits(t *testing.T) {
	f := newFixture(t)

	a, _ := f.join(t, "A")
	b, connB := f.join(t, "B")
	f.mm.Enqueue(a.ID)
	f.mm.Enqueue(b.ID)

	f.mm.Remove(a.ID)

	ends := connB.typed("match_end")
	require.Len(t, ends, 1)
	assert.Equal(t, "B", ends[0]["winner"])
	assert.Equal(t, true, ends[0]["forfeit"])

	// Survivor is idle again; the leaver is gone entirely.
	f.mm.mu.Lock()
	assert.Equal(t, PlacementIdle, f.mm.agents[b.ID].Placement)
	_, exists := f.mm.agents[a.ID]
	f.mm.mu.Unlock()
	assert.False(t, exists)

	// A second removal must not double-record.
	f.mm.Remove(a.ID)
	assert.Equal(t, 1, f.scores.Lookup("B").Wins)
	assert.Equal(t, 1, f.scores.Lookup("B").Games)
	assert.Equal(t, 1, f.scores.Lookup("A").Games)
}

func TestMatchmaker_RemoveFromQueue(t *testing.T) {
	f := newFixture(t)

	a, _ := f.join(t, "A")
	f.mm.Enqueue(a.ID)
	require.Equal(t, 1, f.mm.QueueStatus().Size)

	f.mm.Remove(a.ID)
	assert.Equal(t, 0, f.mm.QueueStatus().Size)
	assert.Equal(t, 0, f.mm.AgentCount())
}

func TestMatchmaker_WatchdogRemovesStaleAgents(t *testing.T) {
	f := newFixture(t)

	a, connA := f.join(t, "A")
	b, _ := f.join(t, "B")

	now := time.Now()
	f.mm.mu.Lock()
	f.mm.agents[a.ID].LastHeartbeat = now.Add(-2 * f.mm.cfg.HeartbeatTimeout)
	f.mm.mu.Unlock()

	f.mm.removeStale(now)

	assert.Equal(t, 1, f.mm.AgentCount())
	assert.True(t, connA.closed, "stale connection is closed")
	require.NoError(t, f.mm.Heartbeat(b.ID))
	assert.ErrorIs(t, f.mm.Heartbeat(a.ID), ErrAgentNotFound)
}

func TestMatchmaker_HeartbeatKeepsAgentAlive(t *testing.T) {
	f := newFixture(t)

	a, _ := f.join(t, "A")
	require.NoError(t, f.mm.Heartbeat(a.ID))

	f.mm.removeStale(time.Now())
	assert.Equal(t, 1, f.mm.AgentCount())
}

func TestMatchmaker_DamageSinkSeesLoser(t *testing.T) {
	f := newFixture(t)

	var gotName string
	var gotAmount int
	f.mm.SetDamageSink(func(name string, amount int) {
		gotName = name
		gotAmount = amount
	})

	a, _ := f.join(t, "A")
	b, _ := f.join(t, "B")
	f.mm.Enqueue(a.ID)
	f.mm.Enqueue(b.ID)

	for _, m := range []struct{ id, move string }{
		{a.ID, "0,0"}, {b.ID, "1,1"}, {a.ID, "0,1"}, {b.ID, "2,2"}, {a.ID, "0,2"},
	} {
		require.NoError(t, f.mm.HandleMove(m.id, m.move))
	}

	assert.Equal(t, "B", gotName)
	assert.Equal(t, 25, gotAmount)
}

func TestMatchmaker_CloseDropsEveryone(t *testing.T) {
	f := newFixture(t)

	_, connA := f.join(t, "A")
	_, connB := f.join(t, "B")

	f.mm.Close()

	assert.Equal(t, 0, f.mm.AgentCount())
	assert.True(t, connA.closed)
	assert.True(t, connB.closed)
}
