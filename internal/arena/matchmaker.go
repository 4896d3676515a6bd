// ABOUTME: Matchmaker: agent registry, FIFO queue, session lifecycle, watchdog
// ABOUTME: One mutex guards registry and queue; each session serializes itself

package arena

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyberdreadx/the-crucible/internal/game"
	"github.com/cyberdreadx/the-crucible/internal/hub"
	"github.com/cyberdreadx/the-crucible/internal/ledger"
	"github.com/cyberdreadx/the-crucible/internal/store"
)

var (
	// ErrNameRequired is returned when an agent joins without a display name.
	ErrNameRequired = errors.New("display name is required")
	// ErrAgentNotFound is returned for operations on unknown agent ids.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrNotInSession is returned for a move from an agent with no session.
	ErrNotInSession = errors.New("agent is not in a session")
)

// Config carries the matchmaking timings and the enabled variant set.
// Zero fields fall back to defaults.
type Config struct {
	HeartbeatTimeout time.Duration // staleness threshold before forced removal
	WatchdogInterval time.Duration // how often the watchdog scans
	CleanupDelay     time.Duration // how long finished sessions stay visible
	Variants         []game.Variant
}

func (c Config) withDefaults() Config {
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = 90 * time.Second
	}
	if c.WatchdogInterval <= 0 {
		c.WatchdogInterval = 10 * time.Second
	}
	if c.CleanupDelay <= 0 {
		c.CleanupDelay = 30 * time.Second
	}
	return c
}

// DamageSink receives the loser's name and damage magnitude after each
// decided match. The narrative layer hooks in here.
type DamageSink func(name string, amount int)

// QueueStatus is the pull snapshot of the waiting line.
type QueueStatus struct {
	Size   int      `json:"size"`
	Agents []string `json:"agents"`
}

// Matchmaker owns the agent registry, the FIFO queue, and all live
// sessions. All three live behind one mutex; pairing has to observe the
// registry transactionally. Frame sends and hub publishes happen outside
// the lock.
type Matchmaker struct {
	mu       sync.Mutex
	agents   map[string]*Agent
	queue    []string
	sessions map[string]*Session

	hub     *hub.Hub
	scores  *ledger.Ledger
	archive store.Store // optional
	damage  DamageSink  // optional
	cfg     Config
	logger  *slog.Logger
}

// New creates a matchmaker. The archive may be nil; pass nil logger for
// default.
func New(cfg Config, h *hub.Hub, scores *ledger.Ledger, archive store.Store, logger *slog.Logger) *Matchmaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matchmaker{
		agents:   make(map[string]*Agent),
		sessions: make(map[string]*Session),
		hub:      h,
		scores:   scores,
		archive:  archive,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "matchmaker"),
	}
}

// SetDamageSink installs the narrative damage callback. Call before Run.
func (m *Matchmaker) SetDamageSink(sink DamageSink) {
	m.damage = sink
}

// Register admits a connected agent. The returned agent starts idle.
func (m *Matchmaker) Register(conn Conn, name string) (*Agent, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	now := time.Now()
	agent := &Agent{
		ID:            uuid.New().String(),
		Name:          name,
		Conn:          conn,
		ConnectedAt:   now,
		LastHeartbeat: now,
		Placement:     PlacementIdle,
	}

	m.mu.Lock()
	m.agents[agent.ID] = agent
	total := len(m.agents)
	m.mu.Unlock()

	m.logger.Info("agent joined", "agent_id", agent.ID, "name", name, "connected", total)
	return agent, nil
}

// Heartbeat refreshes an agent's liveness stamp.
func (m *Matchmaker) Heartbeat(agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	agent, ok := m.agents[agentID]
	if !ok {
		return ErrAgentNotFound
	}
	agent.LastHeartbeat = time.Now()
	return nil
}

// Enqueue puts an idle agent into the waiting line and pairs if possible.
// Agents already queued or in a session are left where they are. Returns
// the agent's 1-based queue position and the queue size after the call
// (both zero when the agent got paired immediately).
func (m *Matchmaker) Enqueue(agentID string) (position, size int, err error) {
	m.mu.Lock()
	agent, ok := m.agents[agentID]
	if !ok {
		m.mu.Unlock()
		return 0, 0, ErrAgentNotFound
	}
	if agent.Placement != PlacementIdle {
		position, size = m.queuePositionLocked(agentID), len(m.queue)
		m.mu.Unlock()
		return position, size, nil
	}

	m.queue = append(m.queue, agentID)
	agent.Placement = PlacementQueued
	m.logger.Debug("agent queued", "agent_id", agentID, "queue_size", len(m.queue))

	pairs := m.pairLocked()
	position, size = m.queuePositionLocked(agentID), len(m.queue)
	m.mu.Unlock()

	m.publishQueueUpdate()
	for _, s := range pairs {
		m.announceMatchStart(s)
	}
	return position, size, nil
}

// HandleMove routes one raw move from an agent to its session. The
// outcome frames go back over the agent connections; spectators get a
// move_made event for every accepted move.
func (m *Matchmaker) HandleMove(agentID, move string) error {
	m.mu.Lock()
	agent, ok := m.agents[agentID]
	if !ok {
		m.mu.Unlock()
		return ErrAgentNotFound
	}
	session := m.sessions[agent.SessionID]
	m.mu.Unlock()

	if session == nil {
		return ErrNotInSession
	}

	outcome := session.Submit(agentID, move)
	if !outcome.Accepted {
		m.send(agent, map[string]any{"type": "move_rejected"})
		return nil
	}

	m.hub.Publish(hub.Event{Type: "move_made", Data: map[string]any{
		"session_id": session.ID,
		"player":     session.SeatName(agentID),
		"move":       move,
		"state":      outcome.State,
	}})

	if outcome.Result != nil {
		m.finishSession(session, outcome.Result)
		return nil
	}

	// The game continues; both seats get a refreshed prompt.
	m.sendChallenges(session)
	return nil
}

// Remove takes an agent out of the arena: dequeued if waiting, forfeited
// if mid-session, deleted from the registry last. Safe to call twice.
func (m *Matchmaker) Remove(agentID string) {
	m.mu.Lock()
	agent, ok := m.agents[agentID]
	if !ok {
		m.mu.Unlock()
		return
	}

	var session *Session
	switch agent.Placement {
	case PlacementQueued:
		m.dequeueLocked(agentID)
	case PlacementInSession:
		session = m.sessions[agent.SessionID]
	}
	delete(m.agents, agentID)
	m.mu.Unlock()

	m.logger.Info("agent removed", "agent_id", agentID, "name", agent.Name)
	m.publishQueueUpdate()

	if session != nil {
		if res := session.Forfeit(agentID); res != nil {
			m.finishSession(session, res)
		}
	}
}

// Run drives the heartbeat watchdog until ctx is cancelled.
func (m *Matchmaker) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.WatchdogInterval)
	defer ticker.Stop()

	m.logger.Info("watchdog running",
		"interval", m.cfg.WatchdogInterval,
		"timeout", m.cfg.HeartbeatTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeStale(time.Now())
		}
	}
}

// removeStale force-removes every agent whose heartbeat is older than the
// staleness threshold. Their connections are closed so the read loops end.
func (m *Matchmaker) removeStale(now time.Time) {
	m.mu.Lock()
	var stale []*Agent
	for _, agent := range m.agents {
		if now.Sub(agent.LastHeartbeat) > m.cfg.HeartbeatTimeout {
			stale = append(stale, agent)
		}
	}
	m.mu.Unlock()

	for _, agent := range stale {
		m.logger.Warn("heartbeat timeout", "agent_id", agent.ID, "name", agent.Name)
		m.Remove(agent.ID)
		_ = agent.Conn.Close()
	}
}

// QueueStatus snapshots the waiting line.
func (m *Matchmaker) QueueStatus() QueueStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.queue))
	for _, id := range m.queue {
		if agent, ok := m.agents[id]; ok {
			names = append(names, agent.Name)
		}
	}
	return QueueStatus{Size: len(m.queue), Agents: names}
}

// LiveSessions snapshots every session still tracked, including recently
// finished ones awaiting cleanup.
func (m *Matchmaker) LiveSessions() []map[string]any {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	out := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// AgentCount returns how many agents are connected.
func (m *Matchmaker) AgentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.agents)
}

// Close drops every agent connection. Queued and mid-session agents go
// through the same removal path as a disconnect.
func (m *Matchmaker) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.agents))
	conns := make([]Conn, 0, len(m.agents))
	for id, agent := range m.agents {
		ids = append(ids, id)
		conns = append(conns, agent.Conn)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Remove(id)
	}
	for _, c := range conns {
		_ = c.Close()
	}
	m.logger.Info("matchmaker closed")
}

// pairLocked pops pairs off the queue head while two agents are waiting.
// Caller holds m.mu. Returns the sessions created; callers announce them
// after releasing the lock.
func (m *Matchmaker) pairLocked() []*Session {
	var created []*Session
	for len(m.queue) >= 2 {
		a1 := m.agents[m.queue[0]]
		a2 := m.agents[m.queue[1]]
		m.queue = m.queue[2:]

		variant := game.RandomVariant(m.cfg.Variants)
		session, err := NewSession(variant,
			Seat{ID: a1.ID, Name: a1.Name},
			Seat{ID: a2.ID, Name: a2.Name})
		if err != nil {
			// Unreachable while the variant table and config agree;
			// requeue both rather than lose agents.
			m.logger.Error("session creation failed", "error", err, "game", variant)
			m.queue = append([]string{a1.ID, a2.ID}, m.queue...)
			return created
		}

		a1.Placement = PlacementInSession
		a1.SessionID = session.ID
		a2.Placement = PlacementInSession
		a2.SessionID = session.ID
		m.sessions[session.ID] = session
		created = append(created, session)

		m.logger.Info("match created",
			"session_id", session.ID,
			"game", variant,
			"player1", a1.Name,
			"player2", a2.Name)
	}
	return created
}

// announceMatchStart tells both agents and the spectators about a fresh
// session, then deals the opening prompts.
func (m *Matchmaker) announceMatchStart(session *Session) {
	m.hub.Publish(hub.Event{Type: "match_start", Data: map[string]any{
		"session_id": session.ID,
		"game":       string(session.Variant),
		"player1":    session.P1.Name,
		"player2":    session.P2.Name,
	}})

	for _, seat := range []Seat{session.P1, session.P2} {
		opp, _ := session.Opponent(seat.ID)
		m.sendTo(seat.ID, map[string]any{
			"type":       "match_start",
			"session_id": session.ID,
			"game":       string(session.Variant),
			"opponent":   opp.Name,
		})
	}
	m.sendChallenges(session)
}

// sendChallenges pushes each seat its own prompt view.
func (m *Matchmaker) sendChallenges(session *Session) {
	if session.Finished() {
		return
	}
	for _, seat := range []Seat{session.P1, session.P2} {
		payload := map[string]any{"type": "challenge", "session_id": session.ID}
		for k, v := range session.Prompt(seat.ID) {
			payload[k] = v
		}
		m.sendTo(seat.ID, payload)
	}
}

// finishSession handles one terminal result: ledger, archive, damage,
// broadcast, agent release, and delayed cleanup. The session guarantees
// at most one terminal result, so everything here happens exactly once.
func (m *Matchmaker) finishSession(session *Session, res *game.Result) {
	winnerName := ""
	if !res.IsDraw {
		winnerName = session.SeatName(res.WinnerID)
	}
	forfeit := session.IsForfeit()

	m.scores.Record(res,
		ledger.Participant{ID: session.P1.ID, Name: session.P1.Name},
		ledger.Participant{ID: session.P2.ID, Name: session.P2.Name})

	if m.damage != nil && !res.IsDraw && res.DamageToLoser > 0 {
		m.damage(session.SeatName(res.LoserID), res.DamageToLoser)
	}

	if m.archive != nil {
		rec := &store.MatchRecord{
			ID:         session.ID,
			Variant:    string(session.Variant),
			Player1:    session.P1.Name,
			Player2:    session.P2.Name,
			Winner:     winnerName,
			Summary:    res.Message,
			Damage:     res.DamageToLoser,
			Reward:     res.RewardToWinner,
			Forfeit:    forfeit,
			MoveCount:  session.MoveCount(),
			FinishedAt: time.Now(),
		}
		if err := m.archive.SaveMatch(context.Background(), rec); err != nil {
			m.logger.Error("archiving match failed", "error", err, "session_id", session.ID)
		}
	}

	endFrame := map[string]any{
		"type":       "match_end",
		"session_id": session.ID,
		"winner":     winnerName,
		"message":    res.Message,
	}
	if forfeit {
		endFrame["forfeit"] = true
	}
	m.sendTo(session.P1.ID, endFrame)
	m.sendTo(session.P2.ID, endFrame)

	m.hub.Publish(hub.Event{Type: "match_end", Data: map[string]any{
		"session_id": session.ID,
		"game":       string(session.Variant),
		"winner":     winnerName,
		"message":    res.Message,
		"forfeit":    forfeit,
	}})

	m.logger.Info("match finished",
		"session_id", session.ID,
		"game", session.Variant,
		"winner", winnerName,
		"forfeit", forfeit)

	m.mu.Lock()
	for _, seatID := range []string{session.P1.ID, session.P2.ID} {
		if agent, ok := m.agents[seatID]; ok && agent.SessionID == session.ID {
			agent.Placement = PlacementIdle
			agent.SessionID = ""
		}
	}
	pairs := m.pairLocked()
	m.mu.Unlock()

	for _, s := range pairs {
		m.announceMatchStart(s)
	}

	// Keep the finished session visible to spectators for a while.
	time.AfterFunc(m.cfg.CleanupDelay, func() {
		m.mu.Lock()
		delete(m.sessions, session.ID)
		m.mu.Unlock()
	})
}

func (m *Matchmaker) publishQueueUpdate() {
	m.mu.Lock()
	size := len(m.queue)
	m.mu.Unlock()
	m.hub.Publish(hub.Event{Type: "queue_update", Data: map[string]any{
		"queue_size": size,
	}})
}

// sendTo pushes one frame to an agent by id, looking the connection up
// under the lock but sending outside it.
func (m *Matchmaker) sendTo(agentID string, frame map[string]any) {
	m.mu.Lock()
	agent, ok := m.agents[agentID]
	m.mu.Unlock()
	if !ok {
		return
	}
	m.send(agent, frame)
}

func (m *Matchmaker) send(agent *Agent, frame map[string]any) {
	if err := agent.Conn.Send(frame); err != nil {
		m.logger.Debug("frame send failed", "agent_id", agent.ID, "error", err)
	}
}

func (m *Matchmaker) dequeueLocked(agentID string) {
	for i, id := range m.queue {
		if id == agentID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}

func (m *Matchmaker) queuePositionLocked(agentID string) int {
	for i, id := range m.queue {
		if id == agentID {
			return i + 1
		}
	}
	return 0
}
