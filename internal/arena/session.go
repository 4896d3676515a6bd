// ABOUTME: Session: one engine, two seated agents, a log of accepted moves
// ABOUTME: Finished is absorbing; the result is produced exactly once

package arena

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyberdreadx/the-crucible/internal/game"
)

// Seat binds an agent identity to one side of a session.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MoveRecord is one accepted move. Rejected submissions are never logged,
// so replaying the log on a fresh engine reproduces the terminal result.
type MoveRecord struct {
	AgentID string    `json:"agent_id"`
	Move    string    `json:"move"`
	At      time.Time `json:"at"`
}

// SubmitOutcome reports what one submission did. State is the spectator
// view captured atomically with the move, so broadcast frames cannot show
// a later position than the move they describe.
type SubmitOutcome struct {
	Accepted bool
	Result   *game.Result
	State    map[string]any
}

// Session owns exactly one game engine and serializes all access to it
// behind its own mutex. The first seat is the engine's first mover.
type Session struct {
	ID        string
	Variant   game.Variant
	P1, P2    Seat
	StartedAt time.Time

	mu       sync.Mutex
	engine   game.Game
	moves    []MoveRecord
	finished bool
	forfeit  bool
	result   *game.Result
}

// NewSession constructs a session with a fresh engine for the variant.
func NewSession(variant game.Variant, p1, p2 Seat) (*Session, error) {
	engine, err := game.New(variant, p1.ID, p2.ID)
	if err != nil {
		return nil, fmt.Errorf("creating session engine: %w", err)
	}
	return &Session{
		ID:        uuid.New().String(),
		Variant:   variant,
		P1:        p1,
		P2:        p2,
		StartedAt: time.Now(),
		engine:    engine,
	}, nil
}

// Submit forwards one raw move to the engine. Submissions from non-players
// or into a finished session are rejected without touching the engine.
func (s *Session) Submit(agentID, move string) SubmitOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || !s.seatedLocked(agentID) {
		return SubmitOutcome{}
	}

	result, accepted := s.engine.SubmitMove(agentID, move)
	if !accepted {
		return SubmitOutcome{}
	}

	s.moves = append(s.moves, MoveRecord{AgentID: agentID, Move: move, At: time.Now()})
	if result != nil {
		s.finished = true
		s.result = result
	}
	return SubmitOutcome{Accepted: true, Result: result, State: s.engine.State()}
}

// Forfeit ends the session in favor of the other seat. Returns the
// synthesized result, or nil when the session is already finished or the
// agent is not seated. At most one call ever returns non-nil.
func (s *Session) Forfeit(agentID string) *game.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || !s.seatedLocked(agentID) {
		return nil
	}

	winner := s.P1
	if agentID == s.P1.ID {
		winner = s.P2
	}
	s.finished = true
	s.forfeit = true
	s.result = &game.Result{
		WinnerID: winner.ID,
		LoserID:  agentID,
		Message:  fmt.Sprintf("%s wins by forfeit! Opponent disconnected.", winner.Name),
	}
	return s.result
}

// Prompt returns the agent-scoped view of the current position.
func (s *Session) Prompt(agentID string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Prompt(agentID)
}

// State returns the spectator view.
func (s *Session) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Moves returns a copy of the accepted-move log.
func (s *Session) Moves() []MoveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MoveRecord, len(s.moves))
	copy(out, s.moves)
	return out
}

// MoveCount returns how many moves have been accepted.
func (s *Session) MoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.moves)
}

// Finished reports whether the session has reached its terminal state.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// IsForfeit reports whether the terminal result was a forfeit.
func (s *Session) IsForfeit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forfeit
}

// Result returns the terminal result, or nil while the session is live.
func (s *Session) Result() *game.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Opponent returns the seat facing the given agent.
func (s *Session) Opponent(agentID string) (Seat, bool) {
	switch agentID {
	case s.P1.ID:
		return s.P2, true
	case s.P2.ID:
		return s.P1, true
	}
	return Seat{}, false
}

// SeatName resolves an agent id to its display name, falling back to the
// id itself for unseated ids.
func (s *Session) SeatName(agentID string) string {
	switch agentID {
	case s.P1.ID:
		return s.P1.Name
	case s.P2.ID:
		return s.P2.Name
	}
	return agentID
}

// Snapshot is the live-session view served by the REST API.
func (s *Session) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"session_id": s.ID,
		"game":       string(s.Variant),
		"player1":    s.P1.Name,
		"player2":    s.P2.Name,
		"move_count": len(s.moves),
		"finished":   s.finished,
		"state":      s.engine.State(),
		"started_at": s.StartedAt,
	}
}

func (s *Session) seatedLocked(agentID string) bool {
	return agentID == s.P1.ID || agentID == s.P2.ID
}
