// ABOUTME: Connected-agent record: identity, transport handle, liveness, placement
// ABOUTME: Placement is exclusive; an agent is idle, queued, or in a session

package arena

import "time"

// Conn is the transport handle the arena uses to push frames to one agent.
// Implementations must be safe for concurrent Send calls.
type Conn interface {
	Send(v any) error
	Close() error
}

// Placement is where an agent currently stands in the matchmaking lifecycle.
type Placement int

const (
	PlacementIdle Placement = iota
	PlacementQueued
	PlacementInSession
)

func (p Placement) String() string {
	switch p {
	case PlacementQueued:
		return "queued"
	case PlacementInSession:
		return "in_session"
	default:
		return "idle"
	}
}

// Agent is one connected participant. Fields are guarded by the matchmaker
// mutex; nothing outside the arena package mutates them.
type Agent struct {
	ID            string
	Name          string
	Conn          Conn
	ConnectedAt   time.Time
	LastHeartbeat time.Time
	Placement     Placement
	SessionID     string
}
