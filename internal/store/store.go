// ABOUTME: Match archive interface and record type for finished sessions
// ABOUTME: The arena appends rows; the API reads recent matches back

package store

import (
	"context"
	"time"
)

// MatchRecord is one archived finished match.
type MatchRecord struct {
	ID         string    `json:"id"`
	Variant    string    `json:"game"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	Winner     string    `json:"winner,omitempty"` // empty on draw
	Summary    string    `json:"summary"`
	Damage     int       `json:"damage"`
	Reward     int       `json:"reward"`
	Forfeit    bool      `json:"forfeit"`
	MoveCount  int       `json:"move_count"`
	FinishedAt time.Time `json:"finished_at"`
}

// Store archives finished matches.
type Store interface {
	SaveMatch(ctx context.Context, rec *MatchRecord) error
	RecentMatches(ctx context.Context, limit int) ([]*MatchRecord, error)
	Close() error
}
