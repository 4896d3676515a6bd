// ABOUTME: Exhibition runner: plays two bots through a real session
// ABOUTME: Broadcasts the same frame sequence a live match produces

package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cyberdreadx/the-crucible/internal/arena"
	"github.com/cyberdreadx/the-crucible/internal/game"
	"github.com/cyberdreadx/the-crucible/internal/hub"
)

// ErrExhibitionStalled is returned when a match hits the move cap without
// reaching a terminal state.
var ErrExhibitionStalled = errors.New("exhibition hit the move cap without finishing")

// maxExhibitionMoves bounds a runaway exhibition. Generous: the longest
// honest game (number-guess binary search both sides) stays well under it.
const maxExhibitionMoves = 200

var botNames = []string{
	"Rusty Automaton", "Clockwork Sparrow", "Iron Gambit", "Brass Oracle",
	"Tin Challenger", "Copper Wraith", "Steel Jester", "Chrome Duelist",
}

// Runner stages bot-versus-bot exhibition matches.
type Runner struct {
	hub    *hub.Hub
	logger *slog.Logger
	pace   time.Duration // delay between moves, zero in tests
}

// NewRunner creates an exhibition runner. Pass nil logger for default.
func NewRunner(h *hub.Hub, pace time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		hub:    h,
		logger: logger.With("component", "exhibition"),
		pace:   pace,
	}
}

// Play runs one exhibition of the given variant to completion and returns
// the terminal result. Spectators see the usual match frame sequence.
func (r *Runner) Play(ctx context.Context, variant game.Variant) (*game.Result, error) {
	bot1 := NewBotPlayer(uuid.New().String(), botNames[0])
	bot2 := NewBotPlayer(uuid.New().String(), botNames[1])

	session, err := arena.NewSession(variant,
		arena.Seat{ID: bot1.ID, Name: bot1.Name},
		arena.Seat{ID: bot2.ID, Name: bot2.Name})
	if err != nil {
		return nil, fmt.Errorf("starting exhibition: %w", err)
	}

	r.publish("match_start", map[string]any{
		"session_id": session.ID,
		"game":       string(variant),
		"player1":    bot1.Name,
		"player2":    bot2.Name,
		"exhibition": true,
	})
	r.logger.Info("exhibition started", "game", variant, "session_id", session.ID)

	bots := []*BotPlayer{bot1, bot2}
	for pass := 0; pass < maxExhibitionMoves; pass++ {
		for _, bot := range bots {
			if err := r.pause(ctx); err != nil {
				return nil, err
			}

			prompt := session.Prompt(bot.ID)
			if turn, ok := prompt["your_turn"].(bool); ok && !turn {
				continue
			}

			outcome := session.Submit(bot.ID, bot.MoveFor(variant, prompt))
			if !outcome.Accepted {
				continue
			}

			record := session.Moves()[session.MoveCount()-1]
			r.publish("move_made", map[string]any{
				"session_id": session.ID,
				"player":     bot.Name,
				"move":       record.Move,
				"state":      outcome.State,
			})

			if outcome.Result != nil {
				r.finish(session, outcome.Result)
				return outcome.Result, nil
			}
		}
	}

	r.logger.Warn("exhibition stalled", "game", variant, "session_id", session.ID)
	return nil, ErrExhibitionStalled
}

func (r *Runner) finish(session *arena.Session, res *game.Result) {
	winner := ""
	if !res.IsDraw {
		winner = session.SeatName(res.WinnerID)
	}
	r.publish("match_end", map[string]any{
		"session_id": session.ID,
		"game":       string(session.Variant),
		"winner":     winner,
		"message":    res.Message,
		"exhibition": true,
	})
	r.logger.Info("exhibition finished",
		"game", session.Variant,
		"winner", winner,
		"moves", session.MoveCount())
}

func (r *Runner) publish(eventType string, data map[string]any) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(hub.Event{Type: eventType, Data: data})
}

func (r *Runner) pause(ctx context.Context) error {
	if r.pace <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.pace):
		return nil
	}
}
