// ABOUTME: Rock-paper-scissors engine: simultaneous rounds, best of three.
// ABOUTME: Buffers one move per player per round; ties replay the round.

package game

import "strings"

// beats maps each throw to the throw it defeats.
var beats = map[string]string{
	"rock":     "scissors",
	"scissors": "paper",
	"paper":    "rock",
}

// RockPaperScissors plays best-of-3: first player to two round wins takes
// the match.
type RockPaperScissors struct {
	p1, p2 string
	buffer map[string]string
	scores map[string]int
	round  int
}

// NewRockPaperScissors starts at round 1 with empty buffers.
func NewRockPaperScissors(p1, p2 string) *RockPaperScissors {
	return &RockPaperScissors{
		p1:     p1,
		p2:     p2,
		buffer: make(map[string]string),
		scores: map[string]int{p1: 0, p2: 0},
		round:  1,
	}
}

func (g *RockPaperScissors) Variant() Variant { return VariantRockPaperScissors }

func (g *RockPaperScissors) Prompt(playerID string) map[string]any {
	return map[string]any{
		"game":        string(VariantRockPaperScissors),
		"round":       g.round,
		"your_score":  g.scores[playerID],
		"instruction": "Reply with: rock, paper, or scissors",
	}
}

func (g *RockPaperScissors) SubmitMove(playerID, move string) (*Result, bool) {
	throw := strings.ToLower(strings.TrimSpace(move))
	if _, ok := beats[throw]; !ok {
		return nil, false
	}

	// Latest submission wins; a player may revise until the round resolves.
	g.buffer[playerID] = throw
	if len(g.buffer) < 2 {
		return nil, true
	}

	m1 := g.buffer[g.p1]
	m2 := g.buffer[g.p2]
	g.buffer = make(map[string]string)

	switch {
	case beats[m1] == m2:
		g.scores[g.p1]++
	case beats[m2] == m1:
		g.scores[g.p2]++
	}
	// Tie: neither score moves and the round replays.

	for _, pid := range []string{g.p1, g.p2} {
		if g.scores[pid] >= 2 {
			return &Result{
				WinnerID:       pid,
				LoserID:        opponent(pid, g.p1, g.p2),
				DamageToLoser:  20,
				RewardToWinner: 10,
				Message:        "RPS winner! " + m1 + " vs " + m2,
			}, true
		}
	}

	g.round++
	return nil, true
}

func (g *RockPaperScissors) State() map[string]any {
	waiting := make([]string, 0, 2)
	for _, pid := range []string{g.p1, g.p2} {
		if _, ok := g.buffer[pid]; !ok {
			waiting = append(waiting, pid)
		}
	}
	return map[string]any{
		"game":        string(VariantRockPaperScissors),
		"round":       g.round,
		"scores":      map[string]int{g.p1: g.scores[g.p1], g.p2: g.scores[g.p2]},
		"waiting_for": waiting,
	}
}
