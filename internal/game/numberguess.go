// ABOUTME: Number-guess engine: race to find a secret 1-100 number.
// ABOUTME: Damage to the loser scales inversely with the winner's guess count.

package game

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// NumberGuess hides a secret number; both players guess independently and
// the first exact hit wins. Prompts reveal higher/lower hints for the
// asking player's own guesses only.
type NumberGuess struct {
	p1, p2  string
	secret  int
	guesses map[string][]int
}

// NewNumberGuess picks a secret in [1,100].
func NewNumberGuess(p1, p2 string) *NumberGuess {
	return &NumberGuess{
		p1:      p1,
		p2:      p2,
		secret:  rand.IntN(100) + 1,
		guesses: map[string][]int{p1: {}, p2: {}},
	}
}

func (g *NumberGuess) Variant() Variant { return VariantNumberGuess }

func (g *NumberGuess) Prompt(playerID string) map[string]any {
	mine := g.guesses[playerID]
	hints := make([]string, 0, 3)
	start := len(mine) - 3
	if start < 0 {
		start = 0
	}
	for _, guess := range mine[start:] {
		if guess < g.secret {
			hints = append(hints, fmt.Sprintf("%d -> HIGHER", guess))
		} else {
			hints = append(hints, fmt.Sprintf("%d -> LOWER", guess))
		}
	}
	return map[string]any{
		"game":         string(VariantNumberGuess),
		"range":        "1-100",
		"your_guesses": len(mine),
		"hints":        hints,
		"instruction":  "Reply with a number between 1 and 100",
	}
}

func (g *NumberGuess) SubmitMove(playerID, move string) (*Result, bool) {
	guess, err := strconv.Atoi(strings.TrimSpace(move))
	if err != nil {
		return nil, false
	}
	if guess < 1 || guess > 100 {
		return nil, false
	}

	g.guesses[playerID] = append(g.guesses[playerID], guess)

	if guess != g.secret {
		return nil, true
	}

	count := len(g.guesses[playerID])
	damage := 50 - count*5
	if damage < 10 {
		damage = 10
	}
	return &Result{
		WinnerID:       playerID,
		LoserID:        opponent(playerID, g.p1, g.p2),
		DamageToLoser:  damage,
		RewardToWinner: count,
		Message:        fmt.Sprintf("Guessed %d in %d tries!", g.secret, count),
	}, true
}

func (g *NumberGuess) State() map[string]any {
	// The secret stays hidden even from spectators until the game ends.
	return map[string]any{
		"game":       string(VariantNumberGuess),
		"p1_guesses": len(g.guesses[g.p1]),
		"p2_guesses": len(g.guesses[g.p2]),
	}
}
