// ABOUTME: Math-duel engine: one arithmetic problem, first correct answer wins.
// ABOUTME: Wrong answers are accepted but change nothing; the race stays open.

package game

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// MathDuel poses a single arithmetic problem to both players at once.
type MathDuel struct {
	p1, p2  string
	problem string
	answer  int
	solved  bool
}

// NewMathDuel generates a random +, -, or * problem. Multiplication uses
// smaller operands so answers stay mental-math sized.
func NewMathDuel(p1, p2 string) *MathDuel {
	g := &MathDuel{p1: p1, p2: p2}
	switch rand.IntN(3) {
	case 0:
		a, b := rand.IntN(91)+10, rand.IntN(91)+10
		g.problem, g.answer = fmt.Sprintf("%d + %d", a, b), a+b
	case 1:
		a, b := rand.IntN(91)+10, rand.IntN(91)+10
		g.problem, g.answer = fmt.Sprintf("%d - %d", a, b), a-b
	default:
		a, b := rand.IntN(14)+2, rand.IntN(14)+2
		g.problem, g.answer = fmt.Sprintf("%d * %d", a, b), a*b
	}
	return g
}

func (g *MathDuel) Variant() Variant { return VariantMathDuel }

func (g *MathDuel) Prompt(playerID string) map[string]any {
	return map[string]any{
		"game":        string(VariantMathDuel),
		"problem":     g.problem,
		"instruction": "Reply with the answer (number only)",
	}
}

func (g *MathDuel) SubmitMove(playerID, move string) (*Result, bool) {
	if g.solved {
		return nil, false
	}
	answer, err := strconv.Atoi(strings.TrimSpace(move))
	if err != nil {
		return nil, false
	}
	if answer != g.answer {
		return nil, true
	}

	g.solved = true
	return &Result{
		WinnerID:       playerID,
		LoserID:        opponent(playerID, g.p1, g.p2),
		DamageToLoser:  20,
		RewardToWinner: 5,
		Message:        fmt.Sprintf("%s = %d - CORRECT!", g.problem, g.answer),
	}, true
}

func (g *MathDuel) State() map[string]any {
	return map[string]any{
		"game":    string(VariantMathDuel),
		"problem": g.problem,
		"solved":  g.solved,
	}
}
