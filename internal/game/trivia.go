// ABOUTME: Trivia engine: one random question, first correct answer wins.
// ABOUTME: Answers match loosely in either containment direction.

package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type triviaQuestion struct {
	question string
	answer   string
}

var triviaQuestions = []triviaQuestion{
	{"What is the capital of France?", "paris"},
	{"How many legs does a spider have?", "8"},
	{"What planet is known as the Red Planet?", "mars"},
	{"What is the largest ocean?", "pacific"},
	{"Who painted the Mona Lisa?", "da vinci"},
	{"What is H2O commonly known as?", "water"},
	{"How many continents are there?", "7"},
	{"What is the fastest land animal?", "cheetah"},
	{"What gas do plants absorb?", "carbon dioxide"},
	{"What is the hardest natural substance?", "diamond"},
}

// Trivia asks both players the same question; first correct answer wins.
type Trivia struct {
	p1, p2   string
	question string
	answer   string
	solved   bool
}

// NewTrivia picks a random question from the fixed pool.
func NewTrivia(p1, p2 string) *Trivia {
	q := triviaQuestions[rand.IntN(len(triviaQuestions))]
	return &Trivia{p1: p1, p2: p2, question: q.question, answer: q.answer}
}

func (g *Trivia) Variant() Variant { return VariantTrivia }

func (g *Trivia) Prompt(playerID string) map[string]any {
	return map[string]any{
		"game":        string(VariantTrivia),
		"question":    g.question,
		"instruction": "Reply with your answer",
	}
}

func (g *Trivia) SubmitMove(playerID, move string) (*Result, bool) {
	if g.solved {
		return nil, false
	}

	guess := strings.ToLower(strings.TrimSpace(move))
	if guess == "" {
		return nil, false
	}
	if !strings.Contains(guess, g.answer) && !strings.Contains(g.answer, guess) {
		return nil, true
	}

	g.solved = true
	return &Result{
		WinnerID:       playerID,
		LoserID:        opponent(playerID, g.p1, g.p2),
		DamageToLoser:  20,
		RewardToWinner: 10,
		Message:        fmt.Sprintf("Correct! %s -> %s", g.question, strings.ToUpper(g.answer)),
	}, true
}

func (g *Trivia) State() map[string]any {
	return map[string]any{
		"game":     string(VariantTrivia),
		"question": g.question,
		"solved":   g.solved,
	}
}
