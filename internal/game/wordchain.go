// ABOUTME: Word-chain engine: each word must start with the previous word's last letter.
// ABOUTME: A repeated, malformed, or mismatched word breaks the chain and loses.

package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

var chainStarters = []string{"apple", "tiger", "ocean", "eagle"}

// WordChain is turn-based; unlike the board games, an invalid word is not
// silently rejected. It ends the game with the submitter as the loser.
type WordChain struct {
	p1, p2   string
	turn     string
	used     map[string]bool
	lastWord string
	chain    int
}

// NewWordChain seeds the chain with a random starter word.
func NewWordChain(p1, p2 string) *WordChain {
	start := chainStarters[rand.IntN(len(chainStarters))]
	return &WordChain{
		p1:       p1,
		p2:       p2,
		turn:     p1,
		used:     map[string]bool{start: true},
		lastWord: start,
		chain:    1,
	}
}

func (g *WordChain) Variant() Variant { return VariantWordChain }

// CurrentTurn returns the player whose move is accepted next.
func (g *WordChain) CurrentTurn() string { return g.turn }

func (g *WordChain) Prompt(playerID string) map[string]any {
	letter := strings.ToUpper(g.lastWord[len(g.lastWord)-1:])
	return map[string]any{
		"game":            string(VariantWordChain),
		"last_word":       g.lastWord,
		"must_start_with": letter,
		"chain_length":    g.chain,
		"your_turn":       playerID == g.turn,
		"instruction":     fmt.Sprintf("Say a word starting with '%s'", letter),
	}
}

func (g *WordChain) SubmitMove(playerID, move string) (*Result, bool) {
	if playerID != g.turn {
		return nil, false
	}

	word := strings.ToLower(strings.TrimSpace(move))
	if !g.validWord(word) {
		return &Result{
			WinnerID:       opponent(playerID, g.p1, g.p2),
			LoserID:        playerID,
			DamageToLoser:  15 + g.chain,
			RewardToWinner: g.chain,
			Message:        fmt.Sprintf("'%s' invalid! Chain broken at %d!", word, g.chain),
		}, true
	}

	g.used[word] = true
	g.lastWord = word
	g.chain++
	g.turn = opponent(playerID, g.p1, g.p2)
	return nil, true
}

func (g *WordChain) validWord(word string) bool {
	if len(word) < 2 || g.used[word] {
		return false
	}
	if word[0] != g.lastWord[len(g.lastWord)-1] {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func (g *WordChain) State() map[string]any {
	return map[string]any{
		"game":         string(VariantWordChain),
		"last_word":    g.lastWord,
		"chain_length": g.chain,
		"current_turn": g.turn,
	}
}
