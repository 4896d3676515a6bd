// ABOUTME: Tests for word-chain: chain growth, penalty scaling, turn gating.
// ABOUTME: Seeds the starting word directly for deterministic runs.

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedWordChain(start, p1, p2 string) *WordChain {
	return &WordChain{
		p1:       p1,
		p2:       p2,
		turn:     p1,
		used:     map[string]bool{start: true},
		lastWord: start,
		chain:    1,
	}
}

func TestWordChain_ValidWordExtendsChainAndFlipsTurn(t *testing.T) {
	g := fixedWordChain("apple", "p1", "p2")

	res, accepted := g.SubmitMove("p1", "Elephant")
	require.True(t, accepted)
	require.Nil(t, res)
	assert.Equal(t, "elephant", g.State()["last_word"])
	assert.Equal(t, 2, g.State()["chain_length"])
	assert.Equal(t, "p2", g.CurrentTurn())
}

func TestWordChain_InvalidWordBreaksChainAgainstSubmitter(t *testing.T) {
	tests := []struct {
		name string
		word string
	}{
		{"wrong first letter", "banana"},
		{"already used", "apple"},
		{"too short", "e"},
		{"non alphabetic", "e99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fixedWordChain("apple", "p1", "p2")

			res, accepted := g.SubmitMove("p1", tt.word)
			require.True(t, accepted, "a broken chain is a terminal move, not a rejection")
			require.NotNil(t, res)
			assert.Equal(t, "p2", res.WinnerID)
			assert.Equal(t, "p1", res.LoserID)
			assert.Equal(t, 16, res.DamageToLoser, "15 + chain length 1")
			assert.Equal(t, 1, res.RewardToWinner)
		})
	}
}

func TestWordChain_PenaltyGrowsWithChain(t *testing.T) {
	g := fixedWordChain("apple", "p1", "p2")

	_, accepted := g.SubmitMove("p1", "elephant")
	require.True(t, accepted)
	_, accepted = g.SubmitMove("p2", "tiger")
	require.True(t, accepted)

	res, accepted := g.SubmitMove("p1", "zebra")
	require.True(t, accepted)
	require.NotNil(t, res)
	assert.Equal(t, 18, res.DamageToLoser, "15 + chain length 3")
	assert.Equal(t, 3, res.RewardToWinner)
}

func TestWordChain_OutOfTurnIsSilentlyRejected(t *testing.T) {
	g := fixedWordChain("apple", "p1", "p2")

	res, accepted := g.SubmitMove("p2", "elephant")
	assert.False(t, accepted, "out-of-turn must not end the game")
	assert.Nil(t, res)
	assert.Equal(t, 1, g.chain)
}
