// ABOUTME: Tests for simplified checkers: jumps capture, promotion, win condition.
// ABOUTME: Builds positions directly (same package) where setups would be tedious.

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bareCheckers returns an empty board with the given turn.
func bareCheckers(p1, p2, turn string) *Checkers {
	g := &Checkers{p1: p1, p2: p2, turn: turn}
	for i := range g.board {
		for j := range g.board[i] {
			g.board[i][j] = '.'
		}
	}
	return g
}

func TestCheckers_SimpleMoveFlipsTurn(t *testing.T) {
	g := NewCheckers("red", "black")

	res, accepted := g.SubmitMove("red", "5,0 to 4,1")
	require.True(t, accepted)
	require.Nil(t, res)
	assert.Equal(t, "black", g.CurrentTurn())
}

func TestCheckers_JumpRemovesCapturedPiece(t *testing.T) {
	g := bareCheckers("red", "black", "red")
	g.board[5][0] = 'r'
	g.board[4][1] = 'b'
	g.board[2][3] = 'b' // keeps black alive after the capture

	res, accepted := g.SubmitMove("red", "5,0-3,2")
	require.True(t, accepted)
	require.Nil(t, res)
	assert.Equal(t, byte('.'), g.board[4][1], "jumped piece is captured")
	assert.Equal(t, byte('r'), g.board[3][2])
}

func TestCheckers_CapturingLastPieceWins(t *testing.T) {
	g := bareCheckers("red", "black", "red")
	g.board[5][0] = 'r'
	g.board[4][1] = 'b'

	res, accepted := g.SubmitMove("red", "5,0 to 3,2")
	require.True(t, accepted)
	require.NotNil(t, res)
	assert.Equal(t, "red", res.WinnerID)
	assert.Equal(t, "black", res.LoserID)
	assert.Equal(t, 40, res.DamageToLoser)
	assert.Equal(t, 20, res.RewardToWinner)
}

func TestCheckers_PromotionAtFarRow(t *testing.T) {
	g := bareCheckers("red", "black", "red")
	g.board[1][2] = 'r'
	g.board[7][7] = 'b'

	res, accepted := g.SubmitMove("red", "1,2 to 0,3")
	require.True(t, accepted)
	require.Nil(t, res)
	assert.Equal(t, byte('R'), g.board[0][3], "red promotes on row 0")
}

func TestCheckers_Rejections(t *testing.T) {
	g := NewCheckers("red", "black")

	tests := []struct {
		name   string
		player string
		move   string
	}{
		{"out of turn", "black", "2,1 to 3,0"},
		{"too few numbers", "red", "5,0"},
		{"out of range", "red", "5,0 to 9,1"},
		{"not own piece", "red", "2,1 to 3,0"},
		{"occupied destination", "red", "6,1 to 5,0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, accepted := g.SubmitMove(tt.player, tt.move)
			assert.False(t, accepted)
			assert.Nil(t, res)
		})
	}
	assert.Equal(t, "red", g.CurrentTurn())
}
