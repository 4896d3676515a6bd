// ABOUTME: Tests for the tic-tac-toe engine: turn order, line detection, draws.
// ABOUTME: Covers the rejection paths (bad format, occupied cell, out of turn).

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicTacToe_TopRowWinAfterFiveMoves(t *testing.T) {
	g := NewTicTacToe("x", "o")

	moves := []struct {
		player string
		move   string
	}{
		{"x", "0,0"},
		{"o", "1,1"},
		{"x", "0,1"},
		{"o", "2,2"},
	}
	for _, m := range moves {
		res, accepted := g.SubmitMove(m.player, m.move)
		require.True(t, accepted, "move %q by %s should be accepted", m.move, m.player)
		require.Nil(t, res)
	}

	res, accepted := g.SubmitMove("x", "0,2")
	require.True(t, accepted)
	require.NotNil(t, res)
	assert.Equal(t, "x", res.WinnerID)
	assert.Equal(t, "o", res.LoserID)
	assert.False(t, res.IsDraw)
	assert.Equal(t, 25, res.DamageToLoser)
	assert.Equal(t, 10, res.RewardToWinner)
}

func TestTicTacToe_FullBoardWithoutLineIsDraw(t *testing.T) {
	g := NewTicTacToe("x", "o")

	// x x o / o o x / x x o, no three in a row for either symbol.
	moves := []struct {
		player string
		move   string
	}{
		{"x", "0,0"},
		{"o", "0,2"},
		{"x", "0,1"},
		{"o", "1,0"},
		{"x", "1,2"},
		{"o", "1,1"},
		{"x", "2,0"},
		{"o", "2,2"},
	}
	for _, m := range moves {
		res, accepted := g.SubmitMove(m.player, m.move)
		require.True(t, accepted)
		require.Nil(t, res, "no result expected before the 9th move")
	}

	res, accepted := g.SubmitMove("x", "2,1")
	require.True(t, accepted)
	require.NotNil(t, res)
	assert.True(t, res.IsDraw)
	assert.Empty(t, res.WinnerID)
	assert.Empty(t, res.LoserID)
}

func TestTicTacToe_RejectsOutOfTurnAndInvalidMoves(t *testing.T) {
	g := NewTicTacToe("x", "o")

	tests := []struct {
		name   string
		player string
		move   string
	}{
		{"not your turn", "o", "0,0"},
		{"garbage", "x", "center"},
		{"missing column", "x", "1"},
		{"out of range", "x", "3,0"},
		{"negative", "x", "-1,0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, accepted := g.SubmitMove(tt.player, tt.move)
			assert.False(t, accepted)
			assert.Nil(t, res)
		})
	}

	// Rejection leaves the turn untouched.
	assert.Equal(t, "x", g.CurrentTurn())

	_, accepted := g.SubmitMove("x", "1,1")
	require.True(t, accepted)

	// Occupied cell rejected for the other player.
	res, accepted := g.SubmitMove("o", "1,1")
	assert.False(t, accepted)
	assert.Nil(t, res)
	assert.Equal(t, "o", g.CurrentTurn())
}

func TestTicTacToe_PromptHidesNothingButScopesTurn(t *testing.T) {
	g := NewTicTacToe("x", "o")

	px := g.Prompt("x")
	po := g.Prompt("o")
	assert.Equal(t, "X", px["your_symbol"])
	assert.Equal(t, "O", po["your_symbol"])
	assert.Equal(t, true, px["your_turn"])
	assert.Equal(t, false, po["your_turn"])
}
