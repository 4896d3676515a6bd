// ABOUTME: Tic-tac-toe engine: 3x3 grid, turn-based, win by completing a line.
// ABOUTME: Moves are "row,col" with 0-2 coordinates; 9 moves without a line is a draw.

package game

import (
	"fmt"
	"strconv"
	"strings"
)

// TicTacToe is the classic 3x3 grid game. player1 is X and moves first.
type TicTacToe struct {
	board   [3][3]string
	symbols map[string]string
	turn    string
	p1, p2  string
	moves   int
}

// NewTicTacToe creates a fresh board with p1 as X.
func NewTicTacToe(p1, p2 string) *TicTacToe {
	return &TicTacToe{
		symbols: map[string]string{p1: "X", p2: "O"},
		turn:    p1,
		p1:      p1,
		p2:      p2,
	}
}

func (g *TicTacToe) Variant() Variant { return VariantTicTacToe }

// CurrentTurn returns the player whose move is accepted next.
func (g *TicTacToe) CurrentTurn() string { return g.turn }

func (g *TicTacToe) Prompt(playerID string) map[string]any {
	symbol, ok := g.symbols[playerID]
	if !ok {
		symbol = "?"
	}
	return map[string]any{
		"game":        string(VariantTicTacToe),
		"your_symbol": symbol,
		"board":       g.boardView(),
		"your_turn":   g.turn == playerID,
		"instruction": "Reply with row,col (0-2). Example: '1,1' for center.",
	}
}

func (g *TicTacToe) SubmitMove(playerID, move string) (*Result, bool) {
	if playerID != g.turn {
		return nil, false
	}

	parts := strings.Split(strings.ReplaceAll(move, " ", ""), ",")
	if len(parts) != 2 {
		return nil, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return nil, false
	}
	if g.board[row][col] != "" {
		return nil, false
	}

	symbol := g.symbols[playerID]
	g.board[row][col] = symbol
	g.moves++

	if g.lineCompleted(symbol) {
		return &Result{
			WinnerID:       playerID,
			LoserID:        opponent(playerID, g.p1, g.p2),
			DamageToLoser:  25,
			RewardToWinner: 10,
			Message:        fmt.Sprintf("%s wins Tic-Tac-Toe!", symbol),
		}, true
	}

	if g.moves >= 9 {
		return &Result{
			IsDraw:  true,
			Message: "Tic-Tac-Toe ends in a draw!",
		}, true
	}

	g.turn = opponent(playerID, g.p1, g.p2)
	return nil, true
}

// lineCompleted tests the 8 lines (3 rows, 3 columns, 2 diagonals).
func (g *TicTacToe) lineCompleted(symbol string) bool {
	b := &g.board
	for i := 0; i < 3; i++ {
		if b[i][0] == symbol && b[i][1] == symbol && b[i][2] == symbol {
			return true
		}
		if b[0][i] == symbol && b[1][i] == symbol && b[2][i] == symbol {
			return true
		}
	}
	if b[0][0] == symbol && b[1][1] == symbol && b[2][2] == symbol {
		return true
	}
	return b[0][2] == symbol && b[1][1] == symbol && b[2][0] == symbol
}

func (g *TicTacToe) State() map[string]any {
	return map[string]any{
		"game":         string(VariantTicTacToe),
		"board":        g.boardView(),
		"current_turn": g.turn,
		"moves":        g.moves,
	}
}

func (g *TicTacToe) boardView() [][]string {
	view := make([][]string, 3)
	for i := range g.board {
		row := make([]string, 3)
		copy(row, g.board[i][:])
		view[i] = row
	}
	return view
}
