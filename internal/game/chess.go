// ABOUTME: Simplified chess engine: relaxed movement rules, win by king capture.
// ABOUTME: Moves use algebraic from-to squares ("e2e4"); no check detection.

package game

import (
	"fmt"
	"strings"
)

// chessGlyphs maps internal piece letters to display glyphs. Uppercase is
// white, lowercase is black.
var chessGlyphs = map[byte]rune{
	'K': '♔', 'Q': '♕', 'R': '♖', 'B': '♗', 'N': '♘', 'P': '♙',
	'k': '♚', 'q': '♛', 'r': '♜', 'b': '♝', 'n': '♞', 'p': '♟',
}

// Chess plays the arena's relaxed ruleset: a move must name your own piece
// and a destination that is not your own piece; piece geometry is not
// enforced. Capturing the king ends the game.
type Chess struct {
	p1, p2 string // p1 is white
	turn   string
	board  [8][8]byte
	moves  int
}

// NewChess sets up the standard starting position with p1 as white.
func NewChess(p1, p2 string) *Chess {
	g := &Chess{p1: p1, p2: p2, turn: p1}
	rows := [8]string{
		"rnbqkbnr",
		"pppppppp",
		"........",
		"........",
		"........",
		"........",
		"PPPPPPPP",
		"RNBQKBNR",
	}
	for i, row := range rows {
		copy(g.board[i][:], row)
	}
	return g
}

func (g *Chess) Variant() Variant { return VariantChess }

// CurrentTurn returns the player whose move is accepted next.
func (g *Chess) CurrentTurn() string { return g.turn }

func (g *Chess) Prompt(playerID string) map[string]any {
	color := "white"
	if playerID != g.p1 {
		color = "black"
	}
	return map[string]any{
		"game":        string(VariantChess),
		"your_color":  color,
		"board":       g.renderBoard(),
		"your_turn":   g.turn == playerID,
		"move_count":  g.moves,
		"instruction": "Reply with move in format: e2e4 (from-to squares)",
	}
}

func (g *Chess) renderBoard() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h")
	for i, row := range g.board {
		sb.WriteString(fmt.Sprintf("\n%d", 8-i))
		for _, p := range row {
			sb.WriteByte(' ')
			if glyph, ok := chessGlyphs[p]; ok {
				sb.WriteRune(glyph)
			} else {
				sb.WriteRune('·')
			}
		}
	}
	return sb.String()
}

// parseSquares parses "e2e4" (separators and case tolerated) into board
// coordinates. Returns ok=false for anything unusable.
func parseSquares(move string) (fr, fc, tr, tc int, ok bool) {
	move = strings.ToLower(move)
	move = strings.ReplaceAll(move, " ", "")
	move = strings.ReplaceAll(move, "-", "")
	if len(move) < 4 {
		return 0, 0, 0, 0, false
	}
	fc = int(move[0] - 'a')
	fr = 8 - int(move[1]-'0')
	tc = int(move[2] - 'a')
	tr = 8 - int(move[3]-'0')
	for _, v := range [4]int{fr, fc, tr, tc} {
		if v < 0 || v > 7 {
			return 0, 0, 0, 0, false
		}
	}
	return fr, fc, tr, tc, true
}

func (g *Chess) ownsPiece(playerID string, piece byte) bool {
	if piece == '.' {
		return false
	}
	if playerID == g.p1 {
		return piece >= 'A' && piece <= 'Z'
	}
	return piece >= 'a' && piece <= 'z'
}

func (g *Chess) SubmitMove(playerID, move string) (*Result, bool) {
	if playerID != g.turn {
		return nil, false
	}
	fr, fc, tr, tc, ok := parseSquares(move)
	if !ok {
		return nil, false
	}

	piece := g.board[fr][fc]
	target := g.board[tr][tc]
	if !g.ownsPiece(playerID, piece) {
		return nil, false
	}
	if target != '.' && g.ownsPiece(playerID, target) {
		return nil, false
	}

	g.board[tr][tc] = piece
	g.board[fr][fc] = '.'
	g.moves++

	if target == 'k' || target == 'K' {
		return &Result{
			WinnerID:       playerID,
			LoserID:        opponent(playerID, g.p1, g.p2),
			DamageToLoser:  50,
			RewardToWinner: 25,
			Message:        fmt.Sprintf("CHECKMATE! King captured in %d moves!", g.moves),
		}, true
	}

	g.turn = opponent(playerID, g.p1, g.p2)
	return nil, true
}

func (g *Chess) State() map[string]any {
	return map[string]any{
		"game":         string(VariantChess),
		"board":        g.renderBoard(),
		"current_turn": g.turn,
		"move_count":   g.moves,
	}
}
