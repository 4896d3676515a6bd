// ABOUTME: Simplified checkers engine: relaxed movement, jumps capture, kings promote.
// ABOUTME: Win by removing every opposing piece; moves name from/to coordinates.

package game

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var checkersMoveRe = regexp.MustCompile(`\d+`)

// Checkers plays the arena's relaxed ruleset: a move must name your own
// piece and an empty destination; diagonal geometry is not enforced. A
// two-row move removes the piece between the squares, reaching the far
// row promotes, and taking the opponent's last piece wins.
type Checkers struct {
	p1, p2 string // p1 is red on the bottom, p2 black on top
	turn   string
	board  [8][8]byte
	moves  int
}

// NewCheckers sets up the standard 12-piece-per-side position.
func NewCheckers(p1, p2 string) *Checkers {
	g := &Checkers{p1: p1, p2: p2, turn: p1}
	rows := [8]string{
		".b.b.b.b",
		"b.b.b.b.",
		".b.b.b.b",
		"........",
		"........",
		"r.r.r.r.",
		".r.r.r.r",
		"r.r.r.r.",
	}
	for i, row := range rows {
		copy(g.board[i][:], row)
	}
	return g
}

func (g *Checkers) Variant() Variant { return VariantCheckers }

// CurrentTurn returns the player whose move is accepted next.
func (g *Checkers) CurrentTurn() string { return g.turn }

func (g *Checkers) Prompt(playerID string) map[string]any {
	color := "red"
	if playerID != g.p1 {
		color = "black"
	}
	return map[string]any{
		"game":        string(VariantCheckers),
		"your_color":  color,
		"board":       g.renderBoard(),
		"your_turn":   g.turn == playerID,
		"instruction": "Reply with move: row,col to row,col (e.g., '5,0 to 4,1')",
	}
}

func (g *Checkers) renderBoard() string {
	var sb strings.Builder
	sb.WriteString("  0 1 2 3 4 5 6 7")
	for i, row := range g.board {
		sb.WriteString(fmt.Sprintf("\n%d", i))
		for _, p := range row {
			sb.WriteByte(' ')
			if p == '.' {
				sb.WriteRune('·')
			} else {
				sb.WriteByte(p)
			}
		}
	}
	return sb.String()
}

func (g *Checkers) ownsPiece(playerID string, piece byte) bool {
	if playerID == g.p1 {
		return piece == 'r' || piece == 'R'
	}
	return piece == 'b' || piece == 'B'
}

func (g *Checkers) countPieces(playerID string) int {
	count := 0
	for _, row := range g.board {
		for _, piece := range row {
			if g.ownsPiece(playerID, piece) {
				count++
			}
		}
	}
	return count
}

func (g *Checkers) SubmitMove(playerID, move string) (*Result, bool) {
	if playerID != g.turn {
		return nil, false
	}

	// Accept "5,0 to 4,1", "5,0-4,1", or "5 0 4 1", any four numbers.
	nums := checkersMoveRe.FindAllString(move, -1)
	if len(nums) < 4 {
		return nil, false
	}
	coords := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(nums[i])
		if err != nil || n < 0 || n > 7 {
			return nil, false
		}
		coords[i] = n
	}
	fr, fc, tr, tc := coords[0], coords[1], coords[2], coords[3]

	piece := g.board[fr][fc]
	if !g.ownsPiece(playerID, piece) {
		return nil, false
	}
	if g.board[tr][tc] != '.' {
		return nil, false
	}

	g.board[tr][tc] = piece
	g.board[fr][fc] = '.'

	// A two-row move is a jump; the piece in between is captured.
	if tr-fr == 2 || fr-tr == 2 {
		g.board[(fr+tr)/2][(fc+tc)/2] = '.'
	}

	if piece == 'r' && tr == 0 {
		g.board[tr][tc] = 'R'
	} else if piece == 'b' && tr == 7 {
		g.board[tr][tc] = 'B'
	}

	g.moves++

	other := opponent(playerID, g.p1, g.p2)
	if g.countPieces(other) == 0 {
		return &Result{
			WinnerID:       playerID,
			LoserID:        other,
			DamageToLoser:  40,
			RewardToWinner: 20,
			Message:        fmt.Sprintf("Checkers winner! All pieces captured in %d moves!", g.moves),
		}, true
	}

	g.turn = other
	return nil, true
}

func (g *Checkers) State() map[string]any {
	return map[string]any{
		"game":         string(VariantCheckers),
		"board":        g.renderBoard(),
		"current_turn": g.turn,
		"move_count":   g.moves,
		"red_pieces":   g.countPieces(g.p1),
		"black_pieces": g.countPieces(g.p2),
	}
}
