// ABOUTME: Engine contract, terminal results, and the variant constructor table.
// ABOUTME: Variants form a closed, enumerable set dispatched through New.

package game

import (
	"fmt"
	"math/rand/v2"
)

// Variant identifies a game ruleset.
type Variant string

// The playable variants. The set is closed; New rejects anything else.
const (
	VariantTicTacToe         Variant = "tic_tac_toe"
	VariantRockPaperScissors Variant = "rock_paper_scissors"
	VariantNumberGuess       Variant = "number_guess"
	VariantMathDuel          Variant = "math_duel"
	VariantWordChain         Variant = "word_chain"
	VariantTrivia            Variant = "trivia"
	VariantChess             Variant = "chess"
	VariantCheckers          Variant = "checkers"
)

// Result is the terminal outcome of a game. Winner and loser are empty on
// a draw. Damage and reward magnitudes are opaque to the arena; the
// narrative layer interprets them.
type Result struct {
	WinnerID       string `json:"winner_id,omitempty"`
	LoserID        string `json:"loser_id,omitempty"`
	IsDraw         bool   `json:"is_draw"`
	DamageToLoser  int    `json:"damage_to_loser"`
	RewardToWinner int    `json:"reward_to_winner"`
	Message        string `json:"message"`
}

// Game is the capability contract every variant implements.
//
// SubmitMove returns (result, true) when the accepted move ends the game,
// (nil, true) when the move was accepted but the game continues, and
// (nil, false) when the move was rejected: wrong turn, bad format, or an
// illegal target. Rejection never mutates engine state.
type Game interface {
	Variant() Variant
	Prompt(playerID string) map[string]any
	SubmitMove(playerID, move string) (*Result, bool)
	State() map[string]any
}

// TurnBased is implemented by variants that gate moves on whose turn it is.
type TurnBased interface {
	CurrentTurn() string
}

// Info describes a variant for the catalog API.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
}

// constructors is the variant-to-constructor table. Dispatch is explicit
// rather than reflective because the variant set is fixed.
var constructors = map[Variant]func(p1, p2 string) Game{
	VariantTicTacToe:         func(p1, p2 string) Game { return NewTicTacToe(p1, p2) },
	VariantRockPaperScissors: func(p1, p2 string) Game { return NewRockPaperScissors(p1, p2) },
	VariantNumberGuess:       func(p1, p2 string) Game { return NewNumberGuess(p1, p2) },
	VariantMathDuel:          func(p1, p2 string) Game { return NewMathDuel(p1, p2) },
	VariantWordChain:         func(p1, p2 string) Game { return NewWordChain(p1, p2) },
	VariantTrivia:            func(p1, p2 string) Game { return NewTrivia(p1, p2) },
	VariantChess:             func(p1, p2 string) Game { return NewChess(p1, p2) },
	VariantCheckers:          func(p1, p2 string) Game { return NewCheckers(p1, p2) },
}

// catalog lists every variant in presentation order.
var catalog = []Info{
	{ID: string(VariantTicTacToe), Name: "Tic-Tac-Toe", Description: "Classic 3x3 grid game. Get 3 in a row to win!", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantRockPaperScissors), Name: "Rock Paper Scissors", Description: "Best of 3 rounds. Rock beats Scissors, Scissors beats Paper, Paper beats Rock.", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantNumberGuess), Name: "Number Guess", Description: "Guess the secret number 1-100. Fewer guesses wins!", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantMathDuel), Name: "Math Duel", Description: "Speed arithmetic - first correct answer wins!", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantWordChain), Name: "Word Chain", Description: "Say a word starting with the last letter. No repeats!", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantTrivia), Name: "Trivia", Description: "Answer the question correctly first!", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantChess), Name: "Chess", Description: "Simplified Chess - capture the King to win!", MinPlayers: 2, MaxPlayers: 2},
	{ID: string(VariantCheckers), Name: "Checkers", Description: "Simplified Checkers - capture all opponent pieces!", MinPlayers: 2, MaxPlayers: 2},
}

// New constructs a fresh engine for the given variant. player1 is the
// primary (first mover) and player2 the secondary.
func New(variant Variant, player1, player2 string) (Game, error) {
	ctor, ok := constructors[variant]
	if !ok {
		return nil, fmt.Errorf("unknown game variant: %q", variant)
	}
	return ctor(player1, player2), nil
}

// Valid reports whether v names a known variant.
func Valid(v Variant) bool {
	_, ok := constructors[v]
	return ok
}

// Variants returns all known variants in catalog order.
func Variants() []Variant {
	out := make([]Variant, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, Variant(info.ID))
	}
	return out
}

// Catalog returns variant descriptions for the API.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// RandomVariant picks uniformly from enabled, or from all variants when
// enabled is empty.
func RandomVariant(enabled []Variant) Variant {
	if len(enabled) == 0 {
		enabled = Variants()
	}
	return enabled[rand.IntN(len(enabled))]
}

// opponent returns the other player of a two-player game.
func opponent(playerID, p1, p2 string) string {
	if playerID == p1 {
		return p2
	}
	return p1
}
