// ABOUTME: Package game implements the mini-game engines played in the arena.
// ABOUTME: Pure synchronous rules logic; no I/O, no locking, no timers.

// Package game provides the engine contract and the closed set of game
// variants the arena can run between two agents.
//
// Every engine is a pure state machine driven through three operations:
// Prompt (an agent-scoped view that never leaks hidden state such as the
// number-guess secret), SubmitMove (applies a raw move, reporting whether
// it was accepted and, when the move ends the game, the terminal Result),
// and State (a full-visibility spectator view). Engines are not safe for
// concurrent use; the owning session serializes access.
//
// Chess and checkers deliberately use relaxed rules: a move only has to
// name one of your own pieces and a destination that is empty or holds an
// opponent piece. There is no check or checkmate detection. Chess is won
// by capturing the king, checkers by taking every opposing piece.
package game
