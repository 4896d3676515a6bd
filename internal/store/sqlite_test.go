// ABOUTME: Tests for the SQLite match archive: schema, insert, recency ordering
// ABOUTME: Runs entirely against :memory: databases

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	rec := &MatchRecord{
		ID:         "match-1",
		Variant:    "tic_tac_toe",
		Player1:    "alice",
		Player2:    "bob",
		Winner:     "alice",
		Summary:    "alice wins!",
		Damage:     25,
		Reward:     10,
		MoveCount:  5,
		FinishedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveMatch(ctx, rec))

	got, err := s.RecentMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "match-1", got[0].ID)
	assert.Equal(t, "alice", got[0].Winner)
	assert.Equal(t, 25, got[0].Damage)
	assert.False(t, got[0].Forfeit)
}

func TestSQLiteStore_RecentMatchesOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	base := time.Now().UTC()
	for i, id := range []string{"m-old", "m-mid", "m-new"} {
		require.NoError(t, s.SaveMatch(ctx, &MatchRecord{
			ID:         id,
			Variant:    "trivia",
			Player1:    "a",
			Player2:    "b",
			Summary:    "done",
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.RecentMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m-new", got[0].ID, "newest first")
	assert.Equal(t, "m-mid", got[1].ID)
}

func TestSQLiteStore_DrawLeavesWinnerEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.SaveMatch(ctx, &MatchRecord{
		ID:         "m-draw",
		Variant:    "tic_tac_toe",
		Player1:    "a",
		Player2:    "b",
		Summary:    "draw",
		MoveCount:  9,
		FinishedAt: time.Now().UTC(),
	}))

	got, err := s.RecentMatches(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Winner)
}

func TestSQLiteStore_EmptyArchive(t *testing.T) {
	s := newTestStore(t)

	got, err := s.RecentMatches(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
