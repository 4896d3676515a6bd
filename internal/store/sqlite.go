// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Defaults to :memory: so nothing outlives the process unless configured

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path. An empty
// path means ":memory:". The schema is automatically created if it
// doesn't exist. Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("match archive initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL,
			damage INTEGER NOT NULL DEFAULT 0,
			reward INTEGER NOT NULL DEFAULT 0,
			forfeit INTEGER NOT NULL DEFAULT 0,
			move_count INTEGER NOT NULL DEFAULT 0,
			finished_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_matches_finished_at
			ON matches(finished_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// SaveMatch appends one finished match to the archive.
func (s *SQLiteStore) SaveMatch(ctx context.Context, rec *MatchRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (id, game, player1, player2, winner, summary,
			damage, reward, forfeit, move_count, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Variant, rec.Player1, rec.Player2, rec.Winner,
		rec.Summary, rec.Damage, rec.Reward, rec.Forfeit, rec.MoveCount,
		rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("saving match: %w", err)
	}
	return nil
}

// RecentMatches returns up to limit matches, newest first.
func (s *SQLiteStore) RecentMatches(ctx context.Context, limit int) ([]*MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game, player1, player2, winner, summary,
			damage, reward, forfeit, move_count, finished_at
		FROM matches
		ORDER BY finished_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []*MatchRecord
	for rows.Next() {
		rec := &MatchRecord{}
		if err := rows.Scan(&rec.ID, &rec.Variant, &rec.Player1, &rec.Player2,
			&rec.Winner, &rec.Summary, &rec.Damage, &rec.Reward,
			&rec.Forfeit, &rec.MoveCount, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
