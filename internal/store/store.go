// Package store handles the SQLite local cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verte-zerg/meeple/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const metaNextPlayerID = "players.next_id"

// Store wraps SQLite access for cached players and sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			game TEXT NOT NULL,
			date TEXT NOT NULL,
			doc TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_game ON sessions(game);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSessions replaces the cached session collection, preserving order.
func (s *Store) SaveSessions(ctx context.Context, sessions []model.Session) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return err
	}
	if len(sessions) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO sessions (position, id, game, date, doc) VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, session := range sessions {
			doc, merr := json.Marshal(session)
			if merr != nil {
				err = fmt.Errorf("failed to encode session %q: %w", session.ID, merr)
				return err
			}
			if _, err = stmt.ExecContext(ctx, i, string(session.ID), session.Game, session.Date, string(doc)); err != nil {
				return err
			}
		}
	}
	err = tx.Commit()
	return err
}

// LoadSessions returns the cached sessions in their saved order.
func (s *Store) LoadSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM sessions ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.Session
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var session model.Session
		if err := json.Unmarshal([]byte(doc), &session); err != nil {
			return nil, fmt.Errorf("failed to decode cached session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SavePlayers replaces the cached player collection and the next local id.
func (s *Store) SavePlayers(ctx context.Context, players []model.Player, nextID int) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return err
	}
	for i, p := range players {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO players (position, id, name, created_at) VALUES (?, ?, ?, ?)`,
			i, string(p.ID), p.Name, p.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaNextPlayerID, strconv.Itoa(nextID),
	); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// LoadPlayers returns the cached players and the persisted next local id (0 when unknown).
func (s *Store) LoadPlayers(ctx context.Context) ([]model.Player, int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM players ORDER BY position ASC`)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		var id, createdAt string
		if err := rows.Scan(&id, &p.Name, &createdAt); err != nil {
			return nil, 0, err
		}
		p.ID = model.ID(id)
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, 0, err
		}
		p.CreatedAt = parsed
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaNextPlayerID).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return players, 0, nil
	case err != nil:
		return nil, 0, err
	}
	nextID, err := strconv.Atoi(value)
	if err != nil {
		return players, 0, nil
	}
	return players, nextID, nil
}
