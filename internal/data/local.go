package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agrolink/consult-sync/internal/biz/domain"

	_ "modernc.org/sqlite"
)

// LocalStore keeps the sign-in session and unsent drafts in SQLite.
// It implements both repo.SessionRepo and repo.DraftRepo.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore opens (and creates if needed) the local database
func NewLocalStore(dbPath string) (*LocalStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	// The session table holds at most one row
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			user_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			token TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS drafts (
			consultation_id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create drafts table: %w", err)
	}

	return &LocalStore{db: db}, nil
}

// Load gets the stored session, nil if none
func (s *LocalStore) Load(ctx context.Context) (*domain.LocalSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, role, avatar_url, token, created_at, updated_at
		FROM session
		WHERE id = 1
	`)

	var session domain.LocalSession
	var role string
	var createdAt, updatedAt int64
	err := row.Scan(
		&session.User.ID,
		&session.User.Name,
		&session.User.Email,
		&role,
		&session.User.AvatarURL,
		&session.Token,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session.User.Role = domain.Role(role)
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)
	return &session, nil
}

// Save saves the session (create or replace)
func (s *LocalStore) Save(ctx context.Context, session *domain.LocalSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO session (id, user_id, name, email, role, avatar_url, token, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.User.ID,
		session.User.Name,
		session.User.Email,
		string(session.User.Role),
		session.User.AvatarURL,
		session.Token,
		session.CreatedAt.Unix(),
		session.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the stored session and every draft
func (s *LocalStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM drafts`); err != nil {
		return fmt.Errorf("failed to delete drafts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Get returns the draft of a consultation, empty if none
func (s *LocalStore) Get(ctx context.Context, consultationID string) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM drafts WHERE consultation_id = ?`, consultationID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query draft: %w", err)
	}
	return text, nil
}

// Put stores a draft; an empty text deletes it
func (s *LocalStore) Put(ctx context.Context, consultationID, text string) error {
	if text == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE consultation_id = ?`, consultationID); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO drafts (consultation_id, text, updated_at)
		VALUES (?, ?, ?)
	`, consultationID, text, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Close closes the database
func (s *LocalStore) Close() error {
	return s.db.Close()
}
