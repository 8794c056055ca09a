package repo

import (
	"context"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// SessionRepo is the local session repository interface
// Responsible for sign-in persistence (SQLite)
type SessionRepo interface {
	// Load gets the stored session, nil if none
	Load(ctx context.Context) (*domain.LocalSession, error)

	// Save saves the session (create or replace)
	Save(ctx context.Context, session *domain.LocalSession) error

	// Clear removes the stored session and every draft
	Clear(ctx context.Context) error
}

// DraftRepo keeps unsent message drafts per consultation (SQLite)
type DraftRepo interface {
	// Get returns the draft, empty if none
	Get(ctx context.Context, consultationID string) (string, error)

	// Put stores the draft, an empty text deletes it
	Put(ctx context.Context, consultationID, text string) error
}
