package repo

import (
	"context"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// MessageRepo is the message repository interface
// Responsible for fetching message data from the collaborating API
type MessageRepo interface {
	// History gets the full message history of a consultation
	// Fetches in real-time, does not rely on local storage
	History(ctx context.Context, consultationID string) ([]domain.Message, error)

	// Send sends a text message. clientMsgID lets the API drop re-submissions.
	Send(ctx context.Context, consultationID, text, clientMsgID string) error
}

// UnreadRepo fetches unread aggregates
type UnreadRepo interface {
	// Total gets the overall unread count
	Total(ctx context.Context) (int, error)

	// ByConsultation gets unread counts keyed by consultation ID
	ByConsultation(ctx context.Context) (map[string]int, error)
}
