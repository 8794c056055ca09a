package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// ConversationUsecase creates conversations for open chats
type ConversationUsecase struct {
	messageRepo repo.MessageRepo
	draftRepo   repo.DraftRepo
	logger      *slog.Logger
}

// NewConversationUsecase creates a new conversation usecase.
// draftRepo may be nil, drafts are then kept in memory only.
func NewConversationUsecase(messageRepo repo.MessageRepo, draftRepo repo.DraftRepo, logger *slog.Logger) *ConversationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationUsecase{
		messageRepo: messageRepo,
		draftRepo:   draftRepo,
		logger:      logger.With("component", "messaging"),
	}
}

// Open creates the local copy of a consultation's chat and restores its
// saved draft
func (uc *ConversationUsecase) Open(ctx context.Context, consultationID string) *Conversation {
	c := &Conversation{
		consultationID: consultationID,
		messageRepo:    uc.messageRepo,
		draftRepo:      uc.draftRepo,
		logger:         uc.logger.With("consultation_id", consultationID),
		newID:          uuid.NewString,
	}
	if uc.draftRepo != nil {
		draft, err := uc.draftRepo.Get(ctx, consultationID)
		if err != nil {
			c.logger.Warn("load draft failed", "error", err)
		}
		c.draft = draft
	}
	return c
}

// Conversation holds an eventually-consistent copy of one consultation's
// message history. The history is always replaced wholesale by a full
// refetch; the API is the only ordering authority.
type Conversation struct {
	consultationID string
	messageRepo    repo.MessageRepo
	draftRepo      repo.DraftRepo
	logger         *slog.Logger
	newID          func() string

	mu        sync.RWMutex
	history   []domain.Message
	fetchedAt time.Time
	draft     string
	closed    bool

	sending atomic.Bool
	fetch   singleflight.Group
}

// ConsultationID returns the consultation this conversation belongs to
func (c *Conversation) ConsultationID() string {
	return c.consultationID
}

// Refresh refetches the full history. Concurrent calls share one request,
// and a response that arrives after Close is dropped.
func (c *Conversation) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return domain.ErrConversationClosed
	}
	_, err, _ := c.fetch.Do("history", func() (interface{}, error) {
		msgs, err := c.messageRepo.History(ctx, c.consultationID)
		if err != nil {
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		domain.SortHistory(msgs)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return nil, nil
		}
		c.history = msgs
		c.fetchedAt = time.Now()
		return nil, nil
	})
	return err
}

// Snapshot returns a copy of the current history
func (c *Conversation) Snapshot() domain.Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	history := make([]domain.Message, len(c.history))
	copy(history, c.history)
	return domain.Conversation{
		ConsultationID: c.consultationID,
		History:        history,
		FetchedAt:      c.fetchedAt,
	}
}

// DayBoundaries returns the day-divider positions of the current history
func (c *Conversation) DayBoundaries(loc *time.Location) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.DayBoundaries(c.history, loc)
}

// Draft returns the unsent text
func (c *Conversation) Draft() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

// SetDraft replaces the unsent text and saves it locally (best effort)
func (c *Conversation) SetDraft(ctx context.Context, text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
	c.saveDraft(ctx, text)
}

// Sending reports whether a send is in flight
func (c *Conversation) Sending() bool {
	return c.sending.Load()
}

// Send sends the current draft. Whitespace-only drafts are rejected before
// any network call. At most one send is in flight; on failure the draft is
// kept so the user can retry.
func (c *Conversation) Send(ctx context.Context) error {
	c.mu.RLock()
	closed := c.closed
	draft := c.draft
	c.mu.RUnlock()
	if closed {
		return domain.ErrConversationClosed
	}

	text, err := domain.NormalizeDraft(draft)
	if err != nil {
		return err
	}

	if !c.sending.CompareAndSwap(false, true) {
		return domain.ErrSendInFlight
	}
	defer c.sending.Store(false)

	if err := c.messageRepo.Send(ctx, c.consultationID, text, c.newID()); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	// Keep anything typed while the send was in flight
	c.mu.Lock()
	cleared := c.draft == draft
	if cleared {
		c.draft = ""
	}
	c.mu.Unlock()
	if cleared {
		c.saveDraft(ctx, "")
	}
	return nil
}

// Close marks the conversation closed; later fetch results are discarded
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Conversation) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Conversation) saveDraft(ctx context.Context, text string) {
	if c.draftRepo == nil {
		return
	}
	if err := c.draftRepo.Put(ctx, c.consultationID, text); err != nil {
		c.logger.Warn("save draft failed", "error", err)
	}
}
