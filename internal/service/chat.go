package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/usecase"
)

// ChatSession is one open chat: a conversation and the poller refreshing it
type ChatSession struct {
	conv   *usecase.Conversation
	poller *Poller
}

// Conversation returns the underlying conversation
func (s *ChatSession) Conversation() *usecase.Conversation {
	return s.conv
}

// Snapshot returns the current history
func (s *ChatSession) Snapshot() domain.Conversation {
	return s.conv.Snapshot()
}

// Send sends the draft and forces one extra refetch on success
func (s *ChatSession) Send(ctx context.Context) error {
	if err := s.conv.Send(ctx); err != nil {
		return err
	}
	s.poller.Trigger()
	return nil
}

// ChatService keeps at most one live chat per consultation
type ChatService struct {
	conversations *usecase.ConversationUsecase
	unread        *usecase.UnreadUsecase
	clock         Clock
	interval      time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	sessions map[string]*ChatSession
	stopped  bool
}

// NewChatService creates a new chat service. unread may be nil.
func NewChatService(
	conversations *usecase.ConversationUsecase,
	unread *usecase.UnreadUsecase,
	clock Clock,
	interval time.Duration,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		conversations: conversations,
		unread:        unread,
		clock:         clock,
		interval:      interval,
		logger:        logger.With("component", "chat"),
		sessions:      make(map[string]*ChatSession),
	}
}

// Open returns the live chat for a consultation, opening it if needed. The
// history is fetched right away and then polled until Close. The poller
// outlives ctx; only Close, CloseAll or Shutdown stop it. After Shutdown,
// Open fails with domain.ErrNotAuthenticated until Resume.
func (s *ChatService) Open(ctx context.Context, consultationID string) (*ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, domain.ErrNotAuthenticated
	}
	if session, ok := s.sessions[consultationID]; ok {
		return session, nil
	}

	conv := s.conversations.Open(ctx, consultationID)
	refresh := func(ctx context.Context) error {
		if err := conv.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrConversationClosed) {
			return err
		}
		return nil
	}
	poller := NewPoller("messages:"+consultationID, s.interval, refresh, s.clock, s.logger)
	session := &ChatSession{conv: conv, poller: poller}
	s.sessions[consultationID] = session

	poller.Start(context.WithoutCancel(ctx))
	if s.unread != nil {
		s.unread.MarkSeenLocally(consultationID)
	}
	s.logger.Info("chat opened", "consultation_id", consultationID)
	return session, nil
}

// Get returns an open chat
func (s *ChatService) Get(consultationID string) (*ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[consultationID]
	return session, ok
}

// Close stops polling a chat. Closing a chat that is not open is a no-op.
func (s *ChatService) Close(consultationID string) {
	s.mu.Lock()
	session, ok := s.sessions[consultationID]
	delete(s.sessions, consultationID)
	s.mu.Unlock()
	if !ok {
		return
	}

	session.conv.Close()
	session.poller.Stop()
	s.logger.Info("chat closed", "consultation_id", consultationID)
}

// CloseAll closes every open chat
func (s *ChatService) CloseAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Close(id)
	}
}

// Shutdown closes every open chat and refuses new ones until Resume
func (s *ChatService) Shutdown() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.CloseAll()
}

// Resume allows chats to be opened again
func (s *ChatService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
}

// Statuses returns the poller status of every open chat
func (s *ChatService) Statuses() []PollerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PollerStatus, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.poller.Status())
	}
	return out
}
