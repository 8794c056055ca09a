package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/agrolink/consult-sync/internal/biz"
)

// RuntimeConfig holds the poll intervals
type RuntimeConfig struct {
	Consultations time.Duration
	Messages      time.Duration
	Unread        time.Duration
	Notifications time.Duration
}

// Runtime owns every poller of a signed-in session: the consultation list,
// the unread counts, the notification feed and the open chats. Each poller
// runs independently; none waits on another.
type Runtime struct {
	usecases *biz.Usecases
	chats    *ChatService
	logger   *slog.Logger

	consultations *Poller
	unread        *Poller
	notifications *Poller

	mu      sync.Mutex
	started bool
}

// NewRuntime creates a new runtime. A nil clock uses the wall clock.
func NewRuntime(usecases *biz.Usecases, cfg RuntimeConfig, clock Clock, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		usecases:      usecases,
		chats:         NewChatService(usecases.Conversations, usecases.Unread, clock, cfg.Messages, logger),
		logger:        logger.With("component", "runtime"),
		consultations: NewPoller("consultations", cfg.Consultations, usecases.Consultations.Refresh, clock, logger),
		unread:        NewPoller("unread", cfg.Unread, usecases.Unread.Refresh, clock, logger),
		notifications: NewPoller("notifications", cfg.Notifications, usecases.Notifications.Refresh, clock, logger),
	}
}

// Chats returns the chat service
func (r *Runtime) Chats() *ChatService {
	return r.chats
}

// Start starts the background pollers
func (r *Runtime) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	r.chats.Resume()
	r.consultations.Start(ctx)
	r.unread.Start(ctx)
	r.notifications.Start(ctx)
	r.logger.Info("runtime started")
}

// Stop stops every poller, open chats included. No poll runs after Stop
// returns, and no chat opens until the next Start.
func (r *Runtime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats.Shutdown()
	if !r.started {
		return
	}
	r.started = false

	r.consultations.Stop()
	r.unread.Stop()
	r.notifications.Stop()
	r.logger.Info("runtime stopped")
}

// Running reports whether the runtime is started
func (r *Runtime) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// RefreshConsultations runs the consultation poll now
func (r *Runtime) RefreshConsultations() {
	r.consultations.Trigger()
}

// RefreshNotifications runs the notification poll now
func (r *Runtime) RefreshNotifications() {
	r.notifications.Trigger()
}

// Logout stops polling, clears the session and drops every cached view of
// the signed-out user's data
func (r *Runtime) Logout(ctx context.Context) error {
	r.Stop()
	r.usecases.Consultations.Reset()
	r.usecases.Unread.Reset()
	r.usecases.Notifications.Reset()
	if r.usecases.Session == nil {
		return nil
	}
	return r.usecases.Session.Logout(ctx)
}

// Statuses returns the status of every poller
func (r *Runtime) Statuses() []PollerStatus {
	out := []PollerStatus{
		r.consultations.Status(),
		r.unread.Status(),
		r.notifications.Status(),
	}
	return append(out, r.chats.Statuses()...)
}
