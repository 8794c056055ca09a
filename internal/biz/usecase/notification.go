package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// DefaultNotificationPageSize caps how many notifications one fetch returns
const DefaultNotificationPageSize = 10

// NotificationUsecase caches the notification feed. Mark-read operations are
// best effort: failures leave the cache unchanged and are only logged.
type NotificationUsecase struct {
	notificationRepo repo.NotificationRepo
	pageSize         int
	logger           *slog.Logger

	mu     sync.RWMutex
	items  []domain.Notification
	unread int

	fetch singleflight.Group
}

// NewNotificationUsecase creates a new notification usecase
func NewNotificationUsecase(notificationRepo repo.NotificationRepo, pageSize int, logger *slog.Logger) *NotificationUsecase {
	if pageSize <= 0 {
		pageSize = DefaultNotificationPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationUsecase{
		notificationRepo: notificationRepo,
		pageSize:         pageSize,
		logger:           logger.With("component", "notifications"),
	}
}

// Refresh fetches the latest page and unread count
func (uc *NotificationUsecase) Refresh(ctx context.Context) error {
	_, err, _ := uc.fetch.Do("feed", func() (interface{}, error) {
		page, err := uc.notificationRepo.List(ctx, uc.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		items := page.Notifications
		if len(items) > uc.pageSize {
			items = items[:uc.pageSize]
		}
		unread := page.UnreadCount
		if unread < 0 {
			unread = 0
		}

		uc.mu.Lock()
		uc.items = items
		uc.unread = unread
		uc.mu.Unlock()
		return nil, nil
	})
	return err
}

// Snapshot returns a copy of the cached feed
func (uc *NotificationUsecase) Snapshot() domain.NotificationPage {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	items := make([]domain.Notification, len(uc.items))
	copy(items, uc.items)
	return domain.NotificationPage{Notifications: items, UnreadCount: uc.unread}
}

// Reset empties the feed (logout)
func (uc *NotificationUsecase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.items = nil
	uc.unread = 0
}

// MarkRead marks one notification read. Already read or unknown
// notifications are a no-op.
func (uc *NotificationUsecase) MarkRead(ctx context.Context, id string) error {
	uc.mu.RLock()
	idx := uc.indexOf(id)
	skip := idx < 0 || uc.items[idx].Read
	uc.mu.RUnlock()
	if skip {
		return nil
	}

	if err := uc.notificationRepo.MarkRead(ctx, id); err != nil {
		uc.logger.Warn("mark read failed", "id", id, "error", err)
		return fmt.Errorf("mark notification read: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	// The feed may have been refreshed meanwhile
	if idx := uc.indexOf(id); idx >= 0 && !uc.items[idx].Read {
		uc.items[idx].Read = true
		if uc.unread > 0 {
			uc.unread--
		}
	}
	return nil
}

// MarkAllRead marks every notification read and zeroes the unread count
func (uc *NotificationUsecase) MarkAllRead(ctx context.Context) error {
	if err := uc.notificationRepo.MarkAllRead(ctx); err != nil {
		uc.logger.Warn("mark all read failed", "error", err)
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	items := make([]domain.Notification, len(uc.items))
	for i, n := range uc.items {
		n.Read = true
		items[i] = n
	}
	uc.items = items
	uc.unread = 0
	return nil
}

// Appearance returns the icon and color for a notification type
func (uc *NotificationUsecase) Appearance(t domain.NotificationType) domain.Appearance {
	return domain.AppearanceFor(t)
}

func (uc *NotificationUsecase) indexOf(id string) int {
	for i := range uc.items {
		if uc.items[i].ID == id {
			return i
		}
	}
	return -1
}
