package repo

import (
	"context"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// NotificationRepo is the notification feed interface
type NotificationRepo interface {
	// List gets the latest notifications (at most limit) and the unread count
	List(ctx context.Context, limit int) (*domain.NotificationPage, error)

	// MarkRead marks one notification as read
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead marks every notification as read
	MarkAllRead(ctx context.Context) error
}

// CounterpartEvent describes a consultation change the other participant
// should learn about
type CounterpartEvent struct {
	Consultation domain.Consultation
	ActorID      string
	RecipientID  string
	Status       domain.ConsultationStatus
}

// Notifier tells the counterpart of a consultation about a change
// Delivery is advisory; callers log failures and carry on
type Notifier interface {
	NotifyCounterpart(ctx context.Context, event CounterpartEvent) error
}
