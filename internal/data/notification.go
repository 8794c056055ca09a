package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// notificationRepo implements the Notification repository over the API
type notificationRepo struct {
	client *Client
}

// NewNotificationRepo creates a new Notification repository
func NewNotificationRepo(client *Client) repo.NotificationRepo {
	return &notificationRepo{client: client}
}

// List gets the latest notifications and the unread count
func (r *notificationRepo) List(ctx context.Context, limit int) (*domain.NotificationPage, error) {
	var page domain.NotificationPage
	path := fmt.Sprintf("/notifications?limit=%d", limit)
	if err := r.client.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// MarkRead marks one notification as read
func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	return r.client.doJSON(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllRead marks every notification as read
func (r *notificationRepo) MarkAllRead(ctx context.Context) error {
	return r.client.doJSON(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

// apiNotifier asks the API to push a notification to the counterpart
type apiNotifier struct {
	client *Client
}

// NewAPINotifier creates a notifier backed by the platform's own feed
func NewAPINotifier(client *Client) repo.Notifier {
	return &apiNotifier{client: client}
}

type refreshRequest struct {
	RecipientID    string                    `json:"recipient_id"`
	ConsultationID string                    `json:"consultation_id"`
	ActorID        string                    `json:"actor_id"`
	Status         domain.ConsultationStatus `json:"status"`
}

// NotifyCounterpart posts the change to the notification service
func (n *apiNotifier) NotifyCounterpart(ctx context.Context, event repo.CounterpartEvent) error {
	if event.RecipientID == "" {
		return nil
	}
	req := refreshRequest{
		RecipientID:    event.RecipientID,
		ConsultationID: event.Consultation.ID,
		ActorID:        event.ActorID,
		Status:         event.Status,
	}
	if err := n.client.doJSON(ctx, http.MethodPost, "/notifications/refresh", req, nil); err != nil {
		return fmt.Errorf("notify counterpart: %w", err)
	}
	return nil
}
