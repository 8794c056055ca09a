package feishu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// Sender posts rich text to a Feishu chat
type Sender interface {
	SendRichText(ctx context.Context, chatID, title string, content [][]map[string]interface{}) error
}

// Notifier mirrors consultation changes into a Feishu operations chat
type Notifier struct {
	sender Sender
	chatID string
	logger *slog.Logger
}

// NewNotifier creates a new Feishu notifier
func NewNotifier(sender Sender, chatID string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sender: sender,
		chatID: chatID,
		logger: logger.With("component", "feishu"),
	}
}

var _ repo.Notifier = (*Notifier)(nil)

// NotifyCounterpart posts the change to the configured chat
func (n *Notifier) NotifyCounterpart(ctx context.Context, event repo.CounterpartEvent) error {
	title, lines := formatEvent(event)
	content := make([][]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		content = append(content, []map[string]interface{}{{"tag": "text", "text": line}})
	}

	if err := n.sender.SendRichText(ctx, n.chatID, title, content); err != nil {
		return fmt.Errorf("feishu notify: %w", err)
	}
	n.logger.Info("counterpart notified", "consultation_id", event.Consultation.ID, "status", event.Status)
	return nil
}

func formatEvent(event repo.CounterpartEvent) (string, []string) {
	c := event.Consultation
	var title string
	switch event.Status {
	case domain.StatusAccepted:
		title = "Consultation accepted"
	case domain.StatusRejected:
		title = "Consultation rejected"
	case domain.StatusCompleted:
		title = "Consultation completed"
	case domain.StatusCancelled:
		title = "Consultation cancelled"
	default:
		title = "Consultation updated"
	}

	lines := []string{
		"Topic: " + c.Topic,
		"Consultation: " + c.ID,
	}
	if !c.Date.IsZero() {
		lines = append(lines, "Date: "+c.Date.Format("2006-01-02 15:04"))
	}
	lines = append(lines,
		"Changed by: "+event.ActorID,
		"Notify: "+event.RecipientID,
	)
	return title, lines
}
