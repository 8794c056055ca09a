package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// Handler answers MCP tool calls through the control API
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a new MCP handler
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, logger: logger.With("component", "mcp")}
}

// ListConsultationsInput is the input for list_consultations
type ListConsultationsInput struct {
	Tab string `json:"tab,omitempty" jsonschema:"one of upcoming, completed or cancelled (default upcoming)"`
}

// ListConsultationsOutput is the output for list_consultations
type ListConsultationsOutput struct {
	Consultations []Consultation `json:"consultations"`
}

// ConsultationInput identifies a consultation
type ConsultationInput struct {
	ConsultationID string `json:"consultation_id" jsonschema:"the consultation ID"`
}

// RejectInput is the input for reject_consultation
type RejectInput struct {
	ConsultationID string `json:"consultation_id" jsonschema:"the consultation ID"`
	Confirm        bool   `json:"confirm" jsonschema:"must be true; rejection cannot be undone"`
}

// ConsultationOutput is the consultation after a status change
type ConsultationOutput struct {
	Consultation Consultation `json:"consultation"`
}

// Empty is the input of tools without arguments
type Empty struct{}

// UnreadOutput is the output for unread_counts
type UnreadOutput struct {
	TotalUnread    int            `json:"total_unread"`
	ByConsultation map[string]int `json:"by_consultation"`
}

// MarkReadInput is the input for mark_notifications_read
type MarkReadInput struct {
	NotificationID string `json:"notification_id,omitempty" jsonschema:"the notification to mark read; all when empty"`
}

// FeedOutput is the notification feed
type FeedOutput struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	Note          string         `json:"note,omitempty"`
}

// AvailabilityOutput is the output for get_availability
type AvailabilityOutput struct {
	Availability domain.Schedule `json:"availability"`
	Unsaved      bool            `json:"unsaved"`
}

// SlotsInput is the input for availability_slots
type SlotsInput struct {
	Date string `json:"date" jsonschema:"the date as YYYY-MM-DD"`
}

// SlotsOutput is the output for availability_slots
type SlotsOutput struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// SendMessageInput is the input for send_message
type SendMessageInput struct {
	ConsultationID string `json:"consultation_id" jsonschema:"the consultation ID"`
	Text           string `json:"text" jsonschema:"the message to send"`
}

// ChatOutput is the history of a consultation chat
type ChatOutput struct {
	ConsultationID string    `json:"consultation_id"`
	Messages       []Message `json:"messages"`
}

// ============ Consultation Handlers ============

func (h *Handler) ListConsultations(ctx context.Context, req *mcp.CallToolRequest, in ListConsultationsInput) (*mcp.CallToolResult, ListConsultationsOutput, error) {
	items, err := h.client.ListConsultations(ctx, in.Tab)
	if err != nil {
		return nil, ListConsultationsOutput{}, err
	}
	if items == nil {
		items = []Consultation{}
	}
	return nil, ListConsultationsOutput{Consultations: items}, nil
}

func (h *Handler) AcceptConsultation(ctx context.Context, req *mcp.CallToolRequest, in ConsultationInput) (*mcp.CallToolResult, ConsultationOutput, error) {
	return h.transition(ctx, in.ConsultationID, "accept", false)
}

func (h *Handler) RejectConsultation(ctx context.Context, req *mcp.CallToolRequest, in RejectInput) (*mcp.CallToolResult, ConsultationOutput, error) {
	if !in.Confirm {
		return nil, ConsultationOutput{}, fmt.Errorf("rejecting a consultation cannot be undone; ask the user, then call again with confirm=true")
	}
	return h.transition(ctx, in.ConsultationID, "reject", true)
}

func (h *Handler) CompleteConsultation(ctx context.Context, req *mcp.CallToolRequest, in ConsultationInput) (*mcp.CallToolResult, ConsultationOutput, error) {
	return h.transition(ctx, in.ConsultationID, "complete", false)
}

func (h *Handler) transition(ctx context.Context, id, action string, confirmed bool) (*mcp.CallToolResult, ConsultationOutput, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ConsultationOutput{}, fmt.Errorf("consultation_id is required")
	}
	c, err := h.client.Transition(ctx, id, action, confirmed)
	if err != nil {
		return nil, ConsultationOutput{}, err
	}
	return nil, ConsultationOutput{Consultation: *c}, nil
}

// ============ Unread and Notification Handlers ============

func (h *Handler) UnreadCounts(ctx context.Context, req *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, UnreadOutput, error) {
	counts, err := h.client.Unread(ctx)
	if err != nil {
		return nil, UnreadOutput{}, err
	}
	by := counts.ByConsultation
	if by == nil {
		by = map[string]int{}
	}
	return nil, UnreadOutput{TotalUnread: counts.TotalUnread, ByConsultation: by}, nil
}

func (h *Handler) ListNotifications(ctx context.Context, req *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, FeedOutput, error) {
	feed, err := h.client.Notifications(ctx)
	if err != nil {
		return nil, FeedOutput{}, err
	}
	return nil, feedOutput(feed, ""), nil
}

// MarkNotificationsRead never fails the tool call: marking read is best effort
func (h *Handler) MarkNotificationsRead(ctx context.Context, req *mcp.CallToolRequest, in MarkReadInput) (*mcp.CallToolResult, FeedOutput, error) {
	feed, err := h.client.MarkRead(ctx, in.NotificationID)
	if err != nil {
		h.logger.Warn("mark read failed", "notification_id", in.NotificationID, "error", err)
		return nil, FeedOutput{Notifications: []Notification{}, Note: "notifications could not be marked read; try again later"}, nil
	}
	return nil, feedOutput(feed, ""), nil
}

func feedOutput(feed *Feed, note string) FeedOutput {
	items := feed.Notifications
	if items == nil {
		items = []Notification{}
	}
	return FeedOutput{Notifications: items, UnreadCount: feed.UnreadCount, Note: note}
}

// ============ Availability Handlers ============

func (h *Handler) GetAvailability(ctx context.Context, req *mcp.CallToolRequest, _ Empty) (*mcp.CallToolResult, AvailabilityOutput, error) {
	a, err := h.client.Availability(ctx)
	if err != nil {
		return nil, AvailabilityOutput{}, err
	}
	schedule := a.Availability
	if schedule == nil {
		schedule = domain.Schedule{}
	}
	return nil, AvailabilityOutput{Availability: schedule, Unsaved: a.Dirty}, nil
}

func (h *Handler) AvailabilitySlots(ctx context.Context, req *mcp.CallToolRequest, in SlotsInput) (*mcp.CallToolResult, SlotsOutput, error) {
	slots, err := h.client.Slots(ctx, in.Date)
	if err != nil {
		return nil, SlotsOutput{}, err
	}
	if slots == nil {
		slots = []string{}
	}
	return nil, SlotsOutput{Date: in.Date, Slots: slots}, nil
}

// ============ Chat Handlers ============

func (h *Handler) ReadChat(ctx context.Context, req *mcp.CallToolRequest, in ConsultationInput) (*mcp.CallToolResult, ChatOutput, error) {
	if strings.TrimSpace(in.ConsultationID) == "" {
		return nil, ChatOutput{}, fmt.Errorf("consultation_id is required")
	}
	chat, err := h.client.OpenChat(ctx, in.ConsultationID)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, chatOutput(chat), nil
}

func (h *Handler) SendMessage(ctx context.Context, req *mcp.CallToolRequest, in SendMessageInput) (*mcp.CallToolResult, ChatOutput, error) {
	if strings.TrimSpace(in.ConsultationID) == "" {
		return nil, ChatOutput{}, fmt.Errorf("consultation_id is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, ChatOutput{}, domain.ErrEmptyMessage
	}
	// The chat must be open before it accepts a draft
	if _, err := h.client.OpenChat(ctx, in.ConsultationID); err != nil {
		return nil, ChatOutput{}, err
	}
	chat, err := h.client.SendMessage(ctx, in.ConsultationID, in.Text)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, chatOutput(chat), nil
}

func chatOutput(chat *Chat) ChatOutput {
	msgs := chat.Messages
	if msgs == nil {
		msgs = []Message{}
	}
	return ChatOutput{ConsultationID: chat.ConsultationID, Messages: msgs}
}
