package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// Client is the HTTP client for the consultd control API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new MCP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Consultation is a consultation as the control API returns it. Times stay
// RFC 3339 strings so tool output schemas remain plain.
type Consultation struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	ExpertID    string `json:"expert_id"`
	Topic       string `json:"topic"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Provisional string `json:"provisional,omitempty"`
}

// Message is one chat message
type Message struct {
	ID        string `json:"id"`
	SenderID  string `json:"sender_id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Notification is a feed entry with its display hints
type Notification struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time"`
	Read        bool   `json:"read"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Feed is the cached notification feed
type Feed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// Chat is the open chat of a consultation
type Chat struct {
	ConsultationID string    `json:"consultation_id"`
	Messages       []Message `json:"messages"`
	Draft          string    `json:"draft"`
	Sending        bool      `json:"sending"`
}

// Availability is the expert's working schedule
type Availability struct {
	Loaded       bool            `json:"loaded"`
	Dirty        bool            `json:"dirty"`
	Availability domain.Schedule `json:"availability"`
}

// ============ Consultations ============

// ListConsultations lists one tab
func (c *Client) ListConsultations(ctx context.Context, tab string) ([]Consultation, error) {
	var result struct {
		Consultations []Consultation `json:"consultations"`
	}
	path := "/api/consultations?tab=" + url.QueryEscape(tab)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Consultations, nil
}

// Transition asks for accept, reject or complete
func (c *Client) Transition(ctx context.Context, id, action string, confirmed bool) (*Consultation, error) {
	path := fmt.Sprintf("/api/consultations/%s/%s", url.PathEscape(id), action)
	if confirmed {
		path += "?confirm=true"
	}
	var result Consultation
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============ Unread and notifications ============

// Unread gets the latest unread snapshot
func (c *Client) Unread(ctx context.Context) (*domain.UnreadCounts, error) {
	var result domain.UnreadCounts
	if err := c.do(ctx, http.MethodGet, "/api/unread", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notifications gets the cached feed
func (c *Client) Notifications(ctx context.Context) (*Feed, error) {
	var result Feed
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkRead marks one notification read, or all when id is empty
func (c *Client) MarkRead(ctx context.Context, id string) (*Feed, error) {
	path := "/api/notifications/read-all"
	if id != "" {
		path = fmt.Sprintf("/api/notifications/%s/read", url.PathEscape(id))
	}
	var result Feed
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============ Availability ============

// Availability gets the working schedule
func (c *Client) Availability(ctx context.Context) (*Availability, error) {
	var result Availability
	if err := c.do(ctx, http.MethodGet, "/api/availability", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Slots gets the bookable slots on date (YYYY-MM-DD)
func (c *Client) Slots(ctx context.Context, date string) ([]string, error) {
	var result struct {
		Slots []string `json:"slots"`
	}
	path := "/api/availability/slots?date=" + url.QueryEscape(date)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Slots, nil
}

// ============ Chats ============

// OpenChat opens the chat of a consultation and returns its history
func (c *Client) OpenChat(ctx context.Context, consultationID string) (*Chat, error) {
	var result Chat
	path := "/api/chats/" + url.PathEscape(consultationID)
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMessage replaces the draft with text and sends it
func (c *Client) SendMessage(ctx context.Context, consultationID, text string) (*Chat, error) {
	base := "/api/chats/" + url.PathEscape(consultationID)
	if err := c.do(ctx, http.MethodPut, base+"/draft", map[string]string{"text": text}, nil); err != nil {
		return nil, err
	}
	var result Chat
	if err := c.do(ctx, http.MethodPost, base+"/send", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============ HTTP Helpers ============

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var e struct {
			Error string `json:"error"`
		}
		msg := string(respBody)
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &domain.APIError{Op: method + " " + path, StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
