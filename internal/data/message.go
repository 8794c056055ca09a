package data

import (
	"context"
	"net/http"
	"net/url"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// messageRepo implements the Message and Unread repositories over the API
type messageRepo struct {
	client *Client
}

// NewMessageRepo creates a new Message repository
func NewMessageRepo(client *Client) repo.MessageRepo {
	return &messageRepo{client: client}
}

// NewUnreadRepo creates a new Unread repository
func NewUnreadRepo(client *Client) repo.UnreadRepo {
	return &messageRepo{client: client}
}

type messageList struct {
	Messages []domain.Message `json:"messages"`
}

type sendRequest struct {
	Message     string `json:"message"`
	ClientMsgID string `json:"client_msg_id,omitempty"`
}

// History gets the full message history of a consultation
func (r *messageRepo) History(ctx context.Context, consultationID string) ([]domain.Message, error) {
	var resp messageList
	path := "/consultations/" + url.PathEscape(consultationID) + "/messages"
	if err := r.client.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Send sends a text message
func (r *messageRepo) Send(ctx context.Context, consultationID, text, clientMsgID string) error {
	path := "/consultations/" + url.PathEscape(consultationID) + "/messages"
	return r.client.doJSON(ctx, http.MethodPost, path, sendRequest{Message: text, ClientMsgID: clientMsgID}, nil)
}

// Total gets the overall unread count
func (r *messageRepo) Total(ctx context.Context) (int, error) {
	var resp struct {
		TotalUnread int `json:"total_unread"`
	}
	if err := r.client.doJSON(ctx, http.MethodGet, "/messages/unread/total", nil, &resp); err != nil {
		return 0, err
	}
	return resp.TotalUnread, nil
}

// ByConsultation gets unread counts keyed by consultation ID
func (r *messageRepo) ByConsultation(ctx context.Context) (map[string]int, error) {
	var resp struct {
		ByConsultation map[string]int `json:"by_consultation"`
	}
	if err := r.client.doJSON(ctx, http.MethodGet, "/messages/unread/by-consultation", nil, &resp); err != nil {
		return nil, err
	}
	if resp.ByConsultation == nil {
		resp.ByConsultation = map[string]int{}
	}
	return resp.ByConsultation, nil
}
