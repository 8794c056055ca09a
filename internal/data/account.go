package data

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// accountRepo implements the Account repository over the API
type accountRepo struct {
	client *Client
}

// NewAccountRepo creates a new Account repository
func NewAccountRepo(client *Client) repo.AccountRepo {
	return &accountRepo{client: client}
}

// Me gets the current user
func (r *accountRepo) Me(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := r.client.doJSON(ctx, http.MethodGet, "/users/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, fmt.Errorf("current user: %w", domain.ErrNotFound)
	}
	return resp.User, nil
}

// ChangePassword changes the password of the current user
func (r *accountRepo) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{CurrentPassword: current, NewPassword: next}
	return r.client.doJSON(ctx, http.MethodPut, "/users/me/password", body, nil)
}

// UploadAvatar uploads the image as multipart form field "avatar"
func (r *accountRepo) UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create avatar part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write avatar part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close avatar form: %w", err)
	}

	var resp struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := r.client.do(ctx, http.MethodPost, "/users/me/avatar", &buf, w.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	return resp.AvatarURL, nil
}
