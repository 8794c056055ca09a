package repo

import (
	"context"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// AccountRepo covers the signed-in user's account on the collaborating API
type AccountRepo interface {
	// Me gets the current user
	Me(ctx context.Context) (*domain.User, error)

	// ChangePassword changes the password of the current user
	ChangePassword(ctx context.Context, current, next string) error

	// UploadAvatar replaces the profile image and returns its URL
	UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
