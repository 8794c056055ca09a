package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
	"github.com/agrolink/consult-sync/internal/validation"
)

// MaxAvatarBytes is the largest accepted profile image
const MaxAvatarBytes = 5 << 20

// ChangePasswordInput is the password change form
type ChangePasswordInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8"`
	Confirm string `json:"confirm_password" validate:"required,eqfield=New"`
}

// AvatarInput describes an image upload
type AvatarInput struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp"`
	Data        []byte `json:"-"`
}

// ProfileUsecase handles account changes that need client-side validation
type ProfileUsecase struct {
	accountRepo repo.AccountRepo
	session     *SessionUsecase
	validator   *validation.Validator
}

// NewProfileUsecase creates a new profile usecase. session may be nil.
func NewProfileUsecase(accountRepo repo.AccountRepo, session *SessionUsecase, v *validation.Validator) *ProfileUsecase {
	if v == nil {
		v = validation.New()
	}
	return &ProfileUsecase{
		accountRepo: accountRepo,
		session:     session,
		validator:   v,
	}
}

// ChangePassword validates the form and then asks the API to change the
// password. Validation failures never reach the network.
func (uc *ProfileUsecase) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := uc.validator.Struct(in); err != nil {
		return err
	}
	if in.New == in.Current {
		return &domain.ValidationError{Field: "new_password", Reason: "must differ from the current password"}
	}
	if err := uc.accountRepo.ChangePassword(ctx, in.Current, in.New); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// ValidateAvatar checks type, extension and size of an image
func (uc *ProfileUsecase) ValidateAvatar(in AvatarInput) error {
	if err := uc.validator.Struct(in); err != nil {
		return err
	}
	if len(in.Data) == 0 {
		return &domain.ValidationError{Field: "avatar", Reason: "image is empty"}
	}
	if len(in.Data) > MaxAvatarBytes {
		return &domain.ValidationError{Field: "avatar", Reason: "image must be 5 MB or smaller"}
	}
	switch strings.ToLower(filepath.Ext(in.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return &domain.ValidationError{Field: "filename", Reason: "must be a .jpg, .png or .webp file"}
	}
	return nil
}

// UploadAvatar validates and uploads a new profile image
func (uc *ProfileUsecase) UploadAvatar(ctx context.Context, in AvatarInput) (string, error) {
	if err := uc.ValidateAvatar(in); err != nil {
		return "", err
	}
	url, err := uc.accountRepo.UploadAvatar(ctx, in.Filename, in.ContentType, in.Data)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if uc.session != nil {
		uc.session.SetAvatarURL(url)
	}
	return url, nil
}
