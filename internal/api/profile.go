package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/usecase"
)

// ChangePassword changes the signed-in user's password
func (s *Server) ChangePassword(c echo.Context) error {
	var in usecase.ChangePasswordInput
	if err := c.Bind(&in); err != nil {
		return s.writeError(c, &domain.ValidationError{Field: "body", Reason: "must be JSON"})
	}
	if err := s.usecases.Profile.ChangePassword(c.Request().Context(), in); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAvatar takes a multipart "avatar" file
func (s *Server) UploadAvatar(c echo.Context) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return s.writeError(c, &domain.ValidationError{Field: "avatar", Reason: "image is required"})
	}
	if fh.Size > usecase.MaxAvatarBytes {
		return s.writeError(c, &domain.ValidationError{Field: "avatar", Reason: "image must be 5 MB or smaller"})
	}
	f, err := fh.Open()
	if err != nil {
		return s.writeError(c, err)
	}
	defer f.Close()
	// Read one byte past the limit so an oversized stream still fails validation
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxAvatarBytes+1))
	if err != nil {
		return s.writeError(c, err)
	}

	url, err := s.usecases.Profile.UploadAvatar(c.Request().Context(), usecase.AvatarInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"avatar_url": url})
}
