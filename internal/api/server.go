package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agrolink/consult-sync/internal/biz"
	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/service"
)

// Server is the local control API a presentation layer (or an operator)
// uses to drive the sync core
type Server struct {
	usecases *biz.Usecases
	runtime  *service.Runtime
	location *time.Location
	logger   *slog.Logger

	echo *echo.Echo
	port int
}

// ErrorResponse is the error body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewServer creates a new API server
func NewServer(usecases *biz.Usecases, runtime *service.Runtime, location *time.Location, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.Local
	}
	s := &Server{
		usecases: usecases,
		runtime:  runtime,
		location: location,
		logger:   logger.With("component", "api"),
		port:     port,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	s.registerRoutes(e)
	s.echo = e
	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	g := e.Group("/api")
	g.GET("/session", s.GetSession)
	g.POST("/session/logout", s.Logout)
	g.PUT("/profile/password", s.ChangePassword)
	g.POST("/profile/avatar", s.UploadAvatar)

	// Consultations
	g.GET("/consultations", s.ListConsultations)
	g.POST("/consultations/refresh", s.RefreshConsultations)
	g.GET("/consultations/:id", s.GetConsultation)
	g.POST("/consultations/:id/accept", s.AcceptConsultation)
	g.POST("/consultations/:id/reject", s.RejectConsultation)
	g.POST("/consultations/:id/complete", s.CompleteConsultation)

	// Chats
	g.POST("/chats/:id", s.OpenChat)
	g.GET("/chats/:id/messages", s.ChatMessages)
	g.PUT("/chats/:id/draft", s.SetDraft)
	g.POST("/chats/:id/send", s.SendMessage)
	g.DELETE("/chats/:id", s.CloseChat)

	// Unread and notifications
	g.GET("/unread", s.Unread)
	g.GET("/notifications", s.ListNotifications)
	g.POST("/notifications/refresh", s.RefreshNotifications)
	g.POST("/notifications/read-all", s.MarkAllNotificationsRead)
	g.POST("/notifications/:id/read", s.MarkNotificationRead)

	// Availability
	g.GET("/availability", s.GetAvailability)
	g.PATCH("/availability/:day", s.EditAvailabilityDay)
	g.POST("/availability/save", s.SaveAvailability)
	g.GET("/availability/slots", s.AvailabilitySlots)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server stopped", "error", err)
		}
	}()
	s.logger.Info("api server listening", "addr", addr)
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health reports poller state
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"running": s.runtime.Running(),
		"pollers": s.runtime.Statuses(),
	})
}

// GetSession returns the signed-in user
func (s *Server) GetSession(c echo.Context) error {
	user := s.usecases.Session.CurrentUser()
	if user == nil {
		return s.writeError(c, domain.ErrNotAuthenticated)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout stops polling and clears the local session
func (s *Server) Logout(c echo.Context) error {
	if err := s.runtime.Logout(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError maps core errors onto HTTP statuses. The collaborator's error
// text is passed through as the only diagnostic.
func (s *Server) writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: err.Error()}

	var ve *domain.ValidationError
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: ve.Error(), Field: ve.Field}
	case errors.Is(err, domain.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConfirmationRequired):
		status = http.StatusPreconditionRequired
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrMutationInFlight),
		errors.Is(err, domain.ErrSendInFlight),
		errors.Is(err, domain.ErrConversationClosed):
		status = http.StatusConflict
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		resp = ErrorResponse{Error: apiErr.Message}
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, resp)
}
