package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/service"
)

type chatResponse struct {
	ConsultationID string           `json:"consultation_id"`
	Messages       []domain.Message `json:"messages"`
	DayBoundaries  []int            `json:"day_boundaries"`
	Draft          string           `json:"draft"`
	Sending        bool             `json:"sending"`
}

type draftRequest struct {
	Text string `json:"text"`
}

func (s *Server) chatJSON(c echo.Context, status int, session *service.ChatSession) error {
	conv := session.Conversation()
	snap := conv.Snapshot()
	return c.JSON(status, chatResponse{
		ConsultationID: snap.ConsultationID,
		Messages:       snap.History,
		DayBoundaries:  domain.DayBoundaries(snap.History, s.location),
		Draft:          conv.Draft(),
		Sending:        conv.Sending(),
	})
}

func (s *Server) openChat(c echo.Context) (*service.ChatSession, error) {
	session, ok := s.runtime.Chats().Get(c.Param("id"))
	if !ok {
		return nil, domain.ErrConversationClosed
	}
	return session, nil
}

// OpenChat opens (or returns) the live chat of a consultation
func (s *Server) OpenChat(c echo.Context) error {
	session, err := s.runtime.Chats().Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return s.chatJSON(c, http.StatusOK, session)
}

// ChatMessages returns the latest history of an open chat
func (s *Server) ChatMessages(c echo.Context) error {
	session, err := s.openChat(c)
	if err != nil {
		return s.writeError(c, err)
	}
	return s.chatJSON(c, http.StatusOK, session)
}

// SetDraft replaces the unsent text of an open chat
func (s *Server) SetDraft(c echo.Context) error {
	session, err := s.openChat(c)
	if err != nil {
		return s.writeError(c, err)
	}
	var req draftRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, &domain.ValidationError{Field: "body", Reason: "must be JSON"})
	}
	session.Conversation().SetDraft(c.Request().Context(), req.Text)
	return c.NoContent(http.StatusNoContent)
}

// SendMessage sends the draft of an open chat
func (s *Server) SendMessage(c echo.Context) error {
	session, err := s.openChat(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if err := session.Send(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return s.chatJSON(c, http.StatusOK, session)
}

// CloseChat stops polling a chat
func (s *Server) CloseChat(c echo.Context) error {
	s.runtime.Chats().Close(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
