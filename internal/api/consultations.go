package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// ListConsultations lists one tab (?tab=upcoming|completed|cancelled)
func (s *Server) ListConsultations(c echo.Context) error {
	tab, ok := domain.ParseTab(c.QueryParam("tab"))
	if !ok {
		return s.writeError(c, &domain.ValidationError{Field: "tab", Reason: "must be upcoming, completed or cancelled"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tab":           tab,
		"loaded":        s.usecases.Consultations.Loaded(),
		"consultations": s.usecases.Consultations.List(tab),
	})
}

// RefreshConsultations asks the consultation poller for an immediate run
func (s *Server) RefreshConsultations(c echo.Context) error {
	s.runtime.RefreshConsultations()
	return c.NoContent(http.StatusAccepted)
}

// GetConsultation returns one consultation
func (s *Server) GetConsultation(c echo.Context) error {
	consultation, ok := s.usecases.Consultations.Get(c.Param("id"))
	if !ok {
		return s.writeError(c, domain.ErrNotFound)
	}
	return c.JSON(http.StatusOK, consultation)
}

// AcceptConsultation accepts a pending consultation
func (s *Server) AcceptConsultation(c echo.Context) error {
	id := c.Param("id")
	if err := s.usecases.Consultations.Accept(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}
	return s.GetConsultation(c)
}

// RejectConsultation rejects a pending consultation; needs ?confirm=true
func (s *Server) RejectConsultation(c echo.Context) error {
	id := c.Param("id")
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	if err := s.usecases.Consultations.Reject(c.Request().Context(), id, confirmed); err != nil {
		return s.writeError(c, err)
	}
	return s.GetConsultation(c)
}

// CompleteConsultation completes an accepted consultation
func (s *Server) CompleteConsultation(c echo.Context) error {
	id := c.Param("id")
	if err := s.usecases.Consultations.Complete(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}
	return s.GetConsultation(c)
}
