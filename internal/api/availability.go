package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

func (s *Server) availabilityJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"loaded":       s.usecases.Availability.Loaded(),
		"dirty":        s.usecases.Availability.Dirty(),
		"availability": s.usecases.Availability.Schedule(),
	})
}

// GetAvailability returns the working schedule
func (s *Server) GetAvailability(c echo.Context) error {
	return s.availabilityJSON(c)
}

// EditAvailabilityDay applies a partial edit to one day. Nothing is
// persisted until save.
func (s *Server) EditAvailabilityDay(c echo.Context) error {
	day, err := domain.ParseWeekday(c.Param("day"))
	if err != nil {
		return s.writeError(c, err)
	}
	var patch domain.PartialDay
	if err := c.Bind(&patch); err != nil {
		return s.writeError(c, &domain.ValidationError{Field: "body", Reason: "must be JSON"})
	}

	uc := s.usecases.Availability
	current := uc.Schedule()[day]
	if patch.Start != nil || patch.End != nil {
		start, end := current.Start, current.End
		if patch.Start != nil {
			start = *patch.Start
		}
		if patch.End != nil {
			end = *patch.End
		}
		if err := uc.SetWindow(day, start, end); err != nil {
			return s.writeError(c, err)
		}
	}
	if patch.SlotDuration != nil {
		if err := uc.SetSlotDuration(day, *patch.SlotDuration); err != nil {
			return s.writeError(c, err)
		}
	}
	if patch.Enabled != nil && *patch.Enabled != current.Enabled {
		if err := uc.ToggleDay(day); err != nil {
			return s.writeError(c, err)
		}
	}
	return s.availabilityJSON(c)
}

// SaveAvailability persists the whole schedule
func (s *Server) SaveAvailability(c echo.Context) error {
	if err := s.usecases.Availability.Save(c.Request().Context()); err != nil {
		return s.writeError(c, err)
	}
	return s.availabilityJSON(c)
}

// AvailabilitySlots lists bookable slots on ?date=YYYY-MM-DD
func (s *Server) AvailabilitySlots(c echo.Context) error {
	date, err := time.ParseInLocation("2006-01-02", c.QueryParam("date"), s.location)
	if err != nil {
		return s.writeError(c, &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"slots": s.usecases.Availability.BookableSlots(date, time.Now().In(s.location), nil),
	})
}
