package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type notificationView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time"`
	Link        string `json:"link,omitempty"`
	Read        bool   `json:"read"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Unread returns the latest unread snapshot
func (s *Server) Unread(c echo.Context) error {
	snap := s.usecases.Unread.Snapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_unread":    snap.TotalUnread,
		"by_consultation": snap.ByConsultation,
		"fetched_at":      s.usecases.Unread.FetchedAt(),
	})
}

// ListNotifications returns the cached feed with display hints
func (s *Server) ListNotifications(c echo.Context) error {
	page := s.usecases.Notifications.Snapshot()
	views := make([]notificationView, 0, len(page.Notifications))
	for _, n := range page.Notifications {
		a := s.usecases.Notifications.Appearance(n.Type)
		views = append(views, notificationView{
			ID:          n.ID,
			Type:        string(n.Type),
			Title:       n.Title,
			Description: n.Description,
			Time:        n.Time,
			Link:        n.Link,
			Read:        n.Read,
			Icon:        a.Icon,
			Color:       a.Color,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": views,
		"unread_count":  page.UnreadCount,
	})
}

// RefreshNotifications asks the notification poller for an immediate run
func (s *Server) RefreshNotifications(c echo.Context) error {
	s.runtime.RefreshNotifications()
	return c.NoContent(http.StatusAccepted)
}

// MarkNotificationRead is best effort: a failure is logged and the
// unchanged feed is returned
func (s *Server) MarkNotificationRead(c echo.Context) error {
	_ = s.usecases.Notifications.MarkRead(c.Request().Context(), c.Param("id"))
	return s.ListNotifications(c)
}

// MarkAllNotificationsRead is best effort, like MarkNotificationRead
func (s *Server) MarkAllNotificationsRead(c echo.Context) error {
	_ = s.usecases.Notifications.MarkAllRead(c.Request().Context())
	return s.ListNotifications(c)
}
