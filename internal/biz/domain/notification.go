package domain

// NotificationType tags a notification for icon and color selection
type NotificationType string

const (
	NotificationConsultationRequest   NotificationType = "consultation_request"
	NotificationConsultationAccepted  NotificationType = "consultation_accepted"
	NotificationConsultationRejected  NotificationType = "consultation_rejected"
	NotificationConsultationCompleted NotificationType = "consultation_completed"
	NotificationMessage               NotificationType = "message"
	NotificationReview                NotificationType = "review"
	NotificationPayment               NotificationType = "payment"
	NotificationSystem                NotificationType = "system"
)

// Notification represents an in-app notification
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Time        string           `json:"time"` // display string from the API
	Link        string           `json:"link,omitempty"`
	Read        bool             `json:"read"`
}

// NotificationPage is one fetch of the feed
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// Appearance is the icon/color pair for a notification type
type Appearance struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var appearances = map[NotificationType]Appearance{
	NotificationConsultationRequest:   {Icon: "calendar-plus", Color: "blue"},
	NotificationConsultationAccepted:  {Icon: "calendar-check", Color: "green"},
	NotificationConsultationRejected:  {Icon: "calendar-x", Color: "red"},
	NotificationConsultationCompleted: {Icon: "check-circle", Color: "emerald"},
	NotificationMessage:               {Icon: "message-square", Color: "indigo"},
	NotificationReview:                {Icon: "star", Color: "yellow"},
	NotificationPayment:               {Icon: "wallet", Color: "purple"},
	NotificationSystem:                {Icon: "info", Color: "slate"},
}

// DefaultAppearance is used for unknown types
var DefaultAppearance = Appearance{Icon: "bell", Color: "gray"}

// AppearanceFor looks up the icon/color for a type
func AppearanceFor(t NotificationType) Appearance {
	if a, ok := appearances[t]; ok {
		return a
	}
	return DefaultAppearance
}
