package data

import (
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Consultation repo.ConsultationRepo
	Message      repo.MessageRepo
	Unread       repo.UnreadRepo
	Availability repo.AvailabilityRepo
	Notification repo.NotificationRepo
	Account      repo.AccountRepo
	Session      repo.SessionRepo
	Draft        repo.DraftRepo
	Notifier     repo.Notifier

	local *LocalStore
}

// NewRepositories creates all repositories. Extra notifiers (Feishu) receive
// counterpart events alongside the platform's own notification feed.
func NewRepositories(client *Client, sessionDBPath string, notifiers ...repo.Notifier) (*Repositories, error) {
	local, err := NewLocalStore(sessionDBPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Consultation: NewConsultationRepo(client),
		Message:      NewMessageRepo(client),
		Unread:       NewUnreadRepo(client),
		Availability: NewAvailabilityRepo(client),
		Notification: NewNotificationRepo(client),
		Account:      NewAccountRepo(client),
		Session:      local,
		Draft:        local,
		Notifier:     NewMultiNotifier(append([]repo.Notifier{NewAPINotifier(client)}, notifiers...)...),
		local:        local,
	}, nil
}

// Close releases the local database
func (r *Repositories) Close() error {
	return r.local.Close()
}
