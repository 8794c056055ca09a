package domain

import "time"

// Role is the platform role of a user
type Role string

const (
	RoleClient Role = "client"
	RoleExpert Role = "expert"
)

// User represents the signed-in user
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// IsExpert checks if the user acts as an expert
func (u *User) IsExpert() bool {
	return u.Role == RoleExpert
}

// LocalSession is the locally persisted sign-in state
type LocalSession struct {
	User      User
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionConfig represents session configuration (value object)
type SessionConfig struct {
	MaxAge time.Duration // Local sessions older than this are discarded on hydrate (0 disables)
}

// IsFresh checks if the local session can be reused
func (s *LocalSession) IsFresh(cfg SessionConfig, now time.Time) bool {
	if s.Token == "" {
		return false
	}
	if cfg.MaxAge > 0 && now.Sub(s.UpdatedAt) > cfg.MaxAge {
		return false
	}
	return true
}

// Touch updates active time
func (s *LocalSession) Touch(now time.Time) {
	s.UpdatedAt = now
}
