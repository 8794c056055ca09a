package domain

import (
	"strings"
	"time"
)

// Message represents a chat message within a consultation
type Message struct {
	ID             string    `json:"id"`
	ConsultationID string    `json:"consultation_id"`
	SenderID       string    `json:"sender_id"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

// IsFrom checks if the message was sent by the given user
func (m *Message) IsFrom(userID string) bool {
	return m.SenderID == userID
}

// IsAfter checks if the message is after the specified time
func (m *Message) IsAfter(t time.Time) bool {
	return m.Timestamp.After(t)
}

// NormalizeDraft trims a draft and rejects whitespace-only text
func NormalizeDraft(draft string) (string, error) {
	text := strings.TrimSpace(draft)
	if text == "" {
		return "", ErrEmptyMessage
	}
	return text, nil
}

// SameDay reports whether a and b fall on the same calendar date in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayBoundaries returns the indices of an ordered message sequence where the
// calendar date differs from the previous message. Index 0 is always a
// boundary for a non-empty sequence.
func DayBoundaries(messages []Message, loc *time.Location) []int {
	if loc == nil {
		loc = time.Local
	}
	var result []int
	for i := range messages {
		if i == 0 || !SameDay(messages[i-1].Timestamp, messages[i].Timestamp, loc) {
			result = append(result, i)
		}
	}
	return result
}
