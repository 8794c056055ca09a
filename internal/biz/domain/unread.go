package domain

// UnreadCounts is the latest unread snapshot from the collaborating API.
// TotalUnread may include sources outside per-consultation messaging, so it
// is not required to equal the sum of ByConsultation.
type UnreadCounts struct {
	TotalUnread    int            `json:"total_unread"`
	ByConsultation map[string]int `json:"by_consultation"`
}

// For returns the unread count for one consultation
func (u UnreadCounts) For(consultationID string) int {
	return u.ByConsultation[consultationID]
}

// Clone returns a deep copy
func (u UnreadCounts) Clone() UnreadCounts {
	by := make(map[string]int, len(u.ByConsultation))
	for k, v := range u.ByConsultation {
		by[k] = v
	}
	return UnreadCounts{TotalUnread: u.TotalUnread, ByConsultation: by}
}
