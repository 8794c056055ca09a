package domain

import (
	"sort"
	"time"
)

// ConsultationStatus represents the lifecycle status of a consultation
type ConsultationStatus string

const (
	StatusPending   ConsultationStatus = "pending"
	StatusAccepted  ConsultationStatus = "accepted"
	StatusRejected  ConsultationStatus = "rejected"
	StatusCompleted ConsultationStatus = "completed"
	StatusCancelled ConsultationStatus = "cancelled"
)

// transitions lists the allowed edges. Cancellation is applied externally
// (by the client or the platform), the core only drives accept/reject/complete.
var transitions = map[ConsultationStatus][]ConsultationStatus{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

// IsValid reports whether s is a known status
func (s ConsultationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ConsultationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is a single allowed edge
func CanTransition(from, to ConsultationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Reachable reports whether to can be reached from from by following allowed
// edges (zero or more).
func Reachable(from, to ConsultationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if Reachable(next, to) {
			return true
		}
	}
	return false
}

// Consultation represents a scheduled advisory engagement
type Consultation struct {
	ID       string             `json:"id"`
	ClientID string             `json:"client_id"`
	ExpertID string             `json:"expert_id"`
	Topic    string             `json:"topic"`
	Date     time.Time          `json:"date"`
	Status   ConsultationStatus `json:"status"`

	// Provisional is the target status of a mutation that has been sent but
	// not yet confirmed. Status stays authoritative until confirmation.
	Provisional ConsultationStatus `json:"provisional,omitempty"`
}

// DisplayStatus returns the provisional status when one is in flight
func (c *Consultation) DisplayStatus() ConsultationStatus {
	if c.Provisional != "" {
		return c.Provisional
	}
	return c.Status
}

// CounterpartOf returns the other participant of the consultation
func (c *Consultation) CounterpartOf(userID string) string {
	if userID == c.ExpertID {
		return c.ClientID
	}
	return c.ExpertID
}

// Tab is a read-only partition of the consultation list
type Tab string

const (
	TabUpcoming  Tab = "upcoming"
	TabCompleted Tab = "completed"
	TabCancelled Tab = "cancelled"
)

// ParseTab parses a tab name, defaulting to upcoming
func ParseTab(s string) (Tab, bool) {
	switch Tab(s) {
	case TabUpcoming, TabCompleted, TabCancelled:
		return Tab(s), true
	case "":
		return TabUpcoming, true
	}
	return "", false
}

// Contains reports whether a status belongs to the tab
func (t Tab) Contains(s ConsultationStatus) bool {
	switch t {
	case TabUpcoming:
		return s == StatusPending || s == StatusAccepted
	case TabCompleted:
		return s == StatusCompleted
	case TabCancelled:
		return s == StatusRejected || s == StatusCancelled
	}
	return false
}

// Partition filters consultations by tab using the authoritative status.
// Upcoming is ordered soonest first, the other tabs most recent first.
func Partition(all []Consultation, tab Tab) []Consultation {
	result := make([]Consultation, 0, len(all))
	for _, c := range all {
		if tab.Contains(c.Status) {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if tab == TabUpcoming {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Date.After(result[j].Date)
	})
	return result
}
