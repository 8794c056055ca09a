package domain

import (
	"sort"
	"time"
)

// Conversation is the locally visible copy of a consultation's message history
type Conversation struct {
	ConsultationID string
	History        []Message
	FetchedAt      time.Time
}

// SortHistory orders messages by timestamp, keeping the collaborator's order
// for equal timestamps
func SortHistory(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}

// DayGroup is a run of messages sharing one calendar date
type DayGroup struct {
	Day      time.Time
	Messages []Message
}

// GroupByDay splits the history at its day boundaries
func (c *Conversation) GroupByDay(loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	bounds := DayBoundaries(c.History, loc)
	groups := make([]DayGroup, 0, len(bounds))
	for i, start := range bounds {
		end := len(c.History)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		t := c.History[start].Timestamp.In(loc)
		groups = append(groups, DayGroup{
			Day:      time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
			Messages: c.History[start:end],
		})
	}
	return groups
}

// Last returns the most recent message, or nil
func (c *Conversation) Last() *Message {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}
