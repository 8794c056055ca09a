package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ConsultationStatus
		ok       bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusAccepted, StatusCompleted, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusAccepted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNothingReturnsToPending(t *testing.T) {
	for _, from := range []ConsultationStatus{StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled} {
		assert.False(t, Reachable(from, StatusPending), from)
	}
}

func TestReachable(t *testing.T) {
	assert.True(t, Reachable(StatusPending, StatusCompleted))
	assert.True(t, Reachable(StatusAccepted, StatusAccepted))
	assert.False(t, Reachable(StatusCompleted, StatusCancelled))
	assert.False(t, Reachable(StatusRejected, StatusCompleted))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAccepted.IsTerminal())
	assert.False(t, ConsultationStatus("archived").IsValid())
}

func TestPartition(t *testing.T) {
	day := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	all := []Consultation{
		{ID: "1", Status: StatusPending, Date: day.Add(48 * time.Hour)},
		{ID: "2", Status: StatusAccepted, Date: day},
		{ID: "3", Status: StatusCompleted, Date: day.Add(-48 * time.Hour)},
		{ID: "4", Status: StatusRejected, Date: day},
		{ID: "5", Status: StatusCancelled, Date: day.Add(time.Hour)},
		{ID: "6", Status: StatusCompleted, Date: day.Add(-24 * time.Hour)},
	}

	upcoming := Partition(all, TabUpcoming)
	assert.Equal(t, []string{"2", "1"}, ids(upcoming))

	completed := Partition(all, TabCompleted)
	assert.Equal(t, []string{"6", "3"}, ids(completed))

	cancelled := Partition(all, TabCancelled)
	assert.Equal(t, []string{"5", "4"}, ids(cancelled))
}

func TestPartition_UsesAuthoritativeStatus(t *testing.T) {
	all := []Consultation{{ID: "1", Status: StatusPending, Provisional: StatusRejected}}

	assert.Len(t, Partition(all, TabUpcoming), 1)
	assert.Empty(t, Partition(all, TabCancelled))
	assert.Equal(t, StatusRejected, all[0].DisplayStatus())
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab("")
	assert.True(t, ok)
	assert.Equal(t, TabUpcoming, tab)

	_, ok = ParseTab("archived")
	assert.False(t, ok)
}

func TestCounterpartOf(t *testing.T) {
	c := Consultation{ClientID: "farmer", ExpertID: "agronomist"}
	assert.Equal(t, "farmer", c.CounterpartOf("agronomist"))
	assert.Equal(t, "agronomist", c.CounterpartOf("farmer"))
}

func ids(cs []Consultation) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
