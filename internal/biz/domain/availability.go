package domain

import (
	"fmt"
	"time"
)

// Weekday is a lowercase weekday key as used by the collaborating API
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the 7 fixed keys, Monday first
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// AllowedSlotDurations is the fixed set of slot lengths in minutes
var AllowedSlotDurations = []int{30, 45, 60, 90}

// ParseWeekday validates a weekday key
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if string(d) == s {
			return d, nil
		}
	}
	return "", &ValidationError{Field: "day", Reason: fmt.Sprintf("unknown weekday %q", s)}
}

// WeekdayOf maps a time.Weekday to its key
func WeekdayOf(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekdays[int(d)-1]
}

// IsAllowedSlotDuration reports whether minutes is in the allowed set
func IsAllowedSlotDuration(minutes int) bool {
	for _, d := range AllowedSlotDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// ParseClock converts "HH:MM" to minutes since midnight
func ParseClock(s string) (int, error) {
	tm, err := time.Parse("15:04", s)
	if err != nil {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid time %q, expected HH:MM", s)}
	}
	return tm.Hour()*60 + tm.Minute(), nil
}

// MinutesToClock converts minutes since midnight to "HH:MM"
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DaySchedule is one weekday's bookable window. Disabled days keep their
// last start/end/slot duration so re-enabling restores them.
type DaySchedule struct {
	Enabled      bool   `json:"enabled"`
	Start        string `json:"start" validate:"required,clock"`
	End          string `json:"end" validate:"required,clock"`
	SlotDuration int    `json:"slot_duration" validate:"slotduration"`
}

// WindowValid reports whether start < end
func (d DaySchedule) WindowValid() bool {
	start, err := ParseClock(d.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(d.End)
	if err != nil {
		return false
	}
	return start < end
}

// Schedule maps every weekday to its window
type Schedule map[Weekday]DaySchedule

// DefaultSchedule is used when no schedule is persisted: weekdays
// 09:00-17:00 with 60 minute slots, weekends disabled.
func DefaultSchedule() Schedule {
	s := make(Schedule, len(Weekdays))
	for _, d := range Weekdays {
		s[d] = DaySchedule{
			Enabled:      d != Saturday && d != Sunday,
			Start:        "09:00",
			End:          "17:00",
			SlotDuration: 60,
		}
	}
	return s
}

// Clone returns a copy of the schedule
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether two schedules have identical days
func (s Schedule) Equal(other Schedule) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if other[k] != v {
			return false
		}
	}
	return true
}

// PartialDay is a persisted day where any field may be absent
type PartialDay struct {
	Enabled      *bool   `json:"enabled,omitempty"`
	Start        *string `json:"start,omitempty"`
	End          *string `json:"end,omitempty"`
	SlotDuration *int    `json:"slot_duration,omitempty"`
}

// MergeSchedule applies persisted days onto base field by field. Absent or
// malformed fields fall back to base, unknown days are ignored.
func MergeSchedule(base Schedule, persisted map[Weekday]PartialDay) Schedule {
	out := base.Clone()
	for _, d := range Weekdays {
		p, ok := persisted[d]
		if !ok {
			continue
		}
		day := out[d]
		if p.Enabled != nil {
			day.Enabled = *p.Enabled
		}
		if p.Start != nil {
			if _, err := ParseClock(*p.Start); err == nil {
				day.Start = *p.Start
			}
		}
		if p.End != nil {
			if _, err := ParseClock(*p.End); err == nil {
				day.End = *p.End
			}
		}
		if p.SlotDuration != nil && IsAllowedSlotDuration(*p.SlotDuration) {
			day.SlotDuration = *p.SlotDuration
		}
		out[d] = day
	}
	return out
}

// Interval is a half-open range in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two intervals intersect
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// SlotsOn returns the slot start times for the weekday of date. A disabled
// day, or an enabled day whose start is not before its end, yields no slots.
func (s Schedule) SlotsOn(date time.Time) []string {
	day, ok := s[WeekdayOf(date.Weekday())]
	if !ok || !day.Enabled || !day.WindowValid() || day.SlotDuration <= 0 {
		return []string{}
	}
	start, _ := ParseClock(day.Start)
	end, _ := ParseClock(day.End)

	slots := make([]string, 0)
	for cursor := start; cursor+day.SlotDuration <= end; cursor += day.SlotDuration {
		slots = append(slots, MinutesToClock(cursor))
	}
	return slots
}

// BookableSlots returns the slots on date that start after now and do not
// overlap any reserved interval
func (s Schedule) BookableSlots(date, now time.Time, reserved []Interval) []string {
	day := s[WeekdayOf(date.Weekday())]
	loc := date.Location()
	y, m, dd := date.Date()

	result := make([]string, 0)
	for _, slot := range s.SlotsOn(date) {
		startMin, _ := ParseClock(slot)
		at := time.Date(y, m, dd, startMin/60, startMin%60, 0, 0, loc)
		if !at.After(now) {
			continue
		}
		current := Interval{Start: startMin, End: startMin + day.SlotDuration}
		free := true
		for _, r := range reserved {
			if Overlaps(current, r) {
				free = false
				break
			}
		}
		if free {
			result = append(result, slot)
		}
	}
	return result
}
