package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
	"github.com/agrolink/consult-sync/internal/validation"
)

// AvailabilityUsecase holds and validates an expert's weekly schedule
type AvailabilityUsecase struct {
	availabilityRepo repo.AvailabilityRepo
	validator        *validation.Validator
	logger           *slog.Logger

	mu       sync.RWMutex
	expertID string
	schedule domain.Schedule
	saved    domain.Schedule
	loaded   bool

	saveMu sync.Mutex
}

// NewAvailabilityUsecase creates a new availability usecase, starting from
// the default schedule
func NewAvailabilityUsecase(availabilityRepo repo.AvailabilityRepo, v *validation.Validator, logger *slog.Logger) *AvailabilityUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validation.New()
	}
	return &AvailabilityUsecase{
		availabilityRepo: availabilityRepo,
		validator:        v,
		logger:           logger.With("component", "availability"),
		schedule:         domain.DefaultSchedule(),
		saved:            domain.DefaultSchedule(),
	}
}

// Load fetches the persisted schedule of expertID and merges it onto the
// default field by field. With nothing persisted the default is used.
// On error the current schedule is left untouched.
func (uc *AvailabilityUsecase) Load(ctx context.Context, expertID string) error {
	persisted, err := uc.availabilityRepo.Get(ctx, expertID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load availability: %w", err)
	}

	merged := domain.DefaultSchedule()
	if err == nil {
		merged = domain.MergeSchedule(merged, persisted)
	} else {
		uc.logger.Info("no persisted schedule, using default", "expert_id", expertID)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.expertID = expertID
	uc.schedule = merged
	uc.saved = merged.Clone()
	uc.loaded = true
	return nil
}

// Reset forgets the loaded schedule (logout)
func (uc *AvailabilityUsecase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.expertID = ""
	uc.schedule = domain.DefaultSchedule()
	uc.saved = domain.DefaultSchedule()
	uc.loaded = false
}

// Loaded reports whether a schedule has been loaded
func (uc *AvailabilityUsecase) Loaded() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loaded
}

// Schedule returns a copy of the working schedule
func (uc *AvailabilityUsecase) Schedule() domain.Schedule {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.schedule.Clone()
}

// Dirty reports whether there are unsaved edits
func (uc *AvailabilityUsecase) Dirty() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return !uc.schedule.Equal(uc.saved)
}

// ToggleDay flips enabled and leaves the hours untouched, so re-enabling
// restores the last used window
func (uc *AvailabilityUsecase) ToggleDay(day domain.Weekday) error {
	if _, err := domain.ParseWeekday(string(day)); err != nil {
		return err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	d := uc.schedule[day]
	d.Enabled = !d.Enabled
	uc.schedule[day] = d
	return nil
}

// SetWindow sets start and end. Only the format is checked here; start < end
// is enforced by Save.
func (uc *AvailabilityUsecase) SetWindow(day domain.Weekday, start, end string) error {
	if _, err := domain.ParseWeekday(string(day)); err != nil {
		return err
	}
	if _, err := domain.ParseClock(start); err != nil {
		return &domain.ValidationError{Field: "start", Reason: err.(*domain.ValidationError).Reason}
	}
	if _, err := domain.ParseClock(end); err != nil {
		return &domain.ValidationError{Field: "end", Reason: err.(*domain.ValidationError).Reason}
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	d := uc.schedule[day]
	d.Start = start
	d.End = end
	uc.schedule[day] = d
	return nil
}

// SetSlotDuration sets the slot length of one day
func (uc *AvailabilityUsecase) SetSlotDuration(day domain.Weekday, minutes int) error {
	if _, err := domain.ParseWeekday(string(day)); err != nil {
		return err
	}
	if !domain.IsAllowedSlotDuration(minutes) {
		return &domain.ValidationError{
			Field:  "slot_duration",
			Reason: fmt.Sprintf("must be one of %v minutes", domain.AllowedSlotDurations),
		}
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	d := uc.schedule[day]
	d.SlotDuration = minutes
	uc.schedule[day] = d
	return nil
}

// Validate checks every day. An enabled day must have start before end;
// disabled days only need well-formed fields.
func (uc *AvailabilityUsecase) Validate(schedule domain.Schedule) error {
	for _, day := range domain.Weekdays {
		d, ok := schedule[day]
		if !ok {
			return &domain.ValidationError{Field: string(day), Reason: "missing"}
		}
		if err := uc.validator.Struct(d); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return &domain.ValidationError{Field: string(day) + "." + ve.Field, Reason: ve.Reason}
			}
			return err
		}
		if d.Enabled && !d.WindowValid() {
			return &domain.ValidationError{Field: string(day), Reason: "start time must be before end time"}
		}
	}
	return nil
}

// Save persists the whole 7-day mapping in one call. Either the API accepts
// it all and it becomes the saved state, or a single error is returned and
// nothing is marked saved.
func (uc *AvailabilityUsecase) Save(ctx context.Context) error {
	uc.saveMu.Lock()
	defer uc.saveMu.Unlock()

	uc.mu.RLock()
	expertID := uc.expertID
	snapshot := uc.schedule.Clone()
	uc.mu.RUnlock()

	if expertID == "" {
		return domain.ErrNotAuthenticated
	}
	if err := uc.Validate(snapshot); err != nil {
		return err
	}

	if err := uc.availabilityRepo.Save(ctx, expertID, snapshot); err != nil {
		return fmt.Errorf("save availability: %w", err)
	}

	uc.mu.Lock()
	uc.saved = snapshot
	uc.mu.Unlock()
	uc.logger.Info("availability saved", "expert_id", expertID)
	return nil
}

// Slots returns the slot start times of the working schedule on date
func (uc *AvailabilityUsecase) Slots(date time.Time) []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.schedule.SlotsOn(date)
}

// BookableSlots returns the slots on date still open for booking
func (uc *AvailabilityUsecase) BookableSlots(date, now time.Time, reserved []domain.Interval) []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.schedule.BookableSlots(date, now, reserved)
}
