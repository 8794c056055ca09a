package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

func ptr[T any](v T) *T { return &v }

func TestAvailabilityUsecase_LoadMergesOntoDefault(t *testing.T) {
	r := &mockAvailabilityRepo{stored: map[domain.Weekday]domain.PartialDay{
		domain.Monday:   {Enabled: ptr(false)},
		domain.Saturday: {Enabled: ptr(true), Start: ptr("08:00"), End: ptr("12:00"), SlotDuration: ptr(30)},
		domain.Tuesday:  {Start: ptr("9am")},
	}}
	uc := NewAvailabilityUsecase(r, nil, nil)

	require.NoError(t, uc.Load(context.Background(), "expert-1"))
	s := uc.Schedule()
	assert.Equal(t, domain.DaySchedule{Enabled: false, Start: "09:00", End: "17:00", SlotDuration: 60}, s[domain.Monday])
	assert.Equal(t, domain.DaySchedule{Enabled: true, Start: "08:00", End: "12:00", SlotDuration: 30}, s[domain.Saturday])
	assert.Equal(t, "09:00", s[domain.Tuesday].Start, "malformed field falls back to default")
	assert.True(t, uc.Loaded())
	assert.False(t, uc.Dirty())
}

func TestAvailabilityUsecase_NotFoundUsesDefault(t *testing.T) {
	uc := NewAvailabilityUsecase(&mockAvailabilityRepo{}, nil, nil)

	require.NoError(t, uc.Load(context.Background(), "expert-1"))
	assert.True(t, uc.Schedule().Equal(domain.DefaultSchedule()))
}

func TestAvailabilityUsecase_LoadFailureKeepsSchedule(t *testing.T) {
	r := &mockAvailabilityRepo{getErr: errors.New("unreachable")}
	uc := NewAvailabilityUsecase(r, nil, nil)

	assert.Error(t, uc.Load(context.Background(), "expert-1"))
	assert.False(t, uc.Loaded())
}

func TestAvailabilityUsecase_ToggleRestoresHours(t *testing.T) {
	uc := NewAvailabilityUsecase(&mockAvailabilityRepo{}, nil, nil)
	require.NoError(t, uc.Load(context.Background(), "expert-1"))
	require.NoError(t, uc.SetWindow(domain.Wednesday, "07:30", "11:00"))

	require.NoError(t, uc.ToggleDay(domain.Wednesday))
	assert.False(t, uc.Schedule()[domain.Wednesday].Enabled)
	require.NoError(t, uc.ToggleDay(domain.Wednesday))

	d := uc.Schedule()[domain.Wednesday]
	assert.True(t, d.Enabled)
	assert.Equal(t, "07:30", d.Start)
	assert.Equal(t, "11:00", d.End)
	assert.True(t, uc.Dirty())
}

func TestAvailabilityUsecase_EditValidation(t *testing.T) {
	uc := NewAvailabilityUsecase(&mockAvailabilityRepo{}, nil, nil)

	assert.True(t, domain.IsValidation(uc.ToggleDay("funday")))
	assert.True(t, domain.IsValidation(uc.SetWindow(domain.Monday, "25:00", "17:00")))
	assert.True(t, domain.IsValidation(uc.SetSlotDuration(domain.Monday, 50)))
	require.NoError(t, uc.SetSlotDuration(domain.Monday, 45))
	assert.Equal(t, 45, uc.Schedule()[domain.Monday].SlotDuration)
}

func TestAvailabilityUsecase_SaveRejectsInvertedWindow(t *testing.T) {
	r := &mockAvailabilityRepo{}
	uc := NewAvailabilityUsecase(r, nil, nil)
	require.NoError(t, uc.Load(context.Background(), "expert-1"))
	require.NoError(t, uc.SetWindow(domain.Friday, "17:00", "09:00"))

	err := uc.Save(context.Background())
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "friday", ve.Field)
	assert.Equal(t, 0, r.saveCount())

	// A disabled day may keep an inverted window
	require.NoError(t, uc.ToggleDay(domain.Friday))
	require.NoError(t, uc.Save(context.Background()))
	assert.Equal(t, 1, r.saveCount())
}

func TestAvailabilityUsecase_SaveFailureStaysDirty(t *testing.T) {
	r := &mockAvailabilityRepo{saveErr: &domain.APIError{StatusCode: 500, Message: "could not save"}}
	uc := NewAvailabilityUsecase(r, nil, nil)
	require.NoError(t, uc.Load(context.Background(), "expert-1"))
	require.NoError(t, uc.ToggleDay(domain.Sunday))

	assert.Error(t, uc.Save(context.Background()))
	assert.True(t, uc.Dirty())

	r.mu.Lock()
	r.saveErr = nil
	r.mu.Unlock()
	require.NoError(t, uc.Save(context.Background()))
	assert.False(t, uc.Dirty())
	require.Len(t, r.saved, 2)
	assert.Len(t, r.saved[1], 7)
}

func TestAvailabilityUsecase_SaveNeedsExpert(t *testing.T) {
	uc := NewAvailabilityUsecase(&mockAvailabilityRepo{}, nil, nil)
	assert.ErrorIs(t, uc.Save(context.Background()), domain.ErrNotAuthenticated)
}

func TestAvailabilityUsecase_Reset(t *testing.T) {
	uc := NewAvailabilityUsecase(&mockAvailabilityRepo{}, nil, nil)
	require.NoError(t, uc.Load(context.Background(), "expert-1"))
	require.NoError(t, uc.ToggleDay(domain.Monday))

	uc.Reset()
	assert.False(t, uc.Loaded())
	assert.False(t, uc.Dirty())
	assert.ErrorIs(t, uc.Save(context.Background()), domain.ErrNotAuthenticated)
}
