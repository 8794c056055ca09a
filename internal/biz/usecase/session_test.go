package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

type sessionFixture struct {
	sessions *mockSessionRepo
	accounts *mockAccountRepo
	schedule *mockAvailabilityRepo
	tokens   *tokenRecorder
	avail    *AvailabilityUsecase
	uc       *SessionUsecase
}

func newSessionFixture(user *domain.User, stored *domain.LocalSession) *sessionFixture {
	f := &sessionFixture{
		sessions: &mockSessionRepo{session: stored},
		accounts: &mockAccountRepo{user: user},
		schedule: &mockAvailabilityRepo{},
		tokens:   &tokenRecorder{},
	}
	f.avail = NewAvailabilityUsecase(f.schedule, nil, nil)
	f.uc = NewSessionUsecase(f.sessions, f.accounts, f.avail, f.tokens, domain.SessionConfig{MaxAge: 24 * time.Hour}, nil)
	return f
}

func TestSessionUsecase_HydrateWithoutSession(t *testing.T) {
	f := newSessionFixture(&domain.User{ID: "u1", Role: domain.RoleClient}, nil)

	assert.ErrorIs(t, f.uc.Hydrate(context.Background()), domain.ErrNotAuthenticated)
	assert.Nil(t, f.uc.CurrentUser())
}

func TestSessionUsecase_HydrateStaleSession(t *testing.T) {
	stored := &domain.LocalSession{
		User:      domain.User{ID: "u1", Role: domain.RoleClient},
		Token:     "tok",
		CreatedAt: time.Now().Add(-72 * time.Hour),
		UpdatedAt: time.Now().Add(-48 * time.Hour),
	}
	f := newSessionFixture(&domain.User{ID: "u1", Role: domain.RoleClient}, stored)

	assert.ErrorIs(t, f.uc.Hydrate(context.Background()), domain.ErrNotAuthenticated)
	assert.Equal(t, 1, f.sessions.cleared)
	assert.Empty(t, f.tokens.get())
}

func TestSessionUsecase_HydrateExpertLoadsSchedule(t *testing.T) {
	user := &domain.User{ID: "e1", Name: "Dr. Okafor", Role: domain.RoleExpert}
	stored := &domain.LocalSession{User: *user, Token: "tok", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f := newSessionFixture(user, stored)
	f.schedule.stored = map[domain.Weekday]domain.PartialDay{domain.Monday: {Enabled: ptr(false)}}

	require.NoError(t, f.uc.Hydrate(context.Background()))
	assert.Equal(t, "tok", f.tokens.get())
	require.NotNil(t, f.uc.CurrentUser())
	assert.Equal(t, "Dr. Okafor", f.uc.CurrentUser().Name)
	assert.True(t, f.avail.Loaded())
	assert.False(t, f.avail.Schedule()[domain.Monday].Enabled)
}

func TestSessionUsecase_HydrateRoleChange(t *testing.T) {
	// Cached as a client, the server now says expert
	stored := &domain.LocalSession{
		User:      domain.User{ID: "u1", Role: domain.RoleClient},
		Token:     "tok",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f := newSessionFixture(&domain.User{ID: "u1", Role: domain.RoleExpert}, stored)

	require.NoError(t, f.uc.Hydrate(context.Background()))
	assert.True(t, f.avail.Loaded())
	assert.Equal(t, domain.RoleExpert, f.sessions.session.User.Role)
}

func TestSessionUsecase_HydrateUnauthorized(t *testing.T) {
	stored := &domain.LocalSession{
		User:      domain.User{ID: "u1", Role: domain.RoleClient},
		Token:     "revoked",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f := newSessionFixture(nil, stored)
	f.accounts.meErr = &domain.APIError{Op: "me", StatusCode: 401, Message: "token expired"}

	assert.ErrorIs(t, f.uc.Hydrate(context.Background()), domain.ErrNotAuthenticated)
	assert.Nil(t, f.sessions.session)
	assert.Empty(t, f.tokens.get())
}

func TestSessionUsecase_LoginLogout(t *testing.T) {
	f := newSessionFixture(&domain.User{ID: "e1", Role: domain.RoleExpert}, nil)
	ctx := context.Background()

	assert.True(t, domain.IsValidation(func() error { _, err := f.uc.Login(ctx, ""); return err }()))

	user, err := f.uc.Login(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "e1", user.ID)
	assert.Equal(t, "fresh", f.sessions.session.Token)
	assert.True(t, f.avail.Loaded())

	f.uc.SetAvatarURL("https://cdn.example.com/a.png")
	assert.Equal(t, "https://cdn.example.com/a.png", f.uc.CurrentUser().AvatarURL)

	require.NoError(t, f.uc.Logout(ctx))
	assert.Nil(t, f.uc.CurrentUser())
	assert.Nil(t, f.sessions.session)
	assert.Empty(t, f.tokens.get())
	assert.False(t, f.avail.Loaded())
}
