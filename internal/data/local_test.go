package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalStore_Session(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Unix(time.Now().Unix(), 0)
	session := &domain.LocalSession{
		User:      domain.User{ID: "e1", Name: "Dr. Okafor", Email: "okafor@agrolink.test", Role: domain.RoleExpert},
		Token:     "tok",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Save(ctx, session))
	session.Token = "rotated"
	require.NoError(t, s.Save(ctx, session))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "rotated", got.Token)
	assert.Equal(t, domain.RoleExpert, got.User.Role)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestLocalStore_Drafts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "c1", "half written"))
	text, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "half written", text)

	require.NoError(t, s.Put(ctx, "c1", ""))
	text, err = s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestLocalStore_ClearRemovesEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &domain.LocalSession{User: domain.User{ID: "u1", Role: domain.RoleClient}, Token: "t"}))
	require.NoError(t, s.Put(ctx, "c1", "draft"))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	text, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, text)
}
