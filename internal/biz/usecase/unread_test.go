package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadUsecase_TotalIsNotDerived(t *testing.T) {
	// The total may count conversations missing from the breakdown
	r := &mockUnreadRepo{total: 9, by: map[string]int{"c1": 2, "c2": 3}}
	uc := NewUnreadUsecase(r, nil)

	require.NoError(t, uc.Refresh(context.Background()))
	snap := uc.Snapshot()
	assert.Equal(t, 9, snap.TotalUnread)
	assert.Equal(t, 2, snap.For("c1"))
	assert.Equal(t, 0, snap.For("unknown"))
	assert.False(t, uc.FetchedAt().IsZero())
}

func TestUnreadUsecase_PartialFailureKeepsSnapshot(t *testing.T) {
	r := &mockUnreadRepo{total: 4, by: map[string]int{"c1": 4}}
	uc := NewUnreadUsecase(r, nil)
	ctx := context.Background()
	require.NoError(t, uc.Refresh(ctx))

	r.mu.Lock()
	r.total = 10
	r.byErr = errors.New("bad gateway")
	r.mu.Unlock()

	assert.Error(t, uc.Refresh(ctx))
	snap := uc.Snapshot()
	assert.Equal(t, 4, snap.TotalUnread)
	assert.Equal(t, 4, snap.For("c1"))
}

func TestUnreadUsecase_MarkSeenLocally(t *testing.T) {
	r := &mockUnreadRepo{total: 5, by: map[string]int{"c1": 3, "c2": 2}}
	uc := NewUnreadUsecase(r, nil)
	ctx := context.Background()
	require.NoError(t, uc.Refresh(ctx))

	uc.MarkSeenLocally("c1")
	snap := uc.Snapshot()
	assert.Equal(t, 0, snap.For("c1"))
	assert.Equal(t, 2, snap.TotalUnread)

	// The next refresh is authoritative
	require.NoError(t, uc.Refresh(ctx))
	assert.Equal(t, 3, uc.Snapshot().For("c1"))
}

func TestUnreadUsecase_SnapshotIsCopy(t *testing.T) {
	r := &mockUnreadRepo{total: 1, by: map[string]int{"c1": 1}}
	uc := NewUnreadUsecase(r, nil)
	require.NoError(t, uc.Refresh(context.Background()))

	snap := uc.Snapshot()
	snap.ByConsultation["c1"] = 99
	assert.Equal(t, 1, uc.Snapshot().For("c1"))
}

func TestUnreadUsecase_Reset(t *testing.T) {
	r := &mockUnreadRepo{total: 5, by: map[string]int{"c1": 5}}
	uc := NewUnreadUsecase(r, nil)
	require.NoError(t, uc.Refresh(context.Background()))

	uc.Reset()
	snap := uc.Snapshot()
	assert.Equal(t, 0, snap.TotalUnread)
	assert.Equal(t, 0, snap.For("c1"))
	assert.True(t, uc.FetchedAt().IsZero())
}
