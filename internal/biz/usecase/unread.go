package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// UnreadUsecase caches the global unread snapshot, independent of which chat
// is open
type UnreadUsecase struct {
	unreadRepo repo.UnreadRepo
	logger     *slog.Logger

	mu        sync.RWMutex
	snapshot  domain.UnreadCounts
	fetchedAt time.Time

	fetch singleflight.Group
}

// NewUnreadUsecase creates a new unread usecase
func NewUnreadUsecase(unreadRepo repo.UnreadRepo, logger *slog.Logger) *UnreadUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnreadUsecase{
		unreadRepo: unreadRepo,
		logger:     logger.With("component", "unread"),
		snapshot:   domain.UnreadCounts{ByConsultation: map[string]int{}},
	}
}

// Refresh fetches the total and the per-consultation counts and replaces the
// whole snapshot. Nothing is replaced unless both fetches succeed.
func (uc *UnreadUsecase) Refresh(ctx context.Context) error {
	_, err, _ := uc.fetch.Do("unread", func() (interface{}, error) {
		var (
			total int
			by    map[string]int
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			n, err := uc.unreadRepo.Total(gctx)
			if err != nil {
				return fmt.Errorf("fetch unread total: %w", err)
			}
			total = n
			return nil
		})
		g.Go(func() error {
			m, err := uc.unreadRepo.ByConsultation(gctx)
			if err != nil {
				return fmt.Errorf("fetch unread by consultation: %w", err)
			}
			by = m
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if by == nil {
			by = map[string]int{}
		}
		if total < 0 {
			total = 0
		}

		uc.mu.Lock()
		uc.snapshot = domain.UnreadCounts{TotalUnread: total, ByConsultation: by}
		uc.fetchedAt = time.Now()
		uc.mu.Unlock()
		return nil, nil
	})
	return err
}

// Snapshot returns a copy of the latest counts
func (uc *UnreadUsecase) Snapshot() domain.UnreadCounts {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.snapshot.Clone()
}

// FetchedAt returns when the snapshot was last replaced
func (uc *UnreadUsecase) FetchedAt() time.Time {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.fetchedAt
}

// Reset drops the snapshot (logout)
func (uc *UnreadUsecase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.snapshot = domain.UnreadCounts{ByConsultation: map[string]int{}}
	uc.fetchedAt = time.Time{}
}

// MarkSeenLocally zeroes one consultation's count until the next refresh
func (uc *UnreadUsecase) MarkSeenLocally(consultationID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	n := uc.snapshot.ByConsultation[consultationID]
	if n == 0 {
		return
	}
	by := make(map[string]int, len(uc.snapshot.ByConsultation))
	for k, v := range uc.snapshot.ByConsultation {
		by[k] = v
	}
	by[consultationID] = 0

	total := uc.snapshot.TotalUnread - n
	if total < 0 {
		total = 0
	}
	uc.snapshot = domain.UnreadCounts{TotalUnread: total, ByConsultation: by}
}
