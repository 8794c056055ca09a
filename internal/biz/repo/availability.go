package repo

import (
	"context"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// AvailabilityRepo persists an expert's weekly schedule
type AvailabilityRepo interface {
	// Get returns the persisted days, or domain.ErrNotFound if none
	Get(ctx context.Context, expertID string) (map[domain.Weekday]domain.PartialDay, error)

	// Save replaces the whole 7-day mapping in one call
	Save(ctx context.Context, expertID string, schedule domain.Schedule) error
}
