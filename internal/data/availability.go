package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// availabilityRepo implements the Availability repository over the API
type availabilityRepo struct {
	client *Client
}

// NewAvailabilityRepo creates a new Availability repository
func NewAvailabilityRepo(client *Client) repo.AvailabilityRepo {
	return &availabilityRepo{client: client}
}

// Get returns the persisted days. A 404 or an empty mapping means nothing
// has been saved yet.
func (r *availabilityRepo) Get(ctx context.Context, expertID string) (map[domain.Weekday]domain.PartialDay, error) {
	var resp struct {
		Availability map[domain.Weekday]domain.PartialDay `json:"availability"`
	}
	err := r.client.doJSON(ctx, http.MethodGet, availabilityPath(expertID), nil, &resp)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("availability of %s: %w", expertID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Availability) == 0 {
		return nil, fmt.Errorf("availability of %s: %w", expertID, domain.ErrNotFound)
	}
	return resp.Availability, nil
}

// Save replaces the whole 7-day mapping
func (r *availabilityRepo) Save(ctx context.Context, expertID string, schedule domain.Schedule) error {
	body := struct {
		Availability domain.Schedule `json:"availability"`
	}{Availability: schedule}
	return r.client.doJSON(ctx, http.MethodPut, availabilityPath(expertID), body, nil)
}

func availabilityPath(expertID string) string {
	return "/experts/" + url.PathEscape(expertID) + "/availability"
}
