package data

import (
	"context"
	"net/http"
	"net/url"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// consultationRepo implements the Consultation repository over the API
type consultationRepo struct {
	client *Client
}

// NewConsultationRepo creates a new Consultation repository
func NewConsultationRepo(client *Client) repo.ConsultationRepo {
	return &consultationRepo{client: client}
}

type consultationList struct {
	Consultations []domain.Consultation `json:"consultations"`
}

type statusUpdate struct {
	Status domain.ConsultationStatus `json:"status"`
}

// List gets all consultations visible to the current user
func (r *consultationRepo) List(ctx context.Context) ([]domain.Consultation, error) {
	var resp consultationList
	if err := r.client.doJSON(ctx, http.MethodGet, "/consultations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Consultations, nil
}

// UpdateStatus asks the API to move a consultation to status
func (r *consultationRepo) UpdateStatus(ctx context.Context, id string, status domain.ConsultationStatus) error {
	path := "/consultations/" + url.PathEscape(id) + "/status"
	return r.client.doJSON(ctx, http.MethodPut, path, statusUpdate{Status: status}, nil)
}
