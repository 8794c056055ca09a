package repo

import (
	"context"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// ConsultationRepo is the consultation repository interface
// Backed by the collaborating API, the core keeps no durable copy
type ConsultationRepo interface {
	// List gets all consultations visible to the current user
	List(ctx context.Context) ([]domain.Consultation, error)

	// UpdateStatus asks the API to move a consultation to status
	UpdateStatus(ctx context.Context, id string, status domain.ConsultationStatus) error
}
