package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// UserProvider exposes the signed-in user
type UserProvider interface {
	CurrentUser() *domain.User
}

// ConsultationUsecase is the single source of truth for the current user's
// consultations and the state machine over them
type ConsultationUsecase struct {
	consultationRepo repo.ConsultationRepo
	notifier         repo.Notifier
	users            UserProvider
	logger           *slog.Logger

	mu       sync.RWMutex
	items    map[string]*domain.Consultation
	inFlight map[string]domain.ConsultationStatus // consultation ID -> provisional target
	loaded   bool

	fetch     singleflight.Group
	mutations singleflight.Group
}

// NewConsultationUsecase creates a new consultation usecase.
// notifier may be nil.
func NewConsultationUsecase(
	consultationRepo repo.ConsultationRepo,
	notifier repo.Notifier,
	users UserProvider,
	logger *slog.Logger,
) *ConsultationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsultationUsecase{
		consultationRepo: consultationRepo,
		notifier:         notifier,
		users:            users,
		logger:           logger.With("component", "consultations"),
		items:            make(map[string]*domain.Consultation),
		inFlight:         make(map[string]domain.ConsultationStatus),
	}
}

// Refresh refetches the consultation set and replaces the local copy
func (uc *ConsultationUsecase) Refresh(ctx context.Context) error {
	_, err, _ := uc.fetch.Do("list", func() (interface{}, error) {
		list, err := uc.consultationRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list consultations: %w", err)
		}
		uc.apply(list)
		return nil, nil
	})
	return err
}

// apply replaces the set. A remote status that cannot be reached from the
// local one is a stale read and is ignored.
func (uc *ConsultationUsecase) apply(list []domain.Consultation) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next := make(map[string]*domain.Consultation, len(list))
	for i := range list {
		c := list[i]
		if !c.Status.IsValid() {
			uc.logger.Warn("skipping consultation with unknown status", "id", c.ID, "status", c.Status)
			continue
		}
		if local, ok := uc.items[c.ID]; ok && !domain.Reachable(local.Status, c.Status) {
			uc.logger.Warn("ignoring status regression",
				"id", c.ID, "local", local.Status, "remote", c.Status)
			c.Status = local.Status
		}
		c.Provisional = uc.inFlight[c.ID]
		next[c.ID] = &c
	}
	uc.items = next
	uc.loaded = true
}

// Reset forgets every consultation (logout)
func (uc *ConsultationUsecase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.items = make(map[string]*domain.Consultation)
	uc.inFlight = make(map[string]domain.ConsultationStatus)
	uc.loaded = false
}

// Loaded reports whether at least one refresh has succeeded
func (uc *ConsultationUsecase) Loaded() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loaded
}

// Get returns a copy of one consultation
func (uc *ConsultationUsecase) Get(id string) (domain.Consultation, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	c, ok := uc.items[id]
	if !ok {
		return domain.Consultation{}, false
	}
	return *c, true
}

// List returns the consultations of one tab
func (uc *ConsultationUsecase) List(tab domain.Tab) []domain.Consultation {
	return domain.Partition(uc.All(), tab)
}

// All returns a copy of every consultation
func (uc *ConsultationUsecase) All() []domain.Consultation {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	result := make([]domain.Consultation, 0, len(uc.items))
	for _, c := range uc.items {
		result = append(result, *c)
	}
	return result
}

// Accept moves a pending consultation to accepted. Accepting an already
// accepted consultation succeeds without contacting the API.
func (uc *ConsultationUsecase) Accept(ctx context.Context, id string) error {
	return uc.transition(ctx, id, domain.StatusAccepted)
}

// Reject moves a pending consultation to rejected. Rejection is irreversible,
// so the caller must pass confirmed=true after asking the user.
func (uc *ConsultationUsecase) Reject(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	return uc.transition(ctx, id, domain.StatusRejected)
}

// Complete moves an accepted consultation to completed
func (uc *ConsultationUsecase) Complete(ctx context.Context, id string) error {
	return uc.transition(ctx, id, domain.StatusCompleted)
}

func (uc *ConsultationUsecase) transition(ctx context.Context, id string, target domain.ConsultationStatus) error {
	user := uc.users.CurrentUser()
	if user == nil {
		return domain.ErrNotAuthenticated
	}

	// Duplicate requests for the same change share one API call. The shared
	// call ignores the first caller's cancellation so later callers still
	// get the outcome.
	shared := context.WithoutCancel(ctx)
	_, err, _ := uc.mutations.Do(id+":"+string(target), func() (interface{}, error) {
		return nil, uc.commit(shared, id, target, user)
	})
	return err
}

func (uc *ConsultationUsecase) commit(ctx context.Context, id string, target domain.ConsultationStatus, user *domain.User) error {
	uc.mu.Lock()
	c, ok := uc.items[id]
	if !ok {
		uc.mu.Unlock()
		return fmt.Errorf("consultation %s: %w", id, domain.ErrNotFound)
	}
	if !user.IsExpert() || c.ExpertID != user.ID {
		uc.mu.Unlock()
		return fmt.Errorf("consultation %s: %w", id, domain.ErrForbidden)
	}
	if c.Status == target {
		uc.mu.Unlock()
		return nil
	}
	if pending, busy := uc.inFlight[id]; busy && pending != target {
		uc.mu.Unlock()
		return domain.ErrMutationInFlight
	}
	if !domain.CanTransition(c.Status, target) {
		from := c.Status
		uc.mu.Unlock()
		return &domain.TransitionError{ID: id, From: from, To: target}
	}
	uc.inFlight[id] = target
	c.Provisional = target
	uc.mu.Unlock()

	err := uc.consultationRepo.UpdateStatus(ctx, id, target)

	uc.mu.Lock()
	delete(uc.inFlight, id)
	var confirmed domain.Consultation
	if c, ok := uc.items[id]; ok {
		c.Provisional = ""
		if err == nil {
			c.Status = target
		}
		confirmed = *c
	}
	uc.mu.Unlock()

	if err != nil {
		return fmt.Errorf("update consultation %s: %w", id, err)
	}

	uc.logger.Info("consultation updated", "id", id, "status", target)
	uc.notifyCounterpart(ctx, confirmed, user)
	return nil
}

// notifyCounterpart is advisory; the transition stands if it fails
func (uc *ConsultationUsecase) notifyCounterpart(ctx context.Context, c domain.Consultation, actor *domain.User) {
	if uc.notifier == nil || c.ID == "" {
		return
	}
	event := repo.CounterpartEvent{
		Consultation: c,
		ActorID:      actor.ID,
		RecipientID:  c.CounterpartOf(actor.ID),
		Status:       c.Status,
	}
	if err := uc.notifier.NotifyCounterpart(ctx, event); err != nil {
		uc.logger.Warn("notify counterpart failed", "id", c.ID, "recipient", event.RecipientID, "error", err)
	}
}
