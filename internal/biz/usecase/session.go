package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
)

// TokenSetter receives the bearer token used for API calls
type TokenSetter interface {
	SetToken(token string)
}

// SessionUsecase is the process-scoped holder of the signed-in user and
// their schedule. It is hydrated at startup and invalidated at logout.
type SessionUsecase struct {
	sessionRepo  repo.SessionRepo
	accountRepo  repo.AccountRepo
	availability *AvailabilityUsecase
	tokens       TokenSetter
	config       domain.SessionConfig
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.RWMutex
	current *domain.LocalSession
}

// NewSessionUsecase creates a new session usecase
func NewSessionUsecase(
	sessionRepo repo.SessionRepo,
	accountRepo repo.AccountRepo,
	availability *AvailabilityUsecase,
	tokens TokenSetter,
	config domain.SessionConfig,
	logger *slog.Logger,
) *SessionUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionUsecase{
		sessionRepo:  sessionRepo,
		accountRepo:  accountRepo,
		availability: availability,
		tokens:       tokens,
		config:       config,
		logger:       logger.With("component", "session"),
		now:          time.Now,
	}
}

// Hydrate restores the stored session, refreshes the user from the API and,
// for experts, loads the schedule. Returns domain.ErrNotAuthenticated when
// there is no usable stored session.
func (uc *SessionUsecase) Hydrate(ctx context.Context) error {
	stored, err := uc.sessionRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if stored == nil || !stored.IsFresh(uc.config, uc.now()) {
		if stored != nil {
			_ = uc.sessionRepo.Clear(ctx)
		}
		return domain.ErrNotAuthenticated
	}
	uc.tokens.SetToken(stored.Token)

	// The cached user tells us whether a schedule is needed, so both
	// requests can go out together
	var user *domain.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := uc.accountRepo.Me(gctx)
		if err != nil {
			return fmt.Errorf("fetch current user: %w", err)
		}
		user = u
		return nil
	})
	if stored.User.IsExpert() && uc.availability != nil {
		g.Go(func() error {
			return uc.availability.Load(gctx, stored.User.ID)
		})
	}
	if err := g.Wait(); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			_ = uc.sessionRepo.Clear(ctx)
			uc.invalidate()
			return domain.ErrNotAuthenticated
		}
		return err
	}

	scheduleLoaded := stored.User.IsExpert() && user.ID == stored.User.ID
	if user.IsExpert() && uc.availability != nil && !scheduleLoaded {
		if err := uc.availability.Load(ctx, user.ID); err != nil {
			return err
		}
	}

	return uc.store(ctx, stored.Token, *user, stored.CreatedAt)
}

// Login stores a token obtained by the authentication layer
func (uc *SessionUsecase) Login(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, &domain.ValidationError{Field: "token", Reason: "is required"}
	}
	uc.tokens.SetToken(token)

	user, err := uc.accountRepo.Me(ctx)
	if err != nil {
		uc.tokens.SetToken("")
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	if user.IsExpert() && uc.availability != nil {
		if err := uc.availability.Load(ctx, user.ID); err != nil {
			uc.logger.Warn("load schedule failed", "error", err)
		}
	}
	if err := uc.store(ctx, token, *user, time.Time{}); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the local session, the token and the cached schedule
func (uc *SessionUsecase) Logout(ctx context.Context) error {
	if err := uc.sessionRepo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	uc.invalidate()
	return nil
}

// CurrentUser returns a copy of the signed-in user, nil when signed out
func (uc *SessionUsecase) CurrentUser() *domain.User {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.current == nil {
		return nil
	}
	u := uc.current.User
	return &u
}

// SetAvatarURL updates the cached user after an avatar upload
func (uc *SessionUsecase) SetAvatarURL(url string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.current != nil {
		uc.current.User.AvatarURL = url
	}
}

func (uc *SessionUsecase) store(ctx context.Context, token string, user domain.User, createdAt time.Time) error {
	now := uc.now()
	if createdAt.IsZero() {
		createdAt = now
	}
	session := &domain.LocalSession{
		User:      user,
		Token:     token,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	uc.mu.Lock()
	uc.current = session
	uc.mu.Unlock()
	uc.logger.Info("session ready", "user_id", user.ID, "role", user.Role)
	return nil
}

func (uc *SessionUsecase) invalidate() {
	uc.tokens.SetToken("")
	if uc.availability != nil {
		uc.availability.Reset()
	}
	uc.mu.Lock()
	uc.current = nil
	uc.mu.Unlock()
}
