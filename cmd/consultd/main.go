package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrolink/consult-sync/internal/api"
	"github.com/agrolink/consult-sync/internal/biz"
	"github.com/agrolink/consult-sync/internal/biz/domain"
	"github.com/agrolink/consult-sync/internal/biz/repo"
	"github.com/agrolink/consult-sync/internal/biz/usecase"
	"github.com/agrolink/consult-sync/internal/conf"
	"github.com/agrolink/consult-sync/internal/data"
	"github.com/agrolink/consult-sync/internal/infra/feishu"
	"github.com/agrolink/consult-sync/internal/service"
	"github.com/agrolink/consult-sync/internal/validation"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg := conf.LoadFromEnv()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	client := data.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)

	// Optional Feishu counterpart notifications
	var extra []repo.Notifier
	if cfg.Feishu.Enabled() {
		fs := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		extra = append(extra, feishu.NewNotifier(fs, cfg.Feishu.NotifyChatID, logger))
		logger.Info("feishu notifications enabled", "chat_id", cfg.Feishu.NotifyChatID)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(client, cfg.Session.DBPath, extra...)
	if err != nil {
		logger.Error("failed to create repositories", "error", err)
		os.Exit(1)
	}
	defer repos.Close()
	logger.Info("session store ready", "path", cfg.Session.DBPath)

	// Initialize usecase layer
	v := validation.New()
	availabilityUC := usecase.NewAvailabilityUsecase(repos.Availability, v, logger)
	sessionUC := usecase.NewSessionUsecase(repos.Session, repos.Account, availabilityUC, client, cfg.Session.ToSessionConfig(), logger)
	usecases := &biz.Usecases{
		Session:       sessionUC,
		Consultations: usecase.NewConsultationUsecase(repos.Consultation, repos.Notifier, sessionUC, logger),
		Conversations: usecase.NewConversationUsecase(repos.Message, repos.Draft, logger),
		Unread:        usecase.NewUnreadUsecase(repos.Unread, logger),
		Availability:  availabilityUC,
		Notifications: usecase.NewNotificationUsecase(repos.Notification, cfg.Polling.Notifications.PageSize, logger),
		Profile:       usecase.NewProfileUsecase(repos.Account, sessionUC, v),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := signIn(ctx, sessionUC, cfg.API.Token, logger); err != nil {
		logger.Error("sign in failed", "error", err)
		os.Exit(1)
	}

	// Initialize service layer
	runtime := service.NewRuntime(usecases, service.RuntimeConfig{
		Consultations: cfg.Polling.Consultations.Interval,
		Messages:      cfg.Polling.Messages.Interval,
		Unread:        cfg.Polling.UnreadInterval(),
		Notifications: cfg.Polling.Notifications.Interval,
	}, service.RealClock(), logger)
	runtime.Start(ctx)

	apiServer := api.NewServer(usecases, runtime, cfg.Location, cfg.DebugAPI.Port, logger)
	if err := apiServer.Start(); err != nil {
		logger.Error("failed to start api server", "error", err)
		os.Exit(1)
	}

	logger.Info("consult-sync started", "unread_mode", cfg.Polling.Unread.Mode)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("api server shutdown", "error", err)
	}
	runtime.Stop()
}

// signIn restores the stored session, falling back to API_TOKEN
func signIn(ctx context.Context, session *usecase.SessionUsecase, token string, logger *slog.Logger) error {
	err := session.Hydrate(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		return err
	}
	if token == "" {
		return errors.New("no stored session and API_TOKEN is not set")
	}
	user, err := session.Login(ctx, token)
	if err != nil {
		return err
	}
	logger.Info("signed in", "user_id", user.ID, "role", user.Role)
	return nil
}
