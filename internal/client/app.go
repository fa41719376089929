package client

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mlevkov/lockstep/internal/adapter"
	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
	"github.com/mlevkov/lockstep/internal/workers"
	"github.com/mlevkov/lockstep/models"
)

// App is the headless client application. It logs in with the configured
// credentials, feeds the issued token to the transport, and keeps the sync
// engine running in the background until the process is signalled to stop.
type App struct {
	engine service.SyncEngine
	auth   adapter.AuthClient
	tokens *adapter.StaticTokenProvider
	worker *workers.SyncWorker

	credentials models.Credentials
	logger      *logger.Logger
}

// NewApp assembles the client runtime from its already-wired parts.
func NewApp(engine service.SyncEngine, auth adapter.AuthClient, tokens *adapter.StaticTokenProvider, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	if engine == nil || auth == nil || tokens == nil || cfg == nil {
		return nil, ErrNoAppDependencies
	}

	return &App{
		engine: engine,
		auth:   auth,
		tokens: tokens,
		worker: workers.NewSyncWorker(engine, cfg.Workers, logger),
		credentials: models.Credentials{
			Login:    cfg.Auth.Login,
			Password: cfg.Auth.Password,
		},
		logger: logger,
	}, nil
}

// Run implements [Client]. It blocks until the process receives SIGINT,
// SIGTERM or SIGQUIT.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := a.login(ctx); err != nil {
		return err
	}

	// An expired or revoked token surfaces as an auth error mid-run; the
	// stored credentials allow a transparent re-login.
	unsubscribeAuth := a.engine.OnAuthError(func(err error) {
		a.logger.Warn().Err(err).Msg("credential rejected, logging in again")
		go a.relogin()
	})
	defer unsubscribeAuth()

	unsubscribeStatus := a.engine.OnStatusChange(func(status models.EngineStatus) {
		a.logger.Info().Str("status", string(status)).Msg("sync status changed")
	})
	defer unsubscribeStatus()

	unsubscribeComplete := a.engine.OnSyncComplete(func(result models.SyncResult) {
		a.logger.Info().
			Int("pushed", result.Pushed).
			Int("pulled", result.Pulled).
			Int("conflicts", result.Conflicts).
			Msg("sync cycle completed")
	})
	defer unsubscribeComplete()

	a.worker.Run()
	defer a.engine.Close()

	<-ctx.Done()
	a.logger.Info().Msg("shutting down client")

	return nil
}

func (a *App) login(ctx context.Context) error {
	resp, err := a.auth.Login(ctx, a.credentials)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	a.tokens.SetToken(resp.Token)
	a.logger.Info().Str("login", a.credentials.Login).Msg("logged in")

	return nil
}

// relogin refreshes the token and kicks off a sync cycle, since auth
// failures never arm the generic retry backoff.
func (a *App) relogin() {
	ctx := context.Background()

	if err := a.login(ctx); err != nil {
		a.logger.Error().Err(err).Msg("re-login failed")
		return
	}

	if _, err := a.engine.SyncNow(ctx); err != nil {
		a.logger.Error().Err(err).Msg("sync after re-login failed")
	}
}
