// Package server wires the auth server together: storage, migrations, the
// auth service, the HTTP and gRPC transports and the reset token janitor.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

// janitorInterval is how often expired reset handshakes are purged.
const janitorInterval = 5 * time.Minute

// pingBackoff bounds how long startup waits for the database.
var pingBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	resets      *services.ResetBroker
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := pingWithRetry(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	notifier, err := newNotifier(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	resets := services.NewResetBroker(db, m, notifier, c, logger.With("module", "reset_broker"))
	hasher := auth.NewBcryptHasher(c.BcryptCost)
	issuer := auth.NewTokenIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	as := services.NewAuthService(db, m, hasher, issuer, resets, c, logger.With("module", "auth_service"))

	return &App{config: c, logger: logger, db: db, authService: as, resets: resets}, nil
}

// pingWithRetry waits for the database with a bounded exponential backoff.
func pingWithRetry(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	return retry.Do(ctx, pingBackoff(), func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// newNotifier picks the S3 outbox when a bucket is configured and falls back
// to logging the reset link otherwise.
func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.ResetNotifier, error) {
	if !c.S3Enabled() {
		logger.Warn(ctx, "no S3 bucket configured, reset links are only logged")
		return notify.NewLogNotifier(logger.With("module", "notifier")), nil
	}

	outbox, err := notify.NewS3Outbox(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("s3 outbox init error: %w", err)
	}
	return outbox, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := rest.NewRouter(app.authService, app.config, app.logger)
	s := rest.NewHTTPServer(app.config.HTTPAddr, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.authService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// waits for every component to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.resets.RunJanitor(ctx, janitorInterval)
	}()

	wg.Wait()
	app.resets.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
