// Package server wires configuration, storage, token handling and the HTTP
// and gRPC listeners into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/cache"
	"github.com/cuxvas/peliculas/internal/server/config"
	"github.com/cuxvas/peliculas/internal/server/httpapi"
	"github.com/cuxvas/peliculas/internal/server/repositories/repomanager"
	"github.com/cuxvas/peliculas/internal/server/repositories/users"
	"github.com/cuxvas/peliculas/internal/server/services"
	"github.com/cuxvas/peliculas/internal/server/sliding"

	gs "github.com/cuxvas/peliculas/internal/server/grpc"
)

var (
	openDB       = repomanager.OpenDB
	connectRedis = cache.Connect
	logOutput    io.Writer = os.Stdout
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	renewer     *sliding.Renewer
	users       *services.UserService
	catalog     *services.CatalogService
	posters     *services.PosterService
}

func newLogger(c *config.Config) logging.Logger {
	return logging.NewJSONLogger(logOutput, c.LogLevel)
}

// NewApp validates c and connects the application's dependencies. It fails
// before touching the network when the configuration cannot produce tokens.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(c)

	issuer, err := auth.NewIssuer(auth.Settings{
		SecretKey: c.SecretKey,
		Issuer:    c.Issuer,
		Audience:  c.Audience,
		Lifetime:  c.AccessTokenValidityDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: repomanager.NewPostgresRepositoryManager(),
		issuer:      issuer,
	}

	var finder sliding.PrincipalFinder = &storeFinder{db: db, m: app.repomanager}
	var cached *users.CachedFinder

	if c.RedisAddr != "" {
		client, err := connectRedis(ctx, c.RedisAddr, c.RedisPassword)
		if err != nil {
			logger.Warn(ctx, "principal cache disabled", "error", err)
		} else {
			app.redis = client
			cached = users.NewCachedFinder(finder, cache.NewRedisCache(client), c.PrincipalCacheTTL, logger.With("module", "principal_cache"))
			finder = cached
		}
	}

	app.renewer, err = sliding.NewRenewer(issuer, c.RefreshThreshold,
		sliding.WithPrincipalFinder(finder),
		sliding.WithLogger(logger.With("module", "sliding")),
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("sliding renewer: %w", err)
	}

	app.users = services.NewUserService(db, app.repomanager, issuer, auth.SystemClock{}, c.SeedPassword, logger.With("module", "users"))
	if cached != nil {
		app.users.WithInvalidator(cached)
	}
	app.catalog = services.NewCatalogService(db, app.repomanager, auth.SystemClock{})
	app.posters = services.NewPosterService(db, app.repomanager, c, logger.With("module", "posters"))

	return app, nil
}

// storeFinder reads principals straight from PostgreSQL.
type storeFinder struct {
	db *sql.DB
	m  repomanager.RepositoryManager
}

func (f *storeFinder) FindPrincipal(ctx context.Context, id string) (*auth.Principal, error) {
	return f.m.Users(f.db).FindPrincipal(ctx, id)
}

// Close releases the database and cache connections.
func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

// Migrate applies the schema and catalog migrations, then seeds the
// identity accounts.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := app.users.SeedIdentity(ctx); err != nil {
		return fmt.Errorf("identity seed: %w", err)
	}
	app.logger.Info(ctx, "database is up to date")
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

func (app *App) servers() map[string]runner {
	return map[string]runner{
		"http": httpapi.NewServer(httpapi.Options{
			Address:        app.config.EndpointAddrHTTP,
			AllowedOrigins: app.config.AllowedOrigins,
			RenewedHeader:  app.config.RenewedTokenHeader,
		}, app.logger, app.issuer, app.renewer, app.users, app.catalog, app.posters),
		"grpc": gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.issuer, app.renewer, app.config.RenewedTokenHeader),
	}
}

// Run migrates the database and serves HTTP and gRPC until a signal
// arrives or either listener fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.Migrate(ctx); err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for name, srv := range app.servers() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s server: %w", name, err)
				}
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	wg.Wait()
	app.logger.Info(context.WithoutCancel(ctx), "app stopped")
	return firstErr
}
