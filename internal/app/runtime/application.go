package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	app "github.com/wareledger/wareledger/internal/app"
	"github.com/wareledger/wareledger/internal/app/httpapi"
	"github.com/wareledger/wareledger/internal/app/metrics"
	"github.com/wareledger/wareledger/internal/app/storage/memory"
	"github.com/wareledger/wareledger/internal/app/storage/postgres"
	"github.com/wareledger/wareledger/internal/config"
	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/middleware"
	"github.com/wareledger/wareledger/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Application wires stores, sessions and the HTTP server and manages their lifecycle.
type Application struct {
	cfg     *config.Config
	log     *logging.Logger
	app     *app.Application
	handler http.Handler
	server  *http.Server
	db      *sqlx.DB
	redis   *redis.Client
	sink    *httpapi.FileSink
}

// NewApplication opens the configured backends and builds the router.
func NewApplication(cfg *config.Config, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.NewDefault("wareledger")
	}
	a := &Application{cfg: cfg, log: log}

	stores, err := a.buildStores()
	if err != nil {
		a.closeBackends()
		return nil, fmt.Errorf("configure stores: %w", err)
	}
	sessions, err := a.buildSessions()
	if err != nil {
		a.closeBackends()
		return nil, fmt.Errorf("configure sessions: %w", err)
	}
	stores.Sessions = metrics.InstrumentSessions(sessions)

	a.app, err = app.New(stores, log)
	if err != nil {
		a.closeBackends()
		return nil, err
	}

	a.sink, err = httpapi.NewFileSink(cfg.Server.RequestLog)
	if err != nil {
		a.closeBackends()
		return nil, fmt.Errorf("open request log: %w", err)
	}
	var sink httpapi.JournalSink
	if a.sink != nil {
		sink = a.sink
	}

	limiter := middleware.NewRateLimiter(cfg.Security.LoginRate, cfg.Security.LoginBurst, log)
	if err := a.app.Attach(newPurger(cfg.Session.PurgeSchedule, stores.Sessions, limiter, log)); err != nil {
		a.closeBackends()
		return nil, err
	}

	dispatcher := httpapi.NewDispatcher(a.app, httpapi.Options{
		StaticDir:    cfg.Server.StaticDir,
		CompanyName:  cfg.Company.Name,
		CompanyLogo:  cfg.Company.Logo,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Journal:      httpapi.NewJournal(0, sink),
		Logger:       log,
	})
	a.handler = newRouter(dispatcher, limiter, cfg.Server.CORSOrigins, log)
	a.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return a, nil
}

// Handler exposes the fully wired router.
func (a *Application) Handler() http.Handler { return a.handler }

// Run starts background services and the HTTP server and blocks until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on http://%s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains in-flight requests, stops background services and
// releases the backends.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	a.closeBackends()
	return errors.Join(errs...)
}

func (a *Application) closeBackends() {
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.WithError(err).Warn("error closing request log")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("error closing redis connection")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
}

func (a *Application) buildStores() (app.Stores, error) {
	if a.cfg.Database.Driver == "memory" {
		a.log.Warn("database.driver is memory: records are not persisted")
		mem := memory.New()
		return app.Stores{Inventory: mem, Users: mem, Pricing: mem, Audit: mem}, nil
	}

	db, err := openDatabase(a.cfg.Database, a.cfg.DSN())
	if err != nil {
		return app.Stores{}, err
	}
	a.db = db
	store := postgres.New(db, a.log)
	return app.Stores{Inventory: store, Users: store, Pricing: store, Audit: store, Database: store}, nil
}

func (a *Application) buildSessions() (session.Store, error) {
	lifetime := a.cfg.Session.Lifetime
	if a.cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(session.WithLifetime(lifetime)), nil
	}

	rc := a.cfg.Session.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rc.Addr, err)
	}
	a.redis = client
	return session.NewRedisStore(client, rc.Prefix, lifetime, a.log), nil
}

func openDatabase(cfg config.DatabaseConfig, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s@%s:%d/%s: %w", cfg.User, cfg.Host, cfg.Port, cfg.Name, err)
	}
	return db, nil
}
