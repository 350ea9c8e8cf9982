// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/rpcgate/adapters/auth"
	"github.com/artpar/rpcgate/adapters/clock"
	"github.com/artpar/rpcgate/adapters/hasher"
	rpchttp "github.com/artpar/rpcgate/adapters/http"
	"github.com/artpar/rpcgate/adapters/i18n"
	"github.com/artpar/rpcgate/adapters/idgen"
	"github.com/artpar/rpcgate/adapters/memory"
	"github.com/artpar/rpcgate/adapters/metrics"
	"github.com/artpar/rpcgate/adapters/sqlite"
	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/config"
	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/ports"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Dispatcher *app.Dispatcher
	Catalog    *i18n.Catalog

	registry *prometheus.Registry
	recorder ports.AuditRecorder
}

// New creates and initializes the application from loaded configuration.
// Contract resolution and schema validation happen here: a misconfigured
// service never starts serving.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	logger.Info().Str("contract", cfg.Contract.Name).Msg("initializing rpcgate")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	if cfg.Metrics.Enabled {
		// A per-app registry keeps repeated initialization (tests, embedding)
		// from colliding on the default registry.
		a.registry = prometheus.NewRegistry()
		a.Metrics = metrics.NewWithRegistry(a.registry)
		logger.Info().Msg("prometheus metrics enabled")
	}

	bundle, err := a.initBundles()
	if err != nil {
		return nil, fmt.Errorf("init bundles: %w", err)
	}

	factory, err := contract.Resolve(cfg.Contract.Name)
	if err != nil {
		return nil, err
	}

	dispatcher, err := app.NewDispatcher(factory, bundle, logger)
	if err != nil {
		return nil, err
	}
	a.Dispatcher = dispatcher

	if err := a.initAudit(); err != nil {
		return nil, fmt.Errorf("init audit: %w", err)
	}

	if err := a.initHTTPServer(); err != nil {
		return nil, fmt.Errorf("init http server: %w", err)
	}

	return a, nil
}

func (a *App) initBundles() (ports.Bundle, error) {
	if a.Config.Bundles.Dir == "" {
		return nil, nil
	}

	catalog, err := i18n.NewCatalog(a.Config.Bundles.Dir, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Catalog = catalog

	if a.Metrics != nil {
		m := a.Metrics
		catalog.OnReload(func(err error) {
			if err != nil {
				m.BundleReloadErrors.Inc()
				return
			}
			m.BundleReloads.Inc()
			m.BundleLastReload.SetToCurrentTime()
		})
	}

	if a.Config.Bundles.Watch {
		if err := catalog.Watch(); err != nil {
			return nil, err
		}
	}

	a.Logger.Info().
		Str("dir", a.Config.Bundles.Dir).
		Int("locales", len(catalog.Locales())).
		Msg("descriptor bundles loaded")
	return catalog, nil
}

func (a *App) initAudit() error {
	var store ports.AuditStore

	switch a.Config.Audit.Mode {
	case "off":
		return nil
	case "memory":
		store = memory.NewAuditStore()
	case "sqlite":
		db, err := sqlite.Open(a.Config.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return err
		}
		a.DB = db
		store = sqlite.NewAuditStore(db)
	}

	a.recorder = app.NewAuditRecorder(store, a.Config.Audit.BatchSize, a.Config.Audit.FlushInterval)
	return nil
}

func (a *App) initHTTPServer() error {
	handler := rpchttp.NewRPCHandler(a.Dispatcher, a.Logger)

	if a.Metrics != nil {
		handler.SetMetrics(a.Metrics)
	}
	if a.recorder != nil {
		handler.SetAuditTrail(a.recorder, clock.Real{}, idgen.UUID{})
	}

	authenticator, err := a.buildAuthenticator()
	if err != nil {
		return err
	}
	if authenticator != nil {
		handler.SetAuthenticator(authenticator)
	}

	var checker rpchttp.HealthChecker
	if a.DB != nil {
		db := a.DB
		checker = rpchttp.CheckerFunc(func(ctx context.Context) error {
			return db.PingContext(ctx)
		})
	}

	routerCfg := rpchttp.RouterConfig{
		Metrics: a.Metrics,
		Timeout: a.Config.Server.WriteTimeout,
	}
	if a.registry != nil {
		routerCfg.MetricsHandler = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}
	router := rpchttp.NewRouter(handler, rpchttp.NewHealthHandler(checker), a.Logger, routerCfg)

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
	return nil
}

func (a *App) buildAuthenticator() (rpchttp.Authenticator, error) {
	switch a.Config.Auth.Mode {
	case "none":
		return nil, nil
	case "jwt":
		return auth.NewTokenService(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL), nil
	case "static":
		users := make([]auth.User, 0, len(a.Config.Auth.Users))
		for _, u := range a.Config.Auth.Users {
			users = append(users, auth.User{
				Name:      u.Name,
				Token:     u.Token,
				TokenHash: []byte(u.TokenHash),
				Roles:     u.Roles,
			})
		}
		return auth.NewStatic(users, hasher.NewBcrypt(0)), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", a.Config.Auth.Mode)
	}
}

// Run starts the HTTP server and blocks until a signal arrives or the
// server fails. SIGHUP reloads descriptor bundles; SIGINT and SIGTERM
// trigger graceful shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-quit:
			if sig == syscall.SIGHUP {
				a.Logger.Info().Msg("received SIGHUP, reloading bundles")
				if a.Catalog != nil {
					if err := a.Catalog.Reload(); err != nil {
						a.Logger.Error().Err(err).Msg("SIGHUP reload failed")
					}
				}
				continue
			}
			a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
			return a.Shutdown()
		}
	}
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.Catalog != nil {
		a.Catalog.Stop()
	}

	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("audit recorder close error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
