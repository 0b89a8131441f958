package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/api"
	"github.com/ppfmanagement/admin-dashboard/internal/api/handler"
	"github.com/ppfmanagement/admin-dashboard/internal/api/metrics"
	"github.com/ppfmanagement/admin-dashboard/internal/api/middleware"
	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
	"github.com/ppfmanagement/admin-dashboard/internal/infrastructure/db/memory"
	mongodb "github.com/ppfmanagement/admin-dashboard/internal/infrastructure/db/mongo"
	redisdb "github.com/ppfmanagement/admin-dashboard/internal/infrastructure/db/redis"
	"github.com/ppfmanagement/admin-dashboard/internal/infrastructure/gateway"
	"github.com/ppfmanagement/admin-dashboard/internal/infrastructure/queue"
	"github.com/ppfmanagement/admin-dashboard/internal/pkg/config"
)

const shutdownTimeout = 15 * time.Second

// App is the wired dashboard server.
type App struct {
	cfg   *config.Config
	log   zerolog.Logger
	echo  *echo.Echo
	audit *queue.Dispatcher

	closers []func(context.Context) error
}

// New connects the optional stores, builds the gateways and controllers and
// registers the routes. Configured dependencies that cannot be reached fail
// startup.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close(context.Background())
		}
	}()

	policy, err := config.LoadRoutePolicy(cfg.RoutePolicyFile)
	if err != nil {
		return nil, err
	}

	health := map[string]handler.Pinger{}

	// --- Sessions and page cache ---
	var (
		sessions ports.SessionRepository = memory.NewSessionRepository()
		pages    gateway.PageStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		health["redis"] = func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) }

		sessions = redisdb.NewSessionRepository(rdb)
		if cfg.PageCacheEnabled() {
			pages = redisdb.NewPageCache(rdb)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Bool("page_cache", pages != nil).Msg("redis connected")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
	}

	// --- Audit sinks ---
	var (
		sinks     []ports.AuditSink
		auditRepo ports.AuditRepository
	)
	if cfg.Mongo.URI != "" {
		store, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		health["mongodb"] = store.Ping

		repo := mongodb.NewAuditRepository(store.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit index creation failed")
		}
		sinks = append(sinks, repo)
		auditRepo = repo
	}
	if cfg.AMQP.URL != "" {
		pub, err := queue.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return pub.Close() })
		sinks = append(sinks, pub)
	}
	a.audit = queue.NewDispatcher(cfg.Audit.Workers, sinks, metrics.Audit{}, log)
	a.audit.Start(context.WithoutCancel(ctx))

	// --- Gateways ---
	cl, err := gateway.New(gateway.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Metrics: metrics.Gateway{},
	}, log.With().Str("component", "gateway").Logger())
	if err != nil {
		return nil, err
	}

	clients := cached(gateway.NewClients(cl), pages, cfg, log)
	roles := cached(gateway.NewRoles(cl), pages, cfg, log)
	users := cached(gateway.NewUsers(cl), pages, cfg, log)

	// --- Services ---
	decoder := service.NewJWTClaimsDecoder()
	auth := gateway.NewAuth(cl)
	store := service.NewSessionStore(auth, decoder, log.With().Str("component", "session").Logger())

	ctlLog := log.With().Str("component", "controller").Logger()
	deps := api.Deps{
		Policy: policy,
		Session: middleware.SessionOptions{
			Cookie: cfg.Session.Cookie,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		},
		Screens:     handler.ScreenOptions{PageSize: cfg.API.PageSize, ExportLimit: cfg.API.ExportLimit},
		LoginPerMin: cfg.LoginRatePerMin,

		Sessions: sessions,
		Decoder:  decoder,
		Store:    store,
		Signup:   auth,

		Clients:     service.NewController("clients", clients, a.audit, ctlLog),
		Roles:       service.NewController("roles", roles, a.audit, ctlLog),
		Users:       service.NewController("users", users, a.audit, ctlLog).WithScope(service.SelfScope(users)),
		RoleGateway: roles,

		Audit:  auditRepo,
		Health: health,
	}

	a.echo, err = api.NewRouter(deps, log)
	if err != nil {
		return nil, err
	}
	ok = true
	return a, nil
}

// cached wraps a resource gateway with the page cache when one is configured.
func cached[T domain.Record[T]](gw *gateway.Resource[T], store gateway.PageStore, cfg *config.Config, log zerolog.Logger) ports.ResourceGateway[T] {
	if store == nil {
		return gw
	}
	return gateway.NewCached(gw.Name(), gw, store, cfg.Cache.TTL, metrics.Gateway{}, log.With().Str("component", "page_cache").Logger())
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler { return a.echo }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("api", a.cfg.API.BaseURL).Msg("dashboard listening")
		if err := a.echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close flushes pending audit entries and releases every connection.
func (a *App) Close(ctx context.Context) {
	if a.audit != nil {
		a.audit.Close()
	}
	a.closeStores(ctx)
}

func (a *App) closeStores(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
