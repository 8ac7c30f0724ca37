package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/addressbook/internal/auth"
	"github.com/utafrali/addressbook/internal/config"
	"github.com/utafrali/addressbook/internal/event"
	handler "github.com/utafrali/addressbook/internal/handler/http"
	"github.com/utafrali/addressbook/internal/repository"
	"github.com/utafrali/addressbook/internal/repository/memory"
	"github.com/utafrali/addressbook/internal/repository/postgres"
	redisrepo "github.com/utafrali/addressbook/internal/repository/redis"
	"github.com/utafrali/addressbook/internal/service"
	"github.com/utafrali/addressbook/migrations"
	"github.com/utafrali/addressbook/pkg/database"
	"github.com/utafrali/addressbook/pkg/health"
	pkgkafka "github.com/utafrali/addressbook/pkg/kafka"
	"github.com/utafrali/addressbook/pkg/middleware"
	"github.com/utafrali/addressbook/pkg/tracing"
)

// startupTimeout bounds connecting to every backing service.
const startupTimeout = 30 * time.Second

// App wires together all dependencies and runs the address book service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// Anything opened before a failure is closed again.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeBackends()
		}
	}()

	a.tracerShutdown, err = tracing.Init(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQuery > 0 {
		database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := database.RegisterPoolMetrics(reg, a.pool, cfg.ServiceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	recentRepo, err := a.openRecentStore(ctx)
	if err != nil {
		return nil, err
	}
	events, err := a.openEventPublisher(reg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry())
	identityRepo := postgres.NewIdentityRepository(a.pool)
	addressRepo := postgres.NewAddressRepository(a.pool)

	credentials, err := service.NewCredentialStore(identityRepo, events, cfg.BcryptCost, logger)
	if err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}
	searches := service.NewRecentSearches(recentRepo, logger)
	book := service.NewAddressBook(addressRepo, searches, events, logger)
	authService := service.NewAuthService(credentials, tokens, logger)

	metrics, err := middleware.NewHTTPMetrics(reg, cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	var credentialLimiter *middleware.RateLimiter
	if cfg.AuthRateLimitRPS > 0 {
		credentialLimiter = middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:       cfg.ServiceName,
		Auth:              authService,
		Book:              book,
		Searches:          searches,
		Verify:            tokens.Verify,
		CredentialLimiter: credentialLimiter,
		Health:            a.healthChecks(),
		Metrics:           metrics,
		Gatherer:          reg,
		CORS:              corsCfg,
		PprofCIDRs:        cfg.PprofCIDRs,
		EnablePprof:       cfg.PprofEnabled,
		Logger:            logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openRecentStore returns the Redis recent-search store when Redis is
// configured and an in-process store otherwise.
func (a *App) openRecentStore(ctx context.Context) (repository.RecentSearchRepository, error) {
	redisCfg, ok := a.cfg.Redis()
	if !ok {
		a.logger.Warn("REDIS_ADDR not set, keeping recent searches in memory")
		return memory.NewRecentSearchRepository(), nil
	}

	client, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = client
	a.logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr))
	return redisrepo.NewRecentSearchRepository(client, a.cfg.RecentSearchTTL), nil
}

// openEventPublisher returns a Kafka-backed publisher when brokers are
// configured and a no-op publisher otherwise.
func (a *App) openEventPublisher(reg prometheus.Registerer) (service.EventPublisher, error) {
	if len(a.cfg.KafkaBrokers) == 0 {
		a.logger.Warn("KAFKA_BROKERS not set, domain events are discarded")
		return event.Noop{}, nil
	}

	metrics, err := pkgkafka.NewProducerMetrics(reg, a.cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("register kafka metrics: %w", err)
	}
	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger).
		WithMetrics(metrics)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	return event.NewProducer(a.producer, a.logger), nil
}

// healthChecks registers PostgreSQL as critical; Redis and Kafka only
// degrade readiness.
func (a *App) healthChecks() *health.Handler {
	h := health.NewHandler(a.cfg.HealthTimeout)
	if a.pool != nil {
		h.Register("postgres", a.pool.Ping)
	}
	if a.redis != nil {
		h.RegisterOptional("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		h.RegisterOptional("kafka", a.producer.Ping)
	}
	return h
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush spans of drained requests)
// 3. Kafka producer, Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.closeBackends(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeBackends() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	return errors.Join(errs...)
}
