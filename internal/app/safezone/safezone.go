// Package safezone собирает HTTP API SafeZone: хранилище, кеш, брокер,
// метрики и сервисы предметной области.
package safezone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/safezone/internal/cache"
	"github.com/magabrotheeeer/safezone/internal/config"
	"github.com/magabrotheeeer/safezone/internal/grpc/server"
	"github.com/magabrotheeeer/safezone/internal/lib/jwt"
	"github.com/magabrotheeeer/safezone/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/metrics"
	"github.com/magabrotheeeer/safezone/internal/migrations"
	adminservice "github.com/magabrotheeeer/safezone/internal/services/admin"
	alertservice "github.com/magabrotheeeer/safezone/internal/services/alert"
	helpservice "github.com/magabrotheeeer/safezone/internal/services/help"
	"github.com/magabrotheeeer/safezone/internal/services/identity"
	subservice "github.com/magabrotheeeer/safezone/internal/services/subscription"
	"github.com/magabrotheeeer/safezone/internal/storage/memory"
	"github.com/magabrotheeeer/safezone/internal/storage/repository"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthCheckInterval = 10 * time.Second
)

// Store — хранилище, которое нужно всем сервисам приложения.
type Store interface {
	identity.UserRepository
	subservice.Repository
	alertservice.Repository
	helpservice.Repository
	adminservice.Repository
	Ping(ctx context.Context) error
	Close() error
}

// App — HTTP API SafeZone и его ресурсы.
type App struct {
	server   *http.Server
	health   *server.HealthServer
	grpcAddr string
	logger   *slog.Logger
	closers  []func() error
}

// New подключает хранилище и внешние сервисы и собирает маршруты.
// Redis и RabbitMQ необязательны: пустой адрес отключает их.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.safezone.New"

	app := &App{logger: logger, grpcAddr: cfg.AddressGRPC}

	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.closers = append(app.closers, store.Close)

	var userCache identity.Cache
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, c.Close)
		userCache = c
	} else {
		logger.Warn("redis address is empty, user cache disabled")
	}

	var publisher alertservice.Publisher
	if cfg.RabbitMQ.URL != "" {
		p, err := openPublisher(cfg.RabbitMQ, app)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = p
	} else {
		logger.Warn("rabbitmq url is empty, emergency notifications are stored only")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services := NewServices(Deps{
		Store:     store,
		Cache:     userCache,
		Publisher: publisher,
		Registry:  reg,
		JWT:       jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Billing:   cfg.Billing,
		CacheTTL:  cfg.UserCacheTTL,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().UTC() },
	})

	if err := services.Identity.EnsureOwner(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.RateLimit, cfg.CORS, services)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	if app.grpcAddr != "" {
		app.health = server.NewHealthServer(store, logger)
	}

	return app, nil
}

// Deps — зависимости сервисов предметной области.
type Deps struct {
	Store     Store
	Cache     identity.Cache
	Publisher alertservice.Publisher
	Registry  *prometheus.Registry // nil отключает метрики
	JWT       jwt.Maker
	Billing   config.Billing
	CacheTTL  time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewServices создает сервисы поверх общих зависимостей.
func NewServices(d Deps) Services {
	identitySvc := identity.New(d.Store, d.Cache, d.JWT, d.Logger, d.Now, d.CacheTTL)

	var (
		subMetrics     subservice.Metrics
		alertMetrics   alertservice.Metrics
		metricsHandler = http.NotFoundHandler()
	)
	if d.Registry != nil {
		m := metrics.New(d.Registry)
		subMetrics = m
		alertMetrics = m
		metricsHandler = promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry})
	}

	return Services{
		Identity:     identitySvc,
		Subscription: subservice.New(d.Store, subservice.PolicyFromConfig(d.Billing), d.Logger, d.Now, subMetrics),
		Alert:        alertservice.New(d.Store, d.Publisher, alertMetrics, d.Logger, d.Now),
		Help:         helpservice.New(d.Store, d.Logger, d.Now),
		Admin:        adminservice.New(d.Store, identitySvc, d.Logger, d.Now),
		Storage:      d.Store,
		Metrics:      metricsHandler,
		Now:          d.Now,
	}
}

func openStore(ctx context.Context, cfg config.Storage, logger *slog.Logger) (Store, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	db, err := repository.New(ctx, cfg.ConnectionString)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openPublisher(cfg config.RabbitMQ, app *App) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationsExchange, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p := rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange)
	// канал закрывается раньше соединения
	app.closers = append(app.closers, conn.Close, p.Close)
	return p, nil
}

// Run запускает HTTP-сервер (и gRPC health, если задан адрес) и
// останавливает их после отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 2)

	if a.health != nil {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			return fmt.Errorf("app.safezone.Run: %w", err)
		}
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.health.Watch(watchCtx, healthCheckInterval)
		go func() {
			if err := a.health.Serve(lis); err != nil {
				errCh <- err
			}
		}()
		defer a.health.Stop()
	}

	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// close освобождает ресурсы в обратном порядке.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to release resource", sl.Err(err))
		}
	}
	a.closers = nil
}
