package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/account"
	accountPostgres "github.com/frahmantamala/personnel-records/internal/account/postgres"
	"github.com/frahmantamala/personnel-records/internal/auth"
	authPostgres "github.com/frahmantamala/personnel-records/internal/auth/postgres"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	catalogPostgres "github.com/frahmantamala/personnel-records/internal/catalog/postgres"
	"github.com/frahmantamala/personnel-records/internal/commendation"
	commendationPostgres "github.com/frahmantamala/personnel-records/internal/commendation/postgres"
	"github.com/frahmantamala/personnel-records/internal/core/events"
	"github.com/frahmantamala/personnel-records/internal/dashboard"
	"github.com/frahmantamala/personnel-records/internal/kardex"
	kardexPostgres "github.com/frahmantamala/personnel-records/internal/kardex/postgres"
	"github.com/frahmantamala/personnel-records/internal/leave"
	leavePostgres "github.com/frahmantamala/personnel-records/internal/leave/postgres"
	"github.com/frahmantamala/personnel-records/internal/metrics"
	"github.com/frahmantamala/personnel-records/internal/personnel"
	personnelPostgres "github.com/frahmantamala/personnel-records/internal/personnel/postgres"
	"github.com/frahmantamala/personnel-records/internal/provisioning"
	"github.com/frahmantamala/personnel-records/internal/sanction"
	sanctionPostgres "github.com/frahmantamala/personnel-records/internal/sanction/postgres"
	"github.com/frahmantamala/personnel-records/internal/sysconfig"
	sysconfigPostgres "github.com/frahmantamala/personnel-records/internal/sysconfig/postgres"
	"github.com/frahmantamala/personnel-records/internal/transport"
	"github.com/frahmantamala/personnel-records/internal/transport/middleware"
	"github.com/frahmantamala/personnel-records/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// App is the assembled service: repositories, services, event wiring and
// the HTTP router.
type App struct {
	Router    *chi.Mux
	Bus       *events.EventBus
	Pool      *provisioning.Pool
	Sysconfig *sysconfig.Service
	logger    *slog.Logger
}

func New(cfg *internal.Config, db *gorm.DB, sqlDB *sqlx.DB, logger *slog.Logger) *App {
	base := transport.NewBaseHandler(logger)
	guard := auth.NewGuard(logger)
	bus := events.NewEventBus(logger)

	if cfg.Observability.Metrics.Enabled {
		metrics.Register(prometheus.DefaultRegisterer)
	}

	sysconfigService := sysconfig.NewService(sysconfigPostgres.NewSystemConfigRepository(db), guard, logger)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db), tokens, sysconfigService, cfg.Security.BCryptCost, logger)

	references := catalogPostgres.NewReferenceRepository(db)
	catalogs := []func(chi.Router){
		catalogRoutes[catalog.Rank](db, catalog.KindRank, base, guard, logger),
		catalogRoutes[catalog.Unit](db, catalog.KindUnit, base, guard, logger),
		catalogRoutes[catalog.StatusType](db, catalog.KindStatusType, base, guard, logger),
		catalogRoutes[catalog.SanctionType](db, catalog.KindSanctionType, base, guard, logger),
		catalogRoutes[catalog.CommendationType](db, catalog.KindCommendationType, base, guard, logger),
	}

	personnelService := personnel.NewService(personnelPostgres.NewPersonnelRepository(db), references, guard, bus, logger)

	recorder := kardex.NewRecorder(kardexPostgres.NewKardexRepository(db), personnelService, references, guard, logger)
	recorder.Subscribe(bus)

	leaveService := leave.NewService(leavePostgres.NewLeaveRepository(db), personnelService, guard, bus, logger)
	sanctionService := sanction.NewService(sanctionPostgres.NewSanctionRepository(db), personnelService, references, guard, bus, logger)
	commendationService := commendation.NewService(commendationPostgres.NewCommendationRepository(db), personnelService, references, guard, bus, logger)

	accountRepository := accountPostgres.NewAccountRepository(db)
	accountService := account.NewService(accountRepository, guard, cfg.Security.BCryptCost, logger)

	var pool *provisioning.Pool
	if cfg.Provisioning.Enabled {
		provisioner := provisioning.NewProvisioner(accountRepository, provisioning.Config{
			LegacyCredentials: cfg.Provisioning.LegacyCredentials,
			BcryptCost:        cfg.Security.BCryptCost,
		}, logger)
		pool = provisioning.NewPool(provisioner, provisioning.PoolConfig{
			Workers:   cfg.Provisioning.Workers,
			QueueSize: cfg.Provisioning.QueueSize,
		}, logger)
		pool.Subscribe(bus)
	}

	dashboardService := dashboard.NewService(dashboard.NewRepository(sqlDB), guard, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.LoginPerSecond > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.LoginPerSecond, cfg.RateLimit.LoginBurst, logger)
	}

	health := rest.NewHealthHandler(base, sqlDB)
	if pool != nil {
		health.Register("provisioning", provisioningCheck(pool))
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:       health,
		Auth:         auth.NewHandler(authService),
		Accounts:     account.NewHandler(base, accountService),
		Catalogs:     catalogs,
		Personnel:    personnel.NewHandler(base, personnelService),
		Kardex:       kardex.NewHandler(base, recorder),
		Leave:        leave.NewHandler(base, leaveService),
		Sanctions:    sanction.NewHandler(base, sanctionService),
		Commendation: commendation.NewHandler(base, commendationService),
		SystemConfig: sysconfig.NewHandler(base, sysconfigService),
		Dashboard:    dashboard.NewHandler(base, dashboardService),
	}, rest.Options{
		Maintenance:    sysconfigService,
		LoginLimiter:   limiter,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
	}, logger)

	return &App{
		Router:    router,
		Bus:       bus,
		Pool:      pool,
		Sysconfig: sysconfigService,
		logger:    logger,
	}
}

func catalogRoutes[T catalog.Entry](db *gorm.DB, kind catalog.Kind, base *transport.BaseHandler, guard auth.Authorizer, logger *slog.Logger) func(chi.Router) {
	service := catalog.NewService[T](kind, catalogPostgres.NewRepository[T](db, kind), guard, logger)
	return catalog.NewHandler[T](base, service).Routes
}

func provisioningCheck(pool *provisioning.Pool) rest.Check {
	return func(ctx context.Context) (map[string]any, error) {
		queued, capacity := pool.Backlog()
		details := map[string]any{"queued": queued, "capacity": capacity}
		if queued >= capacity {
			return details, errors.New("provisioning queue is full")
		}
		return details, nil
	}
}

// Settle waits for in-flight event handlers and queued provisioning jobs.
func (a *App) Settle() {
	a.Bus.Wait()
	if a.Pool != nil {
		a.Pool.Drain()
	}
}

// Shutdown lets background work finish, bounded by timeout.
func (a *App) Shutdown(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		a.Settle()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		a.logger.Warn("background work still running at shutdown", "timeout", timeout)
	}
	if a.Pool != nil {
		a.Pool.Shutdown()
	}
}
