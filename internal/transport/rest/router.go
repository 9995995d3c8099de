package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal/account"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/commendation"
	"github.com/frahmantamala/personnel-records/internal/dashboard"
	"github.com/frahmantamala/personnel-records/internal/kardex"
	"github.com/frahmantamala/personnel-records/internal/leave"
	"github.com/frahmantamala/personnel-records/internal/metrics"
	"github.com/frahmantamala/personnel-records/internal/personnel"
	"github.com/frahmantamala/personnel-records/internal/sanction"
	"github.com/frahmantamala/personnel-records/internal/sysconfig"
	"github.com/frahmantamala/personnel-records/internal/transport/middleware"
	"github.com/frahmantamala/personnel-records/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. Catalogs mount themselves
// under /catalogs/<path>.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Accounts     *account.Handler
	Catalogs     []func(chi.Router)
	Personnel    *personnel.Handler
	Kardex       *kardex.Handler
	Leave        *leave.Handler
	Sanctions    *sanction.Handler
	Commendation *commendation.Handler
	SystemConfig *sysconfig.Handler
	Dashboard    *dashboard.Handler
}

type Options struct {
	Maintenance    middleware.MaintenanceChecker
	LoginLimiter   *middleware.RateLimiter
	MetricsEnabled bool
	MetricsPath    string
	OpenAPIPath    string
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if opts.MetricsEnabled {
		router.Use(metrics.Instrument)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler())
	}

	if opts.OpenAPIPath != "" {
		router.Get(swagger.DocumentURL, func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Get("/health", h.Health.Health)
	router.Get("/ping", h.Health.Ping)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Auth.Authenticator)
		if opts.Maintenance != nil {
			r.Use(middleware.Maintenance(opts.Maintenance, logger))
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(lr chi.Router) {
				if opts.LoginLimiter != nil {
					lr.Use(opts.LoginLimiter.Middleware)
				}
				lr.Post("/login", h.Auth.Login)
			})
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
			ar.Post("/password", h.Auth.ChangePassword)
		})

		r.Get("/accounts/me", h.Accounts.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.PasswordReset(logger))

			r.Route("/accounts", h.Accounts.Routes)

			r.Route("/catalogs", func(cr chi.Router) {
				for _, mount := range h.Catalogs {
					mount(cr)
				}
			})

			r.Route("/personnel", func(pr chi.Router) {
				pr.Get("/", h.Personnel.List)
				pr.Post("/", h.Personnel.Create)
				pr.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", h.Personnel.Get)
					ir.Put("/", h.Personnel.Update)
					ir.Delete("/", h.Personnel.Delete)
					ir.Route("/kardex", h.Kardex.Routes)
				})
			})

			r.Route("/leave-requests", h.Leave.Routes)
			r.Route("/sanctions", h.Sanctions.Routes)
			r.Route("/commendations", h.Commendation.Routes)
			r.Route("/system-config", h.SystemConfig.Routes)
			r.Get("/dashboard", h.Dashboard.Summary)
		})
	})
}
