package safezone

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/safezone/internal/config"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/admin/export"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/admin/helplist"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/admin/helprespond"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/admin/setaccess"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/admin/users"
	alertcreate "github.com/magabrotheeeer/safezone/internal/http/handlers/alert/create"
	alertlist "github.com/magabrotheeeer/safezone/internal/http/handlers/alert/list"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/alert/stop"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/help/send"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/subscription/confirm"
	subcreate "github.com/magabrotheeeer/safezone/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/system/health"
	"github.com/magabrotheeeer/safezone/internal/http/handlers/system/root"
	"github.com/magabrotheeeer/safezone/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/safezone/internal/services/admin"
	alertservice "github.com/magabrotheeeer/safezone/internal/services/alert"
	helpservice "github.com/magabrotheeeer/safezone/internal/services/help"
	"github.com/magabrotheeeer/safezone/internal/services/identity"
	subservice "github.com/magabrotheeeer/safezone/internal/services/subscription"
)

// Services — сервисы, которые обслуживают маршруты.
type Services struct {
	Identity     *identity.Service
	Subscription *subservice.Service
	Alert        *alertservice.Service
	Help         *helpservice.Service
	Admin        *adminservice.Service
	Storage      health.Pinger
	Metrics      http.Handler
	Now          func() time.Time
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, rateLimit config.RateLimit, corsCfg config.CORS, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   corsCfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, rateLimit))

		// Открытые конечные точки
		r.Get("/", root.ServeHTTP)
		r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
		r.Post("/register", register.New(logger, s.Identity).ServeHTTP)
		r.Post("/login", login.New(logger, s.Identity).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Identity, logger))

			r.Get("/profile", profile.New(logger).ServeHTTP)
			r.Post("/create-subscription", subcreate.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscription-status", status.New(logger, s.Subscription).ServeHTTP)
			r.Post("/confirm-payment", confirm.New(logger, s.Subscription).ServeHTTP)
			r.Post("/cancel-subscription", cancel.New(logger, s.Subscription).ServeHTTP)
			r.Post("/help", send.New(logger, s.Help).ServeHTTP)

			// Функции приложения доступны только с действующей подпиской
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SubscriptionGate(logger, s.Subscription))

				r.Post("/alerts", alertcreate.New(logger, s.Alert).ServeHTTP)
				r.Get("/alerts", alertlist.New(logger, s.Alert).ServeHTTP)
				r.Put("/alerts/{id}/stop", stop.New(logger, s.Alert).ServeHTTP)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))

				r.Get("/stats", stats.New(logger, s.Admin).ServeHTTP)
				r.Get("/users", users.New(logger, s.Admin).ServeHTTP)
				r.Get("/users/export", export.New(logger, s.Admin, s.Now).ServeHTTP)
				r.Get("/help-messages", helplist.New(logger, s.Help).ServeHTTP)
				r.Put("/help-messages/{id}/respond", helprespond.New(logger, s.Help).ServeHTTP)
				r.Post("/set-admin", setaccess.New(logger, s.Admin).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", s.Metrics)
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
