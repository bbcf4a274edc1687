package server

import (
	"net/http"
	"time"

	"github.com/deatransindo/absensi/internal/config"
	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	attendance handler.AttendanceHandler,
	visits handler.VisitHandler,
	reports handler.ReportHandler,
	users handler.UserAdminHandler,
	dashboard handler.DashboardHandler,
	notifications handler.NotificationHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	notifications.RegisterPublicRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// staff-level (field staff and admins)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleUser))
			attendance.RegisterRoutes(sr)
			visits.RegisterRoutes(sr)
			notifications.RegisterRoutes(sr)
		})
		// admin-level
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			reports.RegisterRoutes(ar)
			users.RegisterRoutes(ar)
			dashboard.RegisterRoutes(ar)
			notifications.RegisterAdminRoutes(ar)
		})
	})

	return r
}
