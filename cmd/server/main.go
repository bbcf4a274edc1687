package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deatransindo/absensi/internal/config"
	"github.com/deatransindo/absensi/internal/db"
	"github.com/deatransindo/absensi/internal/handler"
	"github.com/deatransindo/absensi/internal/push"
	"github.com/deatransindo/absensi/internal/repository"
	"github.com/deatransindo/absensi/internal/server"
	"github.com/deatransindo/absensi/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	attendanceRepo := repository.AttendanceRepository{DB: pg}
	visitRepo := repository.VisitRepository{DB: pg}
	subscriptionRepo := repository.SubscriptionRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	// services
	authSvc := service.AuthService{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Users:     userRepo,
		Logger:    logger,
	}
	attendanceSvc := service.AttendanceService{Store: attendanceRepo}
	reportSvc := service.ReportService{
		Store:  attendanceRepo,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
	reminderSvc := service.ReminderService{
		Users:         userRepo,
		Attendance:    attendanceRepo,
		Subscriptions: subscriptionRepo,
		Sender: push.WebPushSender{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subject:    cfg.VAPIDSubject,
		},
		Logger: logger,
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	attendanceHandler := handler.AttendanceHandler{Service: &attendanceSvc}
	visitHandler := handler.VisitHandler{Store: visitRepo}
	reportHandler := handler.ReportHandler{Service: &reportSvc}
	userAdminHandler := handler.UserAdminHandler{Repo: userRepo}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo}
	notificationHandler := handler.NotificationHandler{
		Reminders:      &reminderSvc,
		Subs:           subscriptionRepo,
		VAPIDPublicKey: cfg.VAPIDPublicKey,
	}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, attendanceHandler, visitHandler,
		reportHandler, userAdminHandler, dashboardHandler, notificationHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
