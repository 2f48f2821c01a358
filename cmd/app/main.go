package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/checkin"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/class"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/config"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/dashboard"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/db"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/email"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/report"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/server"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/subscription"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithLevel(cfg.LogLevel)
	logger.Info("Starting gym membership API", "timezone", cfg.Location.String())

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	emailService := email.New(rdb, cfg.EmailFrom, cfg.EmailFromName, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	defer emailService.Close()

	clk := clock.New(cfg.Location)

	userRepo := user.NewRepository(database)
	subscriptionRepo := subscription.NewRepository(database)
	checkInRepo := checkin.NewRepository(database)
	classRepo := class.NewRepository(database)

	subscriptionService := subscription.NewService(subscriptionRepo, userRepo, emailService, clk)
	checkInService := checkin.NewService(checkInRepo, subscriptionRepo, clk, userRepo, emailService)
	classService := class.NewService(classRepo, userRepo, emailService, clk)
	reportService := report.NewService(report.NewRepository(database), clk, cfg.PopularClassesLimit)
	dashboardService := dashboard.NewService(dashboard.NewRepository(database), userRepo, subscriptionRepo, classRepo, clk)

	srv := server.New(cfg, server.Handlers{
		Users:         user.NewHandler(user.NewService(userRepo, auth.NewTokens(cfg.JWTSecret, clk))),
		Subscriptions: subscription.NewHandler(subscriptionService),
		CheckIns:      checkin.NewHandler(checkInService),
		Classes:       class.NewHandler(classService),
		Reports:       report.NewHandler(reportService),
		Dashboard:     dashboard.NewHandler(dashboardService),
	}, database, emailService)

	expiryWorker := subscription.NewExpiryWorker(subscriptionRepo, rdb, emailService, clk, cfg.ExpiryCheckInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emailService.Start(gctx)
		return nil
	})
	g.Go(func() error {
		expiryWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Infof("Server starting on port %s", cfg.Port)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
