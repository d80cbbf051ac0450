// Command auth-service starts the authentication core of the My Best Life
// platform: credential issuance, token lifecycle, lockout, rate limiting,
// and security event logging.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cryptovee252/my-best-life-platform-sub001/config"
	"github.com/Cryptovee252/my-best-life-platform-sub001/db"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/handler"
	repo "github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/repository/postgres"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/auth/service"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/lockout"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/mailer"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/migrate"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/ratelimit"
	"github.com/Cryptovee252/my-best-life-platform-sub001/internal/seclog"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.Env != "production" {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting auth service",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DBURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	userRepo := repo.NewPostgresRepository(pool)

	var eventStore seclog.EventStore
	if cfg.AuditLoggingEnabled {
		eventStore = seclog.NewPostgresStore(pool)
	}
	events := seclog.New(seclog.Config{
		FilePath:  cfg.LogFilePath,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Audit:     cfg.AuditLoggingEnabled,
	}, eventStore)
	defer events.Close()

	var notifiers []seclog.Notifier
	if cfg.AlertWebhookURL != "" {
		notifiers = append(notifiers, &seclog.WebhookNotifier{URL: cfg.AlertWebhookURL})
	}
	alerter := seclog.NewAlerter(events, map[string]int64{
		seclog.EventAuthFailure:       int64(cfg.AlertFailedLoginsPerHour),
		seclog.EventRateLimitExceeded: int64(cfg.AlertRateLimitPerHour),
		seclog.EventAccountLocked:     int64(cfg.AlertLockoutsPerHour),
	}, time.Duration(cfg.AlertWindowMinutes)*time.Minute, notifiers...)
	alerter.Start()
	defer alerter.Stop()

	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			BaseURL:  cfg.AppBaseURL,
		})
	} else {
		mail = mailer.NewLogSender(logger)
	}

	limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitMaxRequests,
		time.Duration(cfg.RateLimitWindowMs)*time.Millisecond)
	lockouts := lockout.NewManager(userRepo, cfg.MaxLoginAttempts,
		time.Duration(cfg.LockoutDurationMinutes)*time.Minute, events)
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessExpiryMin, cfg.RefreshExpiryMin, userRepo)
	userService := service.NewUserService(userRepo, tokenService, lockouts, limiter, mail, events, logger, cfg)
	authHandler := handler.NewAuthHandler(userService)

	// Daily maintenance: purge expired blacklist rows and stale events.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := userRepo.PurgeExpired(ctx); err != nil {
					logger.Warn("blacklist purge failed", zap.Error(err))
				} else if n > 0 {
					logger.Info("purged expired blacklist entries", zap.Int64("count", n))
				}
				if n, err := events.Cleanup(ctx, cfg.LogRetentionDays); err != nil {
					logger.Warn("security event cleanup failed", zap.Error(err))
				} else if n > 0 {
					logger.Info("cleaned up old security events", zap.Int64("count", n))
				}
			}
		}
	}()

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
