package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/planetaskin/lead-intake/internal/api/router"
	appconfig "github.com/planetaskin/lead-intake/internal/config"
	"github.com/planetaskin/lead-intake/internal/intake"
	"github.com/planetaskin/lead-intake/internal/leads"
	"github.com/planetaskin/lead-intake/internal/notify"
	"github.com/planetaskin/lead-intake/internal/observability/metrics"
	"github.com/planetaskin/lead-intake/internal/ratelimit"
	"github.com/planetaskin/lead-intake/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.Env == "development")
	logger.Info("starting lead-intake server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	limiter := buildLimiter(cfg, logger)

	recorders := []leads.Recorder{leads.NewLogStore(cfg.LeadLogPath)}
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		recorders = append(recorders, leads.NewPostgresRepository(pool))
		logger.Info("database lead sink enabled")
	}

	notifier := notify.NewService(buildEmailSender(cfg, logger), cfg.NotifyEmail, logger)

	intakeMetrics := metrics.NewIntakeMetrics(prometheus.DefaultRegisterer)
	intakeHandler := intake.NewHandler(limiter, recorders, notifier, intakeMetrics, logger, intake.Options{
		ThanksPath:    cfg.ThanksPath,
		FallbackPhone: cfg.FallbackPhone,
		MinFillTime:   cfg.MinFillTime,
	})

	r := router.New(&router.Config{
		Logger:         logger,
		IntakeHandler:  intakeHandler,
		MetricsHandler: promhttp.Handler(),
		SiteDir:        cfg.SiteDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildLimiter(cfg *appconfig.Config, logger *logging.Logger) ratelimit.Limiter {
	limitConfig := ratelimit.Config{
		MaxAttempts: cfg.RateLimitMax,
		Window:      cfg.RateLimitWindow,
	}
	if cfg.RateLimitBackend == "redis" && cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		logger.Info("rate limiting via redis", "addr", cfg.RedisAddr)
		return ratelimit.NewRedisStore(client, limitConfig, logger)
	}
	logger.Info("rate limiting via file store", "dir", cfg.RateLimitDir)
	return ratelimit.NewFileStore(cfg.RateLimitDir, limitConfig, logger)
}

// buildEmailSender picks SES when enabled, then SendGrid, then a stub
// that only logs. A broken mail setup must never take the server down.
func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.SESEnabled {
		loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
		if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
			loaders = append(loaders, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loaders...)
		if err != nil {
			logger.Error("failed to load AWS config, falling back to stub mail", "error", err)
			return notify.NewStubEmailSender(logger)
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
		if sender != nil {
			logger.Info("email via SES", "region", cfg.AWSRegion)
			return sender
		}
	}

	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}, logger); sender != nil {
		logger.Info("email via SendGrid")
		return sender
	}

	logger.Info("email disabled, using stub sender")
	return notify.NewStubEmailSender(logger)
}
