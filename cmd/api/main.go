package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/inkwell-tutoring/inkwell-platform/cmd/mainconfig"
	"github.com/inkwell-tutoring/inkwell-platform/internal/api/router"
	appconfig "github.com/inkwell-tutoring/inkwell-platform/internal/config"
	"github.com/inkwell-tutoring/inkwell-platform/internal/leads"
	"github.com/inkwell-tutoring/inkwell-platform/internal/notify"
	"github.com/inkwell-tutoring/inkwell-platform/internal/observability/metrics"
	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

func main() {
	// Local development convenience; the file is absent in deployed envs.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting inkwell-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.LeadsBackend,
	)

	ctx := context.Background()

	repo, cleanup, err := setupLeadsRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize lead storage", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	metricsHandler, leadMetrics := setupLeadMetrics()
	alerter := setupLeadAlerter(ctx, cfg, logger)

	leadsHandler := leads.NewHandler(repo, alerter, leadMetrics, logger)
	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupLeadsRepository picks the storage backend from config. The returned
// cleanup closes any connection pool and may be nil.
func setupLeadsRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (leads.Repository, func(), error) {
	switch cfg.LeadsBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("lead storage: postgres")
		return leads.NewPostgresRepository(pool), pool.Close, nil

	case "dynamo":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg)
		logger.Info("lead storage: dynamodb", "table", cfg.LeadsTable)
		return leads.NewDynamoRepository(client, cfg.LeadsTable, logger), nil, nil

	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("lead storage: redis", "addr", cfg.RedisAddr)
		return leads.NewRedisRepository(client, logger), func() { _ = client.Close() }, nil

	default:
		logger.Info("lead storage: in-memory (leads are lost on restart)")
		return leads.NewInMemoryRepository(), nil, nil
	}
}

// setupLeadMetrics registers lead metrics on a fresh registry and returns the
// /metrics handler alongside the collector.
func setupLeadMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLeadMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// setupLeadAlerter wires the configured email provider; returns nil when
// alerts are disabled.
func setupLeadAlerter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) leads.Notifier {
	var sender notify.EmailSender
	switch cfg.NotifyProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES, alerts disabled", "error", err)
			break
		}
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); s != nil {
			sender = s
		}
	case "stub":
		sender = notify.NewStubEmailSender(logger)
	}
	if sender == nil {
		return nil
	}

	alerter := notify.NewLeadAlerter(sender, cfg.NotifyToEmail, cfg.NotifyToName, logger)
	if alerter == nil {
		logger.Info("lead alerts disabled: no destination address configured")
		return nil
	}
	return alerter
}
