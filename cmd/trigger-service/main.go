// cmd/trigger-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notification-engine/internal/api"
	"notification-engine/internal/common/cache"
	"notification-engine/internal/common/config"
	"notification-engine/internal/common/database"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/common/observability"
	"notification-engine/internal/engine/trigger"
	"notification-engine/internal/featureflag"
	"notification-engine/internal/platform"
	kafkaqueue "notification-engine/internal/queue/kafka"
	"notification-engine/internal/storage/elastic"
	"notification-engine/internal/storage/postgres"
	"notification-engine/internal/storage/s3"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting trigger service",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected")

	// --- Init S3 uploader ---
	uploader, err := s3.NewUploader(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		zapLog.Fatal("s3 uploader init failed", zap.Error(err))
	}

	// --- Init Kafka producer ---
	producer := kafkaqueue.NewProducer(cfg.Queue.Brokers, cfg.Queue.Topic)
	defer producer.Close()

	// --- Wire stores and engine ---
	cacheTTL := time.Duration(cfg.Database.Redis.CacheTTL) * time.Millisecond
	cacheStore := cache.NewStore(redisClient.Client, cacheTTL, log)

	nudge := trigger.NewNudge(
		elastic.NewNotificationFeed(esClient.Client, cfg.Database.Elasticsearch.NotificationIndex),
		postgres.NewUserStore(pg.DB),
		postgres.NewMemberStore(pg.DB),
		platform.NewClient(cfg.Nudge.APIURL, cfg.Nudge.APIKey),
		trigger.NoopAnalytics{},
		featureflag.NewConfigEvaluator(cfg.Features.Flags),
		cfg.Nudge,
		cfg.App.Environment,
		log,
	)

	processor := trigger.NewProcessor(trigger.Dependencies{
		Workflows:     postgres.NewWorkflowStore(pg.DB),
		Tenants:       postgres.NewTenantStore(pg.DB),
		Overrides:     postgres.NewOverrideStore(pg.DB),
		Uploader:      uploader,
		Queue:         producer,
		Cache:         cacheStore,
		Nudge:         nudge,
		Observability: obs,
		Logger:        log,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewServer(processor, log).Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("http server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	zapLog.Info("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("trigger service stopped gracefully")
}
