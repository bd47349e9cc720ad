package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cuongbtq/jobboard/internal/alerts"
	"github.com/cuongbtq/jobboard/internal/config"
	"github.com/cuongbtq/jobboard/internal/lock"
	"github.com/cuongbtq/jobboard/internal/metrics"
	"github.com/cuongbtq/jobboard/internal/notify"
	"github.com/cuongbtq/jobboard/internal/storage"
	"github.com/cuongbtq/jobboard/internal/worker"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/cuongbtq/jobboard/shared/postgresql"
	"github.com/cuongbtq/jobboard/shared/rabbitmq"
	"github.com/cuongbtq/jobboard/shared/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	workerID := fmt.Sprintf("%s-%s", cfg.App.Name, uuid.NewString()[:8])
	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("worker_id", workerID),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbClient, err := postgresql.NewClient(ctx, cfg.PostgresConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	triggerClient, err := rabbitmq.NewClient(cfg.TriggerQueueConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer triggerClient.Close()

	transport, closeTransport, err := initTransport(cfg, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notification transport: %w", err)
	}
	defer closeTransport()

	redisClient, err := redis.NewClient(ctx, cfg.RedisClientConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()

	collector := metrics.NewCollector()
	scheduler, err := initScheduler(cfg, appLogger.Logger, dbClient, transport, redisClient, collector)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	// timer and consumer share one guard so a kind never overlaps in-process
	runner := worker.NewExclusiveRunner(scheduler)

	workerInstance, err := worker.NewWorker(&worker.Config{
		Logger:        appLogger.Logger,
		Broker:        triggerClient,
		Runner:        runner,
		WorkerID:      workerID,
		Concurrency:   cfg.Worker.Concurrency,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
		JobTimeout:    cfg.Worker.JobTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	timer, err := worker.NewTimer(&worker.TimerConfig{
		Logger:     appLogger.Logger,
		Runner:     runner,
		Schedules:  cfg.Scheduler.Schedules,
		RunOnStart: cfg.Scheduler.RunOnStart,
		JobTimeout: cfg.Worker.JobTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()
	timer.Start(ctx)

	appLogger.Info("Worker service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	if err := timer.Stop(shutdownCtx); err != nil {
		appLogger.Warn("Timer shutdown timeout exceeded", slog.Any("error", err))
	}
	if err := workerInstance.Stop(shutdownCtx); err != nil {
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit", slog.Any("error", err))
	}

	snapshot := collector.Snapshot()
	for kind, stats := range snapshot.Passes {
		appLogger.Info("Pass totals",
			slog.String("kind", kind),
			slog.Int64("runs", stats.Runs),
			slog.Int64("failures", stats.Failures),
			slog.Int64("delivered", stats.Delivered),
			slog.Int64("delivery_failed", stats.DeliveryFailed),
		)
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initTransport returns the outbound email transport. Dry-run mode logs
// batches instead of publishing them.
func initTransport(cfg *config.Config, logger *slog.Logger) (alerts.Transport, func(), error) {
	if cfg.Notifications.DryRun {
		logger.Warn("Notifications in dry-run mode; nothing will be sent")
		return notify.NewLogTransport(logger), func() {}, nil
	}

	client, err := rabbitmq.NewClient(cfg.NotificationQueueConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	transport := notify.NewAMQPTransport(client, logger, cfg.Notifications.PublishTimeout)
	return transport, func() { client.Close() }, nil
}

// initScheduler wires the alert scheduler to its collaborators
func initScheduler(
	cfg *config.Config,
	logger *slog.Logger,
	dbClient *postgresql.Client,
	transport alerts.Transport,
	redisClient *goredis.Client,
	collector *metrics.Collector,
) (*alerts.Scheduler, error) {
	schedulerCfg := cfg.SchedulerSettings()
	schedulerCfg.Logger = logger.With(slog.String("component", "scheduler"))
	schedulerCfg.Store = storage.NewStorage(dbClient.GetDB(), logger)
	schedulerCfg.Transport = transport
	schedulerCfg.Locker = lock.NewRedisLocker(redisClient, cfg.Redis.KeyPrefix)
	schedulerCfg.Metrics = collector

	return alerts.NewScheduler(&schedulerCfg)
}
