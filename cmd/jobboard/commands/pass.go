package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/cuongbtq/jobboard/internal/alerts"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/lock"
	"github.com/cuongbtq/jobboard/internal/metrics"
	"github.com/cuongbtq/jobboard/internal/notify"
	"github.com/cuongbtq/jobboard/shared/rabbitmq"
	"github.com/cuongbtq/jobboard/shared/redis"
)

// PassAction runs one scheduler pass and prints its report
func PassAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one pass kind, got %d", cmd.Args().Len())
	}
	kind, err := domain.ParsePassKind(cmd.Args().First())
	if err != nil {
		return err
	}

	appCtx, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	cfg := appCtx.Config
	schedulerCfg := cfg.SchedulerSettings()
	schedulerCfg.Logger = appCtx.Logger.Logger
	schedulerCfg.Store = appCtx.Storage
	schedulerCfg.Metrics = metrics.NewCollector()

	if cmd.Bool("dry-run") {
		schedulerCfg.Transport = notify.NewLogTransport(appCtx.Logger.Logger)
		schedulerCfg.Locker = lock.NewLocalLocker()
	} else {
		publisher, err := rabbitmq.NewClient(cfg.NotificationQueueConfig(), appCtx.Logger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer publisher.Close()

		redisClient, err := redis.NewClient(ctx, cfg.RedisClientConfig(), appCtx.Logger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisClient.Close()

		schedulerCfg.Transport = notify.NewAMQPTransport(publisher, appCtx.Logger.Logger, cfg.Notifications.PublishTimeout)
		schedulerCfg.Locker = lock.NewRedisLocker(redisClient, cfg.Redis.KeyPrefix)
	}

	scheduler, err := alerts.NewScheduler(&schedulerCfg)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	report, err := scheduler.Run(ctx, kind)
	if err != nil {
		return fmt.Errorf("pass %s failed: %w", kind, err)
	}

	return renderReport(os.Stdout, report)
}

// renderReport prints a pass summary followed by any item errors
func renderReport(w io.Writer, report *alerts.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	rows := [][]string{
		{"Kind", string(report.Kind)},
		{"Duration", report.Duration().String()},
		{"Candidates", fmt.Sprintf("%d", report.Candidates)},
		{"Processed", fmt.Sprintf("%d", report.Processed)},
		{"Skipped", fmt.Sprintf("%d", report.Skipped)},
		{"Delivered", fmt.Sprintf("%d", report.Delivered)},
		{"Delivery failed", fmt.Sprintf("%d", report.DeliveryFailed)},
	}
	if report.Kind == domain.PassCloseExpired {
		rows = append(rows, []string{"Closed", fmt.Sprintf("%d", report.Closed)})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if len(report.Errors) == 0 {
		return nil
	}

	errTable := tablewriter.NewWriter(w)
	errTable.Header("Item", "Stage", "Error")
	for _, e := range report.Errors {
		if err := errTable.Append(e.Item, string(e.Stage), e.Err.Error()); err != nil {
			return fmt.Errorf("failed to render item errors: %w", err)
		}
	}
	return errTable.Render()
}
