package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/alerts"
	core "github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/worker/domain"
)

// processPass runs one triggered pass under the job timeout. The pass is
// detached from shutdown cancellation so an in-flight pass can finish.
func (w *Worker) processPass(ctx context.Context, msg *domain.PassMessage) error {
	passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
	defer cancel()

	report, err := w.runner.Run(passCtx, msg.Kind)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnknownPassKind):
			return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		case errors.Is(err, domain.ErrPassInProgress):
			return err
		case msg.Redelivered:
			return fmt.Errorf("%w: %v", domain.ErrRedeliveryFailed, err)
		default:
			return domain.NewRetryableError(fmt.Errorf("pass %s failed: %w", msg.Kind, err))
		}
	}

	logReport(w.logger, msg.PassID, report)
	return nil
}

// logReport writes a one-line summary of a finished pass
func logReport(logger *slog.Logger, passID string, report *alerts.Report) {
	if report == nil {
		return
	}

	attrs := []any{
		slog.String("pass_id", passID),
		slog.String("kind", string(report.Kind)),
		slog.Duration("duration", report.Duration()),
		slog.Int("candidates", report.Candidates),
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("delivered", report.Delivered),
		slog.Int("delivery_failed", report.DeliveryFailed),
		slog.Int("item_errors", len(report.Errors)),
	}
	if report.Kind == core.PassCloseExpired {
		attrs = append(attrs, slog.Int64("closed", report.Closed))
	}

	if len(report.Errors) > 0 {
		logger.Warn("Pass finished with item errors", attrs...)
		return
	}
	logger.Info("Pass finished", attrs...)
}
