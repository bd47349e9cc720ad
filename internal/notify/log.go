package notify

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// LogTransport writes batches to the log instead of sending them. Used for
// dry runs.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs every recipient and reports all of them delivered.
func (t *LogTransport) Send(_ context.Context, batch domain.NotificationBatch) ([]domain.DeliveryResult, error) {
	if len(batch.Recipients) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	results := make([]domain.DeliveryResult, len(batch.Recipients))
	for i, r := range batch.Recipients {
		t.logger.Info("Dry run notification",
			slog.String("template", batch.TemplateID),
			slog.String("subject", batch.Subject),
			slog.String("to", r.Address),
			slog.Any("data", r.Data),
		)
		results[i] = domain.DeliveryResult{Address: r.Address}
	}
	return results, nil
}
