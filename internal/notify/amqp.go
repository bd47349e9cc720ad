// Package notify hands notification batches to the email-sending service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Publisher publishes one message body to the outbound email exchange.
type Publisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

// EmailMessage is the wire format consumed by the email service, one per recipient.
type EmailMessage struct {
	BatchID    string         `json:"batch_id"`
	TemplateID string         `json:"template_id"`
	Subject    string         `json:"subject"`
	To         EmailAddress   `json:"to"`
	Data       map[string]any `json:"data,omitempty"`
	QueuedAt   time.Time      `json:"queued_at"`
}

// EmailAddress identifies one recipient.
type EmailAddress struct {
	UserID  string `json:"user_id,omitempty"`
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// AMQPTransport publishes each recipient of a batch as its own message, so a
// failure is confined to that recipient.
type AMQPTransport struct {
	publisher        Publisher
	logger           *slog.Logger
	recipientTimeout time.Duration
	now              func() time.Time
}

// NewAMQPTransport creates a transport. recipientTimeout bounds each publish.
func NewAMQPTransport(publisher Publisher, logger *slog.Logger, recipientTimeout time.Duration) *AMQPTransport {
	if recipientTimeout <= 0 {
		recipientTimeout = 5 * time.Second
	}
	return &AMQPTransport{
		publisher:        publisher,
		logger:           logger,
		recipientTimeout: recipientTimeout,
		now:              time.Now,
	}
}

// Send publishes the batch and returns one result per recipient, in order.
func (t *AMQPTransport) Send(ctx context.Context, batch domain.NotificationBatch) ([]domain.DeliveryResult, error) {
	if len(batch.Recipients) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}

	queuedAt := t.now().UTC()
	results := make([]domain.DeliveryResult, len(batch.Recipients))

	for i, r := range batch.Recipients {
		results[i] = domain.DeliveryResult{Address: r.Address}

		if err := ctx.Err(); err != nil {
			results[i].Err = fmt.Errorf("batch canceled: %w", err)
			continue
		}

		body, err := json.Marshal(EmailMessage{
			BatchID:    batch.ID,
			TemplateID: batch.TemplateID,
			Subject:    batch.Subject,
			To:         EmailAddress{UserID: r.UserID, Address: r.Address, Name: r.Name},
			Data:       r.Data,
			QueuedAt:   queuedAt,
		})
		if err != nil {
			results[i].Err = fmt.Errorf("failed to marshal email message: %w", err)
			continue
		}

		results[i].Err = t.publish(ctx, body)
	}

	t.logger.Debug("Notification batch published",
		slog.String("batch_id", batch.ID),
		slog.String("template", batch.TemplateID),
		slog.Int("recipients", len(batch.Recipients)),
	)

	return results, nil
}

func (t *AMQPTransport) publish(ctx context.Context, body []byte) error {
	pctx, cancel := context.WithTimeout(ctx, t.recipientTimeout)
	defer cancel()

	if err := t.publisher.Publish(pctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish email message: %w", err)
	}
	return nil
}
