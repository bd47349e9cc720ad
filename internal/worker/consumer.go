package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	core "github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/worker/domain"
)

// setupConsumer sets up RabbitMQ consumer with QoS and returns delivery channel
func (w *Worker) setupConsumer(ctx context.Context) (<-chan amqp.Delivery, error) {
	// prefetch bounds unacknowledged triggers held by this consumer
	if err := w.broker.Qos(w.prefetchCount); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	consumerTag := w.workerID

	deliveries, err := w.broker.Consume(consumerTag)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", consumerTag),
		slog.String("queue", w.broker.QueueName()),
	)

	return deliveries, nil
}

// parseTrigger validates a delivery body into a pass message
func parseTrigger(delivery amqp.Delivery) (*domain.PassMessage, error) {
	var payload domain.TriggerPayload
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	if _, err := uuid.Parse(payload.PassID); err != nil {
		return nil, fmt.Errorf("%w: pass_id %q is not a UUID", domain.ErrInvalidPayload, payload.PassID)
	}

	kind, err := core.ParsePassKind(payload.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	return &domain.PassMessage{
		PassID:      payload.PassID,
		Kind:        kind,
		DeliveryTag: delivery.DeliveryTag,
		Redelivered: delivery.Redelivered,
	}, nil
}

// startMessageDispatcher listens to RabbitMQ deliveries and dispatches passes to the worker pool
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			msg, err := parseTrigger(delivery)
			if err != nil {
				w.logger.Error("Rejecting pass trigger",
					slog.Any("error", err),
					slog.String("body", string(delivery.Body)),
				)
				// malformed triggers go to the DLQ, if one is bound
				if nackErr := w.broker.Nack(delivery.DeliveryTag, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.Any("error", nackErr),
					)
				}
				continue
			}

			select {
			case w.jobsChan <- msg:
				w.logger.Debug("Pass dispatched to worker pool",
					slog.String("pass_id", msg.PassID),
					slog.String("kind", string(msg.Kind)),
					slog.Uint64("delivery_tag", msg.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching pass")
				if nackErr := w.broker.Nack(delivery.DeliveryTag, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.Any("error", nackErr),
					)
				}
				return
			}
		}
	}
}
