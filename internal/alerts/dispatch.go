package alerts

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// task is one transport call: a batch for a posting cohort or a subscription.
type task struct {
	item  string
	batch domain.NotificationBatch
}

// Outcome is the result of one task. Either Err is set (the whole batch was
// rejected or timed out) or Results holds the per-recipient verdicts.
type Outcome struct {
	Item       string
	Recipients int
	Results    []domain.DeliveryResult
	Err        error
}

// dispatch sends every task with at most s.fanout calls in flight and
// returns one outcome per task, in task order.
func (s *Scheduler) dispatch(ctx context.Context, tasks []task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i, t := range tasks {
		g.Go(func() error {
			outcomes[i] = s.send(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *Scheduler) send(ctx context.Context, t task) Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	outcome := Outcome{Item: t.item, Recipients: len(t.batch.Recipients)}

	results, err := s.transport.Send(sendCtx, t.batch)
	if err != nil {
		s.logger.Warn("Notification batch rejected",
			slog.String("item", t.item),
			slog.String("template", t.batch.TemplateID),
			slog.Int("recipients", len(t.batch.Recipients)),
			slog.Any("error", err),
		)
		outcome.Err = err
		return outcome
	}

	outcome.Results = results
	for _, r := range results {
		if !r.Delivered() {
			s.logger.Warn("Notification not delivered",
				slog.String("item", t.item),
				slog.String("address", r.Address),
				slog.Any("error", r.Err),
			)
		}
	}
	return outcome
}
