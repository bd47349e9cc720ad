package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// CloseExpiredPostings deactivates active postings whose deadline day has
// passed. A posting stays open through its deadline day.
func (s *Scheduler) CloseExpiredPostings(ctx context.Context) (*Report, error) {
	now := s.now()
	report := newReport(domain.PassCloseExpired, now)
	cutoff := startOfDay(now)

	qctx, cancel := s.queryContext(ctx)
	closed, err := s.store.CloseExpiredPostings(qctx, cutoff)
	cancel()
	if err != nil {
		err = fmt.Errorf("failed to close expired postings: %w", err)
		s.finish(report, err)
		return report, err
	}

	report.Closed = closed
	report.Processed = int(closed)

	s.logger.Info("Expired postings closed",
		slog.Int64("closed", closed),
		slog.Time("cutoff", cutoff),
	)

	s.finish(report, nil)
	return report, nil
}
