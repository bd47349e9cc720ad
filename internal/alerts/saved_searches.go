package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/search"
)

const lockKeyPrefix = "saved-search:"

// subscriptionResult is what processing one subscription contributes to the report.
type subscriptionResult struct {
	id        string
	processed bool
	updated   bool
	outcome   *Outcome
	errs      []ItemError
}

// RunSavedSearchAlerts fires every eligible subscription. Each processed
// subscription ends with last_alert_sent set to the pass start time, whether
// or not anything matched and whether or not delivery succeeded.
func (s *Scheduler) RunSavedSearchAlerts(ctx context.Context) (*Report, error) {
	passStart := s.now()
	report := newReport(domain.PassSavedSearchAlerts, passStart)

	qctx, cancel := s.queryContext(ctx)
	subs, err := s.store.ListAlertSubscriptions(qctx)
	cancel()
	if err != nil {
		err = fmt.Errorf("failed to list saved searches: %w", err)
		s.finish(report, err)
		return report, err
	}

	s.logger.Info("Saved search alert pass started",
		slog.Int("subscriptions", len(subs)),
	)

	results := make([]subscriptionResult, len(subs))

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i := range subs {
		if !Eligible(&subs[i], passStart) {
			results[i] = subscriptionResult{id: subs[i].ID}
			continue
		}
		report.Candidates++
		g.Go(func() error {
			results[i] = s.processSubscription(ctx, subs[i].ID, passStart)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if !r.processed {
			report.Skipped++
		} else {
			report.Processed++
		}
		if r.updated {
			report.Updated = append(report.Updated, r.id)
		}
		if r.outcome != nil {
			report.absorb(*r.outcome)
		}
		report.Errors = append(report.Errors, r.errs...)
	}

	s.finish(report, nil)
	return report, nil
}

// processSubscription runs read, decide, dispatch and write for one
// subscription under its lease. The subscription is re-read once the lease
// is held so a concurrent pass that already fired it is observed.
func (s *Scheduler) processSubscription(ctx context.Context, id string, passStart time.Time) subscriptionResult {
	result := subscriptionResult{id: id}
	logger := s.logger.With(slog.String("saved_search_id", id))

	release, ok, err := s.locker.TryLock(ctx, lockKeyPrefix+id, s.lockTTL)
	if err != nil {
		logger.Error("Failed to acquire saved search lease", slog.Any("error", err))
		result.errs = append(result.errs, ItemError{Item: id, Stage: StageLock, Err: err})
		return result
	}
	if !ok {
		logger.Debug("Saved search lease held elsewhere, skipping")
		return result
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release saved search lease", slog.Any("error", err))
		}
	}()

	qctx, cancel := s.queryContext(ctx)
	ss, err := s.store.GetSavedSearch(qctx, id)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrSavedSearchNotFound) {
			logger.Debug("Saved search removed since listing, skipping")
			return result
		}
		logger.Error("Failed to reload saved search", slog.Any("error", err))
		result.errs = append(result.errs, ItemError{Item: id, Stage: StageQuery, Err: err})
		return result
	}
	if !Eligible(ss, passStart) {
		logger.Debug("Saved search no longer eligible, skipping")
		return result
	}

	since := MatchWindowStart(ss.LastAlertSent, passStart, s.lookback)

	qctx, cancel = s.queryContext(ctx)
	matches, err := s.store.FindNewMatches(qctx, ss.Criteria, since, s.maxMatches)
	cancel()
	if err != nil {
		logger.Error("Failed to query saved search matches", slog.Any("error", err))
		result.errs = append(result.errs, ItemError{Item: id, Stage: StageQuery, Err: err})
		return result
	}
	if len(matches) > s.maxMatches {
		matches = matches[:s.maxMatches]
	}

	if len(matches) > 0 && strings.TrimSpace(ss.OwnerEmail) != "" {
		outcome := s.send(ctx, task{item: id, batch: s.alertBatch(ss, matches)})
		result.outcome = &outcome
	}

	result.processed = true

	qctx, cancel = s.queryContext(ctx)
	updated, err := s.store.MarkAlertSent(qctx, id, passStart)
	cancel()
	if err != nil {
		logger.Error("Failed to update last alert timestamp", slog.Any("error", err))
		result.errs = append(result.errs, ItemError{Item: id, Stage: StageUpdate, Err: err})
		return result
	}
	if !updated {
		logger.Warn("Last alert timestamp already newer, left unchanged")
	}
	result.updated = updated

	logger.Debug("Saved search processed",
		slog.Int("matches", len(matches)),
		slog.Time("since", since),
	)
	return result
}

func (s *Scheduler) alertBatch(ss *domain.SavedSearch, matches []domain.Posting) domain.NotificationBatch {
	terms := search.Tokenize(ss.Criteria.Query)

	jobs := make([]map[string]any, 0, len(matches))
	for _, p := range matches {
		job := map[string]any{
			"id":         p.ID,
			"title":      p.Title,
			"department": p.Department,
			"category":   p.Category.String(),
			"link":       s.postingLink(p.ID),
			"score":      search.Score(p, terms).Score,
		}
		if p.HasDeadline() {
			job["deadline"] = p.ApplicationDeadline.Format(deadlineLayout)
		}
		jobs = append(jobs, job)
	}

	return domain.NotificationBatch{
		TemplateID: s.templates.SavedSearchAlert,
		Subject:    fmt.Sprintf("%d new jobs match %q", len(matches), ss.Name),
		Recipients: []domain.Recipient{{
			UserID:  ss.OwnerID,
			Address: ss.OwnerEmail,
			Name:    ss.OwnerName,
			Data: map[string]any{
				"name":        ss.OwnerName,
				"search_name": ss.Name,
				"match_count": len(matches),
				"jobs":        jobs,
			},
		}},
	}
}
