// Package alerts runs the periodic notification passes: deadline
// reminders, saved-search alerts and closure of expired postings.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/metrics"
)

// Store is the datastore collaborator used by the passes.
type Store interface {
	// ListUpcomingDeadlines returns active postings whose deadline lies in [from, to).
	ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]domain.Posting, error)
	// ListNonApplicants returns students who have not applied to the posting.
	ListNonApplicants(ctx context.Context, postingID string) ([]domain.Student, error)
	ListAlertSubscriptions(ctx context.Context) ([]domain.SavedSearch, error)
	// GetSavedSearch returns domain.ErrSavedSearchNotFound when the id is unknown.
	GetSavedSearch(ctx context.Context, id string) (*domain.SavedSearch, error)
	// FindNewMatches returns active postings matching criteria created at or
	// after since, newest first.
	FindNewMatches(ctx context.Context, criteria domain.SearchCriteria, since time.Time, limit int) ([]domain.Posting, error)
	// MarkAlertSent sets last_alert_sent unless a later value is already
	// stored. It reports whether the row was updated.
	MarkAlertSent(ctx context.Context, id string, at time.Time) (bool, error)
	// CloseExpiredPostings deactivates active postings with a deadline before the cutoff.
	CloseExpiredPostings(ctx context.Context, before time.Time) (int64, error)
}

// Transport delivers a notification batch and reports per-recipient results.
// An error means the whole batch was rejected.
type Transport interface {
	Send(ctx context.Context, batch domain.NotificationBatch) ([]domain.DeliveryResult, error)
}

// Locker grants short leases keyed by name. ok is false when another holder
// owns the lease.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Templates names the email templates used by each pass.
type Templates struct {
	DeadlineReminder string
	SavedSearchAlert string
}

// Config holds scheduler configuration
type Config struct {
	Logger    *slog.Logger
	Store     Store
	Transport Transport
	Locker    Locker
	Metrics   *metrics.Collector
	Clock     func() time.Time

	LookaheadDays   int
	Lookback        time.Duration
	MaxMatches      int
	QueryTimeout    time.Duration
	DispatchTimeout time.Duration
	Fanout          int
	LockTTL         time.Duration
	BaseURL         string
	Templates       Templates
}

const (
	defaultLookaheadDays   = 3
	defaultLookback        = 24 * time.Hour
	defaultMaxMatches      = 10
	defaultQueryTimeout    = 10 * time.Second
	defaultDispatchTimeout = 30 * time.Second
	defaultFanout          = 4
	defaultLockTTL         = 2 * time.Minute
)

// Scheduler runs notification passes against the datastore and transport.
type Scheduler struct {
	logger    *slog.Logger
	store     Store
	transport Transport
	locker    Locker
	metrics   *metrics.Collector
	now       func() time.Time

	lookaheadDays   int
	lookback        time.Duration
	maxMatches      int
	queryTimeout    time.Duration
	dispatchTimeout time.Duration
	fanout          int
	lockTTL         time.Duration
	baseURL         string
	templates       Templates
}

// NewScheduler creates a scheduler. Zero values in cfg fall back to defaults.
func NewScheduler(cfg *Config) (*Scheduler, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if cfg.Locker == nil {
		return nil, fmt.Errorf("locker is required")
	}

	s := &Scheduler{
		logger:          cfg.Logger,
		store:           cfg.Store,
		transport:       cfg.Transport,
		locker:          cfg.Locker,
		metrics:         cfg.Metrics,
		now:             cfg.Clock,
		lookaheadDays:   cfg.LookaheadDays,
		lookback:        cfg.Lookback,
		maxMatches:      cfg.MaxMatches,
		queryTimeout:    cfg.QueryTimeout,
		dispatchTimeout: cfg.DispatchTimeout,
		fanout:          cfg.Fanout,
		lockTTL:         cfg.LockTTL,
		baseURL:         cfg.BaseURL,
		templates:       cfg.Templates,
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.lookaheadDays <= 0 {
		s.lookaheadDays = defaultLookaheadDays
	}
	if s.lookback <= 0 {
		s.lookback = defaultLookback
	}
	if s.maxMatches <= 0 {
		s.maxMatches = defaultMaxMatches
	}
	if s.queryTimeout <= 0 {
		s.queryTimeout = defaultQueryTimeout
	}
	if s.dispatchTimeout <= 0 {
		s.dispatchTimeout = defaultDispatchTimeout
	}
	if s.fanout <= 0 {
		s.fanout = defaultFanout
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.templates.DeadlineReminder == "" {
		s.templates.DeadlineReminder = "deadline-reminder"
	}
	if s.templates.SavedSearchAlert == "" {
		s.templates.SavedSearchAlert = "saved-search-alert"
	}

	return s, nil
}

// Run executes the pass named by kind.
func (s *Scheduler) Run(ctx context.Context, kind domain.PassKind) (*Report, error) {
	switch kind {
	case domain.PassDeadlineReminders:
		return s.RunDeadlineReminders(ctx)
	case domain.PassSavedSearchAlerts:
		return s.RunSavedSearchAlerts(ctx)
	case domain.PassCloseExpired:
		return s.CloseExpiredPostings(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPassKind, kind)
	}
}

func (s *Scheduler) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// finish stamps the report and records it; err is the top-level failure, if any.
func (s *Scheduler) finish(report *Report, err error) {
	report.FinishedAt = s.now()

	s.metrics.RecordPass(metrics.PassRecord{
		Kind:           string(report.Kind),
		Duration:       report.Duration(),
		FinishedAt:     report.FinishedAt,
		ItemsProcessed: report.Processed,
		ItemErrors:     len(report.Errors),
		Delivered:      report.Delivered,
		DeliveryFailed: report.DeliveryFailed,
		Err:            err,
	})

	if err != nil {
		s.logger.Error("Pass failed",
			slog.String("kind", string(report.Kind)),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("Pass completed",
		slog.String("kind", string(report.Kind)),
		slog.Int("candidates", report.Candidates),
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("delivered", report.Delivered),
		slog.Int("delivery_failed", report.DeliveryFailed),
		slog.Int("item_errors", len(report.Errors)),
		slog.Duration("duration", report.Duration()),
	)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
