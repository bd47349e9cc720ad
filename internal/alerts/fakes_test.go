package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

var errDatabase = errors.New("connection refused")

type fakeStore struct {
	mu sync.Mutex

	postings     []domain.Posting
	students     []domain.Student
	applications map[string][]string // posting id -> student ids
	searches     map[string]*domain.SavedSearch
	staleList    []domain.SavedSearch

	listPostingsErr error
	nonApplicantErr map[string]error
	listSearchesErr error
	matchErr        map[string]error
	markErr         error

	sinceBySearch map[string]time.Time
	markCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		applications:    make(map[string][]string),
		searches:        make(map[string]*domain.SavedSearch),
		nonApplicantErr: make(map[string]error),
		matchErr:        make(map[string]error),
		sinceBySearch:   make(map[string]time.Time),
	}
}

func (f *fakeStore) addSearch(ss domain.SavedSearch) {
	f.searches[ss.ID] = &ss
}

func (f *fakeStore) lastAlertSent(id string) *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[id].LastAlertSent
}

func (f *fakeStore) ListUpcomingDeadlines(_ context.Context, from, to time.Time) ([]domain.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listPostingsErr != nil {
		return nil, f.listPostingsErr
	}

	var out []domain.Posting
	for _, p := range f.postings {
		if !p.IsActive || p.ApplicationDeadline == nil {
			continue
		}
		if p.ApplicationDeadline.Before(from) || !p.ApplicationDeadline.Before(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListNonApplicants(_ context.Context, postingID string) ([]domain.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.nonApplicantErr[postingID]; err != nil {
		return nil, err
	}

	var out []domain.Student
	for _, st := range f.students {
		if !slices.Contains(f.applications[postingID], st.ID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAlertSubscriptions(context.Context) ([]domain.SavedSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listSearchesErr != nil {
		return nil, f.listSearchesErr
	}
	if f.staleList != nil {
		return f.staleList, nil
	}

	ids := make([]string, 0, len(f.searches))
	for id := range f.searches {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []domain.SavedSearch
	for _, id := range ids {
		if ss := f.searches[id]; ss.AlertEnabled {
			out = append(out, *ss)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSavedSearch(_ context.Context, id string) (*domain.SavedSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ss, ok := f.searches[id]
	if !ok {
		return nil, domain.ErrSavedSearchNotFound
	}
	cp := *ss
	return &cp, nil
}

func (f *fakeStore) FindNewMatches(_ context.Context, c domain.SearchCriteria, since time.Time, limit int) ([]domain.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, ss := range f.searches {
		if ss.Criteria == c {
			if err := f.matchErr[id]; err != nil {
				return nil, err
			}
			f.sinceBySearch[id] = since
		}
	}

	var out []domain.Posting
	for _, p := range f.postings {
		if !p.IsActive || p.CreatedAt.Before(since) {
			continue
		}
		if c.Department != "" && p.Department != c.Department {
			continue
		}
		if c.Category != domain.CategoryUnknown && p.Category != c.Category {
			continue
		}
		if q := strings.ToLower(c.Query); q != "" &&
			!strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b domain.Posting) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MarkAlertSent(_ context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.markCalls++
	if f.markErr != nil {
		return false, f.markErr
	}

	ss, ok := f.searches[id]
	if !ok {
		return false, nil
	}
	if ss.LastAlertSent != nil && ss.LastAlertSent.After(at) {
		return false, nil
	}
	ss.LastAlertSent = &at
	return true, nil
}

func (f *fakeStore) CloseExpiredPostings(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listPostingsErr != nil {
		return 0, f.listPostingsErr
	}

	var n int64
	for i := range f.postings {
		p := &f.postings[i]
		if p.IsActive && p.ApplicationDeadline != nil && p.ApplicationDeadline.Before(before) {
			p.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeTransport struct {
	mu sync.Mutex

	batches       []domain.NotificationBatch
	failAddresses map[string]bool
	rejectItems   map[string]bool // subject substring -> reject whole batch
}

func (f *fakeTransport) Send(_ context.Context, batch domain.NotificationBatch) ([]domain.DeliveryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches = append(f.batches, batch)

	for marker := range f.rejectItems {
		if strings.Contains(batch.Subject, marker) {
			return nil, errors.New("transport unavailable")
		}
	}

	results := make([]domain.DeliveryResult, len(batch.Recipients))
	for i, r := range batch.Recipients {
		results[i] = domain.DeliveryResult{Address: r.Address}
		if f.failAddresses[r.Address] {
			results[i].Err = errors.New("mailbox unavailable")
		}
	}
	return results, nil
}

func (f *fakeTransport) sent() []domain.NotificationBatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.batches)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, false, l.err
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
