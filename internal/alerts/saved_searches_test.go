package alerts

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/domain"
)

func at(d time.Duration) *time.Time {
	t := passTime.Add(d)
	return &t
}

func subscription(id string, freq domain.Frequency, last *time.Time, criteria domain.SearchCriteria) domain.SavedSearch {
	return domain.SavedSearch{
		ID:             id,
		OwnerID:        "owner-" + id,
		OwnerEmail:     id + "@example.edu",
		OwnerName:      "Owner " + id,
		Name:           "search " + id,
		Criteria:       criteria,
		AlertEnabled:   true,
		AlertFrequency: freq,
		LastAlertSent:  last,
	}
}

func TestRunSavedSearchAlerts_NeverSentWithNoMatches(t *testing.T) {
	store := newFakeStore()
	store.addSearch(subscription("weekly", domain.FrequencyWeekly, nil, domain.SearchCriteria{Query: "astronomy"}))
	transport := &fakeTransport{}

	report, err := newTestScheduler(t, store, transport, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	assert.Empty(t, transport.sent())
	require.NotNil(t, store.lastAlertSent("weekly"))
	assert.Equal(t, passTime, *store.lastAlertSent("weekly"))
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, []string{"weekly"}, report.Updated)
}

func TestRunSavedSearchAlerts_TimestampAdvancesRegardlessOfOutcome(t *testing.T) {
	store := newFakeStore()
	store.postings = []domain.Posting{
		{ID: "p1", Title: "Chemistry Tutor", Department: "Chemistry", IsActive: true, CreatedAt: passTime.Add(-time.Hour)},
		{ID: "p2", Title: "Biology Lab Aide", Department: "Biology", IsActive: true, CreatedAt: passTime.Add(-2 * time.Hour)},
	}
	store.addSearch(subscription("delivered", domain.FrequencyDaily, at(-48*time.Hour), domain.SearchCriteria{Query: "tutor"}))
	store.addSearch(subscription("rejected", domain.FrequencyImmediate, nil, domain.SearchCriteria{Department: "Biology"}))
	store.addSearch(subscription("empty", domain.FrequencyWeekly, at(-200*time.Hour), domain.SearchCriteria{Query: "astronomy"}))
	store.addSearch(subscription("failed", domain.FrequencyDaily, nil, domain.SearchCriteria{Query: "lab"}))

	transport := &fakeTransport{
		rejectItems:   map[string]bool{"search rejected": true},
		failAddresses: map[string]bool{"failed@example.edu": true},
	}

	report, err := newTestScheduler(t, store, transport, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	for _, id := range []string{"delivered", "rejected", "empty", "failed"} {
		last := store.lastAlertSent(id)
		require.NotNil(t, last, id)
		assert.Equal(t, passTime, *last, id)
	}

	assert.Len(t, transport.sent(), 3)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, 2, report.DeliveryFailed)
	assert.Len(t, report.Errors, 2)
}

func TestRunSavedSearchAlerts_FrequencyGating(t *testing.T) {
	store := newFakeStore()
	store.postings = []domain.Posting{
		{ID: "p1", Title: "Tutor", IsActive: true, CreatedAt: passTime.Add(-time.Minute)},
	}
	tooSoon := at(-23 * time.Hour)
	store.addSearch(subscription("daily-23h", domain.FrequencyDaily, tooSoon, domain.SearchCriteria{Query: "tutor"}))
	store.addSearch(subscription("daily-24h", domain.FrequencyDaily, at(-24*time.Hour), domain.SearchCriteria{Query: "tutor"}))
	store.addSearch(subscription("unknown", domain.Frequency("hourly"), at(-1000*time.Hour), domain.SearchCriteria{Department: "x"}))
	transport := &fakeTransport{}

	report, err := newTestScheduler(t, store, transport, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, tooSoon, store.lastAlertSent("daily-23h"))
	assert.Equal(t, passTime, *store.lastAlertSent("daily-24h"))
	assert.Equal(t, passTime.Add(-1000*time.Hour), *store.lastAlertSent("unknown"))

	batches := transport.sent()
	require.Len(t, batches, 1)
	assert.Equal(t, "daily-24h@example.edu", batches[0].Recipients[0].Address)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 2, report.Skipped)
}

func TestRunSavedSearchAlerts_MatchWindow(t *testing.T) {
	store := newFakeStore()
	store.addSearch(subscription("fresh", domain.FrequencyWeekly, nil, domain.SearchCriteria{Query: "a"}))
	store.addSearch(subscription("recent", domain.FrequencyImmediate, at(-2*time.Hour), domain.SearchCriteria{Query: "b"}))
	store.addSearch(subscription("stale", domain.FrequencyDaily, at(-30*time.Hour), domain.SearchCriteria{Query: "c"}))

	_, err := newTestScheduler(t, store, &fakeTransport{}, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, passTime.Add(-24*time.Hour), store.sinceBySearch["fresh"])
	assert.Equal(t, passTime.Add(-2*time.Hour), store.sinceBySearch["recent"])
	assert.Equal(t, passTime.Add(-24*time.Hour), store.sinceBySearch["stale"])
}

func TestRunSavedSearchAlerts_CapsAndOrdersMatches(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 12; i++ {
		store.postings = append(store.postings, domain.Posting{
			ID:        fmt.Sprintf("p%02d", i),
			Title:     "Research Assistant",
			IsActive:  true,
			CreatedAt: passTime.Add(-time.Duration(12-i) * time.Minute),
		})
	}
	store.addSearch(subscription("ra", domain.FrequencyDaily, nil, domain.SearchCriteria{Query: "research"}))
	transport := &fakeTransport{}

	_, err := newTestScheduler(t, store, transport, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	batches := transport.sent()
	require.Len(t, batches, 1)
	assert.Equal(t, "saved-search-alert", batches[0].TemplateID)

	data := batches[0].Recipients[0].Data
	jobs, ok := data["jobs"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, jobs, 10)
	assert.Equal(t, "p11", jobs[0]["id"])
	assert.Equal(t, "p02", jobs[9]["id"])
	assert.Equal(t, 4.5, jobs[0]["score"])
	assert.Equal(t, 10, data["match_count"])
}

func TestRunSavedSearchAlerts_QueryFailureKeepsTimestamp(t *testing.T) {
	store := newFakeStore()
	store.addSearch(subscription("broken", domain.FrequencyDaily, nil, domain.SearchCriteria{Query: "broken"}))
	store.addSearch(subscription("ok", domain.FrequencyDaily, nil, domain.SearchCriteria{Query: "ok"}))
	store.matchErr["broken"] = errDatabase

	report, err := newTestScheduler(t, store, &fakeTransport{}, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	assert.Nil(t, store.lastAlertSent("broken"))
	assert.NotNil(t, store.lastAlertSent("ok"))
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "broken", report.Errors[0].Item)
	assert.Equal(t, StageQuery, report.Errors[0].Stage)
}

func TestRunSavedSearchAlerts_LeaseHeldElsewhere(t *testing.T) {
	store := newFakeStore()
	store.addSearch(subscription("busy", domain.FrequencyDaily, nil, domain.SearchCriteria{}))
	locker := newFakeLocker()
	locker.held[lockKeyPrefix+"busy"] = true

	report, err := newTestScheduler(t, store, &fakeTransport{}, locker).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	assert.Nil(t, store.lastAlertSent("busy"))
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Errors)
}

func TestRunSavedSearchAlerts_RereadsAfterLease(t *testing.T) {
	store := newFakeStore()
	store.postings = []domain.Posting{
		{ID: "p1", Title: "Tutor", IsActive: true, CreatedAt: passTime.Add(-time.Minute)},
	}
	stale := subscription("raced", domain.FrequencyDaily, nil, domain.SearchCriteria{Query: "tutor"})
	store.staleList = []domain.SavedSearch{stale}

	current := stale
	current.LastAlertSent = at(-10 * time.Minute)
	store.addSearch(current)
	transport := &fakeTransport{}

	report, err := newTestScheduler(t, store, transport, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	require.NoError(t, err)

	assert.Empty(t, transport.sent())
	assert.Equal(t, 0, store.markCalls)
	assert.Equal(t, 1, report.Skipped)
}

func TestRunSavedSearchAlerts_ConcurrentPassesFireOnce(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 20; i++ {
		store.postings = append(store.postings, domain.Posting{
			ID: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Job %d", i), IsActive: true, CreatedAt: passTime.Add(-time.Minute),
		})
		store.addSearch(subscription(fmt.Sprintf("s%02d", i), domain.FrequencyImmediate, nil, domain.SearchCriteria{Query: fmt.Sprintf("job %d", i)}))
	}
	transport := &fakeTransport{}
	locker := newFakeLocker()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		s := newTestScheduler(t, store, transport, locker)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RunSavedSearchAlerts(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	perOwner := map[string]int{}
	for _, b := range transport.sent() {
		perOwner[b.Recipients[0].Address]++
	}
	assert.Len(t, perOwner, 20)
	for addr, n := range perOwner {
		assert.Equal(t, 1, n, addr)
	}
}

func TestRunSavedSearchAlerts_TopLevelFailure(t *testing.T) {
	store := newFakeStore()
	store.listSearchesErr = errDatabase

	_, err := newTestScheduler(t, store, &fakeTransport{}, newFakeLocker()).RunSavedSearchAlerts(context.Background())
	assert.ErrorIs(t, err, errDatabase)
}
