package alerts

import (
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Eligible reports whether a subscription should fire at now. A
// subscription that never fired is eligible at once; otherwise the interval
// of its frequency must have elapsed. Unknown frequencies never fire again.
func Eligible(ss *domain.SavedSearch, now time.Time) bool {
	if !ss.AlertEnabled {
		return false
	}
	if ss.LastAlertSent == nil {
		return true
	}

	interval, ok := ss.AlertFrequency.Interval()
	if !ok {
		return false
	}
	return now.Sub(*ss.LastAlertSent) >= interval
}

// MatchWindowStart is the earliest creation time considered new for a
// subscription: the later of its last send and now minus lookback.
func MatchWindowStart(lastSent *time.Time, now time.Time, lookback time.Duration) time.Time {
	floor := now.Add(-lookback)
	if lastSent != nil && lastSent.After(floor) {
		return *lastSent
	}
	return floor
}
