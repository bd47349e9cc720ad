package domain

import (
	"strings"
	"time"
)

// Frequency is the minimum spacing between two alerts for one subscription.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
)

// ParseFrequency normalizes a stored frequency. Unrecognized values are
// returned as-is and report no interval.
func ParseFrequency(s string) Frequency {
	return Frequency(strings.ToLower(strings.TrimSpace(s)))
}

// Interval returns the minimum elapsed time before the next alert.
// ok is false for frequencies the scheduler does not recognize.
func (f Frequency) Interval() (d time.Duration, ok bool) {
	switch f {
	case FrequencyImmediate:
		return time.Hour, true
	case FrequencyDaily:
		return 24 * time.Hour, true
	case FrequencyWeekly:
		return 168 * time.Hour, true
	default:
		return 0, false
	}
}

// SearchCriteria is the standing query of a saved search.
type SearchCriteria struct {
	Query        string
	Department   string
	Category     Category
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	SortBy       string
	SortOrder    string
}

// SavedSearch is a persisted query plus alert preferences.
type SavedSearch struct {
	ID             string
	OwnerID        string
	OwnerEmail     string
	OwnerName      string
	Name           string
	Criteria       SearchCriteria
	AlertEnabled   bool
	AlertFrequency Frequency
	LastAlertSent  *time.Time
	CreatedAt      time.Time
}
