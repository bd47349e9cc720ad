package domain

import (
	"fmt"
	"strings"
)

// PassKind identifies one of the scheduler's batch passes.
type PassKind string

const (
	PassDeadlineReminders PassKind = "deadline_reminders"
	PassSavedSearchAlerts PassKind = "saved_search_alerts"
	PassCloseExpired      PassKind = "close_expired"
)

// PassKinds lists every pass in the order a full cycle runs them.
var PassKinds = []PassKind{PassCloseExpired, PassDeadlineReminders, PassSavedSearchAlerts}

// ParsePassKind validates a pass kind received from a trigger. The CLI
// spelling with hyphens is accepted.
func ParsePassKind(s string) (PassKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range PassKinds {
		if string(k) == normalized {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPassKind, s)
}
