package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Stage names where an item failed.
type Stage string

const (
	StageQuery    Stage = "query"
	StageLock     Stage = "lock"
	StageDispatch Stage = "dispatch"
	StageUpdate   Stage = "update"
)

// ItemError is a failure confined to one posting, subscription or recipient.
type ItemError struct {
	Item  string
	Stage Stage
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Item, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Report summarizes one pass. Item-level failures are collected in Errors
// and never abort the pass.
type Report struct {
	Kind       domain.PassKind
	StartedAt  time.Time
	FinishedAt time.Time

	Candidates     int
	Processed      int
	Skipped        int
	Delivered      int
	DeliveryFailed int
	Closed         int64

	// Updated holds the ids whose last_alert_sent was written.
	Updated []string
	Errors  []ItemError
}

func newReport(kind domain.PassKind, startedAt time.Time) *Report {
	return &Report{Kind: kind, StartedAt: startedAt}
}

// Duration is the wall time of the pass.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Err joins every item error, or returns nil when there were none.
func (r *Report) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *Report) addError(item string, stage Stage, err error) {
	r.Errors = append(r.Errors, ItemError{Item: item, Stage: stage, Err: err})
}

// absorb folds a dispatch outcome into the report.
func (r *Report) absorb(o Outcome) {
	if o.Err != nil {
		r.DeliveryFailed += o.Recipients
		r.addError(o.Item, StageDispatch, o.Err)
		return
	}
	for _, res := range o.Results {
		if res.Delivered() {
			r.Delivered++
			continue
		}
		r.DeliveryFailed++
		r.addError(o.Item+"/"+res.Address, StageDispatch, res.Err)
	}
}
