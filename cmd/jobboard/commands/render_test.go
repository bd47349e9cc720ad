package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/alerts"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/search"
)

func TestRenderResults(t *testing.T) {
	deadline := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	results := []search.Result{
		{
			Posting: domain.Posting{
				Title:               "Research Assistant",
				Department:          "Biology",
				Category:            domain.CategoryResearchAssistant,
				ApplicationDeadline: &deadline,
			},
			Score:         4.5,
			MatchedFields: []string{"title"},
		},
		{
			Posting: domain.Posting{Title: "Library Aide", Department: "Library"},
			Score:   1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderResults(&buf, results, 1))

	out := buf.String()
	assert.Contains(t, out, "Research Assistant")
	assert.Contains(t, out, "2026-10-20")
	assert.Contains(t, out, "4.5")
	assert.NotContains(t, out, "Library Aide")
	assert.Contains(t, out, "1 of 2 results")
}

func TestRenderReport(t *testing.T) {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	report := &alerts.Report{
		Kind:       domain.PassSavedSearchAlerts,
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Candidates: 3,
		Processed:  2,
		Delivered:  4,
		Errors: []alerts.ItemError{
			{Item: "ss-9", Stage: alerts.StageQuery, Err: errors.New("statement timeout")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "saved_search_alerts")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "ss-9")
	assert.Contains(t, out, "statement timeout")
	assert.NotContains(t, out, "Closed")
}

func TestRenderReport_ClosedCount(t *testing.T) {
	report := &alerts.Report{Kind: domain.PassCloseExpired, Closed: 7}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, report))
	assert.Contains(t, buf.String(), "Closed")
}
