package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/search"
	"github.com/cuongbtq/jobboard/internal/storage"
)

const dateLayout = "2006-01-02"

// buildQuery turns query parameters into a search query and the matching
// datastore pre-filter.
func buildQuery(req *dto.SearchPostingsRequest) (search.Query, storage.PostingFilter, error) {
	var q search.Query
	var filter storage.PostingFilter

	q.Text = req.Query

	if dept := strings.TrimSpace(req.Department); dept != "" {
		q.Filters.Department = &dept
		filter.Department = dept
	}

	if req.Category != "" {
		category, err := domain.ParseCategory(req.Category)
		if err != nil {
			return q, filter, err
		}
		q.Filters.Category = &category
		filter.Category = category
	}

	from, err := parseDeadline(req.DeadlineFrom, false)
	if err != nil {
		return q, filter, fmt.Errorf("invalid deadline_from: %w", err)
	}
	to, err := parseDeadline(req.DeadlineTo, true)
	if err != nil {
		return q, filter, fmt.Errorf("invalid deadline_to: %w", err)
	}
	q.Filters.DeadlineFrom = from
	q.Filters.DeadlineTo = to
	q.Filters.HasCompensation = req.HasCompensation

	q.Sort, err = search.ParseSortOptions(req.Sort, req.Order)
	if err != nil {
		return q, filter, err
	}

	return q, filter, nil
}

// parseDeadline accepts a date or an RFC 3339 timestamp. A bare date used
// as an upper bound covers the whole day.
func parseDeadline(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func toPostingResult(r search.Result) dto.PostingResult {
	p := r.Posting
	out := dto.PostingResult{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Requirements:  p.Requirements,
		Compensation:  p.Compensation,
		Category:      p.Category.String(),
		Department:    p.Department,
		Duration:      p.Duration,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		Score:         r.Score,
		MatchedFields: r.MatchedFields,
	}
	if p.HasDeadline() {
		deadline := p.ApplicationDeadline.UTC().Format(time.RFC3339)
		out.ApplicationDeadline = &deadline
	}
	return out
}
