package search

import (
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Filters narrows a result set. A nil pointer leaves that dimension
// unfiltered. All set filters must hold for a posting to be kept.
type Filters struct {
	Department      *string
	Category        *domain.Category
	DeadlineFrom    *time.Time
	DeadlineTo      *time.Time
	HasCompensation bool
}

// Match reports whether the posting passes every set filter.
func (f Filters) Match(p *domain.Posting) bool {
	if f.Department != nil && *f.Department != "" && p.Department != *f.Department {
		return false
	}

	if f.Category != nil && *f.Category != domain.CategoryUnknown && p.Category != *f.Category {
		return false
	}

	if f.DeadlineFrom != nil || f.DeadlineTo != nil {
		if !p.HasDeadline() {
			return false
		}
		deadline := *p.ApplicationDeadline
		if f.DeadlineFrom != nil && deadline.Before(*f.DeadlineFrom) {
			return false
		}
		if f.DeadlineTo != nil && deadline.After(*f.DeadlineTo) {
			return false
		}
	}

	if f.HasCompensation && strings.TrimSpace(p.Compensation) == "" {
		return false
	}

	return true
}

// Query is a complete search request.
type Query struct {
	Text    string
	Filters Filters
	Sort    SortOptions
}

// Search scores every posting, drops the ones that do not match, and
// returns the remainder sorted as requested.
func Search(postings []domain.Posting, q Query) []Result {
	terms := Tokenize(q.Text)

	results := make([]Result, 0, len(postings))
	for i := range postings {
		if !q.Filters.Match(&postings[i]) {
			continue
		}
		r := Score(postings[i], terms)
		if r.Score == 0 {
			continue
		}
		results = append(results, r)
	}

	Sort(results, q.Sort)
	return results
}
