package search

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField selects the key results are ordered by.
type SortField string

const (
	SortCreatedAt    SortField = "created_at"
	SortTitle        SortField = "title"
	SortDeadline     SortField = "deadline"
	SortDepartment   SortField = "department"
	SortCompensation SortField = "compensation"
	SortRelevance    SortField = "relevance"
)

// ParseSortField accepts the field names used by the API and saved searches.
// An empty string selects the default ordering.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return "", nil
	case SortCreatedAt, SortTitle, SortDeadline, SortDepartment, SortCompensation, SortRelevance:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// SortOptions controls result ordering. The zero value orders by creation
// time, newest first.
type SortOptions struct {
	Field     SortField
	Ascending bool
}

// ParseSortOptions builds options from a field name and an "asc"/"desc"
// order. An empty order picks the natural direction for the field: newest
// and most relevant first, everything else A to Z.
func ParseSortOptions(field, order string) (SortOptions, error) {
	f, err := ParseSortField(field)
	if err != nil {
		return SortOptions{}, err
	}

	opts := SortOptions{Field: f}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "":
		opts.Ascending = f != "" && f != SortCreatedAt && f != SortRelevance
	case "asc":
		opts.Ascending = true
	case "desc":
		opts.Ascending = false
	default:
		return SortOptions{}, fmt.Errorf("unknown sort order %q", order)
	}
	return opts, nil
}

// Sort orders results in place. The sort is stable so equal keys keep
// their incoming order.
func Sort(results []Result, opts SortOptions) {
	field := opts.Field
	ascending := opts.Ascending
	if field == "" {
		field = SortCreatedAt
		ascending = false
	}

	cmp := comparator(field)
	slices.SortStableFunc(results, func(a, b Result) int {
		c := cmp(&a, &b)
		if !ascending {
			c = -c
		}
		return c
	})
}

// SortByRelevance orders postings by the scores in scored. Postings absent
// from scored rank with score 0.
func SortByRelevance(results []Result, scored []Result, ascending bool) {
	scores := make(map[string]float64, len(scored))
	for _, r := range scored {
		scores[r.Posting.ID] = r.Score
	}
	for i := range results {
		results[i].Score = scores[results[i].Posting.ID]
	}
	Sort(results, SortOptions{Field: SortRelevance, Ascending: ascending})
}

func comparator(field SortField) func(a, b *Result) int {
	switch field {
	case SortTitle:
		// collate.Collator is not safe for concurrent use; one per sort call.
		collator := collate.New(language.English)
		return func(a, b *Result) int {
			return collator.CompareString(a.Posting.Title, b.Posting.Title)
		}
	case SortDeadline:
		return func(a, b *Result) int {
			return compareDeadlines(a.Posting.ApplicationDeadline, b.Posting.ApplicationDeadline)
		}
	case SortDepartment:
		return func(a, b *Result) int {
			return strings.Compare(a.Posting.Department, b.Posting.Department)
		}
	case SortCompensation:
		// Free-text comparison; "$9/hr" sorts after "$15/hr".
		return func(a, b *Result) int {
			return strings.Compare(a.Posting.Compensation, b.Posting.Compensation)
		}
	case SortRelevance:
		return func(a, b *Result) int {
			switch {
			case a.Score < b.Score:
				return -1
			case a.Score > b.Score:
				return 1
			default:
				return 0
			}
		}
	default:
		return func(a, b *Result) int {
			return a.Posting.CreatedAt.Compare(b.Posting.CreatedAt)
		}
	}
}

// compareDeadlines treats a missing deadline as later than any date.
func compareDeadlines(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
