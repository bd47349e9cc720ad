// Package search ranks, filters and sorts job postings against a free-text
// query. It performs no I/O; callers supply the postings.
package search

import (
	"strings"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Field names reported in Result.MatchedFields.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldRequirements = "requirements"
	FieldDepartment   = "department"
	FieldCategory     = "category"
	FieldCompensation = "compensation"
)

const (
	exactMultiplier     = 2.0
	wordMultiplier      = 1.5
	substringMultiplier = 1.0
)

type weightedField struct {
	name   string
	weight float64
	value  func(p *domain.Posting) string
}

// scoredFields is evaluated in order; MatchedFields preserves this order
// within a single term.
var scoredFields = []weightedField{
	{FieldTitle, 3, func(p *domain.Posting) string { return p.Title }},
	{FieldDescription, 2, func(p *domain.Posting) string { return p.Description }},
	{FieldRequirements, 2, func(p *domain.Posting) string { return p.Requirements }},
	{FieldDepartment, 1.5, func(p *domain.Posting) string { return p.Department }},
	{FieldCategory, 1, func(p *domain.Posting) string { return p.Category.String() }},
	{FieldCompensation, 1, func(p *domain.Posting) string { return p.Compensation }},
}

// Result pairs a posting with its relevance score.
type Result struct {
	Posting       domain.Posting
	Score         float64
	MatchedFields []string
}

// Tokenize lowercases a query and splits it into whitespace-separated terms.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score computes the weighted relevance of a posting for the given terms.
// With no terms the posting is a neutral match with score 1.
func Score(p domain.Posting, terms []string) Result {
	result := Result{Posting: p, MatchedFields: []string{}}
	if len(terms) == 0 {
		result.Score = 1
		return result
	}

	values := make([]string, len(scoredFields))
	for i, f := range scoredFields {
		values[i] = strings.ToLower(f.value(&p))
	}

	seen := make(map[string]bool, len(scoredFields))
	for _, term := range terms {
		if term == "" {
			continue
		}
		for i, f := range scoredFields {
			multiplier := matchMultiplier(values[i], term)
			if multiplier == 0 {
				continue
			}
			result.Score += f.weight * multiplier
			if !seen[f.name] {
				seen[f.name] = true
				result.MatchedFields = append(result.MatchedFields, f.name)
			}
		}
	}

	return result
}

// matchMultiplier grades how term occurs in value: 0 when absent.
func matchMultiplier(value, term string) float64 {
	if value == "" || !strings.Contains(value, term) {
		return 0
	}
	if value == term {
		return exactMultiplier
	}
	if containsWord(value, term) {
		return wordMultiplier
	}
	return substringMultiplier
}

// containsWord reports whether term occurs in value delimited by word
// boundaries on both sides. Word characters are ASCII letters, digits and
// underscore.
func containsWord(value, term string) bool {
	for offset := 0; offset <= len(value)-len(term); {
		idx := strings.Index(value[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		if boundaryAt(value, start) && boundaryAt(value, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

// boundaryAt reports whether a word boundary sits between value[i-1] and value[i].
func boundaryAt(value string, i int) bool {
	before := i > 0 && isWordByte(value[i-1])
	after := i < len(value) && isWordByte(value[i])
	return before != after
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
