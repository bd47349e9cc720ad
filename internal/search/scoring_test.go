package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuongbtq/jobboard/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty", query: "", want: []string{}},
		{name: "whitespace only", query: "  \t ", want: []string{}},
		{name: "mixed case", query: "Research  LAB", want: []string{"research", "lab"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.query)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		posting    domain.Posting
		terms      []string
		wantScore  float64
		wantFields []string
	}{
		{
			name:       "whole word in title",
			posting:    domain.Posting{Title: "Research Assistant", Department: "Biology"},
			terms:      []string{"research"},
			wantScore:  4.5,
			wantFields: []string{"title"},
		},
		{
			name:       "empty terms is a neutral match",
			posting:    domain.Posting{Title: "Research Assistant"},
			terms:      nil,
			wantScore:  1,
			wantFields: []string{},
		},
		{
			name:       "exact full-field match",
			posting:    domain.Posting{Department: "Biology"},
			terms:      []string{"biology"},
			wantScore:  3,
			wantFields: []string{"department"},
		},
		{
			name:       "substring only",
			posting:    domain.Posting{Title: "Researcher"},
			terms:      []string{"research"},
			wantScore:  3,
			wantFields: []string{"title"},
		},
		{
			name: "same term in two fields scores both",
			posting: domain.Posting{
				Title:       "Lab Assistant",
				Description: "Help in the lab",
			},
			terms:      []string{"lab"},
			wantScore:  4.5 + 3,
			wantFields: []string{"title", "description"},
		},
		{
			name: "matched fields keep first-match order across terms",
			posting: domain.Posting{
				Title:      "Lab Assistant",
				Department: "Chemistry",
			},
			terms:      []string{"chemistry", "lab"},
			wantScore:  3 + 4.5,
			wantFields: []string{"department", "title"},
		},
		{
			name:       "category uses its stored name",
			posting:    domain.Posting{Category: domain.CategoryWorkStudy},
			terms:      []string{"work"},
			wantScore:  1,
			wantFields: []string{"category"},
		},
		{
			name:       "no match",
			posting:    domain.Posting{Title: "Tutor", Department: "Math"},
			terms:      []string{"chemistry"},
			wantScore:  0,
			wantFields: []string{},
		},
		{
			name:       "absent fields are empty",
			posting:    domain.Posting{},
			terms:      []string{"anything"},
			wantScore:  0,
			wantFields: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.posting, tt.terms)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantFields, got.MatchedFields)
		})
	}
}

func TestScore_Monotonic(t *testing.T) {
	base := domain.Posting{
		Title:        "Teaching Assistant",
		Description:  "Grade calculus homework",
		Requirements: "Completed calculus",
		Department:   "Mathematics",
		Compensation: "$15/hr",
	}

	terms := []string{"calculus"}
	before := Score(base, terms).Score

	withTitle := base
	withTitle.Title = "Calculus Teaching Assistant"
	after := Score(withTitle, terms).Score
	assert.Greater(t, after, before)

	more := Score(base, append(terms, "mathematics")).Score
	assert.GreaterOrEqual(t, more, before)

	unrelated := Score(base, append(terms, "zoology")).Score
	assert.Equal(t, before, unrelated)
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		value string
		term  string
		want  bool
	}{
		{"research assistant", "research", true},
		{"researcher", "research", false},
		{"pre-research", "research", true},
		{"research_assistant", "research", false},
		{"an undergraduate researcher in research", "research", true},
		{"c++ developer", "c++", false},
	}

	for _, tt := range tests {
		t.Run(tt.value+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, containsWord(tt.value, tt.term))
		})
	}
}
