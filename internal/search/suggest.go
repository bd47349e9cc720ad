package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cuongbtq/jobboard/internal/domain"
)

const (
	// DefaultSuggestionLimit caps the completions returned by Suggest.
	DefaultSuggestionLimit = 5

	minSuggestionLength = 3
)

// Suggest returns lowercase words from the postings that start with the
// partial query, at most DefaultSuggestionLimit of them. The query itself
// and words shorter than three characters are never suggested.
func Suggest(query string, postings []domain.Posting, limit int) []string {
	prefix := strings.ToLower(strings.TrimSpace(query))
	if prefix == "" {
		return []string{}
	}
	if limit <= 0 || limit > DefaultSuggestionLimit {
		limit = DefaultSuggestionLimit
	}

	suggestions := make([]string, 0, limit)
	seen := make(map[string]bool)

	for i := range postings {
		p := &postings[i]
		for _, text := range []string{p.Title, p.Department, p.Category.String(), p.Description} {
			for _, word := range words(text) {
				if utf8.RuneCountInString(word) < minSuggestionLength || word == prefix || seen[word] {
					continue
				}
				if !strings.HasPrefix(word, prefix) {
					continue
				}
				seen[word] = true
				suggestions = append(suggestions, word)
				if len(suggestions) == limit {
					return suggestions
				}
			}
		}
	}

	return suggestions
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
