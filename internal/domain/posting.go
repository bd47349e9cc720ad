package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of position a posting advertises.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryResearchAssistant
	CategoryTeachingAssistant
	CategoryWorkStudy
	CategoryInternship
	CategoryOther
)

var categoryNames = map[Category]string{
	CategoryResearchAssistant: "research_assistant",
	CategoryTeachingAssistant: "teaching_assistant",
	CategoryWorkStudy:         "work_study",
	CategoryInternship:        "internship",
	CategoryOther:             "other",
}

// String returns the datastore representation of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return ""
}

// ParseCategory converts the datastore (or URL) form of a category.
// Hyphens and underscores are accepted interchangeably.
func ParseCategory(s string) (Category, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, name := range categoryNames {
		if name == normalized {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Posting is one job opening.
type Posting struct {
	ID                  string
	Title               string
	Description         string
	Requirements        string
	Compensation        string
	Category            Category
	Department          string
	Duration            string
	ApplicationDeadline *time.Time
	IsActive            bool
	OwnerID             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasDeadline reports whether the posting carries an application deadline.
func (p *Posting) HasDeadline() bool {
	return p.ApplicationDeadline != nil && !p.ApplicationDeadline.IsZero()
}

// IsExpired reports whether an active posting's deadline lies before now
// and it is therefore eligible for automatic closure.
func (p *Posting) IsExpired(now time.Time) bool {
	return p.IsActive && p.HasDeadline() && p.ApplicationDeadline.Before(now)
}
