package storage

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/domain"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% remote`, escapeLike("100% remote"))
	assert.Equal(t, `work\_study`, escapeLike("work_study"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestArgs_Add(t *testing.T) {
	var a args
	assert.Equal(t, "$1", a.add("x"))
	assert.Equal(t, "$2", a.add(3))
	assert.Equal(t, args{"x", 3}, a)
}

func TestPostingRow_ToDomain(t *testing.T) {
	deadline := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	row := postingRow{
		ID:                  "p1",
		Title:               "Lab Tech",
		Category:            "teaching_assistant",
		Compensation:        sql.NullString{String: "$15/hr", Valid: true},
		ApplicationDeadline: sql.NullTime{Time: deadline, Valid: true},
		IsActive:            true,
	}

	p := row.toDomain()
	assert.Equal(t, domain.CategoryTeachingAssistant, p.Category)
	assert.Equal(t, "$15/hr", p.Compensation)
	assert.Empty(t, p.Requirements)
	if assert.NotNil(t, p.ApplicationDeadline) {
		assert.Equal(t, deadline, *p.ApplicationDeadline)
	}

	row.Category = "postdoc"
	row.ApplicationDeadline = sql.NullTime{}
	p = row.toDomain()
	assert.Equal(t, domain.CategoryUnknown, p.Category)
	assert.Nil(t, p.ApplicationDeadline)
}

func TestSavedSearchRow_ToDomain(t *testing.T) {
	last := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	row := savedSearchRow{
		ID:             "s1",
		UserID:         "u1",
		OwnerEmail:     "ada@example.edu",
		Name:           "bio jobs",
		Query:          sql.NullString{String: "lab", Valid: true},
		Category:       sql.NullString{String: "research_assistant", Valid: true},
		AlertEnabled:   true,
		AlertFrequency: " Daily",
		LastAlertSent:  sql.NullTime{Time: last, Valid: true},
	}

	ss, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, "u1", ss.OwnerID)
	assert.True(t, ss.AlertEnabled)
	assert.Equal(t, "lab", ss.Criteria.Query)
	assert.Equal(t, domain.CategoryResearchAssistant, ss.Criteria.Category)
	assert.Equal(t, domain.FrequencyDaily, ss.AlertFrequency)
	assert.Nil(t, ss.Criteria.DeadlineFrom)
	if assert.NotNil(t, ss.LastAlertSent) {
		assert.Equal(t, last, *ss.LastAlertSent)
	}
}

func TestSavedSearchRow_ToDomain_UnknownCategory(t *testing.T) {
	tests := []struct {
		name        string
		category    sql.NullString
		wantErr     bool
		wantEnabled bool
	}{
		{name: "no category", category: sql.NullString{}, wantEnabled: true},
		{name: "empty category", category: sql.NullString{String: "", Valid: true}, wantEnabled: true},
		{name: "known category", category: sql.NullString{String: "Work-Study", Valid: true}, wantEnabled: true},
		{name: "unknown category", category: sql.NullString{String: "astronaut", Valid: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := savedSearchRow{
				ID:             "s1",
				Category:       tt.category,
				AlertEnabled:   true,
				AlertFrequency: "daily",
			}

			ss, err := row.toDomain()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidCategory)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantEnabled, ss.AlertEnabled)
		})
	}
}
