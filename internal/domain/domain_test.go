package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "research_assistant", want: CategoryResearchAssistant},
		{input: "research-assistant", want: CategoryResearchAssistant},
		{input: " Work-Study ", want: CategoryWorkStudy},
		{input: "internship", want: CategoryInternship},
		{input: "postdoc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Category {
	t.Helper()
	c, err := ParseCategory(s)
	require.NoError(t, err)
	return c
}

func TestFrequency_Interval(t *testing.T) {
	tests := []struct {
		raw    string
		want   time.Duration
		wantOK bool
	}{
		{raw: "immediate", want: time.Hour, wantOK: true},
		{raw: "Daily", want: 24 * time.Hour, wantOK: true},
		{raw: "weekly ", want: 168 * time.Hour, wantOK: true},
		{raw: "monthly", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, ok := ParseFrequency(tt.raw).Interval()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestPosting_IsExpired(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	assert.True(t, (&Posting{IsActive: true, ApplicationDeadline: &yesterday}).IsExpired(now))
	assert.False(t, (&Posting{IsActive: false, ApplicationDeadline: &yesterday}).IsExpired(now))
	assert.False(t, (&Posting{IsActive: true, ApplicationDeadline: &tomorrow}).IsExpired(now))
	assert.False(t, (&Posting{IsActive: true}).IsExpired(now))
}

func TestParsePassKind(t *testing.T) {
	k, err := ParsePassKind("close_expired")
	require.NoError(t, err)
	assert.Equal(t, PassCloseExpired, k)

	_, err = ParsePassKind("rebuild_index")
	assert.ErrorIs(t, err, ErrUnknownPassKind)
}
