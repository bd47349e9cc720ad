package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

type postingRow struct {
	ID                  string         `db:"id"`
	Title               string         `db:"title"`
	Description         string         `db:"description"`
	Requirements        sql.NullString `db:"requirements"`
	Compensation        sql.NullString `db:"compensation"`
	Category            string         `db:"category"`
	Department          string         `db:"department"`
	Duration            sql.NullString `db:"duration"`
	ApplicationDeadline sql.NullTime   `db:"application_deadline"`
	IsActive            bool           `db:"is_active"`
	OwnerID             string         `db:"owner_id"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

const postingColumns = `
	id, title, description, requirements, compensation, category,
	department, duration, application_deadline, is_active, owner_id,
	created_at, updated_at
`

func (r *postingRow) toDomain() domain.Posting {
	// Unrecognized stored categories surface as CategoryUnknown.
	category, _ := domain.ParseCategory(r.Category)

	p := domain.Posting{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Requirements: r.Requirements.String,
		Compensation: r.Compensation.String,
		Category:     category,
		Department:   r.Department,
		Duration:     r.Duration.String,
		IsActive:     r.IsActive,
		OwnerID:      r.OwnerID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ApplicationDeadline.Valid {
		d := r.ApplicationDeadline.Time
		p.ApplicationDeadline = &d
	}
	return p
}

func postingsToDomain(rows []postingRow) []domain.Posting {
	out := make([]domain.Posting, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}

type studentRow struct {
	ID       string         `db:"id"`
	Email    string         `db:"email"`
	FullName sql.NullString `db:"full_name"`
}

type savedSearchRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	OwnerEmail     string         `db:"owner_email"`
	OwnerName      sql.NullString `db:"owner_name"`
	Name           string         `db:"name"`
	Query          sql.NullString `db:"query"`
	Department     sql.NullString `db:"department"`
	Category       sql.NullString `db:"category"`
	DeadlineFrom   sql.NullTime   `db:"deadline_from"`
	DeadlineTo     sql.NullTime   `db:"deadline_to"`
	SortBy         sql.NullString `db:"sort_by"`
	SortOrder      sql.NullString `db:"sort_order"`
	AlertEnabled   bool           `db:"alert_enabled"`
	AlertFrequency string         `db:"alert_frequency"`
	LastAlertSent  sql.NullTime   `db:"last_alert_sent"`
	CreatedAt      time.Time      `db:"created_at"`
}

const savedSearchSelect = `
	SELECT
		s.id, s.user_id, u.email AS owner_email, u.full_name AS owner_name,
		s.name, s.query, s.department, s.category, s.deadline_from, s.deadline_to,
		s.sort_by, s.sort_order, s.alert_enabled, s.alert_frequency,
		s.last_alert_sent, s.created_at
	FROM saved_searches s
	JOIN users u ON u.id = s.user_id
`

// toDomain converts the row. A stored category the domain does not know
// would silently widen the alert to every category, so such a saved search
// comes back with alerts disabled along with the parse error.
func (r *savedSearchRow) toDomain() (domain.SavedSearch, error) {
	var category domain.Category
	var categoryErr error
	if r.Category.Valid && r.Category.String != "" {
		category, categoryErr = domain.ParseCategory(r.Category.String)
	}

	ss := domain.SavedSearch{
		ID:         r.ID,
		OwnerID:    r.UserID,
		OwnerEmail: r.OwnerEmail,
		OwnerName:  r.OwnerName.String,
		Name:       r.Name,
		Criteria: domain.SearchCriteria{
			Query:      r.Query.String,
			Department: r.Department.String,
			Category:   category,
			SortBy:     r.SortBy.String,
			SortOrder:  r.SortOrder.String,
		},
		AlertEnabled:   r.AlertEnabled,
		AlertFrequency: domain.ParseFrequency(r.AlertFrequency),
		CreatedAt:      r.CreatedAt,
	}
	ss.Criteria.DeadlineFrom = nullTimePtr(r.DeadlineFrom)
	ss.Criteria.DeadlineTo = nullTimePtr(r.DeadlineTo)
	ss.LastAlertSent = nullTimePtr(r.LastAlertSent)

	if categoryErr != nil {
		ss.AlertEnabled = false
		return ss, fmt.Errorf("saved search %s: %w", r.ID, categoryErr)
	}
	return ss, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
