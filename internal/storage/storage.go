// Package storage is the PostgreSQL datastore behind the search API and the
// alert scheduler.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/jobboard/internal/domain"
)

// Storage handles all database operations
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// PostingFilter narrows ListActivePostings at the database. Free-text
// ranking happens in memory afterwards.
type PostingFilter struct {
	Department string
	Category   domain.Category
	Limit      int
}

// args accumulates positional query arguments.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// ListActivePostings returns active postings, newest first.
func (s *Storage) ListActivePostings(ctx context.Context, filter PostingFilter) ([]domain.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE is_active = TRUE`
	var a args

	if filter.Department != "" {
		query += " AND department = " + a.add(filter.Department)
	}
	if filter.Category != domain.CategoryUnknown {
		query += " AND category = " + a.add(filter.Category.String())
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + a.add(filter.Limit)
	}

	var rows []postingRow
	if err := s.db.SelectContext(ctx, &rows, query, a...); err != nil {
		return nil, fmt.Errorf("failed to list active postings: %w", err)
	}

	return postingsToDomain(rows), nil
}

// ListUpcomingDeadlines returns active postings whose deadline lies in [from, to).
func (s *Storage) ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]domain.Posting, error) {
	query := `SELECT ` + postingColumns + `
		FROM postings
		WHERE is_active = TRUE
		  AND application_deadline >= $1
		  AND application_deadline < $2
		ORDER BY application_deadline ASC, id ASC
	`

	var rows []postingRow
	if err := s.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list upcoming deadlines: %w", err)
	}

	return postingsToDomain(rows), nil
}

// ListNonApplicants returns students who have no application for the posting.
func (s *Storage) ListNonApplicants(ctx context.Context, postingID string) ([]domain.Student, error) {
	query := `
		SELECT u.id, u.email, u.full_name
		FROM users u
		WHERE u.role = 'student'
		  AND NOT EXISTS (
			SELECT 1 FROM applications a
			WHERE a.posting_id = $1 AND a.student_id = u.id
		  )
		ORDER BY u.email
	`

	var rows []studentRow
	if err := s.db.SelectContext(ctx, &rows, query, postingID); err != nil {
		return nil, fmt.Errorf("failed to list non-applicants: %w", err)
	}

	students := make([]domain.Student, len(rows))
	for i, r := range rows {
		students[i] = domain.Student{ID: r.ID, Email: r.Email, Name: r.FullName.String}
	}
	return students, nil
}

// FindNewMatches returns active postings matching the criteria created at
// or after since, newest first.
func (s *Storage) FindNewMatches(ctx context.Context, c domain.SearchCriteria, since time.Time, limit int) ([]domain.Posting, error) {
	var a args
	query := `SELECT ` + postingColumns + ` FROM postings WHERE is_active = TRUE AND created_at >= ` + a.add(since)

	if q := strings.TrimSpace(c.Query); q != "" {
		pattern := a.add("%" + escapeLike(q) + "%")
		query += fmt.Sprintf(" AND (title ILIKE %s OR description ILIKE %s)", pattern, pattern)
	}
	if c.Department != "" {
		query += " AND department = " + a.add(c.Department)
	}
	if c.Category != domain.CategoryUnknown {
		query += " AND category = " + a.add(c.Category.String())
	}
	if c.DeadlineFrom != nil {
		query += " AND application_deadline >= " + a.add(*c.DeadlineFrom)
	}
	if c.DeadlineTo != nil {
		query += " AND application_deadline <= " + a.add(*c.DeadlineTo)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT " + a.add(limit)

	var rows []postingRow
	if err := s.db.SelectContext(ctx, &rows, query, a...); err != nil {
		return nil, fmt.Errorf("failed to find new matches: %w", err)
	}

	return postingsToDomain(rows), nil
}

// CloseExpiredPostings deactivates active postings whose deadline is before the cutoff.
func (s *Storage) CloseExpiredPostings(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE postings
		SET is_active = FALSE,
		    updated_at = NOW()
		WHERE is_active = TRUE
		  AND application_deadline < $1
	`

	result, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired postings: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}

// ListAlertSubscriptions returns every saved search with alerts enabled.
func (s *Storage) ListAlertSubscriptions(ctx context.Context) ([]domain.SavedSearch, error) {
	query := savedSearchSelect + ` WHERE s.alert_enabled = TRUE ORDER BY s.id`

	var rows []savedSearchRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}

	out := make([]domain.SavedSearch, 0, len(rows))
	for i := range rows {
		ss, err := rows[i].toDomain()
		if err != nil {
			s.logger.Warn("Skipping saved search with unusable criteria",
				slog.String("saved_search_id", rows[i].ID),
				slog.Any("error", err),
			)
			continue
		}
		out = append(out, ss)
	}
	return out, nil
}

// GetSavedSearch retrieves one saved search by id
func (s *Storage) GetSavedSearch(ctx context.Context, id string) (*domain.SavedSearch, error) {
	query := savedSearchSelect + ` WHERE s.id = $1`

	var row savedSearchRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSavedSearchNotFound
		}
		return nil, fmt.Errorf("failed to get saved search: %w", err)
	}

	ss, err := row.toDomain()
	if err != nil {
		s.logger.Warn("Saved search has unusable criteria, alerts disabled",
			slog.String("saved_search_id", id),
			slog.Any("error", err),
		)
	}
	return &ss, nil
}

// MarkAlertSent moves last_alert_sent forward to at. The timestamp never
// moves backwards; false is returned when a later value is already stored.
func (s *Storage) MarkAlertSent(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE saved_searches
		SET last_alert_sent = $1
		WHERE id = $2
		  AND (last_alert_sent IS NULL OR last_alert_sent <= $1)
	`

	result, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to update last alert sent: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n == 0 {
		s.logger.Warn("Last alert timestamp not updated",
			slog.String("saved_search_id", id),
			slog.Time("at", at),
		)
	}

	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
