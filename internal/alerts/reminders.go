package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/domain"
)

const deadlineLayout = "2006-01-02"

// ReminderWindow returns the [from, to) range of deadlines that get a
// reminder: whole days from today through today+days, in UTC.
func ReminderWindow(now time.Time, days int) (from, to time.Time) {
	from = startOfDay(now)
	return from, from.AddDate(0, 0, days+1)
}

// DueForReminder reports whether an active posting's deadline falls in the window.
func DueForReminder(p *domain.Posting, from, to time.Time) bool {
	if !p.IsActive || !p.HasDeadline() {
		return false
	}
	d := *p.ApplicationDeadline
	return !d.Before(from) && d.Before(to)
}

// DaysRemaining rounds the time left up to whole days, never below zero.
func DaysRemaining(deadline, now time.Time) int {
	days := math.Ceil(deadline.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// RunDeadlineReminders notifies every student who has not applied to a
// posting whose deadline is near. One batch is sent per posting.
func (s *Scheduler) RunDeadlineReminders(ctx context.Context) (*Report, error) {
	now := s.now()
	report := newReport(domain.PassDeadlineReminders, now)
	from, to := ReminderWindow(now, s.lookaheadDays)

	qctx, cancel := s.queryContext(ctx)
	postings, err := s.store.ListUpcomingDeadlines(qctx, from, to)
	cancel()
	if err != nil {
		err = fmt.Errorf("failed to list upcoming deadlines: %w", err)
		s.finish(report, err)
		return report, err
	}

	s.logger.Info("Deadline reminder pass started",
		slog.Int("postings", len(postings)),
		slog.Time("window_from", from),
		slog.Time("window_to", to),
	)

	tasks := make([]task, 0, len(postings))
	for i := range postings {
		p := &postings[i]
		if !DueForReminder(p, from, to) {
			continue
		}
		report.Candidates++

		qctx, cancel := s.queryContext(ctx)
		students, err := s.store.ListNonApplicants(qctx, p.ID)
		cancel()
		if err != nil {
			s.logger.Error("Failed to list reminder recipients",
				slog.String("posting_id", p.ID),
				slog.Any("error", err),
			)
			report.addError(p.ID, StageQuery, err)
			continue
		}

		recipients := s.reminderRecipients(p, students, now)
		if len(recipients) == 0 {
			report.Skipped++
			continue
		}

		tasks = append(tasks, task{
			item: p.ID,
			batch: domain.NotificationBatch{
				TemplateID: s.templates.DeadlineReminder,
				Subject:    fmt.Sprintf("Application deadline approaching: %s", p.Title),
				Recipients: recipients,
			},
		})
		report.Processed++
	}

	for _, o := range s.dispatch(ctx, tasks) {
		report.absorb(o)
	}

	s.finish(report, nil)
	return report, nil
}

// reminderRecipients builds the cohort for one posting, dropping students
// without an address and duplicate addresses.
func (s *Scheduler) reminderRecipients(p *domain.Posting, students []domain.Student, now time.Time) []domain.Recipient {
	seen := make(map[string]bool, len(students))
	recipients := make([]domain.Recipient, 0, len(students))

	for _, st := range students {
		addr := strings.ToLower(strings.TrimSpace(st.Email))
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true

		recipients = append(recipients, domain.Recipient{
			UserID:  st.ID,
			Address: st.Email,
			Name:    st.Name,
			Data: map[string]any{
				"name":           st.Name,
				"job_title":      p.Title,
				"department":     p.Department,
				"deadline":       p.ApplicationDeadline.Format(deadlineLayout),
				"days_remaining": DaysRemaining(*p.ApplicationDeadline, now),
				"link":           s.postingLink(p.ID),
			},
		})
	}

	return recipients
}

func (s *Scheduler) postingLink(id string) string {
	return strings.TrimRight(s.baseURL, "/") + "/jobs/" + id
}
