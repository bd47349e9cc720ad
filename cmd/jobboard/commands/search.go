package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/search"
	"github.com/cuongbtq/jobboard/internal/storage"
)

// SearchAction ranks active postings and prints them as a table
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	query, filter, err := buildQuery(cmd)
	if err != nil {
		return err
	}

	appCtx, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	filter.Limit = appCtx.Config.Server.SearchLimit
	postings, err := appCtx.Storage.ListActivePostings(ctx, filter)
	if err != nil {
		return err
	}

	results := search.Search(postings, query)
	return renderResults(os.Stdout, results, int(cmd.Int("limit")))
}

// SuggestAction prints completions for a partial query
func SuggestAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	postings, err := appCtx.Storage.ListActivePostings(ctx, storage.PostingFilter{Limit: appCtx.Config.Server.SearchLimit})
	if err != nil {
		return err
	}

	for _, s := range search.Suggest(cmd.String("q"), postings, int(cmd.Int("limit"))) {
		fmt.Println(s)
	}
	return nil
}

func buildQuery(cmd *cli.Command) (search.Query, storage.PostingFilter, error) {
	var q search.Query
	var filter storage.PostingFilter

	q.Text = cmd.String("q")
	q.Filters.HasCompensation = cmd.Bool("has-compensation")

	if dept := strings.TrimSpace(cmd.String("department")); dept != "" {
		q.Filters.Department = &dept
		filter.Department = dept
	}

	if c := cmd.String("category"); c != "" {
		category, err := domain.ParseCategory(c)
		if err != nil {
			return q, filter, err
		}
		q.Filters.Category = &category
		filter.Category = category
	}

	opts, err := search.ParseSortOptions(cmd.String("sort"), cmd.String("order"))
	if err != nil {
		return q, filter, err
	}
	q.Sort = opts

	return q, filter, nil
}

// renderResults prints up to limit results. limit <= 0 prints everything.
func renderResults(w io.Writer, results []search.Result, limit int) error {
	total := len(results)
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	table := tablewriter.NewWriter(w)
	table.Header("Score", "Title", "Department", "Category", "Deadline", "Matched")

	for _, r := range results {
		deadline := "-"
		if r.Posting.HasDeadline() {
			deadline = r.Posting.ApplicationDeadline.Format("2006-01-02")
		}
		if err := table.Append(
			fmt.Sprintf("%.1f", r.Score),
			r.Posting.Title,
			r.Posting.Department,
			r.Posting.Category.String(),
			deadline,
			strings.Join(r.MatchedFields, ","),
		); err != nil {
			return fmt.Errorf("failed to render row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "%d of %d results\n", len(results), total)
	return err
}
