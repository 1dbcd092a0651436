package timesheet

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"timesheet/jira"
	"timesheet/output"
	"timesheet/worklog"
)

// DefaultConcurrency fetches issue worklogs one issue at a time.
const DefaultConcurrency = 1

var issueFields = []string{"key", "summary"}

// Query selects the worklogs of a timesheet. Start and End accept
// DD.MM.YYYY or YYYY-MM-DD and may be empty.
type Query struct {
	Project string
	Authors []string
	Start   string
	End     string
}

type Service struct {
	client      jira.Client
	logger      zerolog.Logger
	concurrency int
}

func NewService(client jira.Client, logger zerolog.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		client:      client,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Collect searches the issues matching q and returns their worklogs sorted by
// start time. A failure to load one issue's worklogs is logged and that issue
// is skipped.
func (s *Service) Collect(ctx context.Context, q Query) ([]worklog.Entry, error) {
	authors := jira.NormalizeAuthors(q.Authors)
	start, end, err := jira.NormalizeBounds(q.Start, q.End)
	if err != nil {
		return nil, err
	}
	jql, err := jira.BuildQuery(q.Project, authors, start, end)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("project", q.Project).Msg("searching for issues")
	s.logger.Debug().Str("jql", jql).Msg("issue query")

	issues, err := s.client.SearchIssues(ctx, jql, issueFields)
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	if len(issues) == 0 {
		s.logger.Warn().Msg("no issues found matching criteria")
		return []worklog.Entry{}, nil
	}
	s.logger.Info().Int("issues", len(issues)).Msg("found issues, getting worklogs")

	perIssue := make([][]worklog.Entry, len(issues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, issue := range issues {
		g.Go(func() error {
			worklogs, err := s.client.IssueWorklogs(gctx, issue.Key)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn().Err(err).Str("issue", issue.Key).Msg("getting worklogs failed, skipping issue")
				return nil
			}
			perIssue[i] = s.issueEntries(issue, worklogs, authors, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]worklog.Entry, 0)
	for _, chunk := range perIssue {
		entries = append(entries, chunk...)
	}
	s.logger.Debug().Int("worklogs", len(entries)).Msg("collected worklogs")
	return worklog.SortByStarted(entries), nil
}

// Generate collects the worklogs for q and renders them in format.
func (s *Service) Generate(ctx context.Context, q Query, format string, opts output.Options) ([]byte, error) {
	renderer, err := output.RendererForFormat(format)
	if err != nil {
		return nil, err
	}
	entries, err := s.Collect(ctx, q)
	if err != nil {
		return nil, err
	}
	content, err := renderer.Render(entries, opts)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", output.NormalizeFormat(format), err)
	}
	return content, nil
}

// issueEntries maps the worklogs of one issue and drops those outside the
// filters. Negative durations are rejected here so the formatter never sees them.
func (s *Service) issueEntries(issue jira.Issue, worklogs []jira.Worklog, authors []string, start, end string) []worklog.Entry {
	out := make([]worklog.Entry, 0, len(worklogs))
	for _, w := range worklogs {
		if w.TimeSpentSeconds < 0 {
			s.logger.Warn().Str("issue", issue.Key).Str("worklog", w.ID).Int("seconds", w.TimeSpentSeconds).Msg("negative duration, skipping worklog")
			continue
		}
		entry := worklog.Entry{
			IssueKey:         issue.Key,
			IssueSummary:     issue.Fields.Summary,
			Author:           w.Author.DisplayName,
			TimeSpent:        w.TimeSpent,
			TimeSpentSeconds: w.TimeSpentSeconds,
			Comment:          jira.CommentText(w.Comment),
			Started:          w.Started,
			Created:          w.Created,
			AuthorEmail:      w.Author.EmailAddress,
		}
		if !jira.MatchesFilters(entry, authors, start, end) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
