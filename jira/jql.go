package jira

import (
	"fmt"
	"slices"
	"strings"

	"timesheet/internal/timeutil"
	"timesheet/worklog"
)

// NormalizeAuthors trims every author filter and drops blank ones.
func NormalizeAuthors(authors []string) []string {
	out := make([]string, 0, len(authors))
	for _, author := range authors {
		author = strings.TrimSpace(author)
		if author == "" {
			continue
		}
		out = append(out, author)
	}
	return out
}

// NormalizeBounds converts optional start and end dates to YYYY-MM-DD. Empty
// bounds stay empty.
func NormalizeBounds(start, end string) (string, string, error) {
	var err error
	if strings.TrimSpace(start) != "" {
		if start, err = timeutil.NormalizeDate(strings.TrimSpace(start)); err != nil {
			return "", "", fmt.Errorf("date format error: %w", err)
		}
	} else {
		start = ""
	}
	if strings.TrimSpace(end) != "" {
		if end, err = timeutil.NormalizeDate(strings.TrimSpace(end)); err != nil {
			return "", "", fmt.Errorf("date format error: %w", err)
		}
	} else {
		end = ""
	}
	return start, end, nil
}

// BuildQuery returns the JQL selecting issues of project with worklogs by
// authors inside the optional date bounds.
func BuildQuery(project string, authors []string, start, end string) (string, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return "", fmt.Errorf("project is required")
	}

	start, end, err := NormalizeBounds(start, end)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "project = %s", quoteJQL(project))

	switch authors = NormalizeAuthors(authors); len(authors) {
	case 0:
	case 1:
		fmt.Fprintf(&b, " AND worklogAuthor = %s", quoteJQL(authors[0]))
	default:
		quoted := make([]string, 0, len(authors))
		for _, author := range authors {
			quoted = append(quoted, quoteJQL(author))
		}
		fmt.Fprintf(&b, " AND worklogAuthor IN (%s)", strings.Join(quoted, ", "))
	}

	if start != "" {
		fmt.Fprintf(&b, " AND worklogDate >= %s", quoteJQL(start))
	}
	if end != "" {
		fmt.Fprintf(&b, " AND worklogDate <= %s", quoteJQL(end))
	}
	return b.String(), nil
}

// MatchesFilters re-checks a single worklog against the query. Bounds accept
// the same formats as BuildQuery and are compared as YYYY-MM-DD strings with
// the calendar day of started; a bound that is not a valid date matches
// nothing. Authors match on email address or display name.
func MatchesFilters(entry worklog.Entry, authors []string, start, end string) bool {
	start, end, err := NormalizeBounds(start, end)
	if err != nil {
		return false
	}
	authors = NormalizeAuthors(authors)

	day := timeutil.CalendarDay(entry.Started)
	if start != "" && day < start {
		return false
	}
	if end != "" && day > end {
		return false
	}
	if len(authors) == 0 {
		return true
	}
	return slices.Contains(authors, entry.AuthorEmail) || slices.Contains(authors, entry.Author)
}

func quoteJQL(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}
