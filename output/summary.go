package output

import (
	"fmt"

	"timesheet/internal/timeutil"
	"timesheet/worklog"
)

// DaySummary is one author's sorted entries for one day with their totals.
type DaySummary struct {
	Label        string
	Entries      []worklog.Entry
	TotalSeconds int
}

// EntryCount is the number of worklogs on the day.
func (d DaySummary) EntryCount() int {
	return len(d.Entries)
}

// AuthorSummary groups one author's days in chronological order.
type AuthorSummary struct {
	Author       string
	Days         []DaySummary
	TotalSeconds int
	EntryCount   int
}

// Summary is the render-ready form shared by every grouped format, so all of
// them report identical totals.
type Summary struct {
	Authors      []AuthorSummary
	TotalSeconds int
	EntryCount   int
}

// AuthorCount is the number of distinct authors.
func (s Summary) AuthorCount() int {
	return len(s.Authors)
}

// BuildSummary groups entries by author and day in timezone and sorts days
// and entries chronologically.
func BuildSummary(entries []worklog.Entry, timezone string) Summary {
	loc, _ := timeutil.ResolveLocation(timezone)
	grouped := worklog.GroupInLocation(entries, loc)

	summary := Summary{Authors: make([]AuthorSummary, 0, len(grouped.Authors))}
	for _, author := range grouped.Authors {
		authorSummary := AuthorSummary{Author: author.Author}
		for _, day := range author.SortedDays() {
			daySummary := summarizeDay(day)
			authorSummary.Days = append(authorSummary.Days, daySummary)
			authorSummary.TotalSeconds += daySummary.TotalSeconds
			authorSummary.EntryCount += daySummary.EntryCount()
		}
		summary.Authors = append(summary.Authors, authorSummary)
		summary.TotalSeconds += authorSummary.TotalSeconds
		summary.EntryCount += authorSummary.EntryCount
	}
	return summary
}

func summarizeDay(day worklog.Day) DaySummary {
	total := 0
	for _, entry := range day.Entries {
		total += entry.TimeSpentSeconds
	}
	return DaySummary{
		Label:        day.Label,
		Entries:      day.Entries,
		TotalSeconds: total,
	}
}

func entriesLabel(count int) string {
	if count == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", count)
}
