package worklog

import (
	"slices"
	"time"

	"timesheet/internal/timeutil"
)

// Day holds the entries of one author on one calendar day.
type Day struct {
	Label   string
	Entries []Entry
}

// AuthorDays holds the days of one author in first-seen order.
type AuthorDays struct {
	Author string
	Days   []*Day

	byLabel map[string]*Day
}

// Day returns the bucket for label, or nil.
func (a *AuthorDays) Day(label string) *Day {
	return a.byLabel[label]
}

// Aggregate is the author -> day -> entries grouping. Authors and days keep
// insertion order; entries keep input order. Sorting happens at render time.
type Aggregate struct {
	Authors []*AuthorDays

	byAuthor map[string]*AuthorDays
}

// Author returns the group for name, or nil.
func (a *Aggregate) Author(name string) *AuthorDays {
	return a.byAuthor[name]
}

// Len is the number of entries across all buckets.
func (a *Aggregate) Len() int {
	total := 0
	for _, author := range a.Authors {
		for _, day := range author.Days {
			total += len(day.Entries)
		}
	}
	return total
}

// GroupByAuthorAndDay buckets entries by author and by calendar day in
// timezone. An empty or unknown timezone falls back to
// timeutil.DefaultTimezone. Entries whose started value does not parse land in
// the timeutil.InvalidDayLabel bucket.
func GroupByAuthorAndDay(entries []Entry, timezone string) *Aggregate {
	loc, _ := timeutil.ResolveLocation(timezone)
	return GroupInLocation(entries, loc)
}

// GroupInLocation is GroupByAuthorAndDay with an already resolved location.
func GroupInLocation(entries []Entry, loc *time.Location) *Aggregate {
	grouped := &Aggregate{byAuthor: make(map[string]*AuthorDays)}
	for _, entry := range entries {
		label := timeutil.DayLabelFor(entry.Started, loc)

		author, ok := grouped.byAuthor[entry.Author]
		if !ok {
			author = &AuthorDays{Author: entry.Author, byLabel: make(map[string]*Day)}
			grouped.byAuthor[entry.Author] = author
			grouped.Authors = append(grouped.Authors, author)
		}

		day, ok := author.byLabel[label]
		if !ok {
			day = &Day{Label: label}
			author.byLabel[label] = day
			author.Days = append(author.Days, day)
		}
		day.Entries = append(day.Entries, entry)
	}
	return grouped
}

// SortedDays returns copies of the author's days ordered chronologically by
// their parsed label, each with entries ordered by started.
func (a *AuthorDays) SortedDays() []Day {
	days := make([]Day, 0, len(a.Days))
	for _, day := range a.Days {
		days = append(days, Day{Label: day.Label, Entries: SortByStarted(day.Entries)})
	}
	slices.SortStableFunc(days, func(x, y Day) int {
		return timeutil.CompareDayLabels(x.Label, y.Label)
	})
	return days
}

// SortByStarted returns a copy of entries in ascending started order.
// Unparsable timestamps keep their relative order after all parsable ones.
func SortByStarted(entries []Entry) []Entry {
	type keyed struct {
		entry Entry
		at    time.Time
		ok    bool
	}
	items := make([]keyed, 0, len(entries))
	for _, entry := range entries {
		at, err := timeutil.ParseTimestamp(entry.Started)
		items = append(items, keyed{entry: entry, at: at, ok: err == nil})
	}
	slices.SortStableFunc(items, func(x, y keyed) int {
		switch {
		case x.ok && y.ok:
			return x.at.Compare(y.at)
		case x.ok:
			return -1
		case y.ok:
			return 1
		default:
			return 0
		}
	})

	sorted := make([]Entry, 0, len(items))
	for _, item := range items {
		sorted = append(sorted, item.entry)
	}
	return sorted
}
