package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is used whenever no valid IANA zone is configured.
const DefaultTimezone = "Europe/Berlin"

// InvalidDayLabel is the bucket for timestamps that cannot be parsed.
const InvalidDayLabel = "Invalid Date"

var timestampLayouts = []string{
	"2006-01-02T15:04:05Z0700",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	CanonicalDateLayout,
}

// ResolveLocation loads name, falling back to DefaultTimezone. The second
// return value reports whether name itself was used.
func ResolveLocation(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc, true
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("CET", 3600), false
	}
	return loc, false
}

// ParseTimestamp understands tracker timestamps such as
// 2024-01-15T14:30:00.000+0100 as well as RFC 3339.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unsupported format", value)
}

// DayLabel formats t in loc as D.M.YYYY.
func DayLabel(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%d.%d.%d", local.Day(), int(local.Month()), local.Year())
}

// DayLabelFor derives the day label for a raw started timestamp.
func DayLabelFor(started string, loc *time.Location) string {
	parsed, err := ParseTimestamp(started)
	if err != nil {
		return InvalidDayLabel
	}
	return DayLabel(parsed, loc)
}

// ParseDayLabel turns a D.M.YYYY label back into a date.
func ParseDayLabel(label string) (time.Time, bool) {
	parts := strings.Split(label, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, errDay := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	year, errYear := strconv.Atoi(parts[2])
	if errDay != nil || errMonth != nil || errYear != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// CompareDayLabels orders labels chronologically; labels that do not parse
// sort after every real date and among themselves lexically.
func CompareDayLabels(a, b string) int {
	da, okA := ParseDayLabel(a)
	db, okB := ParseDayLabel(b)
	switch {
	case okA && okB:
		return da.Compare(db)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// CalendarDay returns the date portion of a started timestamp as written by
// the tracker, without any timezone conversion.
func CalendarDay(started string) string {
	day, _, _ := strings.Cut(strings.TrimSpace(started), "T")
	return day
}
