package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the zero-padded calendar date used in queries and bounds.
const CanonicalDateLayout = "2006-01-02"

const (
	minYear = 1900
	maxYear = 2100
)

var (
	isoDatePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dottedDatePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
)

// DateFormatError reports which date rule rejected the input.
type DateFormatError struct {
	Input   string
	Message string
}

func (e *DateFormatError) Error() string {
	return e.Message
}

func dateError(input, format string, args ...any) error {
	return &DateFormatError{Input: input, Message: fmt.Sprintf(format, args...)}
}

// NormalizeDate accepts YYYY-MM-DD or D.M.YYYY / DD.MM.YYYY and returns the
// canonical YYYY-MM-DD form. Dates that do not exist on the calendar are
// rejected rather than clamped.
func NormalizeDate(input string) (string, error) {
	if input == "" {
		return "", dateError(input, "date string required")
	}

	if isoDatePattern.MatchString(input) {
		if _, err := time.Parse(CanonicalDateLayout, input); err != nil {
			return "", dateError(input, "invalid date: %s", input)
		}
		return input, nil
	}

	match := dottedDatePattern.FindStringSubmatch(input)
	if match == nil {
		return "", dateError(input, "invalid date format: %s. Expected DD.MM.YYYY or YYYY-MM-DD format.", input)
	}
	day, month, year := match[1], match[2], match[3]

	dayNum, _ := strconv.Atoi(day)
	monthNum, _ := strconv.Atoi(month)
	yearNum, _ := strconv.Atoi(year)

	if dayNum < 1 || dayNum > 31 {
		return "", dateError(input, "invalid day: %s. Day must be between 1 and 31.", day)
	}
	if monthNum < 1 || monthNum > 12 {
		return "", dateError(input, "invalid month: %s. Month must be between 1 and 12.", month)
	}
	if yearNum < minYear || yearNum > maxYear {
		return "", dateError(input, "invalid year: %s. Year must be between %d and %d.", year, minYear, maxYear)
	}

	candidate := fmt.Sprintf("%s-%s-%s", year, padTwo(month), padTwo(day))
	parsed, err := time.Parse(CanonicalDateLayout, candidate)
	if err != nil || parsed.Format(CanonicalDateLayout) != candidate {
		return "", dateError(input, "invalid date: %s. The date does not exist.", input)
	}
	return candidate, nil
}

func padTwo(value string) string {
	if len(value) < 2 {
		return strings.Repeat("0", 2-len(value)) + value
	}
	return value
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
