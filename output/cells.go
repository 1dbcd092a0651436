package output

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const ellipsis = "..."

// runeWidth is the number of terminal columns r occupies.
func runeWidth(r rune) int {
	if r == 0 || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) || unicode.IsControl(r) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

func displayWidth(value string) int {
	total := 0
	for _, r := range value {
		total += runeWidth(r)
	}
	return total
}

// truncateCell shortens value to at most limit columns, marking the cut with
// an ellipsis.
func truncateCell(value string, limit int) string {
	if displayWidth(value) <= limit {
		return value
	}
	if limit <= len(ellipsis) {
		return ellipsis[:max(limit, 0)]
	}

	budget := limit - len(ellipsis)
	var b strings.Builder
	used := 0
	for _, r := range value {
		w := runeWidth(r)
		if used+w > budget {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + ellipsis
}

// singleLine folds line breaks and tabs into spaces.
func singleLine(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
