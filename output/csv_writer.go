package output

import (
	"strconv"
	"strings"

	"timesheet/internal/timeutil"
	"timesheet/worklog"
)

// DayTotalMarker fills the issue key column of the synthetic per-day rows.
const DayTotalMarker = "DAY TOTAL"

var csvHeaders = []string{"Date", "User", "Issue Key", "Comment", "Time Spent", "Time (Seconds)", "Started", "Created"}

// commentColumn is always quoted so free text never shifts the columns.
const commentColumn = 3

type CSVRenderer struct{}

func (r *CSVRenderer) Render(entries []worklog.Entry, opts Options) ([]byte, error) {
	return []byte(RenderCSV(entries, opts)), nil
}

// RenderCSV writes one row per entry plus one day total row per author and
// day. There are no author or grand total rows. Empty input yields the header
// line only.
func RenderCSV(entries []worklog.Entry, opts Options) string {
	rows := csvRows(BuildSummary(entries, opts.Timezone))

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(csvHeaders, ","))
	for _, row := range rows {
		fields := make([]string, 0, len(row))
		for i, value := range row {
			fields = append(fields, csvField(value, i == commentColumn))
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

// csvRows flattens a summary into the CSV column layout. The Excel export
// writes the same rows.
func csvRows(summary Summary) [][]string {
	var rows [][]string
	for _, author := range summary.Authors {
		for _, day := range author.Days {
			for _, entry := range day.Entries {
				rows = append(rows, []string{
					day.Label,
					author.Author,
					entry.IssueKey,
					entry.Comment,
					entry.TimeSpent,
					strconv.Itoa(entry.TimeSpentSeconds),
					entry.Started,
					entry.Created,
				})
			}
			rows = append(rows, []string{
				day.Label,
				author.Author,
				DayTotalMarker,
				entriesLabel(day.EntryCount()),
				timeutil.FormatSeconds(day.TotalSeconds),
				strconv.Itoa(day.TotalSeconds),
				"",
				"",
			})
		}
	}
	return rows
}

// csvField applies RFC 4180 quoting: quotes are doubled and the field is
// wrapped when forced or when it contains a delimiter, quote or line break.
func csvField(value string, force bool) string {
	if !force && !strings.ContainsAny(value, ",\"\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
