package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"timesheet/internal/timeutil"
	"timesheet/worklog"
)

const ruleWidth = 80

// commentWidth bounds the comment column. The other columns grow to fit
// their content.
const commentWidth = 38

var tableHeaders = []string{"Date", "Issue", "Comment", "Time"}

// tableStyles is a no-op when colour is off so the output stays plain ASCII.
type tableStyles struct {
	enabled bool

	title       lipgloss.Style
	author      lipgloss.Style
	header      lipgloss.Style
	border      lipgloss.Style
	cell        lipgloss.Style
	dayCount    lipgloss.Style
	dayTotal    lipgloss.Style
	authorTotal lipgloss.Style
	grandTotal  lipgloss.Style
	muted       lipgloss.Style
	empty       lipgloss.Style
}

func newTableStyles(enabled bool) tableStyles {
	styles := tableStyles{
		enabled:     enabled,
		title:       lipgloss.NewStyle().Bold(true),
		author:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		header:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		border:      lipgloss.NewStyle(),
		cell:        lipgloss.NewStyle().Padding(0, 1),
		dayCount:    lipgloss.NewStyle().Bold(true),
		dayTotal:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		authorTotal: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		grandTotal:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		empty:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
	if enabled {
		styles.border = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	return styles
}

func (s tableStyles) apply(style lipgloss.Style, value string) string {
	if !s.enabled || value == "" {
		return value
	}
	return style.Render(value)
}

type TableRenderer struct{}

func (r *TableRenderer) Render(entries []worklog.Entry, opts Options) ([]byte, error) {
	return []byte(RenderTable(entries, opts)), nil
}

// RenderTable draws one bordered table per author with a total row per day,
// an author summary line and a closing grand total block. Only comments are
// truncated; dates, keys and times are always shown in full.
func RenderTable(entries []worklog.Entry, opts Options) string {
	styles := newTableStyles(opts.Color)
	if len(entries) == 0 {
		return styles.apply(styles.empty, NoWorklogsMessage)
	}

	border, rule := lipgloss.ASCIIBorder(), "-"
	if opts.Color {
		border, rule = lipgloss.NormalBorder(), "─"
	}

	summary := BuildSummary(entries, opts.Timezone)

	var b strings.Builder
	b.WriteString(styles.apply(styles.title, opts.title()))

	for _, author := range summary.Authors {
		b.WriteString("\n\n")
		b.WriteString(styles.apply(styles.author, author.Author))
		b.WriteString("\n")
		b.WriteString(styles.apply(styles.border, strings.Repeat(rule, ruleWidth)))
		b.WriteString("\n")

		b.WriteString(authorTable(author, styles, border).Render())
		b.WriteString("\n")

		authorLine := fmt.Sprintf("%s total: %s (%s)",
			author.Author, timeutil.FormatSeconds(author.TotalSeconds), entriesLabel(author.EntryCount))
		b.WriteString(styles.apply(styles.authorTotal, authorLine))
	}

	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n")
	grandLine := fmt.Sprintf("Grand total (all authors): %s (%s)",
		timeutil.FormatSeconds(summary.TotalSeconds), entriesLabel(summary.EntryCount))
	b.WriteString(styles.apply(styles.grandTotal, grandLine))
	b.WriteString("\n")
	b.WriteString(styles.apply(styles.muted, fmt.Sprintf("Authors: %d", summary.AuthorCount())))

	return b.String()
}

// authorTable lays out one author's days. Cells are styled before they are
// added, so the table itself only pads them.
func authorTable(author AuthorSummary, styles tableStyles, border lipgloss.Border) *table.Table {
	headers := make([]string, 0, len(tableHeaders))
	for _, header := range tableHeaders {
		headers = append(headers, styles.apply(styles.header, header))
	}

	t := table.New().
		Border(border).
		BorderStyle(styles.border).
		BorderRow(true).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return styles.cell
		})

	for _, day := range author.Days {
		for i, entry := range day.Entries {
			label := ""
			if i == 0 {
				label = day.Label
			}
			t.Row(
				label,
				entry.IssueKey,
				truncateCell(singleLine(entry.Comment), commentWidth),
				entry.TimeSpent,
			)
		}
		t.Row(
			"",
			"",
			styles.apply(styles.dayCount, entriesLabel(day.EntryCount())),
			styles.apply(styles.dayTotal, timeutil.FormatSeconds(day.TotalSeconds)),
		)
	}
	return t
}
