package output

import (
	"fmt"
	"strings"

	"timesheet/internal/timeutil"
	"timesheet/worklog"
)

type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(entries []worklog.Entry, opts Options) ([]byte, error) {
	return []byte(RenderMarkdown(entries, opts)), nil
}

// RenderMarkdown produces a GitHub-flavoured document with one section and
// one table per author and a closing grand total section.
func RenderMarkdown(entries []worklog.Entry, opts Options) string {
	title := escapeMarkdownCell(opts.title())
	if len(entries) == 0 {
		return fmt.Sprintf("# %s\n\n%s", title, NoWorklogsMessage)
	}

	summary := BuildSummary(entries, opts.Timezone)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	for _, author := range summary.Authors {
		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdownCell(author.Author))
		b.WriteString("| Date | Issue Key | Comment | Time Spent |\n")
		b.WriteString("|------|-----------|---------|------------|\n")

		for _, day := range author.Days {
			for i, entry := range day.Entries {
				label := ""
				if i == 0 {
					label = day.Label
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
					label,
					escapeMarkdownCell(entry.IssueKey),
					escapeMarkdownCell(entry.Comment),
					escapeMarkdownCell(entry.TimeSpent),
				)
			}
			fmt.Fprintf(&b, "| | | **%s** | **%s** |\n",
				entriesLabel(day.EntryCount()), timeutil.FormatSeconds(day.TotalSeconds))
		}

		fmt.Fprintf(&b, "\n**%s total: %s (%s)**\n\n",
			escapeMarkdownCell(author.Author), timeutil.FormatSeconds(author.TotalSeconds), entriesLabel(author.EntryCount))
		b.WriteString("---\n\n")
	}

	b.WriteString("## Grand Total\n\n")
	fmt.Fprintf(&b, "**Total time (all authors):** %s (%s)  \n",
		timeutil.FormatSeconds(summary.TotalSeconds), entriesLabel(summary.EntryCount))
	fmt.Fprintf(&b, "**Authors:** %d\n", summary.AuthorCount())

	return b.String()
}

// escapeMarkdownCell keeps free text from breaking the table structure.
func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(singleLine(value), "|", `\|`)
}
