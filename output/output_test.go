package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"timesheet/worklog"
)

func sampleEntries() []worklog.Entry {
	return []worklog.Entry{
		{
			IssueKey:         "PROJ-2",
			IssueSummary:     "Second",
			Author:           "Alice",
			TimeSpent:        "1h",
			TimeSpentSeconds: 3600,
			Comment:          "Review",
			Started:          "2024-01-15T14:00:00.000+0100",
			Created:          "2024-01-15T15:00:00.000+0100",
		},
		{
			IssueKey:         "PROJ-1",
			IssueSummary:     "First",
			Author:           "Alice",
			TimeSpent:        "2h",
			TimeSpentSeconds: 7200,
			Comment:          "Implementation",
			Started:          "2024-01-15T09:00:00.000+0100",
			Created:          "2024-01-15T11:00:00.000+0100",
		},
	}
}

func twoAuthorEntries() []worklog.Entry {
	entries := sampleEntries()
	return append(entries,
		worklog.Entry{
			IssueKey:         "PROJ-3",
			Author:           "Bob",
			TimeSpent:        "30m",
			TimeSpentSeconds: 1800,
			Comment:          "Standup",
			Started:          "2024-01-16T09:00:00.000+0100",
		},
		worklog.Entry{
			IssueKey:         "PROJ-3",
			Author:           "Alice",
			TimeSpent:        "45m",
			TimeSpentSeconds: 2700,
			Comment:          "Follow-up",
			Started:          "2024-01-14T09:00:00.000+0100",
		},
	)
}

func TestBuildSummary_Totals(t *testing.T) {
	t.Parallel()

	summary := BuildSummary(twoAuthorEntries(), "Europe/Berlin")

	require.Equal(t, 2, summary.AuthorCount())
	assert.Equal(t, 15300, summary.TotalSeconds)
	assert.Equal(t, 4, summary.EntryCount)

	alice := summary.Authors[0]
	assert.Equal(t, "Alice", alice.Author)
	assert.Equal(t, 13500, alice.TotalSeconds)
	assert.Equal(t, 3, alice.EntryCount)
	require.Len(t, alice.Days, 2)
	assert.Equal(t, "14.1.2024", alice.Days[0].Label)
	assert.Equal(t, "15.1.2024", alice.Days[1].Label)
	assert.Equal(t, "PROJ-1", alice.Days[1].Entries[0].IssueKey)
	assert.Equal(t, 10800, alice.Days[1].TotalSeconds)
}

func TestRenderTable_SingleAuthorTotals(t *testing.T) {
	t.Parallel()

	out := RenderTable(sampleEntries(), Options{Timezone: "Europe/Berlin"})

	assert.True(t, strings.HasPrefix(out, DefaultTitle))
	assert.Contains(t, out, "| 15.1.2024 | PROJ-1 |")
	assert.Contains(t, out, "| 2 entries")
	assert.Contains(t, out, "Alice total: 3h (2 entries)")
	assert.Contains(t, out, "Grand total (all authors): 3h (2 entries)")
	assert.Contains(t, out, "Authors: 1")
	assert.Less(t, strings.Index(out, "PROJ-1"), strings.Index(out, "PROJ-2"))
	assert.Equal(t, 1, strings.Count(out, "15.1.2024"), "day label only on the first row")
}

func TestRenderTable_PlainIsASCII(t *testing.T) {
	t.Parallel()

	out := RenderTable(twoAuthorEntries(), Options{Title: "Week 3"})

	assert.True(t, strings.HasPrefix(out, "Week 3"))
	assert.NotContains(t, out, "\x1b[")
	for _, r := range out {
		require.Less(t, r, rune(128), "unexpected non-ASCII rune %q", r)
	}
}

func TestRenderTable_RowsShareWidth(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	entries[1].Comment = "Wide 日本語 comment"
	out := RenderTable(entries, Options{})

	want := -1
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "|") {
			continue
		}
		if want < 0 {
			want = lipgloss.Width(line)
		}
		assert.Equal(t, want, lipgloss.Width(line), "line %q", line)
	}
	assert.Positive(t, want)
}

func TestRenderTable_ColorMatchesPlainContent(t *testing.T) {
	t.Parallel()

	colored := RenderTable(sampleEntries(), Options{Color: true})
	plain := ansi.Strip(colored)

	assert.Contains(t, plain, "Alice total: 3h (2 entries)")
	assert.Contains(t, plain, "│")
}

func TestRenderTable_TruncatesOnlyComments(t *testing.T) {
	t.Parallel()

	entries := []worklog.Entry{
		{
			IssueKey:         "PLATFORM-12345",
			Author:           "Alice",
			TimeSpent:        "1w 2d 3h 45m",
			TimeSpentSeconds: 3600,
			Comment:          strings.Repeat("x", 120),
			Started:          "2024-01-15T09:00:00.000+0100",
		},
		{
			IssueKey:         "INFRASTRUCTURE-987654",
			Author:           "Alice",
			TimeSpent:        "30m",
			TimeSpentSeconds: 1800,
			Comment:          "no timestamp",
			Started:          "not a timestamp",
		},
	}

	out := RenderTable(entries, Options{})

	assert.Contains(t, out, strings.Repeat("x", 35)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 39))
	assert.Contains(t, out, "| PLATFORM-12345 ")
	assert.Contains(t, out, "| INFRASTRUCTURE-987654 |")
	assert.Contains(t, out, "| 1w 2d 3h 45m |")
	assert.Contains(t, out, "| Invalid Date |")
	assert.NotContains(t, out, "Invalid...")
}

func TestRenderTable_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NoWorklogsMessage, RenderTable(nil, Options{}))
}

func TestRenderCSV_Layout(t *testing.T) {
	t.Parallel()

	out := RenderCSV(sampleEntries(), Options{Timezone: "Europe/Berlin"})
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "Date,User,Issue Key,Comment,Time Spent,Time (Seconds),Started,Created", lines[0])
	assert.Equal(t, `15.1.2024,Alice,PROJ-1,"Implementation",2h,7200,2024-01-15T09:00:00.000+0100,2024-01-15T11:00:00.000+0100`, lines[1])
	assert.Equal(t, `15.1.2024,Alice,PROJ-2,"Review",1h,3600,2024-01-15T14:00:00.000+0100,2024-01-15T15:00:00.000+0100`, lines[2])
	assert.Equal(t, `15.1.2024,Alice,DAY TOTAL,"2 entries",3h,10800,,`, lines[3])
}

func TestRenderCSV_Escaping(t *testing.T) {
	t.Parallel()

	entries := []worklog.Entry{{
		IssueKey:         "PROJ-1",
		Author:           "Doe, Jane",
		TimeSpent:        "1h",
		TimeSpentSeconds: 3600,
		Comment:          `said "done", then left`,
		Started:          "2024-01-15T09:00:00.000+0100",
	}}

	lines := strings.Split(RenderCSV(entries, Options{}), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, `15.1.2024,"Doe, Jane",PROJ-1,"said ""done"", then left",1h,3600,2024-01-15T09:00:00.000+0100,`, lines[1])
}

func TestRenderCSV_Empty(t *testing.T) {
	t.Parallel()

	out := RenderCSV(nil, Options{})
	assert.Equal(t, []string{strings.Join(csvHeaders, ",")}, strings.Split(out, "\n"))
}

func TestRenderMarkdown_Sections(t *testing.T) {
	t.Parallel()

	out := RenderMarkdown(twoAuthorEntries(), Options{Title: "Sprint 4"})

	assert.True(t, strings.HasPrefix(out, "# Sprint 4\n\n"))
	assert.Equal(t, 3, strings.Count(out, "\n## "), "one section per author plus the grand total")
	assert.Contains(t, out, "## Alice\n\n| Date | Issue Key | Comment | Time Spent |")
	assert.Contains(t, out, "| 15.1.2024 | PROJ-1 | Implementation | 2h |\n|  | PROJ-2 | Review | 1h |")
	assert.Contains(t, out, "| | | **2 entries** | **3h** |")
	assert.Contains(t, out, "**Alice total: 3h 45m (3 entries)**")
	assert.Contains(t, out, "**Bob total: 30m (1 entry)**")
	assert.Contains(t, out, "## Grand Total")
	assert.Contains(t, out, "**Total time (all authors):** 4h 15m (4 entries)")
	assert.Contains(t, out, "**Authors:** 2")
}

func TestRenderMarkdown_EscapesTableBreakers(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()[:1]
	entries[0].Comment = "a | b\nc"

	out := RenderMarkdown(entries, Options{})

	assert.Contains(t, out, `| a \| b c |`)
}

func TestRenderMarkdown_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "# Timesheet\n\nNo worklogs found", RenderMarkdown(nil, Options{}))
}

func TestRenderJSON_RawEntries(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	entries[0].AuthorEmail = "alice@example.com"
	entries[1].Comment = "fix <b> & a->b"

	out, err := RenderJSON(entries)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \"issueKey\": \"PROJ-2\","))
	assert.True(t, strings.HasSuffix(out, "\n]"))
	assert.NotContains(t, out, "alice@example.com")
	assert.Contains(t, out, `"comment": "fix <b> & a->b"`)
	assert.NotContains(t, out, `\u003c`)

	var decoded []worklog.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "PROJ-2", decoded[0].IssueKey, "json keeps input order")
}

func TestRenderJSON_Empty(t *testing.T) {
	t.Parallel()

	out, err := RenderJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestExcelRenderer_WritesRows(t *testing.T) {
	t.Parallel()

	content, err := (&ExcelRenderer{}).Render(sampleEntries(), Options{Timezone: "Europe/Berlin"})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(excelSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeaders, rows[0])
	assert.Equal(t, "PROJ-1", rows[1][2])
	assert.Equal(t, DayTotalMarker, rows[3][2])
	assert.Equal(t, "10800", rows[3][5])
}

func TestRendererForFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]Renderer{
		"":         &TableRenderer{},
		"table":    &TableRenderer{},
		"CSV":      &CSVRenderer{},
		"md":       &MarkdownRenderer{},
		"markdown": &MarkdownRenderer{},
		"json":     &JSONRenderer{},
		"xlsx":     &ExcelRenderer{},
	}
	for format, want := range cases {
		got, err := RendererForFormat(format)
		require.NoError(t, err, format)
		assert.IsType(t, want, got, format)
	}

	_, err := RendererForFormat("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: pdf")
}

func TestIsBinaryFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBinaryFormat("excel"))
	assert.True(t, IsBinaryFormat("xlsx"))
	assert.False(t, IsBinaryFormat("csv"))
}

func TestWrite_CreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "jan.csv")
	require.NoError(t, Write(path, []byte("a,b")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b", string(content))
}

func TestTruncateCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateCell("short", 10))
	assert.Equal(t, "abcdefg...", truncateCell("abcdefghijklmnop", 10))
	assert.Equal(t, "日本...", truncateCell("日本語のテキスト", 7))
	assert.Equal(t, "..", truncateCell("abcdef", 2))
}
