package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"timesheet/worklog"
)

const DefaultTitle = "Timesheet"

// NoWorklogsMessage is shown by the human-facing formats for empty input.
const NoWorklogsMessage = "No worklogs found"

// Supported format names.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatExcel    = "excel"
)

// Options carries the settings shared by every renderer.
type Options struct {
	// Timezone is the IANA zone used for day grouping; empty or unknown
	// values fall back to the default zone.
	Timezone string
	// Title heads the table and Markdown reports.
	Title string
	// Color enables ANSI styling in the table format.
	Color bool
}

func (o Options) title() string {
	if strings.TrimSpace(o.Title) == "" {
		return DefaultTitle
	}
	return o.Title
}

type Renderer interface {
	Render(entries []worklog.Entry, opts Options) ([]byte, error)
}

// NormalizeFormat lower-cases format and resolves aliases.
func NormalizeFormat(format string) string {
	switch value := strings.TrimSpace(strings.ToLower(format)); value {
	case "md":
		return FormatMarkdown
	case "xlsx":
		return FormatExcel
	case "":
		return FormatTable
	default:
		return value
	}
}

func RendererForFormat(format string) (Renderer, error) {
	switch NormalizeFormat(format) {
	case FormatTable:
		return &TableRenderer{}, nil
	case FormatCSV:
		return &CSVRenderer{}, nil
	case FormatMarkdown:
		return &MarkdownRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatExcel:
		return &ExcelRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, csv, markdown, json, excel)", format)
	}
}

// IsBinaryFormat reports whether format can only be written to a file.
func IsBinaryFormat(format string) bool {
	return NormalizeFormat(format) == FormatExcel
}

// Write stores a rendered report at path, creating parent directories.
func Write(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
