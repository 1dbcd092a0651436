package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"timesheet/config"
	"timesheet/internal/timeutil"
	"timesheet/jira"
	"timesheet/output"
	"timesheet/timesheet"
)

var (
	generateProject     string
	generateStart       string
	generateEnd         string
	generateUsers       []string
	generateFormat      string
	generateOutput      string
	generateTimezone    string
	generateTitle       string
	generateConcurrency int
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a timesheet from project worklogs.",
	Long: `Search the issues of a project, collect their worklogs and render them
grouped by author and day.

Dates accept DD.MM.YYYY (or D.M.YYYY) and YYYY-MM-DD. Without --output the
report is printed to stdout; progress messages go to stderr.

Formats:
- table: terminal table with per-day, per-author and grand totals
- csv: one row per worklog plus a DAY TOTAL row per author and day
- markdown (md): one section per author
- json: raw worklog list without aggregation
- excel (xlsx): CSV rows as a workbook, requires --output`,
	Example: `
  # Current configuration's project, whole history
  timesheet generate

  # One week for one author
  timesheet generate -p ABC -s 15.01.2024 -e 2024-01-21 -u jane@example.com

  # CSV export for a team
  timesheet generate -u jane@example.com -u john@example.com -f csv -o ./team.csv

  # Excel workbook
  timesheet generate -f excel -o ./timesheet.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		format := generateFormat
		if !cmd.Flags().Changed("format") {
			format = cfg.FormatOrDefault()
		}

		opts := generateOptions{
			Query: timesheet.Query{
				Project: generateProject,
				Authors: generateUsers,
				Start:   generateStart,
				End:     generateEnd,
			},
			Format:      format,
			Output:      generateOutput,
			Timezone:    generateTimezone,
			Title:       generateTitle,
			Concurrency: generateConcurrency,
			Color:       generateOutput == "" && colorEnabled(cmd.OutOrStdout()),
		}

		client, err := newJiraClient(cfg)
		if err != nil {
			return err
		}
		return runGenerate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, client, opts)
	},
}

type generateOptions struct {
	Query       timesheet.Query
	Format      string
	Output      string
	Timezone    string
	Title       string
	Concurrency int
	Color       bool
}

func runGenerate(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, client jira.Client, opts generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	project, err := cfg.ResolveProject(opts.Query.Project)
	if err != nil {
		return err
	}
	query := opts.Query
	query.Project = project

	format := output.NormalizeFormat(opts.Format)
	if _, err := output.RendererForFormat(format); err != nil {
		return err
	}
	if output.IsBinaryFormat(format) && strings.TrimSpace(opts.Output) == "" {
		return fmt.Errorf("%s output requires --output", format)
	}

	timezone := strings.TrimSpace(opts.Timezone)
	if timezone == "" {
		timezone = cfg.TimezoneOrDefault()
	}
	if _, ok := timeutil.ResolveLocation(timezone); !ok {
		logger.Warn().Str("timezone", timezone).Str("fallback", timeutil.DefaultTimezone).Msg("unknown timezone, using fallback")
	}

	service := timesheet.NewService(client, logger, opts.Concurrency)
	content, err := service.Generate(ctx, query, format, output.Options{
		Timezone: timezone,
		Title:    opts.Title,
		Color:    opts.Color && strings.TrimSpace(opts.Output) == "",
	})
	if err != nil {
		return err
	}

	if path := strings.TrimSpace(opts.Output); path != "" {
		if err := output.Write(path, content); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "%s exported to: %s\n", formatLabel(format), path)
		return nil
	}

	if _, err := stdout.Write(content); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_, err = fmt.Fprintln(stdout)
	return err
}

func formatLabel(format string) string {
	switch format {
	case output.FormatCSV:
		return "CSV"
	case output.FormatJSON:
		return "JSON"
	case output.FormatMarkdown:
		return "Markdown"
	case output.FormatExcel:
		return "Excel"
	default:
		return "Table"
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateProject, "project", "p", "", "Project key (default: project from config)")
	generateCmd.Flags().StringVarP(&generateStart, "start", "s", "", "Start date (DD.MM.YYYY or YYYY-MM-DD)")
	generateCmd.Flags().StringVarP(&generateEnd, "end", "e", "", "End date (DD.MM.YYYY or YYYY-MM-DD)")
	generateCmd.Flags().StringArrayVarP(&generateUsers, "user", "u", nil, "Filter by author email (repeatable)")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", output.FormatTable, "Output format: table|csv|markdown|json|excel")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the report to this file instead of stdout")
	generateCmd.Flags().StringVar(&generateTimezone, "timezone", "", "IANA timezone for day grouping (default: timesheet.timezone, then Europe/Berlin)")
	generateCmd.Flags().StringVar(&generateTitle, "title", output.DefaultTitle, "Report title for table and markdown output")
	generateCmd.Flags().IntVar(&generateConcurrency, "concurrency", timesheet.DefaultConcurrency, "Number of issues whose worklogs are fetched in parallel")
}
