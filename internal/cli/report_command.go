package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tracker/internal/api"
	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/services"
)

// reportFlags are the raw report filters.
type reportFlags struct {
	from    string
	to      string
	days    int
	project int64
	client  int64
	format  string
}

// ReportCommand handles the report command
type ReportCommand struct {
	app *App
}

// NewReportCommand creates a new report command handler
func NewReportCommand(app *App) *ReportCommand {
	return &ReportCommand{app: app}
}

// Execute prints closed entries matching the filters and their total.
func (c *ReportCommand) Execute(ctx context.Context, flags reportFlags) error {
	var render func(*api.Report) error
	switch flags.format {
	case "", "text":
		render = c.printText
	case "csv":
		render = c.printCSV
	default:
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("format", flags.format, "unsupported format"))
	}

	criteria, err := c.criteria(flags)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}

	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	report, err := c.app.businessAPI.Report(ctx, user.ID, criteria)
	if err != nil {
		return c.app.errorHandler.Handle("build report", err)
	}
	return render(report)
}

// criteria turns the flags into report criteria. --days wins over
// --from/--to.
func (c *ReportCommand) criteria(flags reportFlags) (api.ReportCriteria, error) {
	var criteria api.ReportCriteria
	if flags.days < 0 {
		return criteria, errors.NewInvalidInputError("days", flags.days, "must not be negative")
	}
	if flags.days > 0 {
		criteria = services.ReportForLastDays(c.app.clock, flags.days)
	} else {
		if flags.from != "" {
			from, err := parseDay(flags.from, c.app.clock)
			if err != nil {
				return criteria, err
			}
			criteria.From = &from
		}
		if flags.to != "" {
			to, err := parseDay(flags.to, c.app.clock)
			if err != nil {
				return criteria, err
			}
			criteria.To = &to
		}
	}
	criteria.ProjectID = optionalID(flags.project)
	criteria.ClientID = optionalID(flags.client)
	return criteria, nil
}

func (c *ReportCommand) printText(report *api.Report) error {
	if len(report.Entries) == 0 {
		c.app.printf("No entries found\n")
	}
	for _, entry := range report.Entries {
		c.app.printf("%s\n", c.app.formatEntry(entry))
	}
	c.app.printf("Total: %dh\n", report.TotalHours)
	return nil
}

// printCSV writes one row per entry followed by a total row.
func (c *ReportCommand) printCSV(report *api.Report) error {
	writer := csv.NewWriter(c.app.out)

	header := []string{"ID", "Day", "Start", "Stop", "Hours", "Project", "Description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range report.Entries {
		if err := writer.Write(csvRow(entry)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	if err := writer.Write([]string{"", "", "", "", strconv.Itoa(report.TotalHours), "", "Total"}); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(entry *domain.TimeEntry) []string {
	var stop, hours, project string
	if entry.Stop != nil {
		stop = entry.Stop.Short()
	}
	if entry.Duration != nil {
		hours = strconv.Itoa(*entry.Duration)
	}
	if entry.ProjectID != nil {
		project = strconv.FormatInt(*entry.ProjectID, 10)
	}
	return []string{
		strconv.FormatInt(entry.ID, 10),
		entry.Day.String(),
		entry.Start.Short(),
		stop,
		hours,
		project,
		entry.Description,
	}
}

func (r *RootCommand) newReportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sum closed entries",
		Long: `Report the current user's closed entries and their total hours.

Examples:
  tracker report --days 7                       # the last seven days, today included
  tracker report --from 2024-03-01 --to 2024-03-31 --project 3
  tracker report --client 2 --format csv > march.csv`,
		Args: cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewReportCommand(app).Execute(ctx, flags)
		}),
	}
	cmd.Flags().StringVar(&flags.from, "from", "", "First day, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "Last day, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&flags.days, "days", 0, "Report the last N days instead of --from/--to")
	cmd.Flags().Int64VarP(&flags.project, "project", "p", 0, "Only entries of this project")
	cmd.Flags().Int64VarP(&flags.client, "client", "c", 0, "Only entries of this client's projects")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text or csv")
	return cmd
}
