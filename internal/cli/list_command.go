package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tracker/internal/clock"
	"tracker/internal/domain"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute prints the entries of one day. dir moves one day from that day;
// moving forward stops at today.
func (c *ListCommand) Execute(ctx context.Context, dayArg string, dir domain.Direction) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	day, err := parseDay(dayArg, c.app.clock)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}
	if dir != "" {
		day = domain.NavigateDay(day, dir, clock.Today(c.app.clock))
	}

	listing, err := c.app.businessAPI.ListEntries(ctx, user.ID, day)
	if err != nil {
		return c.app.errorHandler.Handle("list entries", err)
	}

	label := c.app.formatDay(listing.Day)
	if listing.IsToday {
		label += " (today)"
	}
	c.app.printf("%s\n", label)

	if len(listing.Entries) == 0 {
		c.app.printf("No entries\n")
	}
	for _, entry := range listing.Entries {
		c.app.printf("%s\n", c.app.formatEntry(entry))
	}
	c.app.printf("Total: %dh\n", listing.TotalHours)
	c.app.printf("Previous: %s", c.app.formatDay(listing.Previous))
	if listing.Next != listing.Day {
		c.app.printf("  Next: %s", c.app.formatDay(listing.Next))
	}
	c.app.printf("\n")
	return nil
}

func (r *RootCommand) newListCmd() *cobra.Command {
	var (
		day        string
		prev, next bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries of a day",
		Long: `List the current user's entries of one day, today by default.

Examples:
  tracker list                                  # today
  tracker list --day 2024-03-01
  tracker list --day 2024-03-01 --next          # the day after`,
		Args: cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			var dir domain.Direction
			switch {
			case prev:
				dir = domain.Backward
			case next:
				dir = domain.Forward
			}
			return NewListCommand(app).Execute(ctx, day, dir)
		}),
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "Day to list: today, yesterday or YYYY-MM-DD")
	cmd.Flags().BoolVar(&prev, "prev", false, "List the day before --day")
	cmd.Flags().BoolVar(&next, "next", false, "List the day after --day, never past today")
	cmd.MarkFlagsMutuallyExclusive("prev", "next")
	return cmd
}
