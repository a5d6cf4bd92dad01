package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// StartCommand handles the start command
type StartCommand struct {
	app *App
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{app: app}
}

// Execute starts a timer now. Whatever timer was running is closed first.
func (c *StartCommand) Execute(ctx context.Context, projectID int64, args []string) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	previous, err := c.app.businessAPI.ActiveTimerDisplay(ctx, user.ID)
	if err != nil {
		return c.app.errorHandler.Handle("read active timer", err)
	}

	entry, err := c.app.businessAPI.StartTimer(ctx, user.ID, optionalID(projectID), strings.Join(args, " "))
	if err != nil {
		return c.app.errorHandler.Handle("start timer", err)
	}

	if previous.Active {
		c.app.printf("Stopped timer #%d\n", previous.Entry.ID)
	}
	c.app.printf("Started timer #%d at %s\n", entry.ID, c.app.formatTime(entry.Day, entry.Start))
	return nil
}

func (r *RootCommand) newStartCmd() *cobra.Command {
	var projectID int64
	cmd := &cobra.Command{
		Use:   "start [description]",
		Short: "Start a timer now",
		Long: `Start a timer for the current user at the current time.

A timer already running today is stopped now; one left running on a past
day is stopped at the configured day end.`,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewStartCommand(app).Execute(ctx, projectID, args)
		}),
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project ID to book the time on")
	return cmd
}
