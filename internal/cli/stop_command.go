package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// StopCommand handles the stop command
type StopCommand struct {
	app *App
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{app: app}
}

// Execute stops the running timer. Stopping with nothing running is not an
// error.
func (c *StopCommand) Execute(ctx context.Context) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	entry, err := c.app.businessAPI.StopActiveTimer(ctx, user.ID)
	if err != nil {
		return c.app.errorHandler.Handle("stop timer", err)
	}
	if entry == nil {
		c.app.printf("No active timer\n")
		return nil
	}

	c.app.printf("Stopped %s\n", c.app.formatEntry(entry))
	return nil
}

func (r *RootCommand) newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewStopCommand(app).Execute(ctx)
		}),
	}
}
