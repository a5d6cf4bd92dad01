package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// CurrentCommand handles the current command
type CurrentCommand struct {
	app *App
}

// NewCurrentCommand creates a new current command handler
func NewCurrentCommand(app *App) *CurrentCommand {
	return &CurrentCommand{app: app}
}

// Execute prints the running timer and how long it has been running.
func (c *CurrentCommand) Execute(ctx context.Context) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	display, err := c.app.businessAPI.ActiveTimerDisplay(ctx, user.ID)
	if err != nil {
		return c.app.errorHandler.Handle("read active timer", err)
	}
	if !display.Active {
		c.app.printf("No active timer\n")
		return nil
	}

	c.app.printf("Active timer: %s\n", display.ElapsedLabel)
	c.app.printf("%s\n", c.app.formatEntry(display.Entry))
	return nil
}

func (r *RootCommand) newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewCurrentCommand(app).Execute(ctx)
		}),
	}
}
