package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tracker/internal/api"
)

// entryFlags are the raw flag values describing an entry.
type entryFlags struct {
	day         string
	start       string
	stop        string
	project     int64
	description string
	running     bool
	noProject   bool
}

// EntryCommand handles add, edit and delete of single entries.
type EntryCommand struct {
	app *App
}

// NewEntryCommand creates a new entry command handler
func NewEntryCommand(app *App) *EntryCommand {
	return &EntryCommand{app: app}
}

// Add records an entry. Without --stop the entry is a running timer.
func (c *EntryCommand) Add(ctx context.Context, flags entryFlags, args []string) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	day, err := parseDay(flags.day, c.app.clock)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}
	if flags.start == "" {
		flags.start = "now"
	}
	start, err := parseTime("start", flags.start, c.app.clock)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}

	in := api.EntryInput{
		Day:         day,
		Start:       &start,
		ProjectID:   optionalID(flags.project),
		Description: strings.Join(args, " "),
	}
	if flags.stop != "" {
		stop, err := parseTime("stop", flags.stop, c.app.clock)
		if err != nil {
			return c.app.errorHandler.HandleSimple(err)
		}
		in.Stop = &stop
	}

	entry, err := c.app.businessAPI.CreateEntry(ctx, user.ID, in)
	if err != nil {
		return c.app.errorHandler.Handle("add entry", err)
	}
	c.app.printf("Added %s\n", c.app.formatEntry(entry))
	return nil
}

// Edit changes the flags that were given and keeps the rest of the entry.
func (c *EntryCommand) Edit(ctx context.Context, idArg string, flags entryFlags, changed func(string) bool) error {
	id, err := parseID("id", idArg)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	current, err := c.app.businessAPI.GetEntry(ctx, user.ID, id)
	if err != nil {
		return c.app.errorHandler.Handle("edit entry", err)
	}

	start := current.Start
	in := api.EntryInput{
		Day:         current.Day,
		Start:       &start,
		Stop:        current.Stop,
		ProjectID:   current.ProjectID,
		Description: current.Description,
	}
	if changed("day") {
		if in.Day, err = parseDay(flags.day, c.app.clock); err != nil {
			return c.app.errorHandler.HandleSimple(err)
		}
	}
	if changed("start") {
		if start, err = parseTime("start", flags.start, c.app.clock); err != nil {
			return c.app.errorHandler.HandleSimple(err)
		}
	}
	if changed("stop") {
		stop, err := parseTime("stop", flags.stop, c.app.clock)
		if err != nil {
			return c.app.errorHandler.HandleSimple(err)
		}
		in.Stop = &stop
	}
	if flags.running {
		in.Stop = nil
	}
	if changed("project") {
		in.ProjectID = optionalID(flags.project)
	}
	if flags.noProject {
		in.ProjectID = nil
	}
	if changed("description") {
		in.Description = flags.description
	}

	entry, err := c.app.businessAPI.UpdateEntry(ctx, user.ID, id, in)
	if err != nil {
		return c.app.errorHandler.Handle("edit entry", err)
	}
	c.app.printf("Updated %s\n", c.app.formatEntry(entry))
	return nil
}

// Delete removes an entry.
func (c *EntryCommand) Delete(ctx context.Context, idArg string) error {
	id, err := parseID("id", idArg)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := c.app.businessAPI.DeleteEntry(ctx, user.ID, id); err != nil {
		return c.app.errorHandler.Handle("delete entry", err)
	}
	c.app.printf("Deleted entry #%d\n", id)
	return nil
}

func (r *RootCommand) newAddCmd() *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Record a time entry",
		Long: `Record a time entry for the current user.

Without --stop the entry is a running timer. Adding a running timer for
today stops the timer already running; timers left running on past days
are stopped at the configured day end.

Examples:
  tracker add --start 09:00 --stop 10:30 "Standup and planning"
  tracker add --day yesterday --start 14:00 --stop 18:00 --project 3
  tracker add --start 08:45                     # running timer since 08:45`,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewEntryCommand(app).Add(ctx, flags, args)
		}),
	}
	cmd.Flags().StringVarP(&flags.day, "day", "d", "", "Day of the entry: today, yesterday or YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&flags.start, "start", "s", "", "Start time HH:MM (default now)")
	cmd.Flags().StringVarP(&flags.stop, "stop", "e", "", "Stop time HH:MM; omit for a running timer")
	cmd.Flags().Int64VarP(&flags.project, "project", "p", 0, "Project ID")
	return cmd
}

func (r *RootCommand) newEditCmd() *cobra.Command {
	var flags entryFlags
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a time entry",
		Long: `Change the given fields of a time entry. Fields without a flag keep
their current value.

Examples:
  tracker edit 12 --stop 17:30
  tracker edit 12 --running                     # reopen as a running timer
  tracker edit 12 --no-project --description "Internal"`,
		Args: cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewEntryCommand(app).Edit(ctx, args[0], flags, cmd.Flags().Changed)
		}),
	}
	cmd.Flags().StringVarP(&flags.day, "day", "d", "", "Day: today, yesterday or YYYY-MM-DD")
	cmd.Flags().StringVarP(&flags.start, "start", "s", "", "Start time HH:MM")
	cmd.Flags().StringVarP(&flags.stop, "stop", "e", "", "Stop time HH:MM")
	cmd.Flags().BoolVar(&flags.running, "running", false, "Clear the stop time")
	cmd.Flags().Int64VarP(&flags.project, "project", "p", 0, "Project ID")
	cmd.Flags().BoolVar(&flags.noProject, "no-project", false, "Detach the entry from its project")
	cmd.Flags().StringVar(&flags.description, "description", "", "Description")
	cmd.MarkFlagsMutuallyExclusive("stop", "running")
	cmd.MarkFlagsMutuallyExclusive("project", "no-project")
	return cmd
}

func (r *RootCommand) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewEntryCommand(app).Delete(ctx, args[0])
		}),
	}
}
