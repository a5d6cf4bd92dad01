package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tracker/internal/api"
	"tracker/internal/domain"
)

// projectFlags are the raw values describing a new project.
type projectFlags struct {
	client  int64
	notes   string
	billing bool
	amount  int
	payment string
}

// CatalogCommand handles users, clients and projects.
type CatalogCommand struct {
	app *App
}

// NewCatalogCommand creates a new catalog command handler
func NewCatalogCommand(app *App) *CatalogCommand {
	return &CatalogCommand{app: app}
}

// AddUser registers a user and prints the ID to pass as --user.
func (c *CatalogCommand) AddUser(ctx context.Context, args []string) error {
	user, err := c.app.businessAPI.CreateUser(ctx, strings.Join(args, " "))
	if err != nil {
		return c.app.errorHandler.Handle("add user", err)
	}
	c.app.printf("Added user %s (%s)\n", user.Name, user.ID)
	return nil
}

// ListUsers prints every user.
func (c *CatalogCommand) ListUsers(ctx context.Context) error {
	users, err := c.app.businessAPI.ListUsers(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("list users", err)
	}
	if len(users) == 0 {
		c.app.printf("No users\n")
	}
	for _, u := range users {
		c.app.printf("%s  %s\n", u.ID, u.Name)
	}
	return nil
}

// AddClient creates a client owned by the current user.
func (c *CatalogCommand) AddClient(ctx context.Context, args []string) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}
	client, err := c.app.businessAPI.CreateClient(ctx, user.ID, strings.Join(args, " "))
	if err != nil {
		return c.app.errorHandler.Handle("add client", err)
	}
	c.app.printf("Added client #%d %s\n", client.ID, client.Name)
	return nil
}

// ListClients prints the current user's clients.
func (c *CatalogCommand) ListClients(ctx context.Context) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}
	clients, err := c.app.businessAPI.ListClients(ctx, user.ID)
	if err != nil {
		return c.app.errorHandler.Handle("list clients", err)
	}
	if len(clients) == 0 {
		c.app.printf("No clients\n")
	}
	for _, client := range clients {
		c.app.printf("#%d %s\n", client.ID, client.Name)
	}
	return nil
}

// AddProject creates a project owned by the current user.
func (c *CatalogCommand) AddProject(ctx context.Context, flags projectFlags, args []string) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}
	project, err := c.app.businessAPI.CreateProject(ctx, user.ID, api.ProjectInput{
		Name:        strings.Join(args, " "),
		ClientID:    optionalID(flags.client),
		Notes:       flags.notes,
		Billing:     flags.billing,
		Amount:      flags.amount,
		PaymentType: domain.PaymentType(flags.payment),
	})
	if err != nil {
		return c.app.errorHandler.Handle("add project", err)
	}
	c.app.printf("Added project #%d %s\n", project.ID, project.Name)
	return nil
}

// ListProjects prints the current user's projects with their state.
func (c *CatalogCommand) ListProjects(ctx context.Context) error {
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}
	projects, err := c.app.businessAPI.ListProjects(ctx, user.ID)
	if err != nil {
		return c.app.errorHandler.Handle("list projects", err)
	}
	if len(projects) == 0 {
		c.app.printf("No projects\n")
	}
	for _, p := range projects {
		c.app.printf("#%d %s [%s, per %s]\n", p.ID, p.Name, p.Status, strings.ToLower(string(p.PaymentType)))
	}
	return nil
}

// SetProjectStatus moves a project to status.
func (c *CatalogCommand) SetProjectStatus(ctx context.Context, idArg string, status domain.ProjectStatus) error {
	id, err := parseID("id", idArg)
	if err != nil {
		return c.app.errorHandler.HandleSimple(err)
	}
	user, err := c.app.currentUser(ctx)
	if err != nil {
		return err
	}
	project, err := c.app.businessAPI.SetProjectStatus(ctx, user.ID, id, status)
	if err != nil {
		return c.app.errorHandler.Handle("change project", err)
	}
	c.app.printf("Project #%d %s is now %s\n", project.ID, project.Name, project.Status)
	return nil
}

func (r *RootCommand) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Register a user",
			Args:  cobra.MinimumNArgs(1),
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).AddUser(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).ListUsers(ctx)
			}),
		},
	)
	return cmd
}

func (r *RootCommand) newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage the current user's clients",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a client",
			Args:  cobra.MinimumNArgs(1),
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).AddClient(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List clients",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).ListClients(ctx)
			}),
		},
	)
	return cmd
}

func (r *RootCommand) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage the current user's projects",
		Long: `Manage projects. Time can be booked only on active projects paid per
hour; mark a project done to stop booking on it.`,
	}

	var flags projectFlags
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewCatalogCommand(app).AddProject(ctx, flags, args)
		}),
	}
	add.Flags().Int64VarP(&flags.client, "client", "c", 0, "Client ID")
	add.Flags().StringVar(&flags.notes, "notes", "", "Free-form notes")
	add.Flags().BoolVar(&flags.billing, "billing", false, "Mark the project as billable")
	add.Flags().IntVar(&flags.amount, "amount", 0, "Rate per payment period")
	add.Flags().StringVar(&flags.payment, "payment", "hour", "Payment type: hour or month")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List projects",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).ListProjects(ctx)
			}),
		},
		&cobra.Command{
			Use:   "done <id>",
			Short: "Mark a project done",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).SetProjectStatus(ctx, args[0], domain.ProjectDone)
			}),
		},
		&cobra.Command{
			Use:   "reopen <id>",
			Short: "Mark a project active again",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, app *App, args []string) error {
				return NewCatalogCommand(app).SetProjectStatus(ctx, args[0], domain.ProjectActive)
			}),
		},
	)
	return cmd
}
