package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/repository"
	"tracker/internal/validation"
)

// catalogServiceImpl implements the CatalogService interface
type catalogServiceImpl struct {
	repo          repository.Repository
	mapper        *domain.Mapper
	nameValidator *validation.NameValidator
	logger        *slog.Logger
	newID         func() string
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(repo repository.Repository, opts Options) CatalogService {
	opts = opts.withDefaults()
	return &catalogServiceImpl{
		repo:          repo,
		mapper:        domain.NewMapper(),
		nameValidator: validation.NewNameValidator(validation.NewValidatorWithLimits(opts.Limits)),
		logger:        opts.Logger,
		newID:         func() string { return uuid.New().String() },
	}
}

// validateAndTrimName validates and trims a name
func (c *catalogServiceImpl) validateAndTrimName(field, message, name string) (string, error) {
	trimmedName, err := c.nameValidator.GetValidName(field, name)
	if err != nil {
		return "", errors.NewValidationError(message, err)
	}
	return trimmedName, nil
}

// CreateUser registers a user under a fresh UUID.
func (c *catalogServiceImpl) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	trimmedName, err := c.validateAndTrimName("name", "invalid user name", name)
	if err != nil {
		return nil, err
	}

	dbUser := &repository.User{ID: c.newID(), Name: trimmedName}
	if err := c.repo.CreateUser(ctx, dbUser); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "user created", "user_id", dbUser.ID)
	return &domain.User{ID: dbUser.ID, Name: dbUser.Name}, nil
}

// GetUser retrieves a user by ID
func (c *catalogServiceImpl) GetUser(ctx context.Context, id string) (*domain.User, error) {
	dbUser, err := c.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: dbUser.ID, Name: dbUser.Name}, nil
}

// GetUserByName retrieves a user by exact name
func (c *catalogServiceImpl) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	dbUser, err := c.repo.GetUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: dbUser.ID, Name: dbUser.Name}, nil
}

// ListUsers returns every user ordered by name
func (c *catalogServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	dbUsers, err := c.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, len(dbUsers))
	for i, u := range dbUsers {
		users[i] = &domain.User{ID: u.ID, Name: u.Name}
	}
	return users, nil
}

// CreateClient creates a client owned by the user
func (c *catalogServiceImpl) CreateClient(ctx context.Context, userID, name string) (*domain.Client, error) {
	trimmedName, err := c.validateAndTrimName("name", "invalid client name", name)
	if err != nil {
		return nil, err
	}

	dbClient := &repository.Client{UserID: userID, Name: trimmedName}
	if err := c.repo.CreateClient(ctx, dbClient); err != nil {
		return nil, err
	}

	client := c.mapper.Client.FromDatabase(*dbClient)
	return &client, nil
}

// ListClients returns the user's clients ordered by name
func (c *catalogServiceImpl) ListClients(ctx context.Context, userID string) ([]*domain.Client, error) {
	dbClients, err := c.repo.ListClients(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.mapper.Client.FromDatabaseSlice(dbClients), nil
}

// CreateProject creates an active project owned by the user. The client, if
// given, must belong to the same user.
func (c *catalogServiceImpl) CreateProject(ctx context.Context, userID string, in ProjectInput) (*domain.Project, error) {
	validationError := validation.NewValidationError()

	trimmedName, err := c.nameValidator.GetValidName("name", in.Name)
	validationError.Merge(err)

	paymentType, ok := domain.ParsePaymentType(string(in.PaymentType))
	if !ok {
		validationError.BadChoice("payment_type", in.PaymentType)
	}

	if in.Amount < 0 {
		validationError.Invalid("amount", in.Amount, "must not be negative")
	}

	if in.ClientID != nil {
		if _, err := c.repo.GetClient(ctx, userID, *in.ClientID); err != nil {
			if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
				return nil, err
			}
			validationError.BadChoice("client", *in.ClientID)
		}
	}

	if err := validationError.ErrOrNil(); err != nil {
		return nil, errors.NewValidationError("invalid project", err)
	}

	project := domain.NewProject(userID, trimmedName)
	project.ClientID = in.ClientID
	project.Notes = in.Notes
	project.Billing = in.Billing
	project.Amount = in.Amount
	project.PaymentType = paymentType

	dbProject := c.mapper.Project.ToDatabase(project)
	if err := c.repo.CreateProject(ctx, &dbProject); err != nil {
		return nil, err
	}
	project.ID = dbProject.ID
	return &project, nil
}

// GetProject retrieves a project owned by the user
func (c *catalogServiceImpl) GetProject(ctx context.Context, userID string, id int64) (*domain.Project, error) {
	if err := c.nameValidator.ValidateID("id", id); err != nil {
		return nil, errors.NewValidationError("invalid project id", err)
	}
	dbProject, err := c.repo.GetProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	project := c.mapper.Project.FromDatabase(*dbProject)
	return &project, nil
}

// ListProjects returns all of the user's projects ordered by name
func (c *catalogServiceImpl) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	dbProjects, err := c.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.mapper.Project.FromDatabaseSlice(dbProjects), nil
}

// SelectableProjects returns the projects time can be booked on.
func (c *catalogServiceImpl) SelectableProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	projects, err := c.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	selectable := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.AcceptsTimeEntries() {
			selectable = append(selectable, p)
		}
	}
	return selectable, nil
}

// SetProjectStatus moves a project between Active and Done.
func (c *catalogServiceImpl) SetProjectStatus(ctx context.Context, userID string, id int64, status domain.ProjectStatus) (*domain.Project, error) {
	if status != domain.ProjectActive && status != domain.ProjectDone {
		validationError := validation.NewValidationError()
		validationError.BadChoice("status", status)
		return nil, errors.NewValidationError("invalid project status", validationError)
	}

	project, err := c.GetProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	project.Status = status

	dbProject := c.mapper.Project.ToDatabase(*project)
	if err := c.repo.UpdateProject(ctx, &dbProject); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "project status changed", "user_id", userID, "project_id", id, "status", string(status))
	return project, nil
}
