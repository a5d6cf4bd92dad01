package services

import (
	"context"

	"tracker/internal/clock"
	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/repository"
	"tracker/internal/validation"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo      repository.Repository
	catalog   CatalogService
	mapper    *domain.Mapper
	validator *validation.TimeEntryValidator
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo repository.Repository, catalog CatalogService, opts Options) ReportingService {
	opts = opts.withDefaults()
	return &reportingServiceImpl{
		repo:      repo,
		catalog:   catalog,
		mapper:    domain.NewMapper(),
		validator: validation.NewTimeEntryValidator(validation.NewValidatorWithLimits(opts.Limits), opts.Clock),
	}
}

// Report returns the user's closed entries matching criteria and the sum of
// their durations. Only hourly projects and the user's own clients are
// accepted as filters.
func (r *reportingServiceImpl) Report(ctx context.Context, userID string, criteria ReportCriteria) (*Report, error) {
	if err := r.validateCriteria(ctx, userID, criteria); err != nil {
		return nil, err
	}

	opts := repository.SearchOptions{
		ProjectID:  criteria.ProjectID,
		ClientID:   criteria.ClientID,
		ClosedOnly: true,
	}
	if criteria.From != nil {
		from := criteria.From.String()
		opts.From = &from
	}
	if criteria.To != nil {
		to := criteria.To.String()
		opts.To = &to
	}

	dbEntries, err := r.repo.SearchTimeEntries(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	entries, err := r.mapper.TimeEntry.FromDatabaseSlice(dbEntries)
	if err != nil {
		return nil, errors.NewDatabaseError("decode time entries", err)
	}

	return &Report{
		Criteria:   criteria,
		Entries:    entries,
		TotalHours: totalHours(entries),
	}, nil
}

func (r *reportingServiceImpl) validateCriteria(ctx context.Context, userID string, criteria ReportCriteria) error {
	validationError := validation.NewValidationError()
	validationError.Merge(r.validator.ValidateReportRange(criteria.From, criteria.To))

	if criteria.ProjectID != nil {
		project, err := r.catalog.GetProject(ctx, userID, *criteria.ProjectID)
		switch {
		case err == nil && project.PaymentType == domain.PaymentHour:
		case err == nil, errors.IsErrorType(err, errors.ErrorTypeNotFound), errors.IsErrorType(err, errors.ErrorTypeValidation):
			validationError.BadChoice("project", *criteria.ProjectID)
		default:
			return err
		}
	}

	if criteria.ClientID != nil {
		if _, err := r.repo.GetClient(ctx, userID, *criteria.ClientID); err != nil {
			if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
				return err
			}
			validationError.BadChoice("client", *criteria.ClientID)
		}
	}

	if err := validationError.ErrOrNil(); err != nil {
		return errors.NewValidationError("invalid report criteria", err)
	}
	return nil
}

// ReportForLastDays is a convenience range ending today.
func ReportForLastDays(c clock.Clock, days int) ReportCriteria {
	to := clock.Today(c)
	from := to.AddDays(-(days - 1))
	return ReportCriteria{From: &from, To: &to}
}
