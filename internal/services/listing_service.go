package services

import (
	"context"

	"tracker/internal/clock"
	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/repository"
)

// listingServiceImpl implements the ListingService interface
type listingServiceImpl struct {
	repo   repository.Repository
	mapper *domain.Mapper
	clock  clock.Clock
}

// NewListingService creates a new ListingService instance
func NewListingService(repo repository.Repository, opts Options) ListingService {
	opts = opts.withDefaults()
	return &listingServiceImpl{
		repo:   repo,
		mapper: domain.NewMapper(),
		clock:  opts.Clock,
	}
}

// ListDay returns the user's entries on day ordered by start time. The zero
// day means today. Next never moves past today.
func (l *listingServiceImpl) ListDay(ctx context.Context, userID string, day domain.Date) (*DayListing, error) {
	today := clock.Today(l.clock)
	if day.IsZero() {
		day = today
	}

	dayText := day.String()
	dbEntries, err := l.repo.SearchTimeEntries(ctx, userID, repository.SearchOptions{Day: &dayText})
	if err != nil {
		return nil, err
	}
	entries, err := l.mapper.TimeEntry.FromDatabaseSlice(dbEntries)
	if err != nil {
		return nil, errors.NewDatabaseError("decode time entries", err)
	}

	return &DayListing{
		Day:        day,
		Previous:   domain.NavigateDay(day, domain.Backward, today),
		Next:       domain.NavigateDay(day, domain.Forward, today),
		IsToday:    day == today,
		Entries:    entries,
		TotalHours: totalHours(entries),
	}, nil
}

// totalHours sums the recorded durations. Active entries count as zero.
func totalHours(entries []*domain.TimeEntry) int {
	total := 0
	for _, entry := range entries {
		if entry.Duration != nil {
			total += *entry.Duration
		}
	}
	return total
}
