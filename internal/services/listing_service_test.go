package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/domain"
)

func TestListingService_ListDay(t *testing.T) {
	t.Run("should default to today and not link past it", func(t *testing.T) {
		// Arrange
		env := setupTestEnv(t)
		env.seedEntry(t, aliceID, today, tod(10, 0), nil)
		env.seedEntry(t, aliceID, today, tod(8, 0), todPtr(9, 30))
		env.seedEntry(t, aliceID, yesterday, tod(8, 0), todPtr(9, 0))
		env.seedEntry(t, bobID, today, tod(7, 0), todPtr(8, 0))

		// Act
		listing, err := env.services.ListingService.ListDay(context.Background(), aliceID, domain.Date{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, today, listing.Day)
		assert.True(t, listing.IsToday)
		assert.Equal(t, yesterday, listing.Previous)
		assert.Equal(t, today, listing.Next)
		require.Len(t, listing.Entries, 2)
		assert.Equal(t, tod(8, 0), listing.Entries[0].Start)
		assert.Equal(t, tod(10, 0), listing.Entries[1].Start)
		assert.Equal(t, 2, listing.TotalHours)
	})

	t.Run("should navigate to an earlier day", func(t *testing.T) {
		env := setupTestEnv(t)
		env.seedEntry(t, aliceID, yesterday, tod(8, 0), todPtr(9, 0))

		listing, err := env.services.ListingService.ListDay(context.Background(), aliceID, yesterday)

		require.NoError(t, err)
		assert.False(t, listing.IsToday)
		assert.Equal(t, today, listing.Next)
		assert.Equal(t, yesterday.AddDays(-1), listing.Previous)
		assert.Len(t, listing.Entries, 1)
		assert.Equal(t, 1, listing.TotalHours)
	})
}
