// Package repotest holds behaviour every repository backend must share.
// Backends run it from their own tests against a fresh, migrated store.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/errors"
	"tracker/internal/repository"
)

func ptr[T any](v T) *T { return &v }

// Run exercises repo. It creates users named after the test, so one
// database can serve several runs.
func Run(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	prefix := t.Name()

	alice := &repository.User{ID: prefix + "-alice-id", Name: prefix + "-alice"}
	bob := &repository.User{ID: prefix + "-bob-id", Name: prefix + "-bob"}
	require.NoError(t, repo.CreateUser(ctx, alice))
	require.NoError(t, repo.CreateUser(ctx, bob))

	t.Run("duplicate user name conflicts", func(t *testing.T) {
		err := repo.CreateUser(ctx, &repository.User{ID: prefix + "-other", Name: alice.Name})
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict), "got %v", err)
	})

	t.Run("entry round trip", func(t *testing.T) {
		entry := &repository.TimeEntry{
			UserID:      alice.ID,
			Description: "Review",
			Day:         "2024-03-15",
			Start:       "09:00:00",
			Stop:        ptr("11:45:00"),
			Duration:    ptr(3),
		}
		require.NoError(t, repo.CreateTimeEntry(ctx, entry))

		got, err := repo.GetTimeEntry(ctx, alice.ID, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry, got)

		_, err = repo.GetTimeEntry(ctx, bob.ID, entry.ID)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

		require.NoError(t, repo.DeleteTimeEntry(ctx, alice.ID, entry.ID))
		err = repo.DeleteTimeEntry(ctx, alice.ID, entry.ID)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})

	t.Run("one active timer per user", func(t *testing.T) {
		first := &repository.TimeEntry{UserID: alice.ID, Day: "2024-03-16", Start: "09:00:00"}
		require.NoError(t, repo.CreateTimeEntry(ctx, first))

		err := repo.CreateTimeEntry(ctx, &repository.TimeEntry{UserID: alice.ID, Day: "2024-03-16", Start: "10:00:00"})
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict), "got %v", err)

		active, err := repo.ListActiveTimeEntries(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, first.ID, active[0].ID)

		first.Stop = ptr("10:00:00")
		first.Duration = ptr(1)
		require.NoError(t, repo.UpdateTimeEntry(ctx, first))
		require.NoError(t, repo.UpdateTimeEntry(ctx, first), "rewriting identical values is not a miss")

		active, err = repo.ListActiveTimeEntries(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("report search", func(t *testing.T) {
		client := &repository.Client{UserID: bob.ID, Name: "Acme"}
		require.NoError(t, repo.CreateClient(ctx, client))
		project := &repository.Project{UserID: bob.ID, ClientID: &client.ID, Name: "Site", Status: "Active", Billing: true, Amount: 30, PaymentType: "Hour"}
		require.NoError(t, repo.CreateProject(ctx, project))

		gotProject, err := repo.GetProject(ctx, bob.ID, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project, gotProject)

		for _, e := range []*repository.TimeEntry{
			{UserID: bob.ID, ProjectID: &project.ID, Day: "2024-03-10", Start: "09:00:00", Stop: ptr("10:00:00"), Duration: ptr(1)},
			{UserID: bob.ID, ProjectID: &project.ID, Day: "2024-03-11", Start: "09:00:00", Stop: ptr("11:00:00"), Duration: ptr(2)},
			{UserID: bob.ID, Day: "2024-03-11", Start: "12:00:00", Stop: ptr("13:00:00"), Duration: ptr(1)},
			{UserID: bob.ID, ProjectID: &project.ID, Day: "2024-03-12", Start: "09:00:00"},
		} {
			require.NoError(t, repo.CreateTimeEntry(ctx, e))
		}

		got, err := repo.SearchTimeEntries(ctx, bob.ID, repository.SearchOptions{
			From:       ptr("2024-03-10"),
			To:         ptr("2024-03-12"),
			ClientID:   &client.ID,
			ClosedOnly: true,
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-03-10", got[0].Day)
		assert.Equal(t, "2024-03-11", got[1].Day)

		day, err := repo.SearchTimeEntries(ctx, bob.ID, repository.SearchOptions{Day: ptr("2024-03-11")})
		require.NoError(t, err)
		require.Len(t, day, 2)
		assert.Equal(t, "09:00:00", day[0].Start)
		assert.Equal(t, "12:00:00", day[1].Start)
	})

	t.Run("user lock is exclusive", func(t *testing.T) {
		unlock, err := repo.LockUser(ctx, alice.ID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		acquired := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			second, err := repo.LockUser(waitCtx, alice.ID)
			if err == nil {
				close(acquired)
				second()
			}
		}()

		select {
		case <-acquired:
			t.Fatal("second lock acquired while the first is held")
		case <-time.After(200 * time.Millisecond):
		}

		unlock()
		wg.Wait()
		select {
		case <-acquired:
		default:
			t.Fatal("second lock was never acquired")
		}
	})
}
