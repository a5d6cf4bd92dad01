package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tracker/internal/api"
	"tracker/internal/clock"
	"tracker/internal/config"
	"tracker/internal/domain"
	"tracker/internal/errors"
)

// App carries what every command handler needs once configuration has been
// loaded and the store opened.
type App struct {
	businessAPI  api.BusinessAPI
	config       *config.Config
	clock        clock.Clock
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewApp creates a CLI application over businessAPI. Output goes to out.
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config, c clock.Clock, out io.Writer) *App {
	return &App{
		businessAPI:  businessAPI,
		config:       cfg,
		clock:        c,
		out:          out,
		errorHandler: NewErrorHandler(),
	}
}

// currentUser resolves the user named by --user or TT_USER.
func (a *App) currentUser(ctx context.Context) (*domain.User, error) {
	ref := strings.TrimSpace(a.config.Application.User)
	if ref == "" {
		return nil, errors.NewInvalidInputError("user", "", "set --user or TT_USER")
	}
	user, err := a.businessAPI.ResolveUser(ctx, ref)
	if err != nil {
		return nil, a.errorHandler.Handle("identify user", err)
	}
	return user, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// formatTime renders tod on day using the configured time format.
func (a *App) formatTime(day domain.Date, tod domain.TimeOfDay) string {
	return day.At(tod, time.UTC).Format(a.config.Display.TimeFormat)
}

// formatDay renders day using the configured date format.
func (a *App) formatDay(day domain.Date) string {
	return day.At(0, time.UTC).Format(a.config.Display.DateFormat)
}

// formatEntry returns the one-line listing form of entry:
// #id day start - stop (hours): description [project]
func (a *App) formatEntry(entry *domain.TimeEntry) string {
	stop := "running"
	hours := "-"
	if entry.Stop != nil {
		stop = a.formatTime(entry.Day, *entry.Stop)
	}
	if entry.Duration != nil {
		hours = fmt.Sprintf("%dh", *entry.Duration)
	}

	line := fmt.Sprintf("#%d %s %s - %s (%s)", entry.ID, a.formatDay(entry.Day),
		a.formatTime(entry.Day, entry.Start), stop, hours)
	if entry.Description != "" {
		line += ": " + entry.Description
	}
	if entry.ProjectID != nil {
		line += fmt.Sprintf(" [project %d]", *entry.ProjectID)
	}
	return line
}

// parseDay accepts "today", "yesterday" or a YYYY-MM-DD date. The empty
// string is today.
func parseDay(s string, c clock.Clock) (domain.Date, error) {
	today := clock.Today(c)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	day, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, errors.NewInvalidInputError("day", s, "expected today, yesterday or YYYY-MM-DD")
	}
	return day, nil
}

// parseTime accepts HH:MM or HH:MM:SS, and "now".
func parseTime(field, s string, c clock.Clock) (domain.TimeOfDay, error) {
	if strings.EqualFold(strings.TrimSpace(s), "now") {
		return clock.TimeOfDay(c), nil
	}
	tod, err := domain.ParseTimeOfDay(s)
	if err != nil {
		return 0, errors.NewInvalidInputError(field, s, "expected HH:MM")
	}
	return tod, nil
}

// parseID parses a positional record ID.
func parseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, s, "expected a positive number")
	}
	return id, nil
}

// optionalID maps the zero flag value to "not given".
func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
