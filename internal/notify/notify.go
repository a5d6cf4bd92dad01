// Package notify announces timers that were closed on the user's behalf.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"tracker/internal/domain"
	"tracker/internal/logging"
)

// Reason tells why an active timer was closed.
type Reason string

const (
	ReasonPastDay     Reason = "left running on a past day"
	ReasonNewTimer    Reason = "superseded by a new timer"
	ReasonStopRequest Reason = "stopped"
)

// Notifier is told about every timer the engine closes.
type Notifier interface {
	TimerClosed(ctx context.Context, entry domain.TimeEntry, reason Reason)
}

// Nop drops every notification.
type Nop struct{}

// TimerClosed implements Notifier.
func (Nop) TimerClosed(context.Context, domain.TimeEntry, Reason) {}

// Discord posts to a Discord webhook. The request is bound to the caller's
// context. Delivery failures are logged and otherwise ignored.
type Discord struct {
	send   func(ctx context.Context, params *discordgo.WebhookParams) error
	logger *slog.Logger
}

// NewDiscord creates a notifier for the webhook identified by id and token.
func NewDiscord(id, token string, logger *slog.Logger) (*Discord, error) {
	// Webhook execution authenticates through the token in the URL.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Client = &http.Client{Timeout: 10 * time.Second}

	send := func(ctx context.Context, params *discordgo.WebhookParams) error {
		_, err := session.WebhookExecute(id, token, false, params, discordgo.WithContext(ctx))
		return err
	}
	return newDiscord(send, logger), nil
}

func newDiscord(send func(context.Context, *discordgo.WebhookParams) error, logger *slog.Logger) *Discord {
	return &Discord{send: send, logger: logging.OrDiscard(logger)}
}

// TimerClosed implements Notifier.
func (d *Discord) TimerClosed(ctx context.Context, entry domain.TimeEntry, reason Reason) {
	if ctx.Err() != nil {
		return
	}
	if err := d.send(ctx, Message(entry, reason)); err != nil {
		d.logger.WarnContext(ctx, "discord notification failed",
			"entry_id", entry.ID, "error", err)
	}
}

// Message renders the webhook payload for a closed entry.
func Message(entry domain.TimeEntry, reason Reason) *discordgo.WebhookParams {
	stop := "--:--"
	if entry.Stop != nil {
		stop = entry.Stop.Short()
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Day", Value: entry.Day.String(), Inline: true},
		{Name: "Span", Value: entry.Start.Short() + " - " + stop, Inline: true},
	}
	if entry.Duration != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Hours", Value: fmt.Sprintf("%d", *entry.Duration), Inline: true,
		})
	}
	if entry.Description != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Description", Value: entry.Description})
	}

	return &discordgo.WebhookParams{
		Username: "tracker",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       fmt.Sprintf("Timer #%d closed", entry.ID),
			Description: string(reason),
			Fields:      fields,
		}},
	}
}
