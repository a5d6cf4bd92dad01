package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/domain"
)

func closedEntry() domain.TimeEntry {
	entry := domain.NewTimeEntry("user-1", domain.NewDate(2024, 3, 14), domain.NewTimeOfDay(9, 0, 0))
	entry.ID = 42
	entry.Description = "writing"
	return entry.Close(domain.EndOfDay)
}

func TestMessage(t *testing.T) {
	params := Message(closedEntry(), ReasonPastDay)

	require.Len(t, params.Embeds, 1)
	embed := params.Embeds[0]
	assert.Equal(t, "Timer #42 closed", embed.Title)
	assert.Equal(t, string(ReasonPastDay), embed.Description)
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "2024-03-14", embed.Fields[0].Value)
	assert.Equal(t, "09:00 - 23:59", embed.Fields[1].Value)
	assert.Equal(t, "15", embed.Fields[2].Value)
	assert.Equal(t, "writing", embed.Fields[3].Value)
}

func TestMessageActiveEntry(t *testing.T) {
	entry := domain.NewTimeEntry("user-1", domain.NewDate(2024, 3, 14), domain.NewTimeOfDay(9, 0, 0))
	params := Message(entry, ReasonNewTimer)

	require.Len(t, params.Embeds[0].Fields, 2)
	assert.Equal(t, "09:00 - --:--", params.Embeds[0].Fields[1].Value)
}

func TestDiscordSends(t *testing.T) {
	var sent []*discordgo.WebhookParams
	d := newDiscord(func(_ context.Context, p *discordgo.WebhookParams) error {
		sent = append(sent, p)
		return nil
	}, nil)

	d.TimerClosed(context.Background(), closedEntry(), ReasonStopRequest)

	require.Len(t, sent, 1)
	assert.Equal(t, "tracker", sent[0].Username)
}

func TestDiscordLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	d := newDiscord(func(context.Context, *discordgo.WebhookParams) error {
		return errors.New("rate limited")
	}, logger)

	d.TimerClosed(context.Background(), closedEntry(), ReasonPastDay)

	assert.Contains(t, buf.String(), "discord notification failed")
	assert.Contains(t, buf.String(), "rate limited")
}

func TestDiscordSkipsCancelledContext(t *testing.T) {
	called := false
	d := newDiscord(func(context.Context, *discordgo.WebhookParams) error {
		called = true
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.TimerClosed(ctx, closedEntry(), ReasonPastDay)

	assert.False(t, called)
}

func TestDiscordPassesContextToSend(t *testing.T) {
	type key struct{}
	var got context.Context
	d := newDiscord(func(ctx context.Context, _ *discordgo.WebhookParams) error {
		got = ctx
		return nil
	}, nil)

	ctx := context.WithValue(context.Background(), key{}, "request")
	d.TimerClosed(ctx, closedEntry(), ReasonStopRequest)

	require.NotNil(t, got)
	assert.Equal(t, "request", got.Value(key{}))
}

func TestNewDiscord(t *testing.T) {
	d, err := NewDiscord("123", "token", nil)
	require.NoError(t, err)
	assert.NotNil(t, d.send)
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	n.TimerClosed(context.Background(), closedEntry(), ReasonPastDay)
}
