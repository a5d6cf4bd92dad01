package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LevelFollowsVerbose(t *testing.T) {
	t.Setenv("TT_DEBUG", "")

	quiet := New(Options{Output: &bytes.Buffer{}})
	assert.False(t, quiet.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, quiet.Enabled(context.Background(), slog.LevelInfo))

	verbose := New(Options{Verbose: true, Output: &bytes.Buffer{}})
	assert.True(t, verbose.Enabled(context.Background(), slog.LevelDebug))
}

func TestNew_DebugFromEnvironment(t *testing.T) {
	t.Setenv("TT_DEBUG", "1")

	logger := New(Options{Output: &bytes.Buffer{}})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNew_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf})

	logger.Info("auto-closed active timer", "entry_id", 7)

	assert.Contains(t, buf.String(), "auto-closed active timer")
	assert.Contains(t, buf.String(), "entry_id=7")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{JSON: true, Output: &buf})

	logger.Warn("slow query", "ms", 120)

	assert.Contains(t, buf.String(), `"msg":"slow query"`)
	assert.Contains(t, buf.String(), `"ms":120`)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := New(Options{Output: &bytes.Buffer{}})
	assert.Same(t, l, OrDiscard(l))
}
