package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := New().SetOutput(&buf).SetFormat("JSON").SetLevelString("debug").Build()
	require.NoError(t, err)
	defer cleanup()

	logger.With(Component("xpage")).Debug(context.Background(), "page fetched", slog.Int64("page", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "page fetched", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "xpage", entry["component"])
	assert.EqualValues(t, 2, entry["page"])
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, _, err := New().SetFormat("xml").SetLevelString("nope").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, _, err = New().SetRotation("  ").Build()
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().SetOutput(&buf).SetLevel(LevelWarn).Build()
	require.NoError(t, err)

	ctx := context.Background()
	logger.Info(ctx, "hidden")
	assert.Empty(t, buf.String())
	assert.False(t, logger.Enabled(ctx, LevelInfo))

	child := logger.WithGroup("db")
	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())

	child.Debug(ctx, "visible", slog.String("coll", "orders"))
	assert.Contains(t, buf.String(), "db.coll=orders")

	logger.Error(nil, "nil ctx is fine", Err(errors.New("boom"))) //nolint:staticcheck // 测试 nil ctx
	assert.Contains(t, buf.String(), "error=boom")
}

func TestBuilder_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, cleanup, err := New().SetRotation(path, RotateMaxSize(1), RotateMaxBackups(1), RotateCompress(false)).Build()
	require.NoError(t, err)

	logger.Warn(context.Background(), "written to file")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup())
	assert.FileExists(t, path)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("warn")))
	assert.Equal(t, LevelWarn, l)
	assert.Equal(t, "WARN", l.String())
	text, err := l.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))
	assert.Error(t, l.UnmarshalText([]byte("loud")))
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, slog.String("error", ""), Err(nil))
}

func TestRunID_Enrichment(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().SetOutput(&buf).SetFormat("json").Build()
	require.NoError(t, err)

	ctx := ContextWithRunID(context.Background(), "run-42")
	assert.Equal(t, "run-42", RunID(ctx))
	logger.WithGroup("xpage").Info(ctx, "page served", slog.Int64("page", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	group, ok := entry["xpage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-42", group["run_id"])

	buf.Reset()
	logger.Info(context.Background(), "no run")
	assert.NotContains(t, buf.String(), "run_id")

	assert.Equal(t, ctx, ContextWithRunID(ctx, ""))
	assert.Empty(t, RunID(nil)) //nolint:staticcheck // nil ctx
	assert.NotNil(t, ContextWithRunID(nil, "x")) //nolint:staticcheck // nil ctx
}
