package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithFormat(&buf, "json", slog.LevelInfo)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "error", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"err":"boom"`)

	buf.Reset()
	logger, err = NewWithFormat(&buf, "text", slog.LevelDebug)
	require.NoError(t, err)
	logger.Debug("visible", "error", "x")
	assert.Contains(t, buf.String(), "err=x")

	_, err = NewWithFormat(&buf, "xml", slog.LevelInfo)
	assert.Error(t, err)
}
