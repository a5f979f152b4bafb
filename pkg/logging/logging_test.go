package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"dEbUg", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"trace", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("Json"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatJSON, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "studentId", "1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "1", rec["studentId"])
}

func TestNew_Mirror(t *testing.T) {
	var out, mirror bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &out, Mirror: &mirror})

	logger.With("component", "test").Info("hello")

	assert.Contains(t, out.String(), "msg=hello")
	assert.Contains(t, out.String(), "component=test")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(mirror.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["component"])
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	logger := New(Config{Format: FormatText, Output: &buf})
	ctx := WithLogger(context.Background(), logger.With("traceId", "abc"))

	FromContext(ctx).Info("scoped")
	assert.Contains(t, buf.String(), "traceId=abc")
}

func TestNew_MirrorFollowsLevelAndGroups(t *testing.T) {
	var out, mirror bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatJSON, Output: &out, Mirror: &mirror})

	logger.Info("dropped")
	logger.WithGroup("req").Warn("slow", "durationMs", 1200)

	assert.NotContains(t, mirror.String(), "dropped")
	assert.Equal(t, out.String(), mirror.String())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(mirror.Bytes(), &rec))
	assert.Equal(t, map[string]any{"durationMs": float64(1200)}, rec["req"])
}
