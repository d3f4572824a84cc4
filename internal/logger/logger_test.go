package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "json")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "INFO", "text") })

	Info("hidden")
	Warn("sidecar skipped", "media_id", "abc")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "sidecar skipped", entry["msg"])
	assert.Equal(t, "abc", entry["media_id"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "ERROR", "text")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "INFO", "text") })

	SetLevel("verbose")
	Warn("still filtered")
	assert.Empty(t, buf.String())

	Error("shown")
	assert.Contains(t, buf.String(), "shown")
}
