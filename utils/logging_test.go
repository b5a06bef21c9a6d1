package utils

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLogEvent_EscapesClientValues(t *testing.T) {
	buf := captureLog(t)

	path := "/x\",\"level\":\"info\"}\n{\"forged\":\" "
	LogEvent("error", "visit_record_failed", map[string]any{
		"path":  path,
		"error": "pq: bad \x00 byte",
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "visit_record_failed", entry["event"])
	assert.Equal(t, path, entry["path"])
	assert.Equal(t, "pq: bad \x00 byte", entry["error"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogEvent_ReservedKeysWin(t *testing.T) {
	buf := captureLog(t)

	LogEvent("error", "panic", map[string]any{"level": "info", "event": "spoofed"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "panic", entry["event"])
}

func TestLogEvent_UnencodableField(t *testing.T) {
	buf := captureLog(t)

	LogEvent("info", "bad", map[string]any{"ch": make(chan int)})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "log_encode_failed", entry["event"])
}
