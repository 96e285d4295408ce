package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var record map[string]interface{}
		require.NoError(t, dec.Decode(&record))
		records = append(records, record)
	}
	return records
}

func TestInfoRecordShape(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel)

	logger.Info("Backend", "connected", map[string]interface{}{"url": "ws://localhost:8765"})

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "info", records[0]["level"])
	assert.Equal(t, "Backend", records[0]["component"])
	assert.Equal(t, "connected", records[0]["message"])
	assert.Equal(t, "ws://localhost:8765", records[0]["url"])
}

func TestInfoLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel)

	logger.Debug("Backend", "noisy detail", nil)
	logger.Warning("Backend", "something odd", nil)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "warn", records[0]["level"])
}

func TestErrorRecordCarriesError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel)

	logger.Error("GUI", assert.AnError, map[string]interface{}{"action": "send"})

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "error", records[0]["level"])
	assert.Equal(t, assert.AnError.Error(), records[0]["error"])
	assert.Equal(t, "send", records[0]["action"])
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	// Must not panic and must not write anywhere.
	logger.Info("Application", "Coda Dashboard starting up", nil)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("info")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
