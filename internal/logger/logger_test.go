package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Info("dropped")
	log.With(String("component", "ingest")).Warn("kept", Int64("supplier_id", 7), Error(errors.New("boom")))
	_ = log.Sync()

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(blob)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ingest", entry["component"])
	assert.Equal(t, float64(7), entry["supplier_id"])
	assert.Equal(t, "boom", entry["error"])
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, "info", parseLevel("loud").String())
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
}
