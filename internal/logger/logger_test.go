package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	prevTime := zerolog.TimeFieldFormat
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.TimeFieldFormat = prevTime
	})
}

func TestSetup_JSONFile(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "invoicer.log")

	require.NoError(t, Setup(LogConfig{
		Level:      "debug",
		Format:     "json",
		TimeFormat: time.RFC3339,
		Output:     path,
	}))

	l := WithComponent("store")
	l.Debug().Str("invoice_id", "inv-1").Msg("Invoice created")
	l.Trace().Msg("below level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "inv-1", entry["invoice_id"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "Invoice created", entry["message"])
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreGlobals(t)
	err := Setup(LogConfig{Level: "chatty", Output: "stderr"})
	assert.Error(t, err)
}

func TestWithFields(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "fields.log")
	require.NoError(t, Setup(LogConfig{Level: "info", Format: "json", Output: path}))

	l := WithFields(map[string]interface{}{"command": "import", "mode": "merge"})
	l.Info().Msg("Backup imported")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command":"import"`)
	assert.Contains(t, string(data), `"mode":"merge"`)
}
