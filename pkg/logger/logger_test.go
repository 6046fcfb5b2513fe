package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("JSONFormat_ShouldWriteInitialFields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, err := New(Config{
			Level:         "info",
			Format:        "json",
			OutputPaths:   []string{path},
			InitialFields: map[string]interface{}{"service": "smartmeals"},
		})
		require.NoError(t, err)

		log.Debug("hidden")
		log.Info("Meal plan generated")
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 1)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "Meal plan generated", entry["msg"])
		assert.Equal(t, "smartmeals", entry["service"])
	})

	t.Run("UnknownLevel_ShouldDefaultToInfo", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, err := New(Config{Level: "loud", Format: "console", OutputPaths: []string{path}})
		require.NoError(t, err)

		log.Debug("hidden")
		log.Warn("shown")
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "shown")
	})

	t.Run("BadOutputPath_ShouldFail", func(t *testing.T) {
		_, err := New(Config{OutputPaths: []string{filepath.Join(t.TempDir(), "missing", "dir", "app.log")}})
		assert.Error(t, err)
	})
}
