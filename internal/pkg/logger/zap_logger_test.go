package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisory.log")
	l := NewIsolatedLogger(path)

	l.Info("advisory", "ask completed", map[string]interface{}{"session_id": 7})
	l.Error("advisory", "ask failed", map[string]interface{}{"error": errors.New("refused")})
	l.Debug("advisory", "below file level", nil)
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "ask completed", lines[0]["message"])
	assert.Equal(t, "advisory", lines[0]["module"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "refused", lines[1]["error"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Warn("test", "nothing", nil)
		_ = l.Sync()
	})
}
