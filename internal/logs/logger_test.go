package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("INFO")
	})
	return buf
}

func TestLogJSON(t *testing.T) {
	buf := capture(t)

	LogJSON("WARN", "Like toggle failed", map[string]interface{}{
		"route":  "/api/posts/:id/like/",
		"userID": "u1",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["severity"])
	assert.Equal(t, "Like toggle failed", entry["message"])
	assert.Equal(t, "u1", entry["userID"])
	assert.Equal(t, "/api/posts/:id/like/", entry["route"])
	assert.NotEmpty(t, entry["time"])
}

func TestSetLevelFiltersEntries(t *testing.T) {
	buf := capture(t)
	SetLevel("ERROR")

	LogJSON("INFO", "hidden", nil)
	assert.Zero(t, buf.Len())

	LogJSON("ERROR", "shown", nil)
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"INFO":    logrus.InfoLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"ERROR":   logrus.ErrorLevel,
		"FATAL":   logrus.ErrorLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
