package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Info("check-in created", "user_id", "u-1")

	output := buf.String()
	assert.Contains(t, output, "check-in created")
	assert.Contains(t, output, `"user_id":"u-1"`)
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Error("test error")

	assert.Contains(t, buf.String(), "test error")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestDebug_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Debug("hidden")
	assert.Empty(t, buf.String())

	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Debugf("test %s", "debug")
	assert.Contains(t, buf.String(), "test debug")
}

func TestInfof(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Infof("server starting on port %s", "8080")

	assert.Contains(t, buf.String(), "server starting on port 8080")
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Errorf("test %s", "error")

	assert.Contains(t, buf.String(), "test error")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	WithError(assert.AnError).Info("test with error")

	output := buf.String()
	assert.Contains(t, output, "test with error")
	assert.Contains(t, output, assert.AnError.Error())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	WithFields(map[string]interface{}{
		"key1": "value1",
		"key2": 123,
	}).Info("test with fields")

	output := buf.String()
	assert.Contains(t, output, "test with fields")
	assert.Contains(t, output, "key1")
	assert.Contains(t, output, "value1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
