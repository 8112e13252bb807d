package log_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licextlog "licext/internal/log"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]log.Level{
		"debug":   log.DebugLevel,
		"TRACE":   log.DebugLevel,
		"info":    log.InfoLevel,
		"warning": log.WarnLevel,
		"warn":    log.WarnLevel,
		"error":   log.ErrorLevel,
		"panic":   log.FatalLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}

	for input, want := range tcs {
		assert.Equal(t, want, licextlog.GetLevel(input), input)
	}

	assert.True(t, licextlog.ValidLevel("Warning"))
	assert.False(t, licextlog.ValidLevel("bogus"))
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := licextlog.New(&buf, "debug", "json")
	require.NoError(t, err)

	logger.Debug("derived target", "path", "out/licenses.ext.json")
	assert.Contains(t, buf.String(), `"msg"`)
	assert.Contains(t, buf.String(), "derived target")
	assert.Contains(t, buf.String(), "licext")
}

func TestNewFiltersLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := licextlog.New(&buf, "warn", "logfmt")
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := licextlog.New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := licextlog.Discard()
	require.NotNil(t, logger)
	logger.Error("dropped")
}
