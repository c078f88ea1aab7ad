package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWritesToSinks(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf, nil)

	logger.Info().Msg("hidden")
	logger.Warn().Str("room", "r1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"room":"r1"`)
	assert.Contains(t, out, `"message":"visible"`)
}

func TestFileSink(t *testing.T) {
	assert.Nil(t, FileSink("", 1, 1, 1))

	path := filepath.Join(t.TempDir(), "arena.log")
	sink := FileSink(path, 1, 1, 1)
	require.NotNil(t, sink)

	logger := New("info", sink)
	logger.Info().Msg("to file")
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
