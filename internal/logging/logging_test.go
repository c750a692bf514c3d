package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(&buf, zerolog.WarnLevel), ComponentTUI)
	l.Info().Msg("hidden")
	l.Warn().Str(FieldRoute, "/goals").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "shown", line["message"])
	require.Equal(t, ComponentTUI, line[FieldComponent])
	require.Equal(t, "/goals", line[FieldRoute])
	require.Contains(t, line, "time")
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "moneta.log")
	l, closer, err := Open(path, zerolog.InfoLevel)
	require.NoError(t, err)
	l.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"hello"`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
