package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vent.log")
	log, err := New(Config{Level: "info", Encoding: "json", File: file, MaxSize: 1})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("delivered")
	_ = log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"delivered"`)
	require.NotContains(t, string(data), "hidden")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	require.True(t, Error.Has(err))

	_, err = New(Config{Encoding: "xml"})
	require.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(0))
	require.False(t, log.Core().Enabled(-1))
}
