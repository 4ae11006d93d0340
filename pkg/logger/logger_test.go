package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	log, err := New(path, "info")
	require.NoError(t, err)

	log.Info("booking id=%d created", 42)
	log.Debug("hidden at info level")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "booking id=42 created")
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestLogger_WarnLevelKeepsWarningsAndErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	log, err := New(path, "warn")
	require.NoError(t, err)

	log.Info("sweep started")
	log.Warn("sweep skipped %d bookings", 2)
	log.Error("sweep failed: %v", "timeout")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sweep started")
	assert.Contains(t, string(data), "sweep skipped 2 bookings")
	assert.Contains(t, string(data), "sweep failed: timeout")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("", "loud")
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Warn("nothing %s", "here")
	assert.NoError(t, log.Close())
}
