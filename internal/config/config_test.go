package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	c := Default()
	c.Addr = ""
	c.LogLevel = "loud"
	c.OutboxSize = 0
	c.Rules.LobbyGrace = 0
	c.Rules.HitBonus = -1

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, multierr.Errors(err), 5)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BATTLESHIP_TEST_ADDR=:9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BATTLESHIP_TEST_ADDR") })

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, ":9999", os.Getenv("BATTLESHIP_TEST_ADDR"))

	require.Error(t, LoadEnv(filepath.Join(dir, "missing.env")), "named files must exist")
}

func TestLoadEnv_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, LoadEnv())
}

func TestLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "debug"
	c.Development = true
	log, err := c.Logger()
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1))

	c.LogLevel = "nope"
	_, err = c.Logger()
	require.ErrorIs(t, err, ErrInvalid)
}

func TestDefaultTimeouts(t *testing.T) {
	c := Default()
	assert.Equal(t, 3*time.Second, c.WriteTimeout)
	assert.Equal(t, 5*time.Second, c.Rules.LobbyGrace)
	assert.Equal(t, 30*time.Second, c.Rules.ActiveGrace)
}
