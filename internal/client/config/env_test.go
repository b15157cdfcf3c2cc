package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDotEnv(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	orig := dotEnvFile
	dotEnvFile = path
	t.Cleanup(func() { dotEnvFile = orig })
}

func TestParseEnv(t *testing.T) {
	t.Run("reads FARMCLUB variables", func(t *testing.T) {
		withDotEnv(t, "")
		t.Setenv(EnvServerAddr, "farm.example:7000")
		t.Setenv(EnvStrategy, StrategyRemote)
		t.Setenv(EnvDatabasePath, "/tmp/fc.db")
		t.Setenv(EnvRequestTimeout, "2s")
		t.Setenv(EnvLogLevel, "debug")

		cfg := &Config{}
		require.NoError(t, parseEnv(cfg))

		assert.Equal(t, Config{
			ServerEndpointAddr: "farm.example:7000",
			Strategy:           StrategyRemote,
			DatabasePath:       "/tmp/fc.db",
			RequestTimeout:     2 * time.Second,
			LogLevel:           "debug",
		}, *cfg)
	})

	t.Run("missing .env is fine", func(t *testing.T) {
		orig := dotEnvFile
		dotEnvFile = filepath.Join(t.TempDir(), "nope.env")
		t.Cleanup(func() { dotEnvFile = orig })

		cfg := &Config{Strategy: StrategyLocal}
		require.NoError(t, parseEnv(cfg))
		assert.Equal(t, StrategyLocal, cfg.Strategy)
	})

	t.Run(".env fills unset variables", func(t *testing.T) {
		withDotEnv(t, "FARMCLUB_DB_PATH=from-dotenv.db\n")
		t.Setenv(EnvDatabasePath, "")
		require.NoError(t, os.Unsetenv(EnvDatabasePath))

		cfg := &Config{}
		require.NoError(t, parseEnv(cfg))
		assert.Equal(t, "from-dotenv.db", cfg.DatabasePath)
		require.NoError(t, os.Unsetenv(EnvDatabasePath))
	})

	t.Run("bad timeout", func(t *testing.T) {
		withDotEnv(t, "")
		t.Setenv(EnvRequestTimeout, "soon")

		err := parseEnv(&Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvRequestTimeout)
	})
}
