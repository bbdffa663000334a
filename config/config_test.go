package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_SQLiteDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "SQLite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "kbju.db", cfg.DSN())
	assert.Equal(t, "localhost:3000", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_URL")

	t.Setenv("DB_URL", "postgres://localhost/kbju")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/kbju", cfg.DSN())
}

func TestLoad_UnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DotEnvFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(".env", []byte("DB_DRIVER=sqlite\nSQLITE_PATH=from-dotenv.db\n"), 0o600))
	// t.Setenv restores the previous values; unset so godotenv can fill them.
	for _, k := range []string{"DB_DRIVER", "SQLITE_PATH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DSN())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}
