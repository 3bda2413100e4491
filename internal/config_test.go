package internal_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hbomb79/Marquee/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configYaml = `
docker_services:
  enable_postgres: false
database:
  username: marquee
  password: secret
  host: db.internal
rest:
  host_address: 127.0.0.1:9000
catalog:
  max_limit: 25
`

func TestConfig_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYaml), 0o600))
	t.Setenv("DB_PORT", "6543")

	config := internal.DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.False(t, config.Services.EnablePostgres)
	assert.Equal(t, "marquee", config.Database.User)
	assert.Equal(t, "secret", config.Database.Password)
	assert.Equal(t, "db.internal", config.Database.Host)
	assert.Equal(t, "6543", config.Database.Port, "environment should override the file")
	assert.Equal(t, "MARQUEE_DB", config.Database.Name)
	assert.Equal(t, 3*time.Second, config.Database.RetryInterval)
	assert.Equal(t, "127.0.0.1:9000", config.RestConfig.HostAddr)
	assert.Equal(t, 10*time.Second, config.RestConfig.RequestTimeout)
	assert.Equal(t, 25, config.Catalog.MaxLimit)
	assert.Equal(t, 10, config.Catalog.DefaultPopularLimit)
	assert.Equal(t, "INFO", config.LogLevel)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("DB_USERNAME", "env-user")
	t.Setenv("DB_PASSWORD", "env-pass")
	t.Setenv("CATALOG_DEFAULT_POPULAR_LIMIT", "5")
	t.Setenv("SERVICE_ENABLE_POSTGRES", "false")

	config := internal.DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "env-user", config.Database.User)
	assert.Equal(t, 5, config.Catalog.DefaultPopularLimit)
	assert.Equal(t, 50, config.Catalog.MaxLimit)
	assert.False(t, config.Services.EnablePostgres)
	assert.Equal(t, "0.0.0.0:8080", config.RestConfig.HostAddr)
}

func TestConfig_EnablePostgres(t *testing.T) {
	tests := []struct {
		summary  string
		yaml     string
		env      string
		expected bool
	}{
		{"Omitted from file", "", "", true},
		{"Disabled in file", "docker_services:\n  enable_postgres: false\n", "", false},
		{"Enabled in file", "docker_services:\n  enable_postgres: true\n", "", true},
		{"Environment overrides file", "docker_services:\n  enable_postgres: false\n", "true", true},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			contents := "database:\n  username: marquee\n  password: secret\n" + test.yaml
			require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
			if test.env != "" {
				t.Setenv("SERVICE_ENABLE_POSTGRES", test.env)
			}

			config := internal.DefaultConfig()
			require.NoError(t, config.LoadFromFile(path))
			assert.Equal(t, test.expected, config.Services.EnablePostgres)
		})
	}
}

func TestConfig_MissingRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rest:\n  host_address: 127.0.0.1:9000\n"), 0o600))

	config := internal.DefaultConfig()
	assert.Error(t, config.LoadFromFile(path))
}
