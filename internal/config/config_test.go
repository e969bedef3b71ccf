package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"APP_NAME", "APP_ENV", "APP_HOST", "APP_PORT", "PORT", "GIN_MODE", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
	"JWT_SECRET", "JWT_EXPIRE_MINUTE", "BCRYPT_COST", "REQUIRE_PIN_TOKEN",
	"MYSQL_DSN", "MYSQL_HOST", "MYSQL_PORT", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DB", "MYSQL_PARAMS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PIN_LIST_TTL_SECONDS",
	"RABBITMQ_URL", "RABBITMQ_PIN_EVENT_QUEUE",
}

// isolate clears every variable Load reads. t.Setenv restores the original
// values, including ones a .env file sets during the test.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.HTTPAddr())
	assert.True(t, cfg.Auth.RequirePinToken)
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/pinmap?parseTime=true&loc=UTC&charset=utf8mb4", cfg.MySQLDSN())
	assert.Equal(t, []string{"*"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_TomlFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = 9000

[auth]
jwt_secret = "from-file"
require_pin_token = false

[redis]
pin_list_ttl_seconds = 30
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.RequirePinToken)
	assert.Equal(t, 30, cfg.Redis.PinListTTLSeconds)
	assert.Equal(t, "pinmap", cfg.App.Name)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "7001")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/pins?parseTime=true")
	t.Setenv("REQUIRE_PIN_TOKEN", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.App.Port)
	assert.Equal(t, "u:p@tcp(db:3306)/pins?parseTime=true", cfg.MySQLDSN())
	assert.False(t, cfg.Auth.RequirePinToken)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("JWT_EXPIRE_MINUTE=15\nAPP_NAME=from-dotenv\n"), 0o600))
	t.Setenv("ENV_FILE", envPath)
	t.Setenv("APP_NAME", "from-process")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Auth.JWTExpireMinute)
	assert.Equal(t, "from-process", cfg.App.Name)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	isolate(t)
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.App.Port)
}

func TestLoad_RejectsDefaultSecretInProd(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_GinMode(t *testing.T) {
	for _, mode := range []string{"debug", "release", "test"} {
		isolate(t)
		t.Setenv("GIN_MODE", mode)
		cfg, err := Load()
		require.NoError(t, err, mode)
		assert.Equal(t, mode, cfg.App.GinMode)
	}

	isolate(t)
	t.Setenv("GIN_MODE", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gin_mode")
}

func TestLoad_BadTomlFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nport = "), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
}
