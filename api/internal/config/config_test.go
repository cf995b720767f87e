package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "GRAMMAR_API_KEY", "GEMINI_API_KEY", "GEMINI_MODEL",
		"DATABASE_URL", "TELEGRAM_BOT_TOKEN", "GRAMMAR_LOG_LEVEL", "GRAMMAR_RATE_LIMIT",
		"GRAMMAR_CACHE_SIZE", "GRAMMAR_ALLOWED_ORIGINS", "GRAMMAR_CHECK_TIMEOUT", "GRAMMAR_CACHE_TTL",
		"GRAMMAR_HISTORY_MAX_AGE", "PGHOST", "PGPORT", "POSTGRES_USER",
		"POSTGRES_PASSWORD", "POSTGRES_DB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "127.0.0.1:5000", cfg.Addr())
	require.NoError(t, cfg.Validate())

	// a single local extension client must never see 429
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, []string{"chrome-extension://", "moz-extension://"}, cfg.AllowedOrigins)
	assert.NotContains(t, cfg.AllowedOrigins, "*")
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Run("yaml replaces defaults", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "grammar.yaml")
		require.NoError(t, os.WriteFile(path, []byte("allowed_origins:\n  - https://editor.example\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://editor.example"}, cfg.AllowedOrigins)
	})

	t.Run("env list", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GRAMMAR_ALLOWED_ORIGINS", " chrome-extension://abc , https://editor.example ,")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, []string{"chrome-extension://abc", "https://editor.example"}, cfg.AllowedOrigins)
	})

	t.Run("env none disables CORS", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GRAMMAR_ALLOWED_ORIGINS", "none")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Empty(t, cfg.AllowedOrigins)
	})
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "grammar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 0.0.0.0
port: 8080
gemini_model: gemini-2.0-flash
check_timeout: 5s
cache_ttl: 1m
cache_capacity: 10
rate_limit: 0
log_level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 5*time.Second, cfg.CheckTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, uint64(10), cfg.CacheCapacity)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
	// untouched keys keep defaults
	assert.Equal(t, 24*time.Hour, cfg.HistoryMaxAge)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "grammar.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9000
api_key = "secret"
check_timeout = "3s"
database_url = "postgres://u:p@db:5432/grammar"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 3*time.Second, cfg.CheckTimeout)
	assert.Equal(t, "postgres://u:p@db:5432/grammar", cfg.DatabaseURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "grammar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8080\ngemini_model: from-file\n"), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("GEMINI_MODEL", "from-env")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GRAMMAR_CHECK_TIMEOUT", "250ms")
	t.Setenv("GRAMMAR_CACHE_SIZE", "5")
	t.Setenv("GRAMMAR_RATE_LIMIT", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "from-env", cfg.GeminiModel)
	assert.Equal(t, "k", cfg.GeminiAPIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.CheckTimeout)
	assert.Equal(t, uint64(5), cfg.CacheCapacity)
	assert.Equal(t, 3, cfg.RateLimit)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [unclosed\n"), 0o600))
	ini := filepath.Join(dir, "grammar.ini")
	require.NoError(t, os.WriteFile(ini, []byte("port=1\n"), 0o600))

	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml")},
		{name: "bad yaml", path: bad},
		{name: "unsupported extension", path: ini},
		{name: "bad port", env: map[string]string{"PORT": "http"}},
		{name: "bad duration", env: map[string]string{"GRAMMAR_CACHE_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.CheckTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
}

func TestResolveDSN(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)

	t.Setenv("PGHOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://grammar:pw@db:5432/grammar?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	// t.Setenv restores the previous value; Unsetenv makes the key truly absent
	t.Setenv("GRAMMAR_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("GRAMMAR_DOTENV_PROBE"))
	t.Setenv("GRAMMAR_DOTENV_KEPT", "already-set")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRAMMAR_DOTENV_PROBE=from-dotenv\nGRAMMAR_DOTENV_KEPT=from-dotenv\n"), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("GRAMMAR_DOTENV_PROBE"))
	assert.Equal(t, "already-set", os.Getenv("GRAMMAR_DOTENV_KEPT"))
}
