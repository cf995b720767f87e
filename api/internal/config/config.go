package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`

	// APIKey, when set, is required in the X-API-Key header of API calls.
	APIKey string `yaml:"api_key" toml:"api_key"`

	GeminiAPIKey string        `yaml:"gemini_api_key" toml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model" toml:"gemini_model"`
	CheckTimeout time.Duration `yaml:"check_timeout" toml:"check_timeout"`

	CacheTTL      time.Duration `yaml:"cache_ttl" toml:"cache_ttl"`
	CacheCapacity uint64        `yaml:"cache_capacity" toml:"cache_capacity"`
	RateLimit     int           `yaml:"rate_limit" toml:"rate_limit"` // requests per minute per client IP, 0 disables

	// AllowedOrigins lists browser origins that get CORS headers and may open
	// /ws/check. An entry ending in "://" admits the whole scheme.
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`

	DatabaseURL   string        `yaml:"database_url" toml:"database_url"`
	HistoryMaxAge time.Duration `yaml:"history_max_age" toml:"history_max_age"`

	TelegramBotToken string `yaml:"telegram_bot_token" toml:"telegram_bot_token"`

	LogLevel string `yaml:"log_level" toml:"log_level"`
}

func Defaults() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           5000,
		GeminiModel:    "gemini-2.5-flash",
		CheckTimeout:   10 * time.Second,
		CacheTTL:       10 * time.Minute,
		CacheCapacity:  1024,
		RateLimit:      0,
		AllowedOrigins: []string{"chrome-extension://", "moz-extension://"},
		HistoryMaxAge:  24 * time.Hour,
		LogLevel:       "info",
	}
}

// Load reads defaults, then the optional YAML or TOML file at path (picked by
// extension), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse toml: %w", err)
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse yaml: %w", err)
			}
		default:
			return Config{}, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = resolveDSN()
	}
	return cfg, nil
}

// LoadDotEnv exports variables from the given .env files (default ".env")
// without overriding the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Host, "HOST")
	setString(&cfg.APIKey, "GRAMMAR_API_KEY")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.LogLevel, "GRAMMAR_LOG_LEVEL")

	if v := getEnv("PORT", ""); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := getEnv("GRAMMAR_ALLOWED_ORIGINS", ""); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := getEnv("GRAMMAR_RATE_LIMIT", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid GRAMMAR_RATE_LIMIT %q: %w", v, err)
		}
		cfg.RateLimit = n
	}
	if v := getEnv("GRAMMAR_CACHE_SIZE", ""); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid GRAMMAR_CACHE_SIZE %q: %w", v, err)
		}
		cfg.CacheCapacity = n
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"GRAMMAR_CHECK_TIMEOUT", &cfg.CheckTimeout},
		{"GRAMMAR_CACHE_TTL", &cfg.CacheTTL},
		{"GRAMMAR_HISTORY_MAX_AGE", &cfg.HistoryMaxAge},
	} {
		if v := getEnv(d.key, ""); v != "" {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: invalid %s %q: %w", d.key, v, err)
			}
			*d.dst = dur
		}
	}
	return nil
}

// Validate checks the fields every server mode needs.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port out of range: %d", c.Port)
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("config: check_timeout must be > 0")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// splitList parses a comma-separated env value. "none" yields an empty list.
func splitList(v string) []string {
	if strings.EqualFold(v, "none") {
		return []string{}
	}
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setString(dst *string, k string) {
	if v := getEnv(k, ""); v != "" {
		*dst = v
	}
}

// resolveDSN builds a DSN from PG* / POSTGRES_* variables when PGHOST is set.
func resolveDSN() string {
	host := getEnv("PGHOST", "")
	if host == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "grammar"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "grammar"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
