package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"grammar-proxy/api/internal/app"
	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/handle"
	"grammar-proxy/api/internal/httpserver"
	"grammar-proxy/api/internal/middleware"
)

var CLI struct {
	Config   string `help:"Path to a YAML or TOML config file." type:"path" env:"GRAMMAR_CONFIG"`
	EnvFile  string `help:"Path to a .env file loaded before the environment is read." default:".env" name:"env-file"`
	Mock     bool   `help:"Use the mock generator instead of Gemini."`
	Host     string `help:"Override listen host."`
	Port     int    `help:"Override listen port."`
	LogLevel string `help:"Override log level (debug, info, warn, error)." name:"log-level"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("grammar-proxy"),
		kong.Description("HTTP grammar checker backed by Gemini."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	if err := config.LoadDotEnv(CLI.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Host != "" {
		cfg.Host = CLI.Host
	}
	if CLI.Port > 0 {
		cfg.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := app.NewLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, CLI.Mock, log)
	if err != nil {
		return err
	}
	defer a.Close()
	go a.PurgeHistory(ctx, cfg.HistoryMaxAge)

	var history handle.History
	if a.Repo != nil {
		history = a.Repo
	}
	rl := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	go app.Every(ctx, 5*time.Minute, rl.Sweep)

	origins := middleware.Origins(cfg.AllowedOrigins)
	h := handle.New(a.Checker, handle.Options{
		History:     history,
		Logger:      log,
		AllowOrigin: origins.Allowed,
		Limiter:     rl,
	})

	if cfg.APIKey != "" {
		log.Info("auth: API key required (X-API-Key header)")
	} else {
		log.Info("auth: disabled (no api_key configured)")
	}

	srv := httpserver.New(cfg.Addr(), httpserver.SetupMux(h, rl, cfg.APIKey, origins))
	if err := httpserver.Run(ctx, srv, log); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
