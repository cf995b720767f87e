// Package app assembles the generator, optional store and checker shared by
// the HTTP server and the Telegram bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/llm/gemini"
	"grammar-proxy/api/internal/store"
)

const purgeEvery = time.Hour

type App struct {
	Checker *grammar.Checker
	Repo    *store.CheckRepo // nil when no database is configured or reachable

	log     *slog.Logger
	closers []func()
}

// Build creates the generator (Gemini, or Mock when mock is set), connects
// the store when DatabaseURL is set, and starts the checker's cache janitor.
// A store that cannot be opened is logged and skipped.
func Build(ctx context.Context, cfg config.Config, mock bool, log *slog.Logger) (*App, error) {
	a := &App{log: log}

	var gen llm.Generator
	if mock {
		gen = &llm.Mock{Delay: 300 * time.Millisecond}
		log.Info("generator: mock enabled")
	} else {
		eng, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if errors.Is(err, llm.ErrEmptyAPIKey) {
			return nil, fmt.Errorf("app: GEMINI_API_KEY is not set (use --mock for local runs): %w", err)
		}
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, func() { _ = eng.Close() })
		gen = eng
		log.Info("generator: gemini", "model", eng.GetModel())
	}

	opts := grammar.Options{
		Timeout:       cfg.CheckTimeout,
		CacheTTL:      cfg.CacheTTL,
		CacheCapacity: cfg.CacheCapacity,
		HistoryMaxAge: cfg.HistoryMaxAge,
		Logger:        log,
	}
	if cfg.DatabaseURL != "" {
		pool, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("store: disabled, open failed", "dsn", store.SafeDSNSummary(cfg.DatabaseURL), "err", err)
		} else {
			log.Info("store: connected", "dsn", store.SafeDSNSummary(cfg.DatabaseURL))
			a.closers = append(a.closers, pool.Close)
			a.Repo = store.NewCheckRepo(pool)
			opts.History = a.Repo
		}
	}

	a.Checker = grammar.NewChecker(gen, opts)
	a.Checker.Start()
	a.closers = append(a.closers, a.Checker.Stop)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// PurgeHistory deletes stored checks older than maxAge once per hour until ctx
// is done. It returns immediately without a store.
func (a *App) PurgeHistory(ctx context.Context, maxAge time.Duration) {
	if a.Repo == nil || maxAge <= 0 {
		return
	}
	Every(ctx, purgeEvery, func() {
		n, err := a.Repo.PurgeOlderThan(ctx, maxAge)
		if err != nil {
			a.log.Warn("store: purge failed", "err", err)
			return
		}
		if n > 0 {
			a.log.Info("store: purged old checks", "rows", n)
		}
	})
}

// Every calls fn each interval until ctx is done.
func Every(ctx context.Context, interval time.Duration, fn func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

// NewLogger returns a JSON slog logger at the configured level.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
}
