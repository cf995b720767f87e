package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grammar-proxy/api/internal/app"
	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/handle"
	"grammar-proxy/api/internal/httpserver"
	"grammar-proxy/api/internal/telegram"
)

var CLI struct {
	Config     string `help:"Path to a YAML or TOML config file." type:"path" env:"GRAMMAR_CONFIG"`
	EnvFile    string `help:"Path to a .env file loaded before the environment is read." default:".env" name:"env-file"`
	Mock       bool   `help:"Use the mock generator instead of Gemini."`
	HealthAddr string `help:"Address of the health endpoint; empty disables it." default:"0.0.0.0:8080" name:"health-addr"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("grammar-bot"),
		kong.Description("Telegram front end for the grammar checker."),
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
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
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

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	log.Info("telegram: authorized", "bot", bot.Self.UserName)

	r := &telegram.Router{Bot: bot, Checker: a.Checker, Log: log, Timeout: cfg.CheckTimeout + 5*time.Second}

	// polling does not need it, but platforms check /healthz
	if CLI.HealthAddr != "" {
		var history handle.History
		if a.Repo != nil {
			history = a.Repo
		}
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", handle.New(a.Checker, handle.Options{History: history, Logger: log}).Healthz)
		srv := httpserver.New(CLI.HealthAddr, mux)
		go func() {
			if err := httpserver.Run(ctx, srv, log); err != nil {
				log.Error("health server", "err", err)
			}
		}()
	}

	runPolling(ctx, bot, log, func(upd tgbotapi.Update) {
		go r.HandleUpdate(ctx, upd)
	})
	return nil
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 from Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// updateSource is the part of *tgbotapi.BotAPI runPolling uses.
type updateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot updateSource, log *slog.Logger, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		if ctx.Err() != nil {
			log.Info("polling: context cancelled")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling, seconds

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn("polling error", "err", err, "retry_in", d)
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 && !sleep(ctx, 200*time.Millisecond) {
			return
		}
	}
}

// sleep waits d or until ctx is done; false means ctx ended.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
