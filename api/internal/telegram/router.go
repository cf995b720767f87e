package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grammar-proxy/api/internal/grammar"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Router struct {
	Bot     Sender
	Checker *grammar.Checker
	Log     *slog.Logger

	// Timeout bounds one check including cache lookups; zero means 30s.
	Timeout time.Duration

	langs chatLang
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		msg = upd.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}
	if grammar.TrimText(msg.Text) == "" {
		r.send(msg.Chat.ID, "Send me some text and I will check its grammar.")
		return
	}
	r.check(ctx, msg.Chat.ID, msg.Text)
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send me a sentence and I will suggest grammar and spelling fixes.\n"+
			"Commands: /health, /lang [code]")
	case "health":
		r.send(cid, "✅ OK ("+r.Checker.Model()+")")
	case "lang":
		arg := strings.TrimSpace(msg.CommandArguments())
		switch {
		case arg == "":
			cur := r.langs.get(cid)
			if cur == "" {
				cur = grammar.DefaultLanguage
			}
			r.send(cid, "Current language hint: "+cur+"\nUsage: /lang en | /lang auto")
		case strings.EqualFold(arg, grammar.DefaultLanguage):
			r.langs.clear(cid)
			r.send(cid, "Language hint: "+grammar.DefaultLanguage)
		default:
			r.langs.set(cid, strings.ToLower(arg))
			r.send(cid, "Language hint: "+strings.ToLower(arg))
		}
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) check(ctx context.Context, chatID int64, text string) {
	if utf8.RuneCountInString(text) > grammar.MaxTextLength {
		r.send(chatID, fmt.Sprintf("Text is too long, please send at most %d characters.", grammar.MaxTextLength))
		return
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp := r.Checker.Check(ctx, grammar.CheckRequest{Text: text, Language: r.langs.get(chatID)})
	r.send(chatID, Render(text, resp.Corrections))
}

func (r *Router) send(chatID int64, text string) {
	if len(text) > 3900 {
		text = truncate(text, 3900) + "…"
	}
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger().Warn("telegram: send failed", "chat_id", chatID, "err", err)
	}
}

func (r *Router) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
