package grammar

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jellydator/ttlcache/v3"
	"github.com/zeebo/blake3"

	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/metrics"
)

// Record is one completed check as persisted by a History.
type Record struct {
	Hash        string
	Model       string
	Language    string
	Original    string
	Corrected   string
	Corrections []Correction
	CreatedAt   time.Time
}

// History is a persistent second-tier cache of completed checks.
type History interface {
	Find(ctx context.Context, hash, model string, maxAge time.Duration) ([]Correction, bool, error)
	Save(ctx context.Context, rec Record) error
}

type Options struct {
	Timeout       time.Duration
	CacheTTL      time.Duration // <= 0 disables the memory cache
	CacheCapacity uint64
	History       History
	HistoryMaxAge time.Duration
	Logger        *slog.Logger
}

// Checker runs the full check for one request: cache lookup, model call,
// word diff. It is safe for concurrent use.
type Checker struct {
	req     *Requester
	model   string
	cache   *ttlcache.Cache[string, []Correction]
	history History
	maxAge  time.Duration
	log     *slog.Logger
}

func NewChecker(gen llm.Generator, opts Options) *Checker {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Checker{
		req:     NewRequester(gen, opts.Timeout, log),
		model:   gen.GetModel(),
		history: opts.History,
		maxAge:  opts.HistoryMaxAge,
		log:     log,
	}
	if opts.CacheTTL > 0 {
		cacheOpts := []ttlcache.Option[string, []Correction]{
			ttlcache.WithTTL[string, []Correction](opts.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []Correction](),
		}
		if opts.CacheCapacity > 0 {
			cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, []Correction](opts.CacheCapacity))
		}
		c.cache = ttlcache.New(cacheOpts...)
	}
	return c
}

// Start runs the cache janitor until Stop is called.
func (c *Checker) Start() {
	if c.cache != nil {
		go c.cache.Start()
	}
}

func (c *Checker) Stop() {
	if c.cache != nil {
		c.cache.Stop()
	}
}

func (c *Checker) Model() string { return c.model }

// Check never fails: upstream problems produce an empty response.
func (c *Checker) Check(ctx context.Context, in CheckRequest) CheckResponse {
	original := TrimText(in.Text)
	lang := TrimText(in.Language)
	if lang == "" {
		lang = DefaultLanguage
	}
	metrics.InputChars.Observe(float64(utf8.RuneCountInString(in.Text)))
	if original == "" {
		return Empty()
	}

	key := CacheKey(c.model, lang, original)
	if cs, ok := c.lookup(ctx, key); ok {
		return c.respond(cs)
	}

	corrected, outcome := c.req.Correct(ctx, in.Text)
	if !outcome.Cacheable() {
		return Empty()
	}

	cs := []Correction{}
	if outcome == OutcomeCorrected {
		cs = WordDiff(original, corrected)
	} else {
		corrected = original
	}

	if c.cache != nil {
		c.cache.Set(key, cs, ttlcache.DefaultTTL)
	}
	c.save(ctx, Record{
		Hash:        key,
		Model:       c.model,
		Language:    lang,
		Original:    original,
		Corrected:   corrected,
		Corrections: cs,
	})
	return c.respond(cs)
}

func (c *Checker) lookup(ctx context.Context, key string) ([]Correction, bool) {
	if c.cache != nil {
		if item := c.cache.Get(key); item != nil {
			metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
			return item.Value(), true
		}
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
	}
	if c.history == nil {
		return nil, false
	}
	cs, ok, err := c.history.Find(ctx, key, c.model, c.maxAge)
	if err != nil {
		c.log.WarnContext(ctx, "history lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("store", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("store", "hit").Inc()
	if c.cache != nil {
		c.cache.Set(key, cs, ttlcache.DefaultTTL)
	}
	return cs, true
}

func (c *Checker) save(ctx context.Context, rec Record) {
	if c.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := c.history.Save(ctx, rec); err != nil {
		c.log.WarnContext(ctx, "history save failed", "error", err)
	}
}

func (c *Checker) respond(cs []Correction) CheckResponse {
	if cs == nil {
		cs = []Correction{}
	}
	metrics.CorrectionsReturned.Observe(float64(len(cs)))
	return CheckResponse{Corrections: cs}
}

// CacheKey identifies a check by model, language hint and trimmed text.
func CacheKey(model, language, text string) string {
	sum := blake3.Sum256([]byte(model + "\x00" + language + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
