// Package translate resolves per-recipient translations against a cache, an
// ordered list of provider mirrors and an optional fallback provider.
package translate

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/vovakirdan/polychat-server/internal/lang"
	"github.com/vovakirdan/polychat-server/internal/translate/cache"
	"github.com/vovakirdan/polychat-server/internal/translate/provider"
)

const (
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 8 * time.Second
	// DefaultCacheTTL is how long a translation stays servable.
	DefaultCacheTTL = 30 * time.Minute

	previewLen = 60
)

// DefaultMirrors are public LibreTranslate instances in priority order.
var DefaultMirrors = []string{
	"https://translate.terraprint.co/translate",
	"https://libretranslate.de/translate",
	"https://translate.argosopentech.com/translate",
	"https://libretranslate.com/translate",
}

// Config describes the providers and cache used by a Service.
type Config struct {
	// Mirrors are tried in order; the first usable answer wins.
	Mirrors []provider.Provider
	// Fallback is called once after every mirror failed. Nil disables it.
	Fallback provider.Provider
	// Cache defaults to an in-memory cache with DefaultCacheTTL.
	Cache        cache.Cache
	BaseLanguage string
	Timeout      time.Duration
}

// Service translates text and never fails: when no provider answers, the
// original text is returned unchanged.
type Service struct {
	mirrors  []provider.Provider
	fallback provider.Provider
	cache    cache.Cache
	base     string
	timeout  time.Duration
	log      *zerolog.Logger

	// inflight collapses concurrent misses for the same cache key into one provider round.
	inflight singleflight.Group
}

// NewService builds a Service from cfg.
func NewService(cfg Config, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewMemory(DefaultCacheTTL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Service{
		mirrors:  append([]provider.Provider(nil), cfg.Mirrors...),
		fallback: cfg.Fallback,
		cache:    c,
		base:     lang.Resolve(cfg.BaseLanguage, lang.Default),
		timeout:  timeout,
		log:      logger,
	}
}

// Translate returns text translated from source into target.
// Source "auto" lets the provider detect the language.
func (s *Service) Translate(ctx context.Context, text, source, target string) string {
	if text == "" {
		return ""
	}

	source = lang.Resolve(source, lang.Auto)
	target = lang.Resolve(target, s.base)
	if source != lang.Auto && source == target {
		return text
	}

	key := cache.Key(text, source, target)
	if cached, ok := s.cache.Get(ctx, key); ok {
		s.log.Debug().Str("source", source).Str("target", target).Msg("translation cache hit")
		return cached
	}

	req := provider.Request{Text: text, Source: source, Target: target}
	v, _, shared := s.inflight.Do(key, func() (any, error) {
		return s.resolve(ctx, key, req), nil
	})
	if shared {
		s.log.Debug().Str("source", source).Str("target", target).Msg("translation shared with concurrent caller")
	}
	return v.(string)
}

// resolve runs the provider chain for a cache miss and stores a usable answer.
// It returns the original text when every provider failed.
func (s *Service) resolve(ctx context.Context, key string, req provider.Request) string {
	// A concurrent round for the same key may have finished since the first lookup.
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached
	}

	translated, ok := s.tryMirrors(ctx, req)
	if !ok && s.fallback != nil && ctx.Err() == nil {
		translated, ok = s.call(ctx, s.fallback, req)
	}
	if !ok {
		s.log.Warn().
			Str("source", req.Source).
			Str("target", req.Target).
			Str("text", preview(req.Text)).
			Msg("all translation providers failed, passing original text through")
		return req.Text
	}

	if err := s.cache.Set(ctx, key, translated); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache translation")
	}
	return translated
}

func (s *Service) tryMirrors(ctx context.Context, req provider.Request) (string, bool) {
	for _, m := range s.mirrors {
		if ctx.Err() != nil {
			return "", false
		}
		if text, ok := s.call(ctx, m, req); ok {
			return text, true
		}
	}
	return "", false
}

// call runs one bounded provider request. Failures are logged and reported as !ok.
func (s *Service) call(ctx context.Context, p provider.Provider, req provider.Request) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := p.Translate(callCtx, req)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", p.Name()).Msg("translation provider failed")
		return "", false
	}
	if text == "" {
		s.log.Warn().Str("provider", p.Name()).Msg("translation provider returned empty text")
		return "", false
	}

	s.log.Info().
		Str("provider", p.Name()).
		Str("source", req.Source).
		Str("target", req.Target).
		Str("text", preview(req.Text)).
		Str("translated", preview(text)).
		Msg("translated")
	return text, true
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLen]) + "…"
}
