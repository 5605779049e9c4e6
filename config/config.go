package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Renderer  RendererConfig
	Extractor ExtractorConfig
	Scan      ScanConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Rod browser process.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all page loads.
	Proxy string
}

// RendererConfig controls per-variant page rendering.
type RendererConfig struct {
	// NavigationTimeout bounds page.Navigate for one variant.
	NavigationTimeout time.Duration // default: 10s

	// SettleTimeout is the wall-clock ceiling for the whole settle phase
	// (selector polling + post-wait). A slow page never holds a scan
	// beyond NavigationTimeout + SettleTimeout.
	SettleTimeout time.Duration // default: 8s

	// SelectorPollTimeout is the per-selector wait while polling for
	// price-bearing DOM nodes during the settle phase.
	SelectorPollTimeout time.Duration // default: 2s

	// PostWaitHit is the extra wait after a price selector appeared.
	PostWaitHit time.Duration // default: 2s

	// PostWaitMiss is the fallback wait when no selector appeared.
	PostWaitMiss time.Duration // default: 3s

	// BlockedResourceTypes lists resource types to block for speed.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// HTTPFallback enables a static uTLS fetch when browser navigation
	// fails outright, so a variant can still yield best-effort HTML.
	HTTPFallback bool // default: true

	// HTTPFallbackTimeout bounds the static fallback fetch.
	HTTPFallbackTimeout time.Duration // default: 6s
}

// ExtractorConfig controls price candidate selection.
type ExtractorConfig struct {
	// MaxPrices caps how many deduplicated candidates a variant returns.
	MaxPrices int // default: 5

	// MinTargeted is the candidate count below which the full-text
	// fallback pass runs after the targeted-element pass.
	MinTargeted int // default: 1

	// MinDigits drops implausibly small amounts (fewer digits than this
	// in the leading number group).
	MinDigits int // default: 3

	// ContextRadius is how many runes of surrounding text are kept on
	// each side of a full-text match.
	ContextRadius int // default: 50
}

// ScanConfig controls the multi-variant scan.
type ScanConfig struct {
	// VariantTimeout is the hard deadline for one variant end to end
	// (render + extract). Keeps a 20-variant scan bounded.
	VariantTimeout time.Duration // default: 25s

	// DefaultCurrency is injected into variant URLs that carry no
	// currency parameter. A caller-supplied currency always wins.
	DefaultCurrency string // default: "KRW"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the per-URL extraction result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MAGICPRICE_HOST", "0.0.0.0"),
			Port: envIntOr("MAGICPRICE_PORT", 8080),
			Mode: envOr("MAGICPRICE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("MAGICPRICE_HEADLESS", true),
			NoSandbox:  envBoolOr("MAGICPRICE_NO_SANDBOX", false),
			BrowserBin: os.Getenv("MAGICPRICE_BROWSER_BIN"),
			Proxy:      os.Getenv("MAGICPRICE_PROXY"),
		},
		Renderer: RendererConfig{
			NavigationTimeout:   envDurationOr("MAGICPRICE_NAV_TIMEOUT", 10*time.Second),
			SettleTimeout:       envDurationOr("MAGICPRICE_SETTLE_TIMEOUT", 8*time.Second),
			SelectorPollTimeout: envDurationOr("MAGICPRICE_SELECTOR_POLL_TIMEOUT", 2*time.Second),
			PostWaitHit:         envDurationOr("MAGICPRICE_POST_WAIT_HIT", 2*time.Second),
			PostWaitMiss:        envDurationOr("MAGICPRICE_POST_WAIT_MISS", 3*time.Second),
			BlockedResourceTypes: envSliceOr("MAGICPRICE_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			HTTPFallback:        envBoolOr("MAGICPRICE_HTTP_FALLBACK", true),
			HTTPFallbackTimeout: envDurationOr("MAGICPRICE_HTTP_FALLBACK_TIMEOUT", 6*time.Second),
		},
		Extractor: ExtractorConfig{
			MaxPrices:     envIntOr("MAGICPRICE_MAX_PRICES", 5),
			MinTargeted:   envIntOr("MAGICPRICE_MIN_TARGETED", 1),
			MinDigits:     envIntOr("MAGICPRICE_MIN_DIGITS", 3),
			ContextRadius: envIntOr("MAGICPRICE_CONTEXT_RADIUS", 50),
		},
		Scan: ScanConfig{
			VariantTimeout:  envDurationOr("MAGICPRICE_VARIANT_TIMEOUT", 25*time.Second),
			DefaultCurrency: envOr("MAGICPRICE_DEFAULT_CURRENCY", "KRW"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MAGICPRICE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("MAGICPRICE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MAGICPRICE_RATE_RPS", 1.0),
			Burst:             envIntOr("MAGICPRICE_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MAGICPRICE_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("MAGICPRICE_LOG_LEVEL", "info"),
			Format: envOr("MAGICPRICE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
