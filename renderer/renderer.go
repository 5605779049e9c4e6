// Package renderer drives a headless browser to load one variant URL and
// return the fully rendered HTML after client-side script execution. Each
// variant gets a fresh incognito browser context on a shared Chrome process,
// torn down unconditionally before the next variant starts.
package renderer

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/magicprice/magicprice/config"
	"github.com/magicprice/magicprice/models"
)

// Result is the outcome of rendering one variant URL.
type Result struct {
	// URL is the requested URL.
	URL string

	// HTML is the best-available page HTML. May be partial or empty.
	HTML string

	// Elapsed is the wall-clock load time including the settle phase.
	Elapsed time.Duration

	// OK reports whether any page HTML was captured. A navigation failure
	// is not an error condition; it yields OK=false and empty HTML.
	OK bool

	// Err classifies why nothing was captured (SCAN_TIMEOUT,
	// NAVIGATION_FAILED, BROWSER_CRASH, PRICE_EXTRACTION_FAILED).
	// Nil when OK is true.
	Err *models.ScanError

	// Fallback reports that the HTML came from the static HTTP fetch
	// because browser navigation failed.
	Fallback bool
}

// Renderer loads a URL and returns its rendered HTML. Implementations never
// return an error for per-page failures; they degrade to OK=false.
type Renderer interface {
	Render(ctx context.Context, pageURL string) Result
}

// settleSelectors is polled in priority order while waiting for client-side
// rendering to populate price-bearing nodes.
var settleSelectors = []string{
	`[class*="PropertyCardPrice"]`,
	`[class*="price"]`,
	`[data-price]`,
	`.price`,
}

// Rod renders pages through a shared headless Chrome process.
type Rod struct {
	browser        *rod.Browser
	cfg            config.RendererConfig
	fallback       *httpFetcher
	activeSessions atomic.Int32
	running        atomic.Bool
}

// NewRod launches the headless browser and connects to it. The launcher
// masks automation fingerprints so the target site serves the normal page
// rather than a bot-blocked variant.
func NewRod(browserCfg config.BrowserConfig, rendererCfg config.RendererConfig) (*Rod, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScanError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	r := &Rod{
		browser:  browser,
		cfg:      rendererCfg,
		fallback: newHTTPFetcher(browserCfg.Proxy, rendererCfg.HTTPFallbackTimeout),
	}
	r.running.Store(true)
	return r, nil
}

// Stats returns a snapshot of the renderer's current load.
func (r *Rod) Stats() models.RendererStats {
	return models.RendererStats{
		Running:        r.running.Load(),
		ActiveSessions: int(r.activeSessions.Load()),
	}
}

// Close kills the browser process. Call on graceful shutdown to prevent
// zombie Chrome processes.
func (r *Rod) Close() {
	r.running.Store(false)
	slog.Info("renderer shutting down: closing browser")
	r.browser.MustClose()
	slog.Info("renderer shutdown complete")
}

// Render loads the URL in a fresh incognito context and returns the rendered
// HTML best-effort.
//
// Lifecycle:
//
//  1. Incognito context   – isolates cookies/session state per variant
//  2. DEFER: teardown     – context disposed whether or not rendering worked
//  3. Stealth injection   – mask navigator.webdriver etc. (before navigation!)
//  4. Referer header      – plausible search-engine referral
//  5. Hijack mount        – block images/CSS/fonts/media for speed
//  6. Navigate            – bounded by NavigationTimeout
//  7. Settle              – bounded selector poll + post-wait (SettleTimeout
//     ceiling); a settle timeout is not fatal
//  8. Capture             – page.HTML() regardless of settle outcome
//
// Navigation failure falls back to a static uTLS fetch when enabled. Render
// never returns an error: the worst case is OK=false with empty HTML.
func (r *Rod) Render(ctx context.Context, pageURL string) Result {
	start := time.Now()
	result := Result{URL: pageURL}

	r.activeSessions.Add(1)
	defer r.activeSessions.Add(-1)

	incognito, err := r.browser.Incognito()
	if err != nil {
		slog.Error("failed to create incognito context", "url", pageURL, "error", err)
		result.Err = models.NewScanError(models.ErrCodeBrowserCrash, "failed to create incognito context", err)
		return r.withFallback(ctx, result, start)
	}
	defer func() {
		// Disposing the context closes every page in it; this runs on the
		// original browser handle so teardown works even after ctx expiry.
		_ = proto.TargetDisposeBrowserContext{
			BrowserContextID: incognito.BrowserContextID,
		}.Call(r.browser)
	}()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		slog.Error("failed to open page", "url", pageURL, "error", err)
		result.Err = models.NewScanError(models.ErrCodeBrowserCrash, "failed to open page", err)
		return r.withFallback(ctx, result, start)
	}
	defer func() { _ = page.Close() }()

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	if u, parseErr := url.Parse(pageURL); parseErr == nil && u.Hostname() != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
			},
		}.Call(page)
	}

	router := setupHijack(page, r.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Timeout(r.cfg.NavigationTimeout).Navigate(pageURL); navErr != nil {
		slog.Warn("navigation failed", "url", pageURL, "error", navErr)
		result.Err = categorizeError(navErr, models.ErrCodeNavigation, "navigation failed")
		return r.withFallback(ctx, result, start)
	}

	r.settle(ctx, p)

	html, htmlErr := p.HTML()
	if htmlErr != nil {
		slog.Warn("failed to capture page HTML", "url", pageURL, "error", htmlErr)
		result.Err = categorizeError(htmlErr, models.ErrCodeExtraction, "failed to capture page HTML")
		return r.withFallback(ctx, result, start)
	}

	result.HTML = html
	result.OK = true
	result.Elapsed = time.Since(start)
	return result
}

// settle waits, bounded by SettleTimeout, for client-side rendering to
// populate price-bearing DOM nodes: poll the known selectors with a short
// per-attempt timeout, then hold a fixed post-wait (shorter after a hit).
// Nothing here is fatal; the caller captures whatever HTML exists afterward.
func (r *Rod) settle(ctx context.Context, p *rod.Page) {
	settleCtx, cancel := context.WithTimeout(ctx, r.cfg.SettleTimeout)
	defer cancel()

	sp := p.Context(settleCtx)
	_ = sp.WaitLoad()

	hit := false
	for _, sel := range settleSelectors {
		if settleCtx.Err() != nil {
			return
		}
		if _, err := sp.Timeout(r.cfg.SelectorPollTimeout).Element(sel); err == nil {
			slog.Debug("price elements present", "selector", sel)
			hit = true
			break
		}
	}

	wait := r.cfg.PostWaitMiss
	if hit {
		wait = r.cfg.PostWaitHit
	}
	select {
	case <-time.After(wait):
	case <-settleCtx.Done():
	}
}

// withFallback attempts the static HTTP fetch when the browser path produced
// nothing. The static HTML misses client-rendered prices but often still
// carries server-rendered ones, which beats returning nothing.
func (r *Rod) withFallback(ctx context.Context, result Result, start time.Time) (out Result) {
	defer func() { out.Elapsed = time.Since(start) }()
	if !r.cfg.HTTPFallback || ctx.Err() != nil {
		return result
	}
	body, err := r.fallback.fetch(ctx, result.URL)
	if err != nil {
		slog.Warn("static fallback fetch failed", "url", result.URL, "error", err)
		return result
	}
	slog.Info("served static fallback HTML",
		"url", result.URL,
		"bytes", len(body),
		"title", pageTitle(body),
	)
	result.HTML = string(body)
	result.OK = true
	result.Fallback = true
	result.Err = nil
	return result
}

// categorizeError maps a failed browser step to a coded error. Context expiry
// means a deadline fired (the per-step timeout or the variant's overall one);
// anything else keeps the step's own code.
func categorizeError(err error, code, message string) *models.ScanError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewScanError(models.ErrCodeTimeout, "deadline exceeded while loading page", err)
	}
	return models.NewScanError(code, message, err)
}
