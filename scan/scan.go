// Package scan runs one full pass over a CID variant list: derive each
// variant URL, render it, extract prices, and stream per-variant events back
// to the caller in strict list order. One browser session is alive at a time;
// a variant's teardown completes before the next variant starts.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magicprice/magicprice/cache"
	"github.com/magicprice/magicprice/config"
	"github.com/magicprice/magicprice/extractor"
	"github.com/magicprice/magicprice/models"
	"github.com/magicprice/magicprice/renderer"
	"github.com/magicprice/magicprice/variant"
)

// Scanner orchestrates sequential multi-variant scans.
type Scanner struct {
	renderer  renderer.Renderer
	extractor *extractor.Extractor
	cache     *cache.Cache // nil disables caching
	cfg       config.ScanConfig
}

// New creates a Scanner. cache may be nil.
func New(r renderer.Renderer, e *extractor.Extractor, c *cache.Cache, cfg config.ScanConfig) *Scanner {
	if cfg.VariantTimeout <= 0 {
		cfg.VariantTimeout = 25 * time.Second
	}
	return &Scanner{renderer: r, extractor: e, cache: c, cfg: cfg}
}

// Scan starts a scan and returns its event stream.
//
// The channel is unbuffered: the consumer drives progress by receiving, and
// the producer goroutine blocks until each event is taken. Event order is
// fixed — one start, then for each variant a progress event followed by its
// terminal result or error event, then one complete — and the channel is
// closed after complete.
//
// Cancelling ctx is the supported early-stop path: the in-flight browser
// session is torn down (its cleanup is deferred inside the renderer, not
// tied to reaching the end of the list) and the channel closes without a
// complete event.
func (s *Scanner) Scan(ctx context.Context, req *models.ScanRequest) <-chan models.Event {
	events := make(chan models.Event)
	go s.run(ctx, req, events)
	return events
}

func (s *Scanner) run(ctx context.Context, req *models.ScanRequest, events chan<- models.Event) {
	defer close(events)

	normalizer := &variant.Normalizer{DefaultCurrency: s.cfg.DefaultCurrency}
	variants := variant.Build(req.URL, req.CIDs, normalizer, req.Currency)
	total := len(variants)

	slog.Info("scan started", "url", req.URL, "variants", total)

	if !emit(ctx, events, models.StartEvent(total)) {
		return
	}

	totalResults := 0
	totalPrices := 0
	var lowest *models.LowestPrice

	for _, v := range variants {
		if !emit(ctx, events, models.ProgressEvent(v.Index, total, v.Label)) {
			return
		}

		result, err := s.processVariant(ctx, v, req.Currency, req.MaxAge)
		if ctx.Err() != nil {
			// Consumer stopped mid-variant; the renderer's defers have
			// already torn the session down.
			slog.Info("scan cancelled", "step", v.Index, "total", total)
			return
		}

		if err != nil {
			slog.Error("variant failed", "cid", v.CID, "label", v.Label, "error", err)
			if !emit(ctx, events, models.ErrorEvent(v.Label, err)) {
				return
			}
			totalResults++
			continue
		}

		totalPrices += len(result.Prices)
		lowest = lowerOf(lowest, result, v)
		slog.Info("variant done",
			"step", v.Index,
			"total", total,
			"cid", v.CID,
			"status", result.Status,
			"prices", len(result.Prices),
			"processTime", result.ProcessTime,
		)
		if !emit(ctx, events, models.ResultEvent(result)) {
			return
		}
		totalResults++
	}

	slog.Info("scan complete", "results", totalResults, "pricesFound", totalPrices)
	emit(ctx, events, models.CompleteEvent(totalResults, totalPrices, lowest))
}

// processVariant renders and extracts one variant under the per-variant
// deadline. A renderer that captured nothing yields status "error"; captured
// HTML with no candidates yields "no_prices". Panics are recovered and
// surfaced as the variant's error so one bad page never aborts the scan.
func (s *Scanner) processVariant(ctx context.Context, v models.Variant, currency string, maxAge int) (result *models.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = models.NewScanError(models.ErrCodeInternal,
				fmt.Sprintf("variant processing panicked: %v", r), nil)
		}
	}()

	key := cache.Key(v.URL, currency)
	if s.cache != nil {
		if cached, hit := s.cache.Get(key, maxAge); hit {
			slog.Debug("cache hit", "cid", v.CID, "url", v.URL)
			return cached, nil
		}
	}

	vctx, cancel := context.WithTimeout(ctx, s.cfg.VariantTimeout)
	defer cancel()

	start := time.Now()
	rendered := s.renderer.Render(vctx, v.URL)
	prices := s.extractor.Extract(rendered.HTML)
	elapsed := time.Since(start)

	result = &models.ExtractionResult{
		CID:         v.CID,
		CIDName:     v.Label,
		URL:         v.URL,
		Prices:      prices,
		ProcessTime: elapsed.Seconds(),
	}
	switch {
	case len(prices) > 0:
		result.Status = models.StatusSuccess
	case !rendered.OK:
		result.Status = models.StatusError
		result.Error = "page failed to load"
		if rendered.Err != nil {
			// Coded message, e.g. "SCAN_TIMEOUT: deadline exceeded ...".
			result.Error = rendered.Err.Error()
		}
	default:
		result.Status = models.StatusNoPrices
	}
	if result.Prices == nil {
		result.Prices = []models.PriceEntry{}
	}

	if s.cache != nil && result.Status == models.StatusSuccess {
		s.cache.Set(key, result)
	}
	return result, nil
}

// lowerOf folds one variant's cheapest parseable price into the running
// scan-wide lowest.
func lowerOf(current *models.LowestPrice, result *models.ExtractionResult, v models.Variant) *models.LowestPrice {
	for _, p := range result.Prices {
		if p.Amount <= 0 {
			continue
		}
		if current == nil || p.Amount < current.Amount {
			current = &models.LowestPrice{
				CID:     v.CID,
				CIDName: v.Label,
				Price:   p.Price,
				Amount:  p.Amount,
				URL:     v.URL,
			}
		}
	}
	return current
}

// emit sends one event unless the consumer is gone. Returns false when the
// scan should stop.
func emit(ctx context.Context, events chan<- models.Event, ev models.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
