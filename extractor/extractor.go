// Package extractor locates the displayed room price in rendered booking-page
// HTML. It evaluates a small ordered list of named strategies — a targeted
// DOM-element search first, a full-text scan as fallback — then filters out
// decoys (average prices, date fragments, implausibly small numbers),
// deduplicates by price string and returns the first MaxPrices candidates in
// document order.
package extractor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/magicprice/magicprice/config"
	"github.com/magicprice/magicprice/models"
)

// maxContextRunes bounds the context excerpt carried per price entry.
const maxContextRunes = 200

// Extractor applies the extraction strategies under one configuration.
// It is stateless and safe for concurrent use.
type Extractor struct {
	cfg config.ExtractorConfig
}

// New creates an Extractor, filling zero config fields with the standard
// defaults so partially constructed configs (tests) behave sensibly.
func New(cfg config.ExtractorConfig) *Extractor {
	if cfg.MaxPrices <= 0 {
		cfg.MaxPrices = 5
	}
	if cfg.MinTargeted <= 0 {
		cfg.MinTargeted = 1
	}
	if cfg.MinDigits <= 0 {
		cfg.MinDigits = 3
	}
	if cfg.ContextRadius <= 0 {
		cfg.ContextRadius = 50
	}
	return &Extractor{cfg: cfg}
}

// Extract parses rendered HTML and returns the selected price entries in
// document order. It never fails: unparseable or empty input yields nil,
// which the orchestrator reports as status no_prices.
func (e *Extractor) Extract(htmlText string) []models.PriceEntry {
	if strings.TrimSpace(htmlText) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	// Script/style bodies are full of numbers; drop them before either pass.
	doc.Find("script, style, noscript").Remove()

	candidates := TargetedElements(doc)
	if len(candidates) < e.cfg.MinTargeted {
		candidates = append(candidates, FullText(doc.Text(), e.cfg.ContextRadius)...)
	}

	return e.selectEntries(candidates)
}

// selectEntries applies the selection policy: stable order by document
// position (targeted hits first), decoy and noise filters, exact-string
// dedup, then the configured cap as a prefix.
func (e *Extractor) selectEntries(candidates []Candidate) []models.PriceEntry {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position < candidates[j].Position
	})

	seen := make(map[string]struct{}, len(candidates))
	var entries []models.PriceEntry

	for _, c := range candidates {
		price := trimPrice(c.Price)
		if price == "" {
			continue
		}
		if _, dup := seen[price]; dup {
			continue
		}
		if leadingDigitCount(price) < e.cfg.MinDigits {
			continue
		}
		if isDateLike(price, c.Context) {
			continue
		}
		if isAverageContext(c.Context) {
			continue
		}
		seen[price] = struct{}{}

		entries = append(entries, models.PriceEntry{
			Price:   price,
			Context: boundContext(c.Context),
			Amount:  parseAmount(price),
			Source:  c.Source,
		})
		if len(entries) >= e.cfg.MaxPrices {
			break
		}
	}
	return entries
}

// boundContext trims a context excerpt to maxContextRunes.
func boundContext(context string) string {
	runes := []rune(context)
	if len(runes) <= maxContextRunes {
		return context
	}
	return string(runes[:maxContextRunes])
}

// parseAmount derives a best-effort numeric value from the original price
// text for comparison use. The textual form is never altered; only the
// returned number normalizes grouping (comma thousands, dot decimal) and the
// Korean 만원 (×10,000) idiom. Returns 0 when nothing parseable is found.
func parseAmount(price string) float64 {
	group := numberGroup.FindString(price)
	if group == "" {
		return 0
	}
	normalized := strings.ReplaceAll(group, ",", "")

	// Keep a decimal part only when it directly follows the number group.
	if idx := strings.Index(price, group) + len(group); idx < len(price) && price[idx] == '.' {
		rest := price[idx+1:]
		dec := digitsPrefix(rest)
		if dec != "" {
			normalized += "." + dec
		}
	}

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	if strings.Contains(price, "만원") {
		f *= 10000
	}
	return f
}

func digitsPrefix(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return s[:i]
		}
	}
	return s
}
