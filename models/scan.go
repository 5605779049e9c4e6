package models

// ScanRequest is the payload for POST /api/v1/scan.
type ScanRequest struct {
	// URL is the booking-site search results page to scan. Required.
	// A missing scheme is tolerated; Defaults prepends "https://".
	URL string `json:"url" binding:"required"`

	// CIDs overrides the built-in roster. Order is preserved: variants are
	// scanned and their events emitted in exactly this order.
	CIDs []CIDEntry `json:"cids,omitempty"`

	// Currency is the caller's explicit currency code (e.g. "USD").
	// When set it is preserved through variant rewriting; when empty the
	// normalizer injects the configured default only if the URL has none.
	Currency string `json:"currency,omitempty"`

	// MaxAge enables the per-variant result cache. A variant whose derived
	// URL was extracted within the last MaxAge milliseconds is served from
	// cache without opening a browser session. 0 disables caching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScanRequest) Defaults() {
	if !hasScheme(r.URL) {
		r.URL = "https://" + r.URL
	}
	if len(r.CIDs) == 0 {
		r.CIDs = DefaultRoster()
	}
}

func hasScheme(u string) bool {
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c == ':' {
			return i > 0 && len(u) > i+2 && u[i+1] == '/' && u[i+2] == '/'
		}
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return false
}

// Variant is one (CID, derived URL) pair processed in one scan step.
// Immutable once built; owned by the orchestrator for the scan's duration.
type Variant struct {
	// Index is the 1-based position in the scan order.
	Index int

	// CID is the affiliate identifier substituted into the URL.
	// CIDNone requests the no-affiliate price, like an incognito visit.
	CID string

	// Label is the human-readable roster name for this CID.
	Label string

	// URL is the fully derived, normalized URL for this variant.
	URL string
}

// Extraction statuses reported per variant.
const (
	StatusSuccess  = "success"
	StatusNoPrices = "no_prices"
	StatusError    = "error"
)

// PriceEntry is one selected price with its surrounding page text.
type PriceEntry struct {
	// Price is the original textual form, currency marker included.
	// Never reformatted: "₩64,039" stays "₩64,039".
	Price string `json:"price"`

	// Context is a bounded excerpt of the page text around the match.
	Context string `json:"context"`

	// Amount is the best-effort numeric value of Price, for comparison
	// use only (lowest-price aggregation). 0 when unparseable.
	Amount float64 `json:"amount,omitempty"`

	// Source tags the heuristic that produced the entry:
	// "targeted-element" or "text-search".
	Source string `json:"source,omitempty"`
}

// ExtractionResult is the per-variant unit delivered to the caller.
// Created once per scan step and never mutated after emission.
type ExtractionResult struct {
	CID     string       `json:"cid"`
	CIDName string       `json:"cid_name,omitempty"`
	URL     string       `json:"url"`
	Prices  []PriceEntry `json:"prices"`
	Status  string       `json:"status"`
	// ProcessTime is the wall-clock seconds spent on this variant
	// (navigation + settle + extraction).
	ProcessTime float64 `json:"process_time"`
	Error       string  `json:"error,omitempty"`
}

// LowestPrice summarises the cheapest parseable price seen across a scan.
type LowestPrice struct {
	CID     string  `json:"cid"`
	CIDName string  `json:"cid_name,omitempty"`
	Price   string  `json:"price"`
	Amount  float64 `json:"amount"`
	URL     string  `json:"url"`
}
