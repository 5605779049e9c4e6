package variant

import "strings"

// canonicalOrder is the fixed priority sequence for known query parameters:
// locale/country flags, search target, stay dates, guest and room counts,
// currency, search-request id. The cid parameter is always emitted last so
// variant URLs differ only at the tail.
var canonicalOrder = []string{
	"ls",
	"locale",
	"city",
	"hotel",
	"checkIn",
	"checkOut",
	"los",
	"rooms",
	"adults",
	"children",
	"childAges",
	"travellerType",
	"currencyCode",
	"searchrequestid",
}

const (
	cidKey      = "cid"
	currencyKey = "currencyCode"
)

// Normalizer reorders query parameters into the canonical sequence and
// fills the currency default. Normalization is best-effort: it never fails,
// it only ever returns the input unchanged.
type Normalizer struct {
	// DefaultCurrency is injected when the URL carries no currencyCode.
	DefaultCurrency string
}

// Reorder rewrites rawURL's query string into canonical parameter order.
//
// Duplicate parameter names collapse deterministically: the last occurrence
// wins, at the first occurrence's position. originalCurrency, when non-empty,
// is the caller's explicit currency and overrides whatever the rewriting left
// in currencyCode; otherwise DefaultCurrency is injected only when the URL
// has no currency at all. Applying Reorder twice yields the same result as
// applying it once.
func (n *Normalizer) Reorder(rawURL, originalCurrency string) string {
	qIdx := strings.Index(rawURL, "?")
	if qIdx < 0 {
		return rawURL
	}

	base := rawURL[:qIdx]
	query := rawURL[qIdx+1:]

	// Fragments stay attached to the very end, outside the reordering.
	fragment := ""
	if fIdx := strings.Index(query, "#"); fIdx >= 0 {
		fragment = query[fIdx:]
		query = query[:fIdx]
	}
	if query == "" {
		return rawURL
	}

	keys, values := parseQueryOrdered(query)

	if originalCurrency != "" {
		if _, ok := values[currencyKey]; !ok {
			keys = append(keys, currencyKey)
		}
		values[currencyKey] = originalCurrency
	} else if n.DefaultCurrency != "" {
		if _, ok := values[currencyKey]; !ok {
			keys = append(keys, currencyKey)
			values[currencyKey] = n.DefaultCurrency
		}
	}

	known := make(map[string]struct{}, len(canonicalOrder)+1)
	for _, k := range canonicalOrder {
		known[k] = struct{}{}
	}
	known[cidKey] = struct{}{}

	ordered := make([]string, 0, len(keys))
	for _, k := range canonicalOrder {
		if _, ok := values[k]; ok {
			ordered = append(ordered, k)
		}
	}
	// Unknown parameters keep their original relative order, after the
	// known ones.
	for _, k := range keys {
		if _, ok := known[k]; !ok {
			ordered = append(ordered, k)
		}
	}
	if _, ok := values[cidKey]; ok {
		ordered = append(ordered, cidKey)
	}

	var sb strings.Builder
	sb.WriteString(base)
	for i, k := range ordered {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(values[k])
	}
	sb.WriteString(fragment)
	return sb.String()
}

// parseQueryOrdered splits a raw query string into its parameter names in
// first-seen order plus a name→value map. Values keep their original
// percent-encoding untouched; rewriting must not mangle what the site sent.
// A repeated name keeps its first position but takes its last value.
func parseQueryOrdered(query string) ([]string, map[string]string) {
	pairs := strings.Split(query, "&")
	keys := make([]string, 0, len(pairs))
	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		var k, v string
		if eq := strings.Index(pair, "="); eq >= 0 {
			k, v = pair[:eq], pair[eq+1:]
		} else {
			k = pair
		}
		if _, seen := values[k]; !seen {
			keys = append(keys, k)
		}
		values[k] = v
	}
	return keys, values
}
