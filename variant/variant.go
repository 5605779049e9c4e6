// Package variant derives the per-CID request URLs for a scan: it rewrites
// the affiliate identifier in a base URL and normalizes the query string so
// every variant is structurally identical except for the cid value.
package variant

import (
	"regexp"
	"strings"

	"github.com/magicprice/magicprice/models"
)

// cidParam matches an existing cid query parameter, capturing the prefix so
// replacement keeps the original separator.
var cidParam = regexp.MustCompile(`([?&]cid=)[^&]*`)

// Generate rewrites baseURL to carry the given affiliate identifier.
//
// If a cid parameter already exists its value is replaced; otherwise the
// parameter is appended with "&" when a query string exists, else "?".
// The transformation is purely textual: a malformed URL passes through and
// fails later in the renderer instead.
func Generate(baseURL, cid string) string {
	if cidParam.MatchString(baseURL) {
		return cidParam.ReplaceAllStringFunc(baseURL, func(m string) string {
			idx := strings.Index(m, "=")
			return m[:idx+1] + cid
		})
	}
	if strings.Contains(baseURL, "?") {
		return baseURL + "&cid=" + cid
	}
	return baseURL + "?cid=" + cid
}

// Build derives the full variant list for one scan, in roster order.
// Each URL is generated and then normalized; index is 1-based to match the
// progress events. An empty roster name falls back to the original-identifier
// label for the first entry and the raw CID for the rest.
func Build(baseURL string, roster []models.CIDEntry, n *Normalizer, originalCurrency string) []models.Variant {
	variants := make([]models.Variant, 0, len(roster))
	for i, entry := range roster {
		label := entry.Name
		if label == "" {
			if i == 0 {
				label = models.OriginalLabel
			} else {
				label = entry.CID
			}
		}
		u := n.Reorder(Generate(baseURL, entry.CID), originalCurrency)
		variants = append(variants, models.Variant{
			Index: i + 1,
			CID:   entry.CID,
			Label: label,
			URL:   u,
		})
	}
	return variants
}
