package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Candidate is one price occurrence found by a strategy, before filtering,
// deduplication and capping.
type Candidate struct {
	// Price is the raw matched price string.
	Price string

	// Context is the surrounding text used for decoy checks and debugging.
	Context string

	// Source names the strategy that produced the candidate.
	Source string

	// Position orders candidates by document location. Targeted-element
	// hits use 0 so they always rank ahead of text offsets.
	Position int
}

// Strategy sources for Candidate.Source / PriceEntry.Source.
const (
	SourceTargeted = "targeted-element"
	SourceFullText = "text-search"
)

// priceSelectors is the priority list of price-bearing DOM selectors,
// precompiled once. The site-specific card class leads; generic price/amount
// classes and Korean equivalents follow as fallbacks.
var priceSelectors = []cascadia.Selector{
	cascadia.MustCompile(`[class*="PropertyCardPrice"]`),
	cascadia.MustCompile(`[class*="price-display"]`),
	cascadia.MustCompile(`[data-price]`),
	cascadia.MustCompile(`[data-price-value]`),
	cascadia.MustCompile(`[class*="price"]`),
	cascadia.MustCompile(`.price`),
	cascadia.MustCompile(`.final-price`),
	cascadia.MustCompile(`.current-price`),
	cascadia.MustCompile(`[class*="가격"]`),
	cascadia.MustCompile(`[class*="원"]`),
	cascadia.MustCompile(`span[class*="price"]`),
	cascadia.MustCompile(`div[class*="price"]`),
	cascadia.MustCompile(`strong[class*="price"]`),
	cascadia.MustCompile(`[class*="amount"]`),
	cascadia.MustCompile(`[class*="cost"]`),
}

// TargetedElements runs the currency patterns over the text of every node
// matching the priority selectors, in selector priority order. The matched
// element's whole (collapsed) text becomes the candidate context.
func TargetedElements(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	seen := make(map[string]struct{})

	for _, sel := range priceSelectors {
		doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
			elementText := collapseSpace(s.Text())
			if elementText == "" {
				return
			}
			for _, pat := range pricePatterns {
				for _, match := range pat.FindAllString(elementText, -1) {
					price := trimPrice(match)
					if price == "" {
						continue
					}
					if _, dup := seen[price]; dup {
						continue
					}
					seen[price] = struct{}{}
					candidates = append(candidates, Candidate{
						Price:   price,
						Context: elementText,
						Source:  SourceTargeted,
					})
				}
			}
		})
	}
	return candidates
}

// FullText runs the currency patterns over the page's full visible text,
// keeping contextRadius runes of context on each side of every match.
func FullText(text string, contextRadius int) []Candidate {
	var candidates []Candidate
	seen := make(map[string]struct{})
	runes := []rune(text)

	for _, pat := range pricePatterns {
		for _, loc := range pat.FindAllStringIndex(text, -1) {
			price := trimPrice(text[loc[0]:loc[1]])
			if price == "" {
				continue
			}
			if _, dup := seen[price]; dup {
				continue
			}
			seen[price] = struct{}{}

			// loc is in bytes; widen to runes for the context window.
			start := len([]rune(text[:loc[0]]))
			end := len([]rune(text[:loc[1]]))
			lo := start - contextRadius
			if lo < 0 {
				lo = 0
			}
			hi := end + contextRadius
			if hi > len(runes) {
				hi = len(runes)
			}

			candidates = append(candidates, Candidate{
				Price:    price,
				Context:  collapseSpace(string(runes[lo:hi])),
				Source:   SourceFullText,
				Position: loc[0],
			})
		}
	}
	return candidates
}
