package extractor

import (
	"regexp"
	"strings"
)

// pricePatterns is the ordered currency/number pattern table, most reliable
// forms first. Matches keep their original textual grouping; nothing is
// reformatted downstream.
var pricePatterns = []*regexp.Regexp{
	// Currency symbol + 3 or more grouped digits.
	regexp.MustCompile(`[₩$€£¥]\s*[\d,]{3,}(?:\.\d{2})?`),
	// Korean Won suffix forms.
	regexp.MustCompile(`[\d,]{4,}(?:\.\d{2})?\s*[₩원]`),
	// ISO currency code suffix.
	regexp.MustCompile(`[\d,]{2,}(?:\.\d{2})?\s*(?:USD|EUR|GBP|JPY|KRW)\b`),
	// Labeled amounts ("price: ₩12,000", "가격 12,000").
	regexp.MustCompile(`(?i)(?:price|가격|요금|cost|amount)[\s:]+[₩$€£¥]?\s*[\d,]+(?:\.\d{2})?`),
	// Strictly grouped symbol amounts ("₩1,234,000").
	regexp.MustCompile(`[₩$€£¥]\s*\d{1,3}(?:,\d{3})+(?:\.\d{2})?`),
	// Booking-page Korean idioms ("64,039원 부터", "6만원").
	regexp.MustCompile(`[\d,]+\s*원\s*부터`),
	regexp.MustCompile(`[\d,]+\s*만원`),
	regexp.MustCompile(`[\d,]{3,}\s*(?:원|won)`),
	// Totals ("총 ₩128,078", "total: 128,078").
	regexp.MustCompile(`(?i)(?:총|합계|total)[\s:]*[₩$€£¥]?\s*[\d,]{3,}(?:\.\d{2})?`),
}

// averageMarkers flag a surrounding-text phrase that identifies a market or
// typical price rather than the bookable rate. A candidate whose context
// contains any of these is a decoy and is rejected.
var averageMarkers = []string{
	"평균",
	"평균가",
	"평균 요금",
	"average",
	"avg",
	"typical",
	"일반적",
}

var (
	numberGroup = regexp.MustCompile(`[\d,]+`)
	digitsOnly  = regexp.MustCompile(`\d`)
	isoDatePat  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// currencyMarked reports whether the price string carries any currency
// signal at all (symbol, Won suffix, or ISO code).
func currencyMarked(price string) bool {
	if strings.ContainsAny(price, "₩$€£¥") {
		return true
	}
	if strings.Contains(price, "원") || strings.Contains(strings.ToLower(price), "won") {
		return true
	}
	for _, code := range []string{"USD", "EUR", "GBP", "JPY", "KRW"} {
		if strings.Contains(price, code) {
			return true
		}
	}
	return false
}

// isAverageContext reports whether the surrounding text marks the candidate
// as an average-price decoy.
func isAverageContext(context string) bool {
	lower := strings.ToLower(context)
	for _, marker := range averageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// leadingDigitCount counts the digits of the first number group in the
// price string, commas stripped. "₩64,039" → 5, "$45" → 2.
func leadingDigitCount(price string) int {
	group := numberGroup.FindString(price)
	if group == "" {
		return 0
	}
	return len(digitsOnly.FindAllString(group, -1))
}

// isDateLike rejects bare 4-digit numbers that are almost certainly years or
// date fragments: no currency marker, a plausible year value, or a context
// that reads like a date.
func isDateLike(price, context string) bool {
	if currencyMarked(price) {
		return false
	}
	group := strings.ReplaceAll(numberGroup.FindString(price), ",", "")
	if len(group) == 4 && group >= "1900" && group <= "2100" {
		return true
	}
	return isoDatePat.MatchString(context)
}

// trimPrice drops stray leading/trailing punctuation so "64,039," and
// "64,039" dedup to the same value.
func trimPrice(price string) string {
	return strings.Trim(strings.TrimSpace(price), ",.;:")
}

// collapseSpace flattens newlines/tabs/runs of spaces into single spaces.
func collapseSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
