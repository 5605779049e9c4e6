package models

// CIDNone is the sentinel CID meaning "no affiliate attached" — the price
// an incognito visitor with no referral would see.
const CIDNone = "-1"

// OriginalLabel is the conventional label for the first scan step, which
// keeps the base URL's own CID so later variants can be compared against it.
const OriginalLabel = "original"

// CIDEntry is one affiliate identifier to scan, with a human-readable name.
type CIDEntry struct {
	CID  string `json:"cid" binding:"required"`
	Name string `json:"name"`
}

// DefaultRoster returns the built-in CID roster: the referral identities the
// booking site is known to price differently. Search/map referrals first,
// then card-issuer affiliates.
func DefaultRoster() []CIDEntry {
	return []CIDEntry{
		{CID: CIDNone, Name: "incognito"},
		{CID: "1829968", Name: "google-maps-a"},
		{CID: "1917614", Name: "google-maps-b"},
		{CID: "1833981", Name: "google-maps-c"},
		{CID: "1776688", Name: "google-search-a"},
		{CID: "1922868", Name: "google-search-b"},
		{CID: "1908612", Name: "google-search-c"},
		{CID: "1729890", Name: "naver-search"},
		{CID: "1587497", Name: "tripadvisor"},
		{CID: "1942636", Name: "kakaopay"},
		{CID: "1895693", Name: "hyundai-card"},
		{CID: "1563295", Name: "kb-card"},
		{CID: "1654104", Name: "woori-card"},
		{CID: "1748498", Name: "bc-card"},
		{CID: "1760133", Name: "shinhan-card"},
		{CID: "1729471", Name: "hana-card"},
		{CID: "1917334", Name: "toss"},
	}
}
