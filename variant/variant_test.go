package variant

import (
	"testing"

	"github.com/magicprice/magicprice/models"
)

func TestGenerate_ReplacesExistingCID(t *testing.T) {
	base := "https://x.test/search?cid=111&currencyCode=USD"

	got := Generate(base, "222")
	want := "https://x.test/search?cid=222&currencyCode=USD"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}

	// Deterministic: same inputs, same output.
	if again := Generate(base, "222"); again != got {
		t.Errorf("Generate() not deterministic: %q vs %q", again, got)
	}
}

func TestGenerate_ReplacesMidQueryCID(t *testing.T) {
	base := "https://x.test/search?checkIn=2026-09-01&cid=111&adults=2"

	got := Generate(base, "1587497")
	want := "https://x.test/search?checkIn=2026-09-01&cid=1587497&adults=2"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestGenerate_AppendsWhenQueryExists(t *testing.T) {
	got := Generate("https://x.test/search?adults=2", "333")
	want := "https://x.test/search?adults=2&cid=333"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestGenerate_AppendsWhenNoQuery(t *testing.T) {
	got := Generate("https://x.test/search", "333")
	want := "https://x.test/search?cid=333"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestGenerate_DoesNotTouchOtherCIDLikeParams(t *testing.T) {
	got := Generate("https://x.test/search?lucid=9", "42")
	want := "https://x.test/search?lucid=9&cid=42"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestReorder_CanonicalOrder(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}

	got := n.Reorder("https://x.test/search?cid=222&currencyCode=USD", "")
	want := "https://x.test/search?currencyCode=USD&cid=222"
	if got != want {
		t.Errorf("Reorder() = %q, want %q", got, want)
	}
}

func TestReorder_Idempotent(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}

	urls := []string{
		"https://x.test/search?cid=111&currencyCode=USD&adults=2&foo=bar",
		"https://x.test/search?checkIn=2026-09-01&checkOut=2026-09-02&cid=-1",
		"https://x.test/search?zzz=1&aaa=2",
	}
	for _, u := range urls {
		once := n.Reorder(u, "")
		twice := n.Reorder(once, "")
		if once != twice {
			t.Errorf("Reorder not idempotent for %q: %q vs %q", u, once, twice)
		}
	}
}

func TestReorder_UnknownParamsKeepRelativeOrder(t *testing.T) {
	n := &Normalizer{}

	got := n.Reorder("https://x.test/s?zzz=1&adults=2&aaa=3&cid=7", "")
	want := "https://x.test/s?adults=2&zzz=1&aaa=3&cid=7"
	if got != want {
		t.Errorf("Reorder() = %q, want %q", got, want)
	}
}

func TestReorder_InjectsDefaultCurrencyWhenAbsent(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}

	got := n.Reorder("https://x.test/s?adults=2&cid=7", "")
	want := "https://x.test/s?adults=2&currencyCode=KRW&cid=7"
	if got != want {
		t.Errorf("Reorder() = %q, want %q", got, want)
	}
}

func TestReorder_KeepsExistingCurrency(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}

	got := n.Reorder("https://x.test/s?currencyCode=JPY&cid=7", "")
	if got != "https://x.test/s?currencyCode=JPY&cid=7" {
		t.Errorf("existing currency was overridden: %q", got)
	}
}

func TestReorder_CallerCurrencyWins(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}

	// The caller's explicit currency is restored even when substitution
	// left a different value behind.
	got := n.Reorder("https://x.test/s?currencyCode=KRW&cid=7", "USD")
	want := "https://x.test/s?currencyCode=USD&cid=7"
	if got != want {
		t.Errorf("Reorder() = %q, want %q", got, want)
	}
}

func TestReorder_DuplicateParamLastWins(t *testing.T) {
	n := &Normalizer{}

	got := n.Reorder("https://x.test/s?adults=1&adults=4&cid=7", "")
	want := "https://x.test/s?adults=4&cid=7"
	if got != want {
		t.Errorf("Reorder() = %q, want %q", got, want)
	}
}

func TestReorder_NoQueryPassthrough(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}

	for _, u := range []string{"https://x.test/search", "not a url at all", ""} {
		if got := n.Reorder(u, ""); got != u {
			t.Errorf("Reorder(%q) = %q, want unchanged", u, got)
		}
	}
}

func TestReorder_PreservesEncodedValues(t *testing.T) {
	n := &Normalizer{}

	got := n.Reorder("https://x.test/s?city=Seoul%2C%20KR&cid=7", "")
	want := "https://x.test/s?city=Seoul%2C%20KR&cid=7"
	if got != want {
		t.Errorf("Reorder() mangled encoding: %q", got)
	}
}

func TestBuild_OrderAndLabels(t *testing.T) {
	n := &Normalizer{DefaultCurrency: "KRW"}
	roster := []models.CIDEntry{
		{CID: models.CIDNone, Name: "incognito"},
		{CID: "1829968", Name: "google-maps-a"},
		{CID: "1587497"},
	}

	variants := Build("https://x.test/search?cid=111", roster, n, "")
	if len(variants) != 3 {
		t.Fatalf("Build() returned %d variants, want 3", len(variants))
	}

	for i, v := range variants {
		if v.Index != i+1 {
			t.Errorf("variant %d has index %d", i, v.Index)
		}
	}
	if variants[0].URL != "https://x.test/search?currencyCode=KRW&cid=-1" {
		t.Errorf("sentinel variant URL = %q", variants[0].URL)
	}
	if variants[1].Label != "google-maps-a" {
		t.Errorf("variant label = %q", variants[1].Label)
	}
	// Unnamed roster entries fall back to the raw CID.
	if variants[2].Label != "1587497" {
		t.Errorf("unnamed variant label = %q", variants[2].Label)
	}
}

func TestBuild_FirstUnnamedGetsOriginalLabel(t *testing.T) {
	n := &Normalizer{}
	variants := Build("https://x.test/s?cid=111", []models.CIDEntry{{CID: "111"}}, n, "")
	if variants[0].Label != models.OriginalLabel {
		t.Errorf("first unnamed variant label = %q, want %q", variants[0].Label, models.OriginalLabel)
	}
}
