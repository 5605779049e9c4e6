package cache

import (
	"testing"
	"time"

	"github.com/magicprice/magicprice/models"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("https://x.test/s?cid=7", "KRW")
	b := Key("https://x.test/s?cid=7", "KRW")
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
	if a == Key("https://x.test/s?cid=8", "KRW") {
		t.Error("different URLs produced the same key")
	}
	if a == Key("https://x.test/s?cid=7", "USD") {
		t.Error("different currencies produced the same key")
	}
}

func TestGetSet(t *testing.T) {
	c := New(10)
	res := &models.ExtractionResult{CID: "7", Status: models.StatusSuccess}
	key := Key("https://x.test/s?cid=7", "KRW")

	if _, ok := c.Get(key, 60000); ok {
		t.Error("hit on an empty cache")
	}

	c.Set(key, res)
	got, ok := c.Get(key, 60000)
	if !ok {
		t.Fatal("miss immediately after Set")
	}
	if got.CID != "7" {
		t.Errorf("got CID %q, want %q", got.CID, "7")
	}
}

func TestGet_MaxAgeZeroDisablesLookup(t *testing.T) {
	c := New(10)
	key := Key("https://x.test/s?cid=7", "KRW")
	c.Set(key, &models.ExtractionResult{CID: "7"})

	if _, ok := c.Get(key, 0); ok {
		t.Error("maxAge 0 should bypass the cache")
	}
	if _, ok := c.Get(key, -1); ok {
		t.Error("negative maxAge should bypass the cache")
	}
}

func TestGet_ExpiredEntryMisses(t *testing.T) {
	c := New(10)
	key := Key("https://x.test/s?cid=7", "KRW")
	c.Set(key, &models.ExtractionResult{CID: "7"})

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(key, 1); ok {
		t.Error("entry older than maxAge was served")
	}
	// A wider window still hits.
	if _, ok := c.Get(key, 60000); !ok {
		t.Error("entry within maxAge was not served")
	}
}

func TestSet_EvictsOldestWhenFull(t *testing.T) {
	c := New(2)

	c.Set("k1", &models.ExtractionResult{CID: "1"})
	time.Sleep(2 * time.Millisecond)
	c.Set("k2", &models.ExtractionResult{CID: "2"})
	time.Sleep(2 * time.Millisecond)
	c.Set("k3", &models.ExtractionResult{CID: "3"})

	if _, ok := c.Get("k1", 60000); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.Get("k2", 60000); !ok {
		t.Error("newer entry was evicted")
	}
	if _, ok := c.Get("k3", 60000); !ok {
		t.Error("newest entry missing")
	}
}
