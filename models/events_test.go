package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCompleteEvent_SerializesZeroCounts(t *testing.T) {
	// A scan of an empty roster still reports its (zero) totals.
	out, err := json.Marshal(CompleteEvent(0, 0, nil))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, `"total_results":0`) {
		t.Errorf("zero total_results dropped: %s", s)
	}
	if !strings.Contains(s, `"total_prices_found":0`) {
		t.Errorf("zero total_prices_found dropped: %s", s)
	}
	if strings.Contains(s, "lowest") {
		t.Errorf("nil lowest serialized: %s", s)
	}
}

func TestErrorEvent_UnwrapsWrappedScanError(t *testing.T) {
	wrapped := fmt.Errorf("variant 3: %w", NewScanError(ErrCodeTimeout, "deadline exceeded while loading page", nil))
	ev := ErrorEvent("naver-search", wrapped)

	if ev.Code != ErrCodeTimeout {
		t.Errorf("code = %q, want %q", ev.Code, ErrCodeTimeout)
	}
	if ev.Error != "deadline exceeded while loading page" {
		t.Errorf("error = %q, want the ScanError message", ev.Error)
	}
}

func TestEvent_WireShapes(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		want    []string
		exclude []string
	}{
		{
			name:    "start",
			event:   StartEvent(17),
			want:    []string{`"type":"start"`, `"total_cids":17`},
			exclude: []string{"step", "data", "error"},
		},
		{
			name:    "progress",
			event:   ProgressEvent(3, 17, "naver-search"),
			want:    []string{`"type":"progress"`, `"step":3`, `"total":17`, `"cid":"naver-search"`},
			exclude: []string{"data", "error", "total_results"},
		},
		{
			name: "result",
			event: ResultEvent(&ExtractionResult{
				CID:    "1729890",
				URL:    "https://x.test/s?cid=1729890",
				Prices: []PriceEntry{},
				Status: StatusNoPrices,
			}),
			want:    []string{`"type":"result"`, `"status":"no_prices"`, `"prices":[]`},
			exclude: []string{`"error"`},
		},
		{
			name:    "error",
			event:   ErrorEvent("tripadvisor", errors.New("page failed to load")),
			want:    []string{`"type":"error"`, `"cid":"tripadvisor"`, `"error":"page failed to load"`},
			exclude: []string{"data", "total_results", `"code"`},
		},
		{
			name: "coded error",
			event: ErrorEvent("tripadvisor",
				NewScanError(ErrCodeNavigation, "navigation failed", errors.New("dns lookup failed"))),
			want: []string{
				`"type":"error"`,
				`"code":"NAVIGATION_FAILED"`,
				`"error":"navigation failed: dns lookup failed"`,
			},
			exclude: []string{"data", "total_results"},
		},
	}
	for _, tt := range tests {
		out, err := json.Marshal(tt.event)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		s := string(out)
		for _, w := range tt.want {
			if !strings.Contains(s, w) {
				t.Errorf("%s: missing %s in %s", tt.name, w, s)
			}
		}
		for _, e := range tt.exclude {
			if strings.Contains(s, e) {
				t.Errorf("%s: unexpected %s in %s", tt.name, e, s)
			}
		}
	}
}
