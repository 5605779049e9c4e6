package renderer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", `<html><head><title>Seoul Hotels</title></head></html>`, "Seoul Hotels"},
		{"whitespace", "<title>\n  Seoul Hotels \n</title>", "Seoul Hotels"},
		{"missing", `<html><head></head><body>no title</body></html>`, ""},
		{"empty", ``, ""},
		{"empty title", `<title></title>`, ""},
	}
	for _, tt := range tests {
		if got := pageTitle([]byte(tt.html)); got != tt.want {
			t.Errorf("%s: pageTitle() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestHTTPFetcher_PlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Chrome") {
			t.Errorf("user agent = %q, want a Chrome UA", ua)
		}
		if al := r.Header.Get("Accept-Language"); !strings.HasPrefix(al, "ko-KR") {
			t.Errorf("accept language = %q, want ko-KR first", al)
		}
		w.Write([]byte(`<html><title>ok</title></html>`))
	}))
	defer srv.Close()

	f := newHTTPFetcher("", 5*time.Second)
	body, err := f.fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch() error: %v", err)
	}
	if pageTitle(body) != "ok" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := newHTTPFetcher("", 5*time.Second)
	if _, err := f.fetch(context.Background(), srv.URL); err == nil {
		t.Error("fetch() should fail on HTTP 403")
	}
}

func TestHTTPFetcher_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := newHTTPFetcher("", 5*time.Second)
	if _, err := f.fetch(ctx, srv.URL); err == nil {
		t.Error("fetch() should fail once the context expires")
	}
}
