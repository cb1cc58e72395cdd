package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastScraper() *Scraper {
	return New(testLogger(), WithRequestInterval(time.Microsecond))
}

func TestScrapeExtractsParagraphs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<h1>MAT standards</h1>
			<p>First paragraph about treatment.</p>
			<div><p>  Nested paragraph about recovery.  </p></div>
			<p>   </p>
		</body></html>`))
	}))
	defer server.Close()

	raw, err := fastScraper().Scrape(context.Background(), []string{server.URL})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %+v", len(raw), raw)
	}
	if raw[0].Text != "First paragraph about treatment." {
		t.Fatalf("unexpected first paragraph %q", raw[0].Text)
	}
	if raw[1].Text != "Nested paragraph about recovery." {
		t.Fatalf("whitespace not trimmed: %q", raw[1].Text)
	}
	if raw[0].SourceURL != server.URL {
		t.Fatalf("source url not recorded")
	}
}

func TestScrapeSkipsFailingURL(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p>Surviving paragraph.</p>`))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer bad.Close()

	raw, err := fastScraper().Scrape(context.Background(), []string{bad.URL, good.URL})
	if err != nil {
		t.Fatalf("one bad source must not fail the run, got %v", err)
	}
	if len(raw) != 1 || raw[0].Text != "Surviving paragraph." {
		t.Fatalf("unexpected result %+v", raw)
	}
}

func TestScrapeSendsUserAgent(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<p>ok paragraph text</p>`))
	}))
	defer server.Close()

	if _, err := fastScraper().Scrape(context.Background(), []string{server.URL}); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if agent != defaultUserAgent {
		t.Fatalf("user agent = %q", agent)
	}
}

func TestScrapeHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := New(testLogger(), WithRequestInterval(time.Hour))
	if _, err := scraper.Scrape(ctx, []string{"http://127.0.0.1:0"}); err == nil {
		t.Fatalf("expected context error")
	}
}
