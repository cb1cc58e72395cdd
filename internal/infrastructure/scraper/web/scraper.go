package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Scraper pulls paragraph text out of the configured source pages. One
// request per second keeps the load polite; a failing URL is skipped, not
// fatal.
type Scraper struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	userAgent  string
}

type Option func(*Scraper)

// WithRequestInterval overrides the default one-second spacing between
// requests.
func WithRequestInterval(interval time.Duration) Option {
	return func(s *Scraper) {
		if interval > 0 {
			s.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func New(logger *slog.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches every URL in order and returns one raw segment per
// non-empty paragraph.
func (s *Scraper) Scrape(ctx context.Context, urls []string) ([]domain.RawDocument, error) {
	var out []domain.RawDocument
	for _, url := range urls {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		texts, err := s.scrapeURL(ctx, url)
		if err != nil {
			s.logger.Error("scrape failed, skipping source", "url", url, "error", err)
			continue
		}
		s.logger.Info("scraped source", "url", url, "paragraphs", len(texts))
		for _, text := range texts {
			out = append(out, domain.RawDocument{SourceURL: url, Text: text})
		}
	}
	return out, nil
}

func (s *Scraper) scrapeURL(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch page: status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var texts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts, nil
}
