package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-bestsellers/cache"
	"github.com/aluiziolira/go-bestsellers/config"
	"github.com/aluiziolira/go-bestsellers/internal/fixtures"
	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/parser"
)

const seedURL = "http://example.test/books/best-sellers/"

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: errors.New("Internal Server Error"), statusCode: http.StatusInternalServerError, expected: "http_status"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorTypeLabel(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestFetcherHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusBadGateway, expected: "http_status"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", seedURL, httpmock.NewStringResponder(tt.status, ""))

			f := NewCollyFetcher(testConfig(), NewMetrics())
			f.WithTransport(transport)

			_, err := f.Fetch(context.Background(), seedURL)
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if got := errorTypeLabel(err); got != tt.expected {
				t.Fatalf("label=%q, want %q (err=%v)", got, tt.expected, err)
			}
			if f.ErrorsByType()[tt.expected] != 1 || f.ErrorCount() != 1 {
				t.Fatalf("errors by type = %v", f.ErrorsByType())
			}
		})
	}
}

func TestFetcherReturnsBody(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", seedURL, htmlResponder("<html>hello</html>"))

	f := NewCollyFetcher(testConfig(), NewMetrics())
	f.WithTransport(transport)

	for i := 0; i < 2; i++ {
		body, err := f.Fetch(context.Background(), seedURL)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if body != "<html>hello</html>" {
			t.Fatalf("body=%q", body)
		}
	}
	if f.RequestCount() != 2 {
		t.Fatalf("fetcher must not dedupe revisits, requests=%d", f.RequestCount())
	}
}

func TestFetcherReturnsLargeBodyIntact(t *testing.T) {
	large := "<html>" + strings.Repeat("x", 11<<20) + "</html>"
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", seedURL, htmlResponder(large))

	f := NewCollyFetcher(testConfig(), NewMetrics())
	f.WithTransport(transport)

	body, err := f.Fetch(context.Background(), seedURL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(body) != len(large) {
		t.Fatalf("body length = %d, want %d", len(body), len(large))
	}
}

func TestFetcherCancelledContext(t *testing.T) {
	f := NewCollyFetcher(testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, seedURL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScraper_Integration(t *testing.T) {
	transport := newSiteTransport(2, 3)
	s, c := newTestScraper(t, transport)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Categories) != 2 || result.Categories[0].Name != "category-a" {
		t.Fatalf("categories = %+v", result.Categories)
	}
	if len(result.Listings) != 6 || len(result.Records) != 6 {
		t.Fatalf("listings=%d records=%d, want 6/6", len(result.Listings), len(result.Records))
	}

	seen := make(map[string]bool)
	for i, l := range result.Listings {
		wantCategory := "category-a"
		if i >= 3 {
			wantCategory = "category-b"
		}
		if l.Category != wantCategory || l.Rank != i%3+1 {
			t.Fatalf("listing %d = %s/%d, want %s/%d", i, l.Category, l.Rank, wantCategory, i%3+1)
		}
		if l.Key == "" || seen[l.Key] {
			t.Fatalf("listing %d has empty or repeated key %q", i, l.Key)
		}
		seen[l.Key] = true

		rec := result.Records[i]
		if rec.Key != l.Key {
			t.Fatalf("record %d key %q does not match listing key %q", i, rec.Key, l.Key)
		}
		if rec.Title != models.Some(l.Title) {
			t.Fatalf("record %d title %+v, want %q", i, rec.Title, l.Title)
		}
	}

	if got := transport.GetTotalCallCount(); got != 1+2+6 {
		t.Fatalf("network calls = %d, want 9", got)
	}
	if c.Len() != 9 {
		t.Fatalf("cache entries = %d, want 9", c.Len())
	}

	// A second run is served entirely from the cache.
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := transport.GetTotalCallCount(); got != 9 {
		t.Fatalf("second run hit the network, calls = %d", got)
	}
}

func TestEnrichSharedRetailerPage(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://retailer.test/book/shared", htmlResponder(
		fixtures.RetailerPage(fixtures.Retailer{Title: "Shared", Price: "$5.00", NoBadges: true}),
	))
	s, _ := newTestScraper(t, transport)

	listings := []models.BookListing{
		{Key: "k1", Title: "Shared", RetailerURL: "http://retailer.test/book/shared"},
		{Key: "k2", Title: "Shared", RetailerURL: "http://retailer.test/book/shared"},
	}
	records, err := s.Enrich(context.Background(), listings)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(records) != 2 || records[0].Key != "k1" || records[1].Key != "k2" {
		t.Fatalf("records = %+v", records)
	}
	if records[1].Price != models.Some(5.0) {
		t.Fatalf("memoised record lost data: %+v", records[1])
	}
	if got := transport.GetTotalCallCount(); got != 1 {
		t.Fatalf("network calls = %d, want 1", got)
	}
}

func TestEnrichPropagatesTransportErrors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://retailer.test/book/gone", httpmock.NewStringResponder(http.StatusNotFound, ""))
	s, _ := newTestScraper(t, transport)

	_, err := s.Enrich(context.Background(), []models.BookListing{
		{Key: "k", Title: "Gone", RetailerURL: "http://retailer.test/book/gone"},
	})
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDiscoverCategoriesMarkupMismatch(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", seedURL, htmlResponder("<html><body>redesigned</body></html>"))
	s, _ := newTestScraper(t, transport)

	if _, err := s.DiscoverCategories(context.Background()); !errors.Is(err, parser.ErrMarkup) {
		t.Fatalf("expected ErrMarkup, got %v", err)
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.SeedURL = seedURL
	cfg.RecordCacheSize = 16
	return cfg
}

func newTestScraper(t *testing.T, transport *httpmock.MockTransport) (*Scraper, *cache.RequestCache) {
	t.Helper()
	cfg := testConfig()
	metrics := NewMetrics()

	fetcher := NewCollyFetcher(cfg, metrics)
	fetcher.WithTransport(transport)

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.json"), fetcher, cache.WithObserver(metrics.ObserveCache))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	s, err := NewScraper(cfg, c, metrics)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	return s, c
}

// newSiteTransport serves a homepage with the given number of categories,
// each listing booksPer books with their own retailer page.
func newSiteTransport(categories, booksPer int) *httpmock.MockTransport {
	transport := httpmock.NewMockTransport()
	for url, body := range fixtures.Site("http://example.test", categories, booksPer) {
		transport.RegisterResponder("GET", url, htmlResponder(body))
	}
	return transport
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}
