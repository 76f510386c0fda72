package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-bestsellers/config"
)

const (
	ctxBody  = "body"
	ctxError = "error"
	ctxStart = "start"
)

// CollyFetcher issues one blocking GET per call through a colly collector.
type CollyFetcher struct {
	collector *colly.Collector
	metrics   *Metrics

	requestCount int64
	errorCount   int64

	mu           sync.Mutex
	errorsByType map[string]int
}

// NewCollyFetcher builds a synchronous collector configured from cfg.
func NewCollyFetcher(cfg *config.Config, metrics *Metrics) *CollyFetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	// Bodies are cached verbatim, so they must never be truncated.
	collector.MaxBodySize = 0
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	f := &CollyFetcher{
		collector:    collector,
		metrics:      metrics,
		errorsByType: make(map[string]int),
	}
	f.configureHandlers()
	return f
}

// WithTransport replaces the HTTP transport, mostly for tests.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch returns the body of rawURL or a classified transport error.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reqCtx := colly.NewContext()
	err := f.collector.Request(http.MethodGet, rawURL, nil, reqCtx, nil)
	if classified, ok := reqCtx.GetAny(ctxError).(error); ok {
		err = classified
	}
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	body, _ := reqCtx.GetAny(ctxBody).(string)
	return body, nil
}

// RequestCount returns the number of requests issued.
func (f *CollyFetcher) RequestCount() int {
	return int(atomic.LoadInt64(&f.requestCount))
}

// ErrorsByType returns a snapshot of failed requests by category.
func (f *CollyFetcher) ErrorsByType() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.errorsByType))
	for k, v := range f.errorsByType {
		out[k] = v
	}
	return out
}

func (f *CollyFetcher) configureHandlers() {
	f.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		atomic.AddInt64(&f.requestCount, 1)
		f.metrics.IncRequest(r.URL.Host)
	})

	f.collector.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
		r.Ctx.Put(ctxBody, string(r.Body))
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		atomic.AddInt64(&f.errorCount, 1)
		classified := classifyError(err, r.StatusCode)
		category := errorTypeLabel(classified)

		f.mu.Lock()
		f.errorsByType[category]++
		f.mu.Unlock()

		url := ""
		if r.Request != nil && r.Request.URL != nil {
			url = r.Request.URL.String()
		}
		slog.Error("request error",
			slog.String("url", url),
			slog.Int("status", r.StatusCode),
			slog.String("category", category),
			slog.Any("error", err),
		)
		f.metrics.IncError(category)
		r.Ctx.Put(ctxError, classified)
	})
}

// ErrorCount returns the number of failed requests.
func (f *CollyFetcher) ErrorCount() int {
	return int(atomic.LoadInt64(&f.errorCount))
}
