// Package pipeline runs one scrape end to end: every page is read through the
// request cache, both tables are rebuilt, and the joined dataset is optionally
// exported.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aluiziolira/go-bestsellers/cache"
	"github.com/aluiziolira/go-bestsellers/config"
	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/scraper"
	"github.com/aluiziolira/go-bestsellers/store"
)

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithTransport replaces the HTTP transport used for every page.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Pipeline) {
		p.fetcher.WithTransport(rt)
	}
}

// Pipeline wires the fetcher, request cache, scraper and store together.
type Pipeline struct {
	cfg     *config.Config
	store   *store.Store
	fetcher *scraper.CollyFetcher
	cache   *cache.RequestCache
	scraper *scraper.Scraper
	Metrics *scraper.Metrics
}

// NewPipeline opens the request cache at cfg.CacheFile and prepares a scraper
// that writes into st.
func NewPipeline(cfg *config.Config, st *store.Store, opts ...Option) (*Pipeline, error) {
	if st == nil {
		return nil, errors.New("pipeline: store is nil")
	}

	metrics := scraper.NewMetrics()
	p := &Pipeline{
		cfg:     cfg,
		store:   st,
		fetcher: scraper.NewCollyFetcher(cfg, metrics),
		Metrics: metrics,
	}
	for _, opt := range opts {
		opt(p)
	}

	c, err := cache.Open(cfg.CacheFile, p.fetcher, cache.WithObserver(metrics.ObserveCache))
	if err != nil {
		return nil, err
	}
	p.cache = c

	s, err := scraper.NewScraper(cfg, c, metrics)
	if err != nil {
		return nil, err
	}
	p.scraper = s
	return p, nil
}

// Run scrapes the site, rebuilds both tables and exports when configured.
// Nothing is written to the database unless the whole scrape succeeds.
func (p *Pipeline) Run(ctx context.Context) (*models.ScrapeResult, error) {
	result, err := p.scraper.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}
	result.RequestCount = p.fetcher.RequestCount()
	result.CacheHits, _ = p.cache.Stats()
	result.ErrorsByType = p.fetcher.ErrorsByType()

	if err := p.store.Rebuild(ctx, result.Listings, result.Records); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	if p.cfg.ExportFile != "" {
		if err := export(p.cfg.ExportFormat, p.cfg.ExportFile, result.Books()); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}

	slog.Info("run complete",
		slog.Int("categories", len(result.Categories)),
		slog.Int("books", len(result.Listings)),
		slog.Int("requests", result.RequestCount),
		slog.Int("cache_hits", result.CacheHits),
	)
	return result, nil
}

func export(format, filename string, books []models.Book) (err error) {
	writer, err := NewWriter(format, filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := writer.Write(books); err != nil {
		return err
	}
	if err := writer.Validate(); err != nil {
		return err
	}
	slog.Info("export written", slog.String("file", filename), slog.String("format", format))
	return nil
}
