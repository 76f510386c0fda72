// Package scraper walks the best-seller site and the retailer storefront and
// turns their pages into listings and retailer records.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-bestsellers/cache"
	"github.com/aluiziolira/go-bestsellers/config"
	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/parser"
)

// Scraper runs discovery, listing extraction and retailer enrichment one page
// at a time through a single Fetcher, normally the request cache.
type Scraper struct {
	cfg     *config.Config
	fetcher cache.Fetcher
	origin  string
	records *lru.Cache[string, models.RetailerRecord]
	Metrics *Metrics

	newKey func() string
}

// NewScraper builds a scraper that reads every page through fetcher.
func NewScraper(cfg *config.Config, fetcher cache.Fetcher, metrics *Metrics) (*Scraper, error) {
	if fetcher == nil {
		return nil, errors.New("scraper: fetcher is nil")
	}
	origin, err := parser.Origin(cfg.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("seed url: %w", err)
	}
	records, err := lru.New[string, models.RetailerRecord](cfg.RecordCacheSize)
	if err != nil {
		return nil, fmt.Errorf("record cache: %w", err)
	}
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		origin:  origin,
		records: records,
		Metrics: metrics,
		newKey:  uuid.NewString,
	}, nil
}

// Run scrapes categories, listings and retailer records in that order.
func (s *Scraper) Run(ctx context.Context) (*models.ScrapeResult, error) {
	start := time.Now()

	categories, err := s.DiscoverCategories(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := s.ExtractListings(ctx, categories)
	if err != nil {
		return nil, err
	}
	records, err := s.Enrich(ctx, listings)
	if err != nil {
		return nil, err
	}

	return &models.ScrapeResult{
		Categories: categories,
		Listings:   listings,
		Records:    records,
		StartTime:  start,
		EndTime:    time.Now(),
	}, nil
}

// DiscoverCategories reads the seed page and returns its category lists.
func (s *Scraper) DiscoverCategories(ctx context.Context) ([]models.Category, error) {
	doc, err := s.document(ctx, s.cfg.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("category discovery: %w", err)
	}
	categories, err := parser.ParseCategories(doc, s.origin)
	if err != nil {
		return nil, fmt.Errorf("category discovery: %w", err)
	}
	slog.Info("categories discovered", slog.Int("count", len(categories)))
	return categories, nil
}

// ExtractListings returns every book of every category, category by
// category in the given order, each with a fresh key.
func (s *Scraper) ExtractListings(ctx context.Context, categories []models.Category) ([]models.BookListing, error) {
	var all []models.BookListing
	for _, category := range categories {
		doc, err := s.document(ctx, category.URL)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", category.Name, err)
		}
		listings, err := parser.ParseListings(doc, category.Name)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", category.Name, err)
		}
		for i := range listings {
			listings[i].Key = s.newKey()
		}
		slog.Debug("category extracted",
			slog.String("category", category.Name),
			slog.Int("books", len(listings)),
		)
		s.Metrics.AddListings(len(listings))
		all = append(all, listings...)
	}
	return all, nil
}

// Enrich returns one retailer record per listing, in listing order.
func (s *Scraper) Enrich(ctx context.Context, listings []models.BookListing) ([]models.RetailerRecord, error) {
	records := make([]models.RetailerRecord, 0, len(listings))
	for _, listing := range listings {
		rec, err := s.retailerRecord(ctx, listing.RetailerURL)
		if err != nil {
			return nil, fmt.Errorf("retailer page for %q: %w", listing.Title, err)
		}
		rec.Key = listing.Key
		records = append(records, rec)
	}
	return records, nil
}

func (s *Scraper) retailerRecord(ctx context.Context, url string) (models.RetailerRecord, error) {
	if rec, ok := s.records.Get(url); ok {
		return rec, nil
	}
	doc, err := s.document(ctx, url)
	if err != nil {
		return models.RetailerRecord{}, err
	}
	rec := parser.ParseRetailer(doc)
	s.Metrics.ObserveRecord(rec)
	s.records.Add(url, rec)
	return rec, nil
}

func (s *Scraper) document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return parser.Parse(body)
}
