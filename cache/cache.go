// Package cache keeps raw response bodies on disk so repeated runs do not
// refetch pages they have already seen.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-bestsellers/internal/fsutil"
)

// Fetcher retrieves the raw body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Observer is notified of every lookup.
type Observer func(url string, hit bool)

// Option configures a RequestCache.
type Option func(*RequestCache)

// WithObserver registers a lookup observer.
func WithObserver(o Observer) Option {
	return func(c *RequestCache) {
		c.observer = o
	}
}

// RequestCache maps URLs to response bodies and persists the whole map as a
// flat JSON object after every miss.
type RequestCache struct {
	path     string
	fetcher  Fetcher
	observer Observer

	mu      sync.Mutex
	entries map[string]string
	hits    int
	misses  int
}

// Open loads the cache file at path. A missing file starts an empty cache.
func Open(path string, fetcher Fetcher, opts ...Option) (*RequestCache, error) {
	if fetcher == nil {
		return nil, errors.New("cache: fetcher is nil")
	}
	c := &RequestCache{
		path:    path,
		fetcher: fetcher,
		entries: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("decode cache file %q: %w", path, err)
	}
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	slog.Debug("request cache loaded", slog.String("path", path), slog.Int("entries", len(c.entries)))
	return c, nil
}

// GetOrFetch returns the cached body for url, fetching and persisting it on
// a miss. Fetch errors are returned as is and nothing is stored.
func (c *RequestCache) GetOrFetch(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if body, ok := c.entries[url]; ok {
		c.hits++
		c.notify(url, true)
		slog.Debug("using cache", slog.String("url", url))
		return body, nil
	}

	c.misses++
	c.notify(url, false)
	slog.Debug("fetching", slog.String("url", url))
	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	c.entries[url] = body
	if err := c.saveLocked(); err != nil {
		delete(c.entries, url)
		return "", err
	}
	return body, nil
}

// Fetch lets the cache stand in for a Fetcher.
func (c *RequestCache) Fetch(ctx context.Context, url string) (string, error) {
	return c.GetOrFetch(ctx, url)
}

// Len returns the number of cached URLs.
func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns lookup counters since Open.
func (c *RequestCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *RequestCache) notify(url string, hit bool) {
	if c.observer != nil {
		c.observer(url, hit)
	}
}

func (c *RequestCache) saveLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := fsutil.EnsureDir(c.path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
