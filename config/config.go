package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BESTSELLERS_"

// Config holds scraper and dashboard configuration.
type Config struct {
	SeedURL         string        `yaml:"seed_url"`
	CacheFile       string        `yaml:"cache_file"`
	DBPath          string        `yaml:"db_path"`
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"user_agent"`
	RecordCacheSize int           `yaml:"record_cache_size"`
	ExportFile      string        `yaml:"export_file"`
	ExportFormat    string        `yaml:"export_format"` // csv, json, or dual
	MetricsAddr     string        `yaml:"metrics_addr"`
	ListenAddr      string        `yaml:"listen_addr"`
	Verbose         bool          `yaml:"verbose"`
}

// DefaultConfig returns defaults for the live best-seller site.
func DefaultConfig() *Config {
	return &Config{
		SeedURL:         "https://www.nytimes.com/books/best-sellers/",
		CacheFile:       "cache.json",
		DBPath:          "best_seller_books.sqlite",
		Timeout:         30 * time.Second,
		UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RecordCacheSize: 512,
		ExportFormat:    "csv",
		ListenAddr:      ":5000",
	}
}

// Load reads a YAML file over the defaults. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from BESTSELLERS_* variables.
func (c *Config) ApplyEnv() error {
	if v, ok := EnvString("SEED_URL"); ok {
		c.SeedURL = v
	}
	if v, ok := EnvString("CACHE_FILE"); ok {
		c.CacheFile = v
	}
	if v, ok := EnvString("DB_PATH"); ok {
		c.DBPath = v
	}
	if v, ok := EnvString("USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := EnvString("EXPORT_FILE"); ok {
		c.ExportFile = v
	}
	if v, ok := EnvString("EXPORT_FORMAT"); ok {
		c.ExportFormat = strings.ToLower(v)
	}
	if v, ok := EnvString("METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := EnvString("LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}

	v, ok, err := EnvDuration("TIMEOUT")
	if err != nil {
		return err
	}
	if ok {
		c.Timeout = v
	}
	n, ok, err := EnvInt("RECORD_CACHE_SIZE")
	if err != nil {
		return err
	}
	if ok {
		c.RecordCacheSize = n
	}
	return nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return errors.New("seed URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.SeedURL)
	if err != nil {
		return fmt.Errorf("invalid seed URL: %w", err)
	}
	if parsedURL.Host == "" {
		return errors.New("seed URL must include a host")
	}
	if c.CacheFile == "" {
		return errors.New("cache file cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("database path cannot be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.UserAgent == "" {
		return errors.New("user agent cannot be empty")
	}
	if c.RecordCacheSize <= 0 {
		return errors.New("record cache size must be positive")
	}
	if c.ExportFormat != "csv" && c.ExportFormat != "json" && c.ExportFormat != "dual" {
		return errors.New("export format must be csv, json, or dual")
	}
	return nil
}

// EnvString returns the value of EnvPrefix+name when set and non-empty.
func EnvString(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// EnvInt parses EnvPrefix+name as an integer.
func EnvInt(name string) (int, bool, error) {
	v, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	return n, true, nil
}

// EnvDuration parses EnvPrefix+name as a Go duration.
func EnvDuration(name string) (time.Duration, bool, error) {
	v, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	return d, true, nil
}
