package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-bestsellers/config"
	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/pipeline"
	"github.com/aluiziolira/go-bestsellers/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape every category and retailer page, then rebuild the database.",
	RunE:  runScrape,
}

func init() {
	def := config.DefaultConfig()
	flags := scrapeCmd.Flags()
	flags.String("seed-url", def.SeedURL, "Best-seller homepage URL")
	flags.String("cache-file", def.CacheFile, "Request cache file")
	flags.String("db", def.DBPath, "SQLite database path")
	flags.String("user-agent", def.UserAgent, "User-Agent header")
	flags.Duration("timeout", def.Timeout, "Per-request timeout")
	flags.String("export", "", "Also export the joined dataset to this file")
	flags.String("export-format", def.ExportFormat, "Export format: csv, json, or dual")
	flags.String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	slog.Info("starting scrape",
		slog.String("seed_url", cfg.SeedURL),
		slog.String("cache_file", cfg.CacheFile),
		slog.String("db", cfg.DBPath),
	)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := pipeline.NewPipeline(cfg, st)
	if err != nil {
		return fmt.Errorf("initialising pipeline: %w", err)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(p.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	startTime := time.Now()
	result, err := p.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
	if err != nil {
		return fmt.Errorf("scraping failed: %w", err)
	}

	printSummary(result, time.Since(startTime), cfg)
	return nil
}

func printSummary(result *models.ScrapeResult, duration time.Duration, cfg *config.Config) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	errorCount := 0
	for _, n := range result.ErrorsByType {
		errorCount += n
	}
	booksPerSec := 0.0
	if duration.Seconds() > 0 {
		booksPerSec = float64(len(result.Listings)) / duration.Seconds()
	}

	fmt.Printf("  Categories:    %d\n", len(result.Categories))
	fmt.Printf("  Books:         %d\n", len(result.Listings))
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Cache hits:    %d\n", result.CacheHits)
	fmt.Printf("  Errors:        %d\n", errorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Books/sec:     %.2f\n", booksPerSec)
	fmt.Printf("  Database:      %s\n", cfg.DBPath)
	if cfg.ExportFile != "" {
		fmt.Printf("  Export file:   %s (%s)\n", cfg.ExportFile, cfg.ExportFormat)
	}
	fmt.Println(separator)
}
