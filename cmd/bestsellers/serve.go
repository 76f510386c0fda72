package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-bestsellers/config"
	"github.com/aluiziolira/go-bestsellers/dashboard"
	"github.com/aluiziolira/go-bestsellers/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query dashboard over the scraped database.",
	RunE:  runServe,
}

func init() {
	def := config.DefaultConfig()
	flags := serveCmd.Flags()
	flags.String("db", def.DBPath, "SQLite database path")
	flags.String("addr", def.ListenAddr, "Dashboard listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if books, _, err := st.Counts(ctx); err != nil {
		slog.Warn("database is not populated, run scrape first", slog.String("db", cfg.DBPath), slog.Any("error", err))
	} else {
		slog.Info("database loaded", slog.String("db", cfg.DBPath), slog.Int("books", books))
	}

	handler, err := dashboard.NewServer(st, slog.Default())
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", slog.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return nil
}
