package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-bestsellers/models"
)

func TestLoadConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "db_path: from-file.sqlite\ncache_file: file-cache.json\nlisten_addr: \":6000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("BESTSELLERS_CACHE_FILE", "env-cache.json")
	configPath = path
	t.Cleanup(func() { configPath = "" })

	require.NoError(t, serveCmd.ParseFlags([]string{"--addr", ":7000"}))
	c, err := loadConfig(serveCmd)
	require.NoError(t, err)

	require.Equal(t, "from-file.sqlite", c.DBPath)
	require.Equal(t, "env-cache.json", c.CacheFile)
	require.Equal(t, ":7000", c.ListenAddr)
	require.Equal(t, 30*time.Second, c.Timeout)
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	require.NoError(t, scrapeCmd.ParseFlags([]string{"--export-format", "XML"}))
	_, err := loadConfig(scrapeCmd)
	require.Error(t, err)
}

func TestRenderRows(t *testing.T) {
	var buf bytes.Buffer
	renderRows(&buf, "Price", []models.ResultRow{
		{Title: models.Some("Fourth Wing"), Author: "Rebecca Yarros", SortValue: models.Some(14.99)},
		{Title: models.None[string](), Author: "Unknown"},
	})

	out := buf.String()
	require.Contains(t, out, "PRICE")
	require.Contains(t, out, "Fourth Wing")
	require.Contains(t, out, "14.99")
	require.Contains(t, out, "Unknown")
}
