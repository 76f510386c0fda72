// Package fsutil holds small file helpers shared by the cache and exporters.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the parent directory of filename if it is missing.
func EnsureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
