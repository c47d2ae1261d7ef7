package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/metrics"
)

const fileSuffix = ".cache"

// FileCache keeps one file per key under Dir. Writes go to a temp file in
// the same directory and are renamed into place.
type FileCache struct {
	dir    string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewFileCache(dir string, ttl time.Duration, logger *zap.Logger) (*FileCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now, logger: logger}, nil
}

func (c *FileCache) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(c.dir, key+fileSuffix), nil
}

func (c *FileCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	p, err := c.path(key)
	if err != nil {
		return Entry{}, false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.IncCache("file", "miss")
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("stat cache entry: %w", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}

	e := Entry{Data: data, StoredAt: info.ModTime(), Fresh: fresh(info.ModTime(), c.now(), c.ttl)}
	if e.Fresh {
		metrics.IncCache("file", "hit")
	} else {
		metrics.IncCache("file", "stale")
	}
	return e, true, nil
}

func (c *FileCache) Put(ctx context.Context, key string, data []byte) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

// Prune removes entries last written more than olderThan ago and returns
// how many were removed. Leftover temp files are removed as well.
func (c *FileCache) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("list cache dir: %w", err)
	}
	cutoff := c.now().Add(-olderThan)
	removed := 0
	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		name := de.Name()
		if de.IsDir() || !(strings.HasSuffix(name, fileSuffix) || strings.HasSuffix(name, ".tmp")) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache.prune_failed", zap.String("file", name), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
