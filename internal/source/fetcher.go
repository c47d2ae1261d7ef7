// Package source loads reference-data source files from URLs or local paths
// and turns them into flattened documents, going through the file cache.
package source

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/httpclient"
	"github.com/Checker-Finance/refdata/internal/rate"
	"github.com/Checker-Finance/refdata/pkg/errs"
)

const ServiceName = "source"

var zipMagic = []byte("PK\x03\x04")

// FetcherConfig holds download settings.
type FetcherConfig struct {
	Timeout  time.Duration
	RetryMax int
}

// Fetcher downloads source files.
type Fetcher struct {
	logger *zap.Logger
	exec   *httpclient.Executor
}

// NewFetcher constructs a Fetcher. Downloads share the "source" rate limit.
func NewFetcher(cfg FetcherConfig, logger *zap.Logger, rateMgr *rate.Manager) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, ServiceName, func(status int, _ []byte) error {
		if status == http.StatusNotFound {
			return &errs.NotFoundError{Kind: "source"}
		}
		return fmt.Errorf("source download returned %d", status)
	})
	return &Fetcher{logger: logger, exec: exec}
}

// Fetch downloads url. Zip archives are unpacked to their first .xml entry.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	body, err := f.exec.Do(ctx, req, ServiceName)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			nf.ID = url
		}
		return nil, err
	}

	f.logger.Info("source.downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if isZip(url, body) {
		return Unzip(body, url)
	}
	return body, nil
}

// Unzip returns the contents of the first .xml entry of a zip archive.
func Unzip(data []byte, source string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &errs.ParseError{Source: source, Err: fmt.Errorf("open archive: %w", err)}
	}
	for _, entry := range zr.File {
		if !strings.EqualFold(path.Ext(entry.Name), ".xml") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, &errs.ParseError{Source: source, Err: fmt.Errorf("open %s: %w", entry.Name, err)}
		}
		defer rc.Close()
		out, err := io.ReadAll(rc)
		if err != nil {
			return nil, &errs.ParseError{Source: source, Err: fmt.Errorf("read %s: %w", entry.Name, err)}
		}
		return out, nil
	}
	return nil, &errs.ParseError{Source: source, Err: fmt.Errorf("archive has no .xml entry")}
}

func isZip(name string, data []byte) bool {
	return strings.EqualFold(path.Ext(name), ".zip") || bytes.HasPrefix(data, zipMagic)
}
