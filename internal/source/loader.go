package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/cache"
	"github.com/Checker-Finance/refdata/internal/flatten"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// Source names one input file. An empty Family is derived from the file name.
type Source struct {
	Location string
	Family   flatten.Family
}

// Parse builds a Source from a command-line argument.
func Parse(location string) Source {
	return Source{Location: location, Family: flatten.DetectFamily(Name(location))}
}

// Remote reports whether the location is an http(s) URL.
func (s Source) Remote() bool {
	u, err := url.Parse(s.Location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Name returns the file name part of the location.
func Name(location string) string {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return path.Base(u.Path)
	}
	return filepath.Base(location)
}

func (s Source) family() flatten.Family {
	if s.Family != "" {
		return s.Family
	}
	return flatten.DetectFamily(Name(s.Location))
}

// Loader turns sources into flattened documents. Parsed documents are kept in
// the cache as CSV keyed by location and family.
type Loader struct {
	fetcher *Fetcher
	parser  *flatten.Parser
	cache   cache.Cache
	logger  *zap.Logger
}

// NewLoader constructs a Loader. c may be nil to disable caching; fetcher
// may be nil when only local paths are loaded.
func NewLoader(fetcher *Fetcher, parser *flatten.Parser, c cache.Cache, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = flatten.NewParser(logger)
	}
	return &Loader{fetcher: fetcher, parser: parser, cache: c, logger: logger}
}

// Load returns the flattened document for src. A fresh cache entry is
// decoded without touching the source. A stale entry is served only when
// the source cannot be read.
func (l *Loader) Load(ctx context.Context, src Source) (*model.FlattenedDocument, error) {
	family := src.family()
	name := Name(src.Location)
	key := cache.Key("document", src.Location, string(family))

	entry, cached := l.lookup(ctx, key)
	if cached && entry.Fresh {
		if doc, err := cache.DecodeDocument(entry.Data, name); err == nil {
			l.logger.Debug("source.cache_hit", zap.String("source", name), zap.Int("records", doc.Len()))
			return doc, nil
		}
		l.logger.Warn("source.cache_corrupt", zap.String("source", name))
		cached = false
	}

	doc, err := l.parse(ctx, src, name, family)
	if err != nil {
		if cached && ctx.Err() == nil {
			if stale, decErr := cache.DecodeDocument(entry.Data, name); decErr == nil {
				l.logger.Warn("source.serving_stale", zap.String("source", name), zap.Error(err))
				return stale, nil
			}
		}
		return nil, err
	}

	if l.cache != nil {
		data, err := cache.EncodeDocument(doc)
		if err == nil {
			err = l.cache.Put(ctx, key, data)
		}
		if err != nil {
			l.logger.Warn("source.cache_put_failed", zap.String("source", name), zap.Error(err))
		}
	}
	return doc, nil
}

func (l *Loader) lookup(ctx context.Context, key string) (cache.Entry, bool) {
	if l.cache == nil {
		return cache.Entry{}, false
	}
	entry, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("source.cache_get_failed", zap.Error(err))
		return cache.Entry{}, false
	}
	return entry, ok
}

func (l *Loader) parse(ctx context.Context, src Source, name string, family flatten.Family) (*model.FlattenedDocument, error) {
	if src.Remote() {
		if l.fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", src.Location)
		}
		data, err := l.fetcher.Fetch(ctx, src.Location)
		if err != nil {
			return nil, err
		}
		return l.parser.Parse(ctx, bytes.NewReader(data), name, family)
	}

	f, err := os.Open(src.Location)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(src.Location), ".zip") {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		xmlData, err := Unzip(data, name)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(xmlData)
	}
	return l.parser.Parse(ctx, r, name, family)
}
