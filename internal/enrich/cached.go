package enrich

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/cache"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// CachedGlobalIDLookup serves global-id lookups from a Cache. Empty results
// are cached too. A stale entry is served when the inner lookup fails.
type CachedGlobalIDLookup struct {
	inner  GlobalIDLookup
	cache  cache.Cache
	logger *zap.Logger
}

func NewCachedGlobalIDLookup(inner GlobalIDLookup, c cache.Cache, logger *zap.Logger) *CachedGlobalIDLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGlobalIDLookup{inner: inner, cache: c, logger: logger}
}

func (l *CachedGlobalIDLookup) LookupGlobalID(ctx context.Context, isin, mic string) ([]model.GlobalIDMapping, error) {
	key := cache.Key("global_id", isin, mic)

	entry, ok := l.get(ctx, key)
	if ok && entry.Fresh {
		var out []model.GlobalIDMapping
		if err := json.Unmarshal(entry.Data, &out); err == nil {
			return out, nil
		}
		l.logger.Warn("enrich.cache_corrupt", zap.String("isin", isin))
	}

	out, err := l.inner.LookupGlobalID(ctx, isin, mic)
	if err != nil {
		if ok {
			var stale []model.GlobalIDMapping
			if json.Unmarshal(entry.Data, &stale) == nil {
				l.logger.Warn("enrich.serving_stale", zap.String("isin", isin), zap.Error(err))
				return stale, nil
			}
		}
		return nil, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := l.cache.Put(ctx, key, data); err != nil {
			l.logger.Warn("enrich.cache_put_failed", zap.String("isin", isin), zap.Error(err))
		}
	}
	return out, nil
}

func (l *CachedGlobalIDLookup) get(ctx context.Context, key string) (cache.Entry, bool) {
	entry, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("enrich.cache_get_failed", zap.Error(err))
		return cache.Entry{}, false
	}
	return entry, ok
}

// CachedEntityLookup serves entity lookups from a Cache. Not-found answers
// are cached as null.
type CachedEntityLookup struct {
	inner  EntityLookup
	cache  cache.Cache
	logger *zap.Logger
}

func NewCachedEntityLookup(inner EntityLookup, c cache.Cache, logger *zap.Logger) *CachedEntityLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEntityLookup{inner: inner, cache: c, logger: logger}
}

func (l *CachedEntityLookup) LookupEntity(ctx context.Context, lei string) (*model.LegalEntityRef, error) {
	key := cache.Key("legal_entity", lei)

	entry, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("enrich.cache_get_failed", zap.Error(err))
		ok = false
	}
	if ok && entry.Fresh {
		if e, err := decodeEntity(entry.Data, lei); err == nil || errors.Is(err, errs.ErrNotFound) {
			return e, err
		}
	}

	e, lookupErr := l.inner.LookupEntity(ctx, lei)
	switch {
	case lookupErr == nil:
		l.put(ctx, key, e)
		return e, nil
	case errors.Is(lookupErr, errs.ErrNotFound):
		l.put(ctx, key, nil)
		return nil, lookupErr
	case ok:
		if stale, err := decodeEntity(entry.Data, lei); err == nil {
			l.logger.Warn("enrich.serving_stale", zap.String("lei", lei), zap.Error(lookupErr))
			return stale, nil
		}
	}
	return nil, lookupErr
}

func (l *CachedEntityLookup) put(ctx context.Context, key string, e *model.LegalEntityRef) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := l.cache.Put(ctx, key, data); err != nil {
		l.logger.Warn("enrich.cache_put_failed", zap.Error(err))
	}
}

func decodeEntity(data []byte, lei string) (*model.LegalEntityRef, error) {
	var e *model.LegalEntityRef
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &errs.NotFoundError{Kind: "lei", ID: lei}
	}
	return e, nil
}
