package enrich

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// sharedLookupTimeout bounds a collapsed lookup once it no longer follows the
// first caller's cancellation.
const sharedLookupTimeout = 30 * time.Second

// Registry resolves each legal entity at most once per run and hands out the
// same shared reference to every instrument that points at it. Concurrent
// lookups of the same LEI are collapsed into one call.
type Registry struct {
	lookup EntityLookup
	logger *zap.Logger

	mu       sync.RWMutex
	entities map[string]*model.LegalEntityRef
	missing  map[string]error
	group    singleflight.Group
}

func NewRegistry(lookup EntityLookup, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		lookup:   lookup,
		logger:   logger,
		entities: make(map[string]*model.LegalEntityRef),
		missing:  make(map[string]error),
	}
}

// Resolve returns the entity for lei. created is true only for the call that
// first resolved it, so callers persist each entity once.
func (r *Registry) Resolve(ctx context.Context, lei string) (entity *model.LegalEntityRef, created bool, err error) {
	r.mu.RLock()
	if e, ok := r.entities[lei]; ok {
		r.mu.RUnlock()
		return e, false, nil
	}
	if err, ok := r.missing[lei]; ok {
		r.mu.RUnlock()
		return nil, false, err
	}
	r.mu.RUnlock()

	// Only the caller whose closure runs performs the lookup; waiters on the
	// same key share its result but not its created flag.
	ran := false
	v, err, _ := r.group.Do(lei, func() (any, error) {
		r.mu.RLock()
		if e, ok := r.entities[lei]; ok {
			r.mu.RUnlock()
			return e, nil
		}
		r.mu.RUnlock()

		// Waiters share this call, so the first caller cancelling must not
		// fail the lookup for the rest.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		e, err := r.lookup.LookupEntity(lookupCtx, lei)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				r.mu.Lock()
				r.missing[lei] = err
				r.mu.Unlock()
			}
			return nil, err
		}
		if e == nil {
			err := &errs.NotFoundError{Kind: "lei", ID: lei}
			r.mu.Lock()
			r.missing[lei] = err
			r.mu.Unlock()
			return nil, err
		}

		r.mu.Lock()
		r.entities[lei] = e
		r.mu.Unlock()
		r.logger.Debug("enrich.entity_registered", zap.String("lei", lei))
		ran = true
		return e, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*model.LegalEntityRef), ran, nil
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
