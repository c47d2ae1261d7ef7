// Package store persists instruments, their venues and enrichment, and the
// shared legal entities they reference.
package store

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"

	"github.com/Checker-Finance/refdata/internal/instrument"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// ErrTxDone is returned by a unit of work used after Commit or Rollback.
var ErrTxDone = errors.New("unit of work already finished")

// MemoryRepository keeps everything in process memory. Changes made through a
// unit of work become visible on Commit.
type MemoryRepository struct {
	mu          sync.RWMutex
	instruments map[string]*model.Instrument
	entities    map[string]*model.LegalEntityRef
	commits     int
}

var _ instrument.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		instruments: make(map[string]*model.Instrument),
		entities:    make(map[string]*model.LegalEntityRef),
	}
}

func (r *MemoryRepository) Begin(context.Context) (instrument.UnitOfWork, error) {
	return &memoryUnit{
		repo:        r,
		instruments: make(map[string]*model.Instrument),
		entities:    make(map[string]*model.LegalEntityRef),
	}, nil
}

// Get returns a copy of the committed instrument for isin.
func (r *MemoryRepository) Get(isin string) (*model.Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instruments[isin]
	if !ok {
		return nil, false
	}
	return cloneInstrument(inst), true
}

// Entity returns the committed legal entity for lei.
func (r *MemoryRepository) Entity(lei string) (*model.LegalEntityRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[lei]
	return e, ok
}

// ISINs returns the committed ISINs in sorted order.
func (r *MemoryRepository) ISINs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.instruments))
	for isin := range r.instruments {
		out = append(out, isin)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of committed instruments.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instruments)
}

// EntityCount returns the number of committed legal entities.
func (r *MemoryRepository) EntityCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Commits returns the number of committed units of work.
func (r *MemoryRepository) Commits() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commits
}

type memoryUnit struct {
	repo        *MemoryRepository
	instruments map[string]*model.Instrument
	entities    map[string]*model.LegalEntityRef
	done        bool
}

func (u *memoryUnit) FindByISIN(_ context.Context, isin string) (*model.Instrument, error) {
	if u.done {
		return nil, ErrTxDone
	}
	if inst, ok := u.instruments[isin]; ok {
		return cloneInstrument(inst), nil
	}
	if inst, ok := u.repo.Get(isin); ok {
		return inst, nil
	}
	return nil, &errs.NotFoundError{Kind: "isin", ID: isin}
}

func (u *memoryUnit) ReplaceInstrument(_ context.Context, inst *model.Instrument) error {
	if u.done {
		return ErrTxDone
	}
	if inst == nil || inst.ISIN == "" {
		return &errs.ValidationError{Field: "ISIN", Reason: "required"}
	}
	u.instruments[inst.ISIN] = cloneInstrument(inst)
	return nil
}

func (u *memoryUnit) AttachEnrichment(ctx context.Context, inst *model.Instrument) error {
	if u.done {
		return ErrTxDone
	}
	staged, ok := u.instruments[inst.ISIN]
	if !ok {
		current, err := u.FindByISIN(ctx, inst.ISIN)
		if err != nil {
			return err
		}
		staged = current
		u.instruments[inst.ISIN] = staged
	}
	if inst.GlobalID != nil {
		g := *inst.GlobalID
		staged.GlobalID = &g
	}
	if inst.LegalEntityLEI != "" {
		staged.LegalEntityLEI = inst.LegalEntityLEI
	}
	return nil
}

func (u *memoryUnit) UpsertLegalEntity(_ context.Context, entity *model.LegalEntityRef) error {
	if u.done {
		return ErrTxDone
	}
	if entity == nil || entity.LEI == "" {
		return &errs.ValidationError{Field: "LEI", Reason: "required"}
	}
	u.entities[entity.LEI] = entity
	return nil
}

func (u *memoryUnit) Commit(context.Context) error {
	if u.done {
		return ErrTxDone
	}
	u.done = true
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	maps.Copy(u.repo.instruments, u.instruments)
	maps.Copy(u.repo.entities, u.entities)
	u.repo.commits++
	return nil
}

// Rollback discards staged changes. Calling it after Commit is a no-op.
func (u *memoryUnit) Rollback(context.Context) error {
	u.done = true
	return nil
}

func cloneInstrument(in *model.Instrument) *model.Instrument {
	out := *in
	out.Attributes = maps.Clone(in.Attributes)
	out.Unmapped = maps.Clone(in.Unmapped)
	out.Venues = append([]model.VenueRecord(nil), in.Venues...)
	if in.GlobalID != nil {
		g := *in.GlobalID
		out.GlobalID = &g
	}
	return &out
}
