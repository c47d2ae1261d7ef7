// Package enrich attaches global identifiers and legal-entity references to
// built instruments.
package enrich

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// GlobalIDLookup resolves instrument identifiers. An empty result is not an
// error. mic may be empty.
type GlobalIDLookup interface {
	LookupGlobalID(ctx context.Context, isin, mic string) ([]model.GlobalIDMapping, error)
}

// EntityLookup resolves a legal entity by LEI. Unknown LEIs return an error
// matching errs.ErrNotFound.
type EntityLookup interface {
	LookupEntity(ctx context.Context, lei string) (*model.LegalEntityRef, error)
}

// Result is the outcome of one enrichment.
type Result struct {
	Instrument *model.Instrument
	// Entity is the shared entity linked through Instrument.LegalEntityLEI.
	Entity *model.LegalEntityRef
	// EntityCreated is true when this enrichment first resolved Entity.
	EntityCreated bool
	State         State
	History       []State
	Summary       Summary
}

// Orchestrator runs the global-id and entity sub-lookups. Either lookup may
// be nil, in which case its step is skipped.
type Orchestrator struct {
	globalID GlobalIDLookup
	registry *Registry
	logger   *zap.Logger
}

func New(globalID GlobalIDLookup, registry *Registry, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{globalID: globalID, registry: registry, logger: logger}
}

// Enrich mutates inst in place. Failures of either sub-lookup are reported in
// the Summary and never remove fields already present on inst.
func (o *Orchestrator) Enrich(ctx context.Context, inst *model.Instrument, venues []model.VenueRecord) Result {
	m := newMachine()
	res := Result{Instrument: inst}

	res.Summary.GlobalID = o.enrichGlobalID(ctx, m, inst, venues)
	res.Summary.FIGIChanged = res.Summary.GlobalID.Changed

	var entity SubResult
	entity, res.Entity, res.EntityCreated = o.enrichEntity(ctx, m, inst)
	res.Summary.Entity = entity
	res.Summary.LEIChanged = entity.Changed

	m.to(StateComplete)
	res.State = m.current
	res.History = m.history

	o.logger.Debug("enrich.completed",
		zap.String("isin", inst.ISIN),
		zap.String("global_id", string(res.Summary.GlobalID.Status)),
		zap.String("entity", string(res.Summary.Entity.Status)),
		zap.Bool("figi_changed", res.Summary.FIGIChanged),
		zap.Bool("lei_changed", res.Summary.LEIChanged),
	)
	return res
}

func (o *Orchestrator) enrichGlobalID(ctx context.Context, m *machine, inst *model.Instrument, venues []model.VenueRecord) SubResult {
	if o.globalID == nil || inst.ISIN == "" {
		return SubResult{Status: StatusSkipped}
	}
	m.to(StateGlobalIDPending)

	candidates, err := o.searchGlobalID(ctx, inst.ISIN, primaryMIC(venues))
	if err == nil && len(candidates) == 0 {
		err = &errs.NotFoundError{Kind: "figi", ID: inst.ISIN}
	}
	if err != nil {
		m.to(StateGlobalIDFailed)
		o.logger.Warn("enrich.global_id_failed",
			zap.String("isin", inst.ISIN),
			zap.String("kind", errs.Kind(err)),
			zap.Error(err))
		return SubResult{Status: StatusFailed, Err: err}
	}

	if len(candidates) > 1 {
		o.logger.Warn("enrich.global_id_ambiguous",
			zap.String("isin", inst.ISIN),
			zap.Int("candidates", len(candidates)),
			zap.String("chosen", candidates[0].FIGI))
	}
	chosen := candidates[0]
	changed := inst.GlobalID == nil || inst.GlobalID.FIGI != chosen.FIGI
	inst.GlobalID = &chosen
	m.to(StateGlobalIDDone)
	return SubResult{Status: StatusSucceeded, Changed: changed}
}

// searchGlobalID queries with the venue MIC first and falls back to an
// unrestricted query when that yields nothing. Errors are not retried
// through the fallback.
func (o *Orchestrator) searchGlobalID(ctx context.Context, isin, mic string) ([]model.GlobalIDMapping, error) {
	if mic != "" {
		candidates, err := o.globalID.LookupGlobalID(ctx, isin, mic)
		if err != nil || len(candidates) > 0 {
			return candidates, err
		}
		o.logger.Debug("enrich.global_id_fallback", zap.String("isin", isin), zap.String("mic", mic))
	}
	return o.globalID.LookupGlobalID(ctx, isin, "")
}

func (o *Orchestrator) enrichEntity(ctx context.Context, m *machine, inst *model.Instrument) (SubResult, *model.LegalEntityRef, bool) {
	if o.registry == nil || inst.IssuerLEI == "" {
		return SubResult{Status: StatusSkipped}, nil, false
	}
	m.to(StateEntityPending)

	entity, created, err := o.registry.Resolve(ctx, inst.IssuerLEI)
	if err != nil {
		m.to(StateEntityFailed)
		level := o.logger.Warn
		if errors.Is(err, errs.ErrNotFound) {
			level = o.logger.Info
		}
		level("enrich.entity_failed",
			zap.String("isin", inst.ISIN),
			zap.String("lei", inst.IssuerLEI),
			zap.String("kind", errs.Kind(err)),
			zap.Error(err))
		return SubResult{Status: StatusFailed, Err: err}, nil, false
	}

	changed := inst.LegalEntityLEI != entity.LEI
	inst.LegalEntityLEI = entity.LEI
	m.to(StateEntityDone)
	return SubResult{Status: StatusSucceeded, Changed: changed}, entity, created
}

func primaryMIC(venues []model.VenueRecord) string {
	for _, v := range venues {
		if v.VenueID != "" {
			return v.VenueID
		}
	}
	return ""
}
