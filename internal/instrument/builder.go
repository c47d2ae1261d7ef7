// Package instrument builds canonical instruments from aggregated rows.
package instrument

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/cfi"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// Builder turns a primary record and its venues into an Instrument.
// It is safe for concurrent use.
type Builder struct {
	logger    *zap.Logger
	now       func() time.Time
	overrides map[string]model.InstrumentType
}

// Option configures a Builder.
type Option func(*Builder)

// WithTypeOverrides forces the declared type for the given ISINs instead of
// the type derived from the CFI code.
func WithTypeOverrides(m map[string]model.InstrumentType) Option {
	return func(b *Builder) {
		for k, v := range m {
			b.overrides[k] = v
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		logger:    logger,
		now:       time.Now,
		overrides: make(map[string]model.InstrumentType),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

const isinLength = 12

// Build creates the instrument. When existing is non-nil the result is a
// full replacement: a new id, the given venues only, and no enrichment.
func (b *Builder) Build(
	primary model.MappedRecord,
	venues []model.VenueRecord,
	cls cfi.Classification,
	existing *model.Instrument,
) (*model.Instrument, error) {
	isin := primary.String(model.FieldISIN)
	if isin == "" {
		return nil, &errs.ValidationError{Field: "ISIN", Reason: "primary record has no identifier"}
	}
	if len(isin) != isinLength {
		return nil, &errs.ValidationError{Field: "ISIN", Value: isin, Reason: "must be 12 characters"}
	}

	typ := cls.BusinessType
	if o, ok := b.overrides[isin]; ok {
		if !cfi.IsConsistent(cls.Code, o) {
			b.logger.Info("instrument.type_overridden",
				zap.String("isin", isin),
				zap.String("cfi", cls.Code),
				zap.String("derived", string(cls.BusinessType)),
				zap.String("declared", string(o)),
			)
		}
		typ = o
	}

	now := b.now().UTC()
	inst := &model.Instrument{
		ID:         uuid.New(),
		ISIN:       isin,
		Type:       typ,
		FullName:   primary.String(model.FieldFullName),
		ShortName:  primary.String(model.FieldShortName),
		Currency:   primary.String(model.FieldCurrency),
		CFICode:    cls.Code,
		IssuerLEI:  primary.String(model.FieldIssuerLEI),
		Attributes: make(map[string]any),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var unmapped []string
	for name, v := range primary {
		if _, ok := structural[name]; ok {
			continue
		}
		if isEmpty(v) {
			continue
		}
		if Recognized(typ, name) {
			inst.Attributes[name] = v
			continue
		}
		if inst.Unmapped == nil {
			inst.Unmapped = make(map[string]any)
		}
		inst.Unmapped[name] = v
		unmapped = append(unmapped, name)
	}
	if len(unmapped) > 0 {
		sort.Strings(unmapped)
		b.logger.Warn("instrument.unmapped_fields",
			zap.String("isin", isin),
			zap.String("type", string(typ)),
			zap.Strings("fields", unmapped),
		)
	}

	inst.Venues = make([]model.VenueRecord, len(venues))
	for i, v := range venues {
		v.ID = uuid.New()
		v.InstrumentID = inst.ID
		inst.Venues[i] = v
	}

	if existing != nil {
		b.logger.Info("instrument.conflict_overwritten",
			zap.String("isin", isin),
			zap.String("previous_id", existing.ID.String()),
			zap.String("new_id", inst.ID.String()),
			zap.Int("previous_venues", len(existing.Venues)),
			zap.Int("venues", len(inst.Venues)),
		)
	}
	return inst, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
