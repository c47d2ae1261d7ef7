// Package ingest runs reference-data files through flattening, mapping,
// classification, building, persistence and enrichment.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Checker-Finance/refdata/internal/cfi"
	"github.com/Checker-Finance/refdata/internal/enrich"
	"github.com/Checker-Finance/refdata/internal/fieldmap"
	"github.com/Checker-Finance/refdata/internal/flatten"
	"github.com/Checker-Finance/refdata/internal/instrument"
	"github.com/Checker-Finance/refdata/internal/metrics"
	"github.com/Checker-Finance/refdata/internal/source"
	"github.com/Checker-Finance/refdata/internal/venue"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// DocumentLoader is implemented by source.Loader.
type DocumentLoader interface {
	Load(ctx context.Context, src source.Source) (*model.FlattenedDocument, error)
}

// EventPublisher is implemented by publisher.Publisher.
type EventPublisher interface {
	PublishInstrumentUpserted(ctx context.Context, correlationID uuid.UUID, evt model.InstrumentUpsertedEvent) error
}

// RowMirror is implemented by legacy.FlatTableWriter.
type RowMirror interface {
	MirrorRows(ctx context.Context, file string, rows []model.MappedRecord) error
}

// Pipeline ingests source files. It is safe for concurrent use.
type Pipeline struct {
	loader  DocumentLoader
	mapper  *fieldmap.Mapper
	builder *instrument.Builder
	repo    instrument.Repository
	logger  *zap.Logger

	globalID  enrich.GlobalIDLookup
	entities  enrich.EntityLookup
	publisher EventPublisher
	mirror    RowMirror
	workers   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEnrichment enables the global-id and legal-entity lookups. Either may
// be nil.
func WithEnrichment(globalID enrich.GlobalIDLookup, entities enrich.EntityLookup) Option {
	return func(p *Pipeline) {
		p.globalID = globalID
		p.entities = entities
	}
}

func WithPublisher(pub EventPublisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

func WithMirror(m RowMirror) Option {
	return func(p *Pipeline) { p.mirror = m }
}

// WithWorkers bounds the number of instruments processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func New(loader DocumentLoader, mapper *fieldmap.Mapper, builder *instrument.Builder, repo instrument.Repository, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mapper == nil {
		mapper = fieldmap.NewMapper()
	}
	if builder == nil {
		builder = instrument.NewBuilder(logger)
	}
	p := &Pipeline{
		loader:  loader,
		mapper:  mapper,
		builder: builder,
		repo:    repo,
		logger:  logger,
		workers: 4,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// run carries state shared by all files of one ingestion run.
type run struct {
	id           uuid.UUID
	orchestrator *enrich.Orchestrator
}

func (p *Pipeline) newRun() *run {
	r := &run{id: uuid.New()}
	if p.globalID != nil || p.entities != nil {
		var registry *enrich.Registry
		if p.entities != nil {
			registry = enrich.NewRegistry(p.entities, p.logger)
		}
		r.orchestrator = enrich.New(p.globalID, registry, p.logger)
	}
	return r
}

// IngestFile processes one source. The error is non-nil only when the file as
// a whole failed or ctx was cancelled; instrument failures are in the Report.
func (p *Pipeline) IngestFile(ctx context.Context, src source.Source) (*Report, error) {
	rep := p.ingest(ctx, src, p.newRun())
	return rep, rep.Err
}

// IngestFiles processes sources in order with one shared entity registry.
// A failed file does not stop the run; cancellation does.
func (p *Pipeline) IngestFiles(ctx context.Context, srcs []source.Source) ([]*Report, error) {
	r := p.newRun()
	reports := make([]*Report, 0, len(srcs))
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		rep := p.ingest(ctx, src, r)
		reports = append(reports, rep)
		if rep.Cancelled {
			return reports, rep.Err
		}
	}
	metrics.SetLastIngest(time.Now())
	return reports, nil
}

func (p *Pipeline) ingest(ctx context.Context, src source.Source, r *run) *Report {
	name := source.Name(src.Location)
	family := src.Family
	if family == "" {
		family = flatten.DetectFamily(name)
	}
	rec := &recorder{report: &Report{
		RunID:        r.id,
		Source:       name,
		Family:       family,
		ErrorsByKind: make(map[string]int),
		StartedAt:    time.Now().UTC(),
	}}
	log := p.logger.With(zap.String("source", name), zap.String("run_id", r.id.String()))

	doc, err := p.loader.Load(ctx, source.Source{Location: src.Location, Family: family})
	if errors.Is(err, errs.ErrNoData) {
		rec.update(func(rep *Report) { rep.NoData = true })
		log.Warn("ingest.file_no_data")
		return rec.finish()
	}
	if err != nil {
		rec.update(func(rep *Report) {
			rep.Err = fmt.Errorf("load %s: %w", name, err)
			rep.Cancelled = ctx.Err() != nil
		})
		metrics.IncError("ingest", errs.Kind(err))
		log.Error("ingest.file_failed", zap.String("kind", errs.Kind(err)), zap.Error(err))
		return rec.finish()
	}
	rec.update(func(rep *Report) { rep.Records = doc.Len() })

	if family == flatten.FamilyTransparency {
		log.Info("ingest.transparency_cached", zap.Int("records", doc.Len()))
		return rec.finish()
	}

	rows, rejected := p.mapRows(doc, rec, log)
	if p.mirror != nil {
		if err := p.mirror.MirrorRows(ctx, name, rows); err != nil {
			rec.update(func(rep *Report) { rep.MirrorFailed = true })
			metrics.IncError("ingest", "mirror_failed")
		}
	}

	groups := venue.GroupByISIN(rows)
	rec.update(func(rep *Report) { rep.Instruments = len(groups) + rejected })

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, grp := range groups {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p.processGroup(ctx, r, name, grp, rec, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		rec.update(func(rep *Report) {
			rep.Err = err
			rep.Cancelled = true
		})
		log.Warn("ingest.cancelled", zap.Error(err))
	}

	rep := rec.finish()
	log.Info("ingest.file_completed",
		zap.Int("records", rep.Records),
		zap.Int("instruments", rep.Instruments),
		zap.Int("built", rep.Built),
		zap.Int("overwritten", rep.Overwritten),
		zap.Int("failed", rep.Failed),
		zap.Int("enriched", rep.Enriched),
		zap.Duration("elapsed", rep.FinishedAt.Sub(rep.StartedAt)),
	)
	return rep
}

// mapRows classifies and maps every raw record. Rows whose classification
// fails are dropped; an ISIN that loses all its rows is reported as failed
// and counted in the returned number.
func (p *Pipeline) mapRows(doc *model.FlattenedDocument, rec *recorder, log *zap.Logger) ([]model.MappedRecord, int) {
	rows := make([]model.MappedRecord, 0, len(doc.Records))
	mapped := make(map[string]bool)
	rejected := make(map[string]error)
	var order []string

	for _, raw := range doc.Records {
		isin := fieldmap.ISIN(raw)
		if _, seen := mapped[isin]; !seen {
			if _, seen := rejected[isin]; !seen {
				order = append(order, isin)
			}
		}

		cls, err := cfi.Classify(fieldmap.CFICode(raw))
		if err == nil {
			var row model.MappedRecord
			row, err = p.mapper.Map(raw, fieldmap.CategoryFor(cls))
			if err == nil {
				row[model.FieldCFICode] = cls.Code
				rows = append(rows, row)
				mapped[isin] = true
				continue
			}
		}
		if _, ok := rejected[isin]; !ok {
			rejected[isin] = err
		}
		log.Warn("ingest.row_rejected", zap.String("isin", isin), zap.Error(err))
	}

	failed := 0
	for _, isin := range order {
		if err, ok := rejected[isin]; ok && !mapped[isin] {
			rec.fail(isin, "classify", err)
			rec.outcome(OutcomeFailed)
			metrics.IncInstrument(string(OutcomeFailed))
			failed++
		}
	}
	return rows, failed
}

func (p *Pipeline) processGroup(ctx context.Context, r *run, file string, grp venue.Group, rec *recorder, log *zap.Logger) {
	log = log.With(zap.String("isin", grp.ISIN))

	inst, overwritten, stage, err := p.build(ctx, grp)
	if err != nil && ctx.Err() != nil {
		// interrupted, reported as a cancelled run
		return
	}
	if err != nil {
		rec.fail(grp.ISIN, stage, err)
		rec.outcome(OutcomeFailed)
		metrics.IncInstrument(string(OutcomeFailed))
		metrics.IncError("ingest", errs.Kind(err))
		log.Warn("ingest.instrument_failed", zap.String("stage", stage), zap.String("kind", errs.Kind(err)), zap.Error(err))
		return
	}
	outcome := OutcomeBuilt
	if overwritten {
		outcome = OutcomeOverwritten
	}
	rec.outcome(outcome)
	metrics.IncInstrument(string(outcome))

	enrichState := "skipped"
	if r.orchestrator != nil {
		res := r.orchestrator.Enrich(ctx, inst, inst.Venues)
		enrichState = string(res.State)
		rec.update(func(rep *Report) {
			rep.Enriched++
			if res.Summary.Partial() {
				rep.PartialEnriched++
			}
			if res.EntityCreated {
				rep.EntitiesCreated++
			}
		})
		if err := res.Summary.GlobalID.Err; err != nil {
			rec.warn(grp.ISIN, "global_id", err)
		}
		if err := res.Summary.Entity.Err; err != nil {
			rec.warn(grp.ISIN, "entity", err)
		}
		if err := p.attach(ctx, inst, res); err != nil {
			rec.update(func(rep *Report) { rep.AttachFailed++ })
			rec.warn(grp.ISIN, "attach", err)
			log.Error("ingest.attach_failed", zap.Error(err))
		}
	}

	if p.publisher != nil {
		evt := model.InstrumentUpsertedEvent{
			InstrumentID: inst.ID,
			ISIN:         inst.ISIN,
			Type:         inst.Type,
			CFICode:      inst.CFICode,
			VenueCount:   len(inst.Venues),
			Overwritten:  overwritten,
			IssuerLEI:    inst.IssuerLEI,
			Enrichment:   enrichState,
			SourceFile:   file,
		}
		if inst.GlobalID != nil {
			evt.FIGI = inst.GlobalID.FIGI
		}
		if err := p.publisher.PublishInstrumentUpserted(ctx, r.id, evt); err != nil {
			rec.update(func(rep *Report) { rep.PublishFailed++ })
			rec.warn(grp.ISIN, "publish", err)
		} else {
			rec.update(func(rep *Report) { rep.Published++ })
		}
	}
}

// build aggregates, classifies, builds and persists one group in a single
// unit of work. stage names the step that failed.
func (p *Pipeline) build(ctx context.Context, grp venue.Group) (inst *model.Instrument, overwritten bool, stage string, err error) {
	primary, venues, err := venue.Aggregate(grp.Rows)
	if err != nil {
		return nil, false, "aggregate", err
	}
	cls, err := cfi.Classify(primary.String(model.FieldCFICode))
	if err != nil {
		return nil, false, "classify", err
	}

	uow, err := p.repo.Begin(ctx)
	if err != nil {
		return nil, false, "persist", err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	existing, err := uow.FindByISIN(ctx, grp.ISIN)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		existing = nil
	case err != nil:
		return nil, false, "persist", err
	}

	inst, err = p.builder.Build(primary, venues, cls, existing)
	if err != nil {
		return nil, false, "build", err
	}
	if err := uow.ReplaceInstrument(ctx, inst); err != nil {
		return nil, false, "persist", err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, false, "persist", err
	}
	return inst, existing != nil, "", nil
}

// attach persists the enrichment of an already committed instrument. The
// entity is upserted with every instrument referencing it so the link never
// points at a row another worker has not committed yet.
func (p *Pipeline) attach(ctx context.Context, inst *model.Instrument, res enrich.Result) error {
	if inst.GlobalID == nil && res.Entity == nil {
		return nil
	}
	uow, err := p.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	if res.Entity != nil {
		if err := uow.UpsertLegalEntity(ctx, res.Entity); err != nil {
			return err
		}
	}
	if err := uow.AttachEnrichment(ctx, inst); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
