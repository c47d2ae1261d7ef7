package legacy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/pkg/model"
)

// Batcher is the subset of pgxpool.Pool used by the writer.
type Batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ Batcher = (*pgxpool.Pool)(nil)

// FlatTableWriter mirrors mapped rows into the legacy refdata.t_instrument_flat
// table consumed by downstream reporting. One row per (ISIN, venue).
type FlatTableWriter struct {
	db     Batcher
	logger *zap.Logger
	source string
}

// NewFlatTableWriter constructs a writer for the legacy flat table.
// source identifies the process writing the rows (e.g. "refdata-ingest").
func NewFlatTableWriter(db Batcher, logger *zap.Logger, source string) *FlatTableWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlatTableWriter{
		db:     db,
		logger: logger,
		source: source,
	}
}

const upsertFlatRow = `
	INSERT INTO refdata.t_instrument_flat (
		s_isin,
		s_venue,
		s_cfi_code,
		s_full_name,
		s_currency,
		s_issuer_lei,
		s_file,
		s_source,
		js_row,
		dt_updated
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	ON CONFLICT (s_isin, s_venue)
	DO UPDATE SET
		s_cfi_code = EXCLUDED.s_cfi_code,
		s_full_name = EXCLUDED.s_full_name,
		s_currency = EXCLUDED.s_currency,
		s_issuer_lei = EXCLUDED.s_issuer_lei,
		s_file = EXCLUDED.s_file,
		s_source = EXCLUDED.s_source,
		js_row = EXCLUDED.js_row,
		dt_updated = EXCLUDED.dt_updated;
`

// MirrorRows upserts every row with an ISIN. Rows without one are skipped.
func (w *FlatTableWriter) MirrorRows(ctx context.Context, file string, rows []model.MappedRecord) error {
	if w.db == nil || len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		isin := r.String(model.FieldISIN)
		if isin == "" {
			continue
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode row %s: %w", isin, err)
		}
		batch.Queue(upsertFlatRow,
			isin,                              // s_isin
			r.String(model.FieldTradingVenue), // s_venue
			r.String(model.FieldCFICode),      // s_cfi_code
			r.String(model.FieldFullName),     // s_full_name
			r.String(model.FieldCurrency),     // s_currency
			r.String(model.FieldIssuerLEI),    // s_issuer_lei
			file,                              // s_file
			w.source,                          // s_source
			payload,                           // js_row
		)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := w.db.SendBatch(ctx, batch).Close(); err != nil {
		w.logger.Error("legacy.flat_sync_failed",
			zap.String("file", file),
			zap.Int("rows", batch.Len()),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("legacy.flat_sync_upsert",
		zap.String("file", file),
		zap.Int("rows", batch.Len()),
	)
	return nil
}
