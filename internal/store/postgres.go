package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/instrument"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// Schema creates the tables used by PGRepository. Venue and global-id rows
// cascade with their instrument.
const Schema = `
CREATE SCHEMA IF NOT EXISTS refdata;

CREATE TABLE IF NOT EXISTS refdata.legal_entity (
	lei           TEXT PRIMARY KEY,
	legal_name    TEXT NOT NULL,
	jurisdiction  TEXT,
	status        TEXT,
	legal_form    TEXT,
	registration  JSONB NOT NULL DEFAULT '{}',
	addresses     JSONB NOT NULL DEFAULT '[]',
	retrieved_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS refdata.instrument (
	id                UUID PRIMARY KEY,
	isin              TEXT NOT NULL UNIQUE,
	type              TEXT NOT NULL,
	full_name         TEXT NOT NULL,
	short_name        TEXT,
	currency          TEXT,
	cfi_code          TEXT NOT NULL,
	issuer_lei        TEXT,
	legal_entity_lei  TEXT REFERENCES refdata.legal_entity (lei),
	attributes        JSONB NOT NULL DEFAULT '{}',
	unmapped          JSONB NOT NULL DEFAULT '{}',
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS refdata.venue (
	id                          UUID PRIMARY KEY,
	instrument_id               UUID NOT NULL REFERENCES refdata.instrument (id) ON DELETE CASCADE,
	venue_id                    TEXT NOT NULL,
	first_trade_date            TIMESTAMPTZ,
	termination_date            TIMESTAMPTZ,
	admission_approval_date     TIMESTAMPTZ,
	request_for_admission_date  TIMESTAMPTZ,
	competent_authority         TEXT,
	issuer_request              BOOLEAN NOT NULL DEFAULT FALSE,
	full_name                   TEXT,
	cfi_code                    TEXT,
	currency                    TEXT
);

CREATE INDEX IF NOT EXISTS venue_instrument_idx ON refdata.venue (instrument_id);

CREATE TABLE IF NOT EXISTS refdata.global_id (
	instrument_id     UUID PRIMARY KEY REFERENCES refdata.instrument (id) ON DELETE CASCADE,
	figi              TEXT NOT NULL,
	composite_figi    TEXT,
	share_class_figi  TEXT,
	ticker            TEXT,
	security_type     TEXT,
	market_sector     TEXT,
	name              TEXT,
	exchange_code     TEXT
);
`

// PGPoolConfig tunes the connection pool. Zero values keep pgx defaults.
type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewPool parses pgURL, applies cfg and connects.
func NewPool(ctx context.Context, pgURL string, cfg PGPoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

// PGRepository stores instruments in Postgres. Each unit of work is one
// transaction.
type PGRepository struct {
	PG     *pgxpool.Pool
	logger *zap.Logger
}

var _ instrument.Repository = (*PGRepository)(nil)

func NewPGRepository(pool *pgxpool.Pool, logger *zap.Logger) *PGRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGRepository{PG: pool, logger: logger}
}

// Migrate applies Schema.
func (r *PGRepository) Migrate(ctx context.Context) error {
	if r.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	if _, err := r.PG.Exec(ctx, Schema); err != nil {
		r.logger.Error("store.pg.migrate_failed", zap.Error(err))
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (r *PGRepository) Begin(ctx context.Context) (instrument.UnitOfWork, error) {
	if r.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	tx, err := r.PG.Begin(ctx)
	if err != nil {
		r.logger.Error("store.pg.begin_failed", zap.Error(err))
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &pgUnit{tx: tx, logger: r.logger}, nil
}

func (r *PGRepository) HealthCheck(ctx context.Context) error {
	if r.PG == nil {
		return fmt.Errorf("postgres not initialized")
	}
	if err := r.PG.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (r *PGRepository) Close() error {
	if r.PG != nil {
		r.PG.Close()
	}
	return nil
}

type pgUnit struct {
	tx     pgx.Tx
	logger *zap.Logger
}

const selectInstrument = `
	SELECT i.id, i.isin, i.type, i.full_name, COALESCE(i.short_name, ''), COALESCE(i.currency, ''),
	       i.cfi_code, COALESCE(i.issuer_lei, ''), COALESCE(i.legal_entity_lei, ''),
	       i.attributes, i.unmapped, i.created_at, i.updated_at,
	       g.figi, g.composite_figi, g.share_class_figi, g.ticker, g.security_type,
	       g.market_sector, g.name, g.exchange_code
	FROM refdata.instrument i
	LEFT JOIN refdata.global_id g ON g.instrument_id = i.id
	WHERE i.isin = $1`

func (u *pgUnit) FindByISIN(ctx context.Context, isin string) (*model.Instrument, error) {
	var (
		inst               model.Instrument
		typ                string
		attrs, unmapped    []byte
		figi, composite    *string
		shareClass, ticker *string
		secType, sector    *string
		name, exch         *string
	)
	err := u.tx.QueryRow(ctx, selectInstrument, isin).Scan(
		&inst.ID, &inst.ISIN, &typ, &inst.FullName, &inst.ShortName, &inst.Currency,
		&inst.CFICode, &inst.IssuerLEI, &inst.LegalEntityLEI,
		&attrs, &unmapped, &inst.CreatedAt, &inst.UpdatedAt,
		&figi, &composite, &shareClass, &ticker, &secType, &sector, &name, &exch,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errs.NotFoundError{Kind: "isin", ID: isin}
	}
	if err != nil {
		u.logger.Error("store.pg.find_instrument_failed", zap.String("isin", isin), zap.Error(err))
		return nil, err
	}
	inst.Type = model.InstrumentType(typ)
	if err := decodeJSONMap(attrs, &inst.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	if err := decodeJSONMap(unmapped, &inst.Unmapped); err != nil {
		return nil, fmt.Errorf("decode unmapped: %w", err)
	}
	if figi != nil {
		inst.GlobalID = &model.GlobalIDMapping{
			FIGI:          *figi,
			CompositeFIGI: deref(composite),
			ShareClassID:  deref(shareClass),
			Ticker:        deref(ticker),
			SecurityType:  deref(secType),
			MarketSector:  deref(sector),
			Name:          deref(name),
			ExchangeCode:  deref(exch),
		}
	}

	venues, err := u.venues(ctx, inst.ID.String())
	if err != nil {
		return nil, err
	}
	inst.Venues = venues
	return &inst, nil
}

func (u *pgUnit) venues(ctx context.Context, instrumentID string) ([]model.VenueRecord, error) {
	rows, err := u.tx.Query(ctx, `
		SELECT id, instrument_id, venue_id, first_trade_date, termination_date,
		       admission_approval_date, request_for_admission_date,
		       COALESCE(competent_authority, ''), issuer_request,
		       COALESCE(full_name, ''), COALESCE(cfi_code, ''), COALESCE(currency, '')
		FROM refdata.venue
		WHERE instrument_id = $1
		ORDER BY venue_id`, instrumentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VenueRecord
	for rows.Next() {
		var v model.VenueRecord
		if err := rows.Scan(&v.ID, &v.InstrumentID, &v.VenueID, &v.FirstTradeDate, &v.TerminationDate,
			&v.AdmissionApprovalDate, &v.RequestForAdmissionDate, &v.CompetentAuthority, &v.IssuerRequest,
			&v.FullName, &v.CFICode, &v.Currency); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ReplaceInstrument deletes any instrument with the same ISIN, which cascades
// to its venues and global id, then inserts inst and its venues.
func (u *pgUnit) ReplaceInstrument(ctx context.Context, inst *model.Instrument) error {
	if inst == nil || inst.ISIN == "" {
		return &errs.ValidationError{Field: "ISIN", Reason: "required"}
	}
	attrs, err := encodeJSONMap(inst.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	unmapped, err := encodeJSONMap(inst.Unmapped)
	if err != nil {
		return fmt.Errorf("encode unmapped: %w", err)
	}

	if _, err := u.tx.Exec(ctx, `DELETE FROM refdata.instrument WHERE isin = $1`, inst.ISIN); err != nil {
		u.logger.Error("store.pg.delete_instrument_failed", zap.String("isin", inst.ISIN), zap.Error(err))
		return err
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO refdata.instrument (
			id, isin, type, full_name, short_name, currency, cfi_code, issuer_lei,
			attributes, unmapped, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inst.ID, inst.ISIN, string(inst.Type), inst.FullName, nullable(inst.ShortName), nullable(inst.Currency),
		inst.CFICode, nullable(inst.IssuerLEI), attrs, unmapped, inst.CreatedAt, inst.UpdatedAt)
	for _, v := range inst.Venues {
		batch.Queue(`
			INSERT INTO refdata.venue (
				id, instrument_id, venue_id, first_trade_date, termination_date,
				admission_approval_date, request_for_admission_date, competent_authority,
				issuer_request, full_name, cfi_code, currency
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			v.ID, inst.ID, v.VenueID, v.FirstTradeDate, v.TerminationDate,
			v.AdmissionApprovalDate, v.RequestForAdmissionDate, nullable(v.CompetentAuthority),
			v.IssuerRequest, nullable(v.FullName), nullable(v.CFICode), nullable(v.Currency))
	}

	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		u.logger.Error("store.pg.insert_instrument_failed",
			zap.String("isin", inst.ISIN),
			zap.Int("venues", len(inst.Venues)),
			zap.Error(err))
		return err
	}
	return nil
}

func (u *pgUnit) AttachEnrichment(ctx context.Context, inst *model.Instrument) error {
	if inst.GlobalID != nil {
		g := inst.GlobalID
		_, err := u.tx.Exec(ctx, `
			INSERT INTO refdata.global_id (
				instrument_id, figi, composite_figi, share_class_figi, ticker,
				security_type, market_sector, name, exchange_code
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (instrument_id) DO UPDATE SET
				figi = EXCLUDED.figi,
				composite_figi = EXCLUDED.composite_figi,
				share_class_figi = EXCLUDED.share_class_figi,
				ticker = EXCLUDED.ticker,
				security_type = EXCLUDED.security_type,
				market_sector = EXCLUDED.market_sector,
				name = EXCLUDED.name,
				exchange_code = EXCLUDED.exchange_code`,
			inst.ID, g.FIGI, nullable(g.CompositeFIGI), nullable(g.ShareClassID), nullable(g.Ticker),
			nullable(g.SecurityType), nullable(g.MarketSector), nullable(g.Name), nullable(g.ExchangeCode))
		if err != nil {
			u.logger.Error("store.pg.upsert_global_id_failed", zap.String("isin", inst.ISIN), zap.Error(err))
			return err
		}
	}
	if inst.LegalEntityLEI != "" {
		_, err := u.tx.Exec(ctx, `
			UPDATE refdata.instrument SET legal_entity_lei = $2, updated_at = NOW()
			WHERE id = $1`, inst.ID, inst.LegalEntityLEI)
		if err != nil {
			u.logger.Error("store.pg.link_entity_failed", zap.String("isin", inst.ISIN), zap.Error(err))
			return err
		}
	}
	return nil
}

func (u *pgUnit) UpsertLegalEntity(ctx context.Context, e *model.LegalEntityRef) error {
	if e == nil || e.LEI == "" {
		return &errs.ValidationError{Field: "LEI", Reason: "required"}
	}
	reg, err := json.Marshal(e.Registration)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	addrs, err := json.Marshal(e.Addresses)
	if err != nil {
		return fmt.Errorf("encode addresses: %w", err)
	}
	_, err = u.tx.Exec(ctx, `
		INSERT INTO refdata.legal_entity (
			lei, legal_name, jurisdiction, status, legal_form, registration, addresses, retrieved_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lei) DO UPDATE SET
			legal_name = EXCLUDED.legal_name,
			jurisdiction = EXCLUDED.jurisdiction,
			status = EXCLUDED.status,
			legal_form = EXCLUDED.legal_form,
			registration = EXCLUDED.registration,
			addresses = EXCLUDED.addresses,
			retrieved_at = EXCLUDED.retrieved_at`,
		e.LEI, e.LegalName, nullable(e.Jurisdiction), nullable(e.Status), nullable(e.LegalForm),
		reg, addrs, e.RetrievedAt)
	if err != nil {
		u.logger.Error("store.pg.upsert_entity_failed", zap.String("lei", e.LEI), zap.Error(err))
	}
	return err
}

func (u *pgUnit) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return ErrTxDone
		}
		u.logger.Error("store.pg.commit_failed", zap.Error(err))
		return err
	}
	return nil
}

// Rollback is a no-op after Commit.
func (u *pgUnit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.logger.Warn("store.pg.rollback_failed", zap.Error(err))
		return err
	}
	return nil
}

func encodeJSONMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func decodeJSONMap(data []byte, dst *map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	if len(*dst) == 0 {
		*dst = nil
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
