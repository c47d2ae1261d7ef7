package instrument

import (
	"context"

	"github.com/Checker-Finance/refdata/pkg/model"
)

// UnitOfWork is one transaction against the instrument store. Every call
// after Commit or Rollback fails.
type UnitOfWork interface {
	// FindByISIN returns errs.ErrNotFound when no instrument carries isin.
	FindByISIN(ctx context.Context, isin string) (*model.Instrument, error)

	// ReplaceInstrument stores inst and its venues, removing any prior
	// instrument with the same ISIN together with its dependent rows.
	ReplaceInstrument(ctx context.Context, inst *model.Instrument) error

	// AttachEnrichment persists the enrichment sub-objects of inst.
	AttachEnrichment(ctx context.Context, inst *model.Instrument) error

	UpsertLegalEntity(ctx context.Context, entity *model.LegalEntityRef) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Repository opens units of work.
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
