package instrument

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Checker-Finance/refdata/internal/cfi"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

func classify(t *testing.T, code string) cfi.Classification {
	t.Helper()
	c, err := cfi.Classify(code)
	require.NoError(t, err)
	return c
}

func debtPrimary() model.MappedRecord {
	return model.MappedRecord{
		model.FieldISIN:                "XS0000000001",
		model.FieldFullName:            "Example 4.5% 2030",
		model.FieldCurrency:            "EUR",
		model.FieldCFICode:             "DBFTFB",
		model.FieldIssuerLEI:           "529900T8BM49AURSDO55",
		model.FieldTradingVenue:        "XVEN",
		model.FieldIssuerRequest:       true,
		model.FieldCommodityDerivative: false,
		"FixedInterestRate":            decimal.RequireFromString("4.5"),
		"MaturityDate":                 "2030-01-15",
		"StrikePrice":                  decimal.NewFromInt(100),
		"DebtSeniority":                "",
	}
}

func venues(mics ...string) []model.VenueRecord {
	out := make([]model.VenueRecord, len(mics))
	for i, m := range mics {
		out[i] = model.VenueRecord{VenueID: m}
	}
	return out
}

func TestBuild_Debt(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	fixed := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(zap.New(core), WithClock(func() time.Time { return fixed }))

	inst, err := b.Build(debtPrimary(), venues("XVEN", "YVEN"), classify(t, "DBFTFB"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, inst.ID)
	assert.Equal(t, "XS0000000001", inst.ISIN)
	assert.Equal(t, model.TypeDebt, inst.Type)
	assert.Equal(t, "Example 4.5% 2030", inst.FullName)
	assert.Equal(t, "EUR", inst.Currency)
	assert.Equal(t, "DBFTFB", inst.CFICode)
	assert.Equal(t, "529900T8BM49AURSDO55", inst.IssuerLEI)
	assert.Equal(t, fixed, inst.CreatedAt)

	assert.Equal(t, "2030-01-15", inst.Attributes["MaturityDate"])
	assert.Contains(t, inst.Attributes, "FixedInterestRate")
	assert.Contains(t, inst.Attributes, model.FieldCommodityDerivative)
	assert.NotContains(t, inst.Attributes, "DebtSeniority", "empty values are not stored")
	assert.NotContains(t, inst.Attributes, model.FieldTradingVenue, "venue fields live on venues")

	assert.Equal(t, map[string]any{"StrikePrice": decimal.NewFromInt(100)}, inst.Unmapped)
	warn := logs.FilterMessage("instrument.unmapped_fields").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zap.WarnLevel, warn[0].Level)

	require.Len(t, inst.Venues, 2)
	for _, v := range inst.Venues {
		assert.Equal(t, inst.ID, v.InstrumentID)
		assert.NotEqual(t, uuid.Nil, v.ID)
	}
}

func TestBuild_MissingISIN(t *testing.T) {
	b := NewBuilder(nil)
	p := debtPrimary()
	delete(p, model.FieldISIN)

	_, err := b.Build(p, nil, classify(t, "DBFTFB"), nil)
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ISIN", ve.Field)
}

func TestBuild_ISINWrongLength(t *testing.T) {
	b := NewBuilder(nil)
	for _, isin := range []string{"XS123", "XS00000000012"} {
		p := debtPrimary()
		p[model.FieldISIN] = isin

		inst, err := b.Build(p, nil, classify(t, "DBFTFB"), nil)
		assert.Nil(t, inst)
		var ve *errs.ValidationError
		require.ErrorAs(t, err, &ve, isin)
		assert.Equal(t, "ISIN", ve.Field)
		assert.Equal(t, isin, ve.Value)
		assert.Equal(t, "validation", errs.Kind(err))
	}
}

func TestBuild_OverwriteReplacesEverything(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	b := NewBuilder(zap.New(core))
	cls := classify(t, "DBFTFB")

	first, err := b.Build(debtPrimary(), venues("XVEN", "YVEN"), cls, nil)
	require.NoError(t, err)
	first.GlobalID = &model.GlobalIDMapping{FIGI: "BBG000000001"}
	first.LegalEntityLEI = "529900T8BM49AURSDO55"

	second, err := b.Build(debtPrimary(), venues("ZVEN"), cls, first)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Nil(t, second.GlobalID, "enrichment is dropped on overwrite")
	assert.Empty(t, second.LegalEntityLEI)
	require.Len(t, second.Venues, 1)
	for _, nv := range second.Venues {
		assert.Equal(t, second.ID, nv.InstrumentID)
		for _, ov := range first.Venues {
			assert.NotEqual(t, ov.ID, nv.ID, "no venue leaks across overwrite")
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("instrument.conflict_overwritten").Len())
}

func TestBuild_VenuesAreCopied(t *testing.T) {
	b := NewBuilder(nil)
	in := venues("XVEN")
	inst, err := b.Build(debtPrimary(), in, classify(t, "DBFTFB"), nil)
	require.NoError(t, err)

	assert.Equal(t, uuid.Nil, in[0].ID, "caller's slice is not mutated")
	assert.NotEqual(t, uuid.Nil, inst.Venues[0].ID)
}

func TestBuild_AttributeSetsPerType(t *testing.T) {
	b := NewBuilder(nil)
	p := model.MappedRecord{
		model.FieldISIN:   "DE000C0000F1",
		"ExpiryDate":      "2025-03-21",
		"OptionType":      "CALL",
		"MaturityDate":    "2030-01-01",
		"PriceMultiplier": decimal.NewFromInt(10),
	}

	future, err := b.Build(p, nil, classify(t, "FFSCSX"), nil)
	require.NoError(t, err)
	assert.Contains(t, future.Attributes, "ExpiryDate")
	assert.Contains(t, future.Attributes, "PriceMultiplier")
	assert.Contains(t, future.Unmapped, "OptionType")
	assert.Contains(t, future.Unmapped, "MaturityDate")

	option, err := b.Build(p, nil, classify(t, "OCASPS"), nil)
	require.NoError(t, err)
	assert.Contains(t, option.Attributes, "OptionType")
	assert.NotContains(t, option.Unmapped, "OptionType")
}

func TestBuild_TypeOverride(t *testing.T) {
	b := NewBuilder(nil, WithTypeOverrides(map[string]model.InstrumentType{
		"XS0000000001": model.TypeStructured,
	}))

	inst, err := b.Build(debtPrimary(), nil, classify(t, "DBFTFB"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.TypeStructured, inst.Type)
	assert.Contains(t, inst.Attributes, "StrikePrice", "structured accepts option attributes")
	assert.Empty(t, inst.Unmapped)
}

func TestRecognized(t *testing.T) {
	assert.True(t, Recognized(model.TypeDebt, "MaturityDate"))
	assert.False(t, Recognized(model.TypeEquity, "MaturityDate"))
	assert.True(t, Recognized(model.TypeEquity, model.FieldPublicationFrom))
	assert.False(t, Recognized(model.InstrumentType("bogus"), model.FieldPublicationFrom))
}
