package fieldmap

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/refdata/internal/cfi"
	"github.com/Checker-Finance/refdata/pkg/model"
)

func debtRow() model.RawRecord {
	return model.RawRecord{
		"Id":                                   "XS0000000001",
		"FinInstrmGnlAttrbts_FullNm":           "Example 4.5% 2030",
		"FinInstrmGnlAttrbts_ClssfctnTp":       "dbftfb",
		"FinInstrmGnlAttrbts_NtnlCcy":          "EUR",
		"Issr":                                 "529900T8BM49AURSDO55",
		"TradgVnRltdAttrbts_Id":                "XVEN",
		"TradgVnRltdAttrbts_IssrReq":           "TRUE",
		"TradgVnRltdAttrbts_FrstTradDt":        "2020-01-15T00:00:00Z",
		"DebtInstrmAttrbts_TtlIssdNmnlAmt":     "500000000",
		"DebtInstrmAttrbts_TtlIssdNmnlAmt_Ccy": "EUR",
		"DebtInstrmAttrbts_IntrstRate_Fxd":     "4.5",
		"DebtInstrmAttrbts_NmnlValPerUnit":     "n/a",
		"SomethingNobodyMaps":                  "dropped",
	}
}

func TestMap_Debt(t *testing.T) {
	m := NewMapper()
	out, err := m.Map(debtRow(), CategoryDebt)
	require.NoError(t, err)

	assert.Equal(t, "XS0000000001", out.String(model.FieldISIN))
	assert.Equal(t, "Example 4.5% 2030", out.String(model.FieldFullName))
	assert.Equal(t, "529900T8BM49AURSDO55", out.String(model.FieldIssuerLEI))
	assert.Equal(t, "XVEN", out.String(model.FieldTradingVenue))
	assert.True(t, out.Bool(model.FieldIssuerRequest))
	assert.Equal(t, "2020-01-15T00:00:00Z", out.String(model.FieldFirstTradeDate))

	amt, ok := out.Decimal("TotalIssuedNominalAmount")
	require.True(t, ok)
	assert.True(t, amt.Equal(decimal.NewFromInt(500000000)))

	rate, ok := out.Decimal("FixedInterestRate")
	require.True(t, ok)
	assert.Equal(t, "4.5", rate.String())

	_, ok = out.Decimal("NominalValuePerUnit")
	assert.False(t, ok, "unparsable decimals keep their string form")
	assert.Equal(t, "n/a", out.String("NominalValuePerUnit"))

	assert.NotContains(t, out, "SomethingNobodyMaps")
	assert.NotContains(t, out, "ExpiryDate", "derivative fields are not in the debt table")
}

func TestMap_BoolDefaults(t *testing.T) {
	m := NewMapper()
	out, err := m.Map(model.RawRecord{"Id": "DE0005140008", "TradgVnRltdAttrbts_IssrReq": "maybe"}, CategoryEquity)
	require.NoError(t, err)

	require.Contains(t, out, model.FieldIssuerRequest)
	assert.False(t, out.Bool(model.FieldIssuerRequest), "unparsable bool is false")
	require.Contains(t, out, model.FieldCommodityDerivative)
	assert.False(t, out.Bool(model.FieldCommodityDerivative), "absent bool is false")
	assert.NotContains(t, out, model.FieldFullName, "absent strings stay absent")
}

func TestMap_UnknownCategory(t *testing.T) {
	m := NewMapper()
	_, err := m.Map(debtRow(), Category("commodity"))
	assert.Error(t, err)

	m.Register("commodity", Table{"Id": {model.FieldISIN, KindString}})
	out, err := m.Map(debtRow(), "commodity")
	require.NoError(t, err)
	assert.Equal(t, model.MappedRecord{model.FieldISIN: "XS0000000001"}, out)
}

func TestCFICodeAndISIN(t *testing.T) {
	row := debtRow()
	assert.Equal(t, "DBFTFB", CFICode(row))
	assert.Equal(t, "XS0000000001", ISIN(row))
	assert.Empty(t, CFICode(model.RawRecord{}))
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{"ESVUFR", CategoryEquity},
		{"CIOGSU", CategoryEquity},
		{"DBFTFB", CategoryDebt},
		{"FFSCSX", CategoryDerivative},
		{"OCASPS", CategoryDerivative},
		{"RWSTCA", CategoryDerivative},
		{"SRCCSP", CategoryDerivative},
	}
	for _, tt := range tests {
		c, err := cfi.Classify(tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.want, CategoryFor(c), tt.code)
	}
}
