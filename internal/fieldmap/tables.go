package fieldmap

import "github.com/Checker-Finance/refdata/pkg/model"

// Kind controls how a source value is coerced.
type Kind int

const (
	KindString Kind = iota
	KindBool        // "true"/"false", case-insensitive; false when absent or unparsable
	KindDecimal     // shopspring/decimal; falls back to the raw string when unparsable
	KindDate        // kept as string; parsed by the consumers that need time values
)

// Field is the target of one rename rule.
type Field struct {
	Name string
	Kind Kind
}

// Table maps flattened source keys to business fields.
type Table map[string]Field

// Category selects the rename table applied to a record.
type Category string

const (
	CategoryEquity     Category = "equity"
	CategoryDebt       Category = "debt"
	CategoryDerivative Category = "derivative"
)

var commonTable = Table{
	"Id":                                         {model.FieldISIN, KindString},
	"FinInstrmGnlAttrbts_FullNm":                 {model.FieldFullName, KindString},
	"FinInstrmGnlAttrbts_ShrtNm":                 {model.FieldShortName, KindString},
	"FinInstrmGnlAttrbts_ClssfctnTp":             {model.FieldCFICode, KindString},
	"FinInstrmGnlAttrbts_NtnlCcy":                {model.FieldCurrency, KindString},
	"FinInstrmGnlAttrbts_CmmdtyDerivInd":         {model.FieldCommodityDerivative, KindBool},
	"Issr":                                       {model.FieldIssuerLEI, KindString},
	"TradgVnRltdAttrbts_Id":                      {model.FieldTradingVenue, KindString},
	"TradgVnRltdAttrbts_IssrReq":                 {model.FieldIssuerRequest, KindBool},
	"TradgVnRltdAttrbts_AdmssnApprvlDtByIssr":    {model.FieldAdmissionApproval, KindDate},
	"TradgVnRltdAttrbts_ReqForAdmssnDt":          {model.FieldRequestForAdmission, KindDate},
	"TradgVnRltdAttrbts_FrstTradDt":              {model.FieldFirstTradeDate, KindDate},
	"TradgVnRltdAttrbts_TermntnDt":               {model.FieldTerminationDate, KindDate},
	"TechAttrbts_RlvntCmptntAuthrty":             {model.FieldCompetentAuthority, KindString},
	"TechAttrbts_PblctnPrd_FrDt":                 {model.FieldPublicationFrom, KindDate},
	"TechAttrbts_RlvntTradgVn":                   {model.FieldRelevantTradingVenue, KindString},
	"DerivInstrmAttrbts_UndrlygInstrm_Sngl_ISIN": {"UnderlyingISIN", KindString},
}

var equityTable = Table{}

var debtTable = Table{
	"DebtInstrmAttrbts_TtlIssdNmnlAmt":               {"TotalIssuedNominalAmount", KindDecimal},
	"DebtInstrmAttrbts_TtlIssdNmnlAmt_Ccy":           {"TotalIssuedNominalCurrency", KindString},
	"DebtInstrmAttrbts_MtrtyDt":                      {"MaturityDate", KindDate},
	"DebtInstrmAttrbts_NmnlValPerUnit":               {"NominalValuePerUnit", KindDecimal},
	"DebtInstrmAttrbts_NmnlValPerUnit_Ccy":           {"NominalValueCurrency", KindString},
	"DebtInstrmAttrbts_IntrstRate_Fxd":               {"FixedInterestRate", KindDecimal},
	"DebtInstrmAttrbts_IntrstRate_Fltg_RefRate_ISIN": {"FloatingRateReferenceISIN", KindString},
	"DebtInstrmAttrbts_IntrstRate_Fltg_RefRate_Indx": {"FloatingRateReferenceIndex", KindString},
	"DebtInstrmAttrbts_IntrstRate_Fltg_RefRate_Nm":   {"FloatingRateReferenceName", KindString},
	"DebtInstrmAttrbts_IntrstRate_Fltg_Term_Unit":    {"FloatingRateTermUnit", KindString},
	"DebtInstrmAttrbts_IntrstRate_Fltg_Term_Val":     {"FloatingRateTermValue", KindDecimal},
	"DebtInstrmAttrbts_IntrstRate_Fltg_BsisPtSprd":   {"FloatingRateBasisPointSpread", KindDecimal},
	"DebtInstrmAttrbts_DebtSnrty":                    {"DebtSeniority", KindString},
}

var derivativeTable = Table{
	"DerivInstrmAttrbts_XpryDt":                                            {"ExpiryDate", KindDate},
	"DerivInstrmAttrbts_PricMltplr":                                        {"PriceMultiplier", KindDecimal},
	"DerivInstrmAttrbts_UndrlygInstrm_Sngl_Indx_ISIN":                      {"UnderlyingIndexISIN", KindString},
	"DerivInstrmAttrbts_UndrlygInstrm_Sngl_Indx_Nm_RefRate_Nm":             {"UnderlyingIndexName", KindString},
	"DerivInstrmAttrbts_UndrlygInstrm_Sngl_Indx_Nm_RefRate_Indx":           {"UnderlyingIndexCode", KindString},
	"DerivInstrmAttrbts_UndrlygInstrm_Sngl_LEI":                            {"UnderlyingLEI", KindString},
	"DerivInstrmAttrbts_UndrlygInstrm_Bskt_ISIN":                           {"UnderlyingBasketISIN", KindString},
	"DerivInstrmAttrbts_OptnTp":                                            {"OptionType", KindString},
	"DerivInstrmAttrbts_StrkPric_Pric_MntryVal_Amt":                        {"StrikePrice", KindDecimal},
	"DerivInstrmAttrbts_StrkPric_Pric_Pctg":                                {"StrikePricePercentage", KindDecimal},
	"DerivInstrmAttrbts_StrkPric_Pric_BsisPts":                             {"StrikePriceBasisPoints", KindDecimal},
	"DerivInstrmAttrbts_StrkPric_NoPric_Pdg":                               {"StrikePricePending", KindString},
	"DerivInstrmAttrbts_StrkPric_NoPric_Ccy":                               {"StrikePriceCurrency", KindString},
	"DerivInstrmAttrbts_OptnExrcStyle":                                     {"OptionExerciseStyle", KindString},
	"DerivInstrmAttrbts_DlvryTp":                                           {"DeliveryType", KindString},
	"DerivInstrmAttrbts_AsstClssSpcfcAttrbts_FX_OthrNtnlCcy":               {"OtherNotionalCurrency", KindString},
	"DerivInstrmAttrbts_AsstClssSpcfcAttrbts_FX_FxTp":                      {"FXType", KindString},
	"DerivInstrmAttrbts_AsstClssSpcfcAttrbts_Intrst_IntrstRate_RefRate_Nm": {"InterestRateReferenceName", KindString},
	"DerivInstrmAttrbts_AsstClssSpcfcAttrbts_Intrst_IntrstRate_Term_Unit":  {"InterestRateTermUnit", KindString},
	"DerivInstrmAttrbts_AsstClssSpcfcAttrbts_Intrst_IntrstRate_Term_Val":   {"InterestRateTermValue", KindDecimal},
}

// extend returns a new table holding base overlaid with extra.
func extend(base, extra Table) Table {
	out := make(Table, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// DefaultTables returns the built-in category tables.
func DefaultTables() map[Category]Table {
	return map[Category]Table{
		CategoryEquity:     extend(commonTable, equityTable),
		CategoryDebt:       extend(commonTable, debtTable),
		CategoryDerivative: extend(commonTable, derivativeTable),
	}
}
