package instrument

import "github.com/Checker-Finance/refdata/pkg/model"

type nameSet map[string]struct{}

func names(list ...string) nameSet {
	s := make(nameSet, len(list))
	for _, n := range list {
		s[n] = struct{}{}
	}
	return s
}

func union(sets ...nameSet) nameSet {
	out := make(nameSet)
	for _, s := range sets {
		for n := range s {
			out[n] = struct{}{}
		}
	}
	return out
}

// Fields lifted into typed Instrument or VenueRecord fields. They never land
// in Attributes or Unmapped.
var structural = names(
	model.FieldISIN,
	model.FieldFullName,
	model.FieldShortName,
	model.FieldCFICode,
	model.FieldCurrency,
	model.FieldIssuerLEI,
	model.FieldTradingVenue,
	model.FieldIssuerRequest,
	model.FieldAdmissionApproval,
	model.FieldRequestForAdmission,
	model.FieldFirstTradeDate,
	model.FieldTerminationDate,
	model.FieldCompetentAuthority,
)

var technical = names(
	model.FieldRelevantTradingVenue,
	model.FieldPublicationFrom,
	model.FieldCommodityDerivative,
)

var debtAttributes = names(
	"TotalIssuedNominalAmount",
	"TotalIssuedNominalCurrency",
	"MaturityDate",
	"NominalValuePerUnit",
	"NominalValueCurrency",
	"FixedInterestRate",
	"FloatingRateReferenceISIN",
	"FloatingRateReferenceIndex",
	"FloatingRateReferenceName",
	"FloatingRateTermUnit",
	"FloatingRateTermValue",
	"FloatingRateBasisPointSpread",
	"DebtSeniority",
)

var derivativeAttributes = names(
	"ExpiryDate",
	"PriceMultiplier",
	"UnderlyingISIN",
	"UnderlyingIndexISIN",
	"UnderlyingIndexName",
	"UnderlyingIndexCode",
	"UnderlyingLEI",
	"UnderlyingBasketISIN",
	"DeliveryType",
	"OtherNotionalCurrency",
	"FXType",
	"InterestRateReferenceName",
	"InterestRateTermUnit",
	"InterestRateTermValue",
)

var optionAttributes = names(
	"OptionType",
	"StrikePrice",
	"StrikePricePercentage",
	"StrikePriceBasisPoints",
	"StrikePricePending",
	"StrikePriceCurrency",
	"OptionExerciseStyle",
)

// attributeSets lists the attribute names recognized per instrument type.
var attributeSets = map[model.InstrumentType]nameSet{
	model.TypeEquity:               technical,
	model.TypeCollectiveInvestment: technical,
	model.TypeOther:                technical,
	model.TypeDebt:                 union(technical, debtAttributes),
	model.TypeFuture:               union(technical, derivativeAttributes),
	model.TypeSwap:                 union(technical, derivativeAttributes),
	model.TypeOption:               union(technical, derivativeAttributes, optionAttributes),
	model.TypeWarrant:              union(technical, derivativeAttributes, optionAttributes),
	model.TypeRights:               union(technical, derivativeAttributes, optionAttributes),
	model.TypeStructured:           union(technical, debtAttributes, derivativeAttributes, optionAttributes),
}

// Recognized reports whether name is a valid attribute for t.
func Recognized(t model.InstrumentType, name string) bool {
	_, ok := attributeSets[t][name]
	return ok
}
