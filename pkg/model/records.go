package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawRecord is one flattened source row. Absent keys are null.
type RawRecord map[string]string

// FlattenedDocument is the set of records flattened from one source file.
// Columns is the ordered union of keys that held a value in at least one record.
type FlattenedDocument struct {
	Source  string
	Columns []string
	Records []RawRecord
}

// Len returns the number of records in the document.
func (d *FlattenedDocument) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// MappedRecord is a RawRecord renamed into business field names. Values are
// string, bool or decimal.Decimal depending on the field kind.
type MappedRecord map[string]any

// Well-known mapped field names shared by every category table.
const (
	FieldISIN                 = "ISIN"
	FieldFullName             = "FullName"
	FieldShortName            = "ShortName"
	FieldCFICode              = "CFICode"
	FieldCurrency             = "Currency"
	FieldIssuerLEI            = "IssuerLEI"
	FieldTradingVenue         = "TradingVenue"
	FieldIssuerRequest        = "IssuerRequest"
	FieldAdmissionApproval    = "AdmissionApprovalDate"
	FieldRequestForAdmission  = "RequestForAdmissionDate"
	FieldFirstTradeDate       = "FirstTradeDate"
	FieldTerminationDate      = "TerminationDate"
	FieldCompetentAuthority   = "CompetentAuthority"
	FieldRelevantTradingVenue = "RelevantTradingVenue"
	FieldPublicationFrom      = "PublicationFromDate"
	FieldCommodityDerivative  = "CommodityDerivativeIndicator"
)

// String returns the value of key rendered as a trimmed string, or "" when absent.
func (r MappedRecord) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case decimal.Decimal:
		return v.String()
	default:
		return ""
	}
}

// Bool returns the value of key as a bool, false when absent or not a bool.
func (r MappedRecord) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Decimal returns the value of key as a decimal and whether it was present.
func (r MappedRecord) Decimal(key string) (decimal.Decimal, bool) {
	d, ok := r[key].(decimal.Decimal)
	return d, ok
}

// Clone returns a shallow copy of the record.
func (r MappedRecord) Clone() MappedRecord {
	out := make(MappedRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
