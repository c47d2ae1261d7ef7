// Package venue groups per-venue source rows into one instrument.
package venue

import (
	"fmt"
	"strings"
	"time"

	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// Group is the set of mapped rows sharing one ISIN, in scan order.
type Group struct {
	ISIN string
	Rows []model.MappedRecord
}

// GroupByISIN partitions rows by ISIN preserving first-seen order. Rows
// without an ISIN are grouped under the empty key so the builder can reject
// them individually.
func GroupByISIN(rows []model.MappedRecord) []Group {
	index := make(map[string]int)
	var out []Group
	for _, r := range rows {
		isin := r.String(model.FieldISIN)
		i, ok := index[isin]
		if !ok {
			i = len(out)
			index[isin] = i
			out = append(out, Group{ISIN: isin})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	return out
}

// Aggregate picks the primary record and builds one VenueRecord per row.
// The primary is the first row in scan order; every row, the primary
// included, contributes a venue. All rows must carry the same ISIN.
func Aggregate(rows []model.MappedRecord) (model.MappedRecord, []model.VenueRecord, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("aggregate venues: %w", errs.ErrNotFound)
	}

	primary := rows[0].Clone()
	isin := primary.String(model.FieldISIN)

	venues := make([]model.VenueRecord, 0, len(rows))
	for i, r := range rows {
		if got := r.String(model.FieldISIN); got != isin {
			return nil, nil, &errs.ValidationError{
				Field:  "ISIN",
				Value:  got,
				Reason: fmt.Sprintf("row %d does not match primary %s", i, isin),
			}
		}
		v, err := FromRecord(r)
		if err != nil {
			return nil, nil, fmt.Errorf("venue row %d of %s: %w", i, isin, err)
		}
		venues = append(venues, v)
	}
	return primary, venues, nil
}

// FromRecord extracts the venue-specific fields of one mapped row.
func FromRecord(r model.MappedRecord) (model.VenueRecord, error) {
	v := model.VenueRecord{
		VenueID:            r.String(model.FieldTradingVenue),
		CompetentAuthority: r.String(model.FieldCompetentAuthority),
		IssuerRequest:      r.Bool(model.FieldIssuerRequest),
		FullName:           r.String(model.FieldFullName),
		CFICode:            r.String(model.FieldCFICode),
		Currency:           r.String(model.FieldCurrency),
	}

	dates := []struct {
		field string
		dst   **time.Time
	}{
		{model.FieldFirstTradeDate, &v.FirstTradeDate},
		{model.FieldTerminationDate, &v.TerminationDate},
		{model.FieldAdmissionApproval, &v.AdmissionApprovalDate},
		{model.FieldRequestForAdmission, &v.RequestForAdmissionDate},
	}
	for _, d := range dates {
		t, err := ParseDate(r.String(d.field))
		if err != nil {
			return model.VenueRecord{}, &errs.ValidationError{Field: d.field, Value: r.String(d.field), Reason: err.Error()}
		}
		*d.dst = t
	}
	return v, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and plain dates. Empty input yields
// a nil time.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}
