package ingest

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Checker-Finance/refdata/internal/flatten"
	"github.com/Checker-Finance/refdata/pkg/errs"
)

// Outcome is the result of processing one ISIN group.
type Outcome string

const (
	OutcomeBuilt       Outcome = "built"
	OutcomeOverwritten Outcome = "overwritten"
	OutcomeFailed      Outcome = "failed"
)

// InstrumentError is a failure isolated to one instrument.
type InstrumentError struct {
	ISIN  string
	Kind  string
	Stage string
	Err   error
}

func (e InstrumentError) Error() string {
	return e.Stage + " " + e.ISIN + ": " + e.Err.Error()
}

// Report summarizes one ingested file.
type Report struct {
	RunID  uuid.UUID
	Source string
	Family flatten.Family

	Records     int
	Instruments int
	Built       int
	Overwritten int
	Failed      int

	// Enrichment and delivery counters. Their failures never fail an instrument.
	Enriched        int
	PartialEnriched int
	EntitiesCreated int
	AttachFailed    int
	Published       int
	PublishFailed   int
	MirrorFailed    bool

	// Errors holds instrument-level build failures sorted by ISIN.
	Errors       []InstrumentError
	ErrorsByKind map[string]int
	// Warnings holds enrichment and delivery failures.
	Warnings []InstrumentError

	// NoData is set when the file held no record elements. It is not a
	// failure: Err stays nil.
	NoData bool

	// Err is set when the whole file failed.
	Err       error
	Cancelled bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns the number of instruments that were persisted.
func (r *Report) Succeeded() int { return r.Built + r.Overwritten }

type recorder struct {
	mu     sync.Mutex
	report *Report
}

func (rec *recorder) outcome(o Outcome) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	switch o {
	case OutcomeBuilt:
		rec.report.Built++
	case OutcomeOverwritten:
		rec.report.Overwritten++
	case OutcomeFailed:
		rec.report.Failed++
	}
}

func (rec *recorder) fail(isin, stage string, err error) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	kind := errs.Kind(err)
	rec.report.Errors = append(rec.report.Errors, InstrumentError{ISIN: isin, Kind: kind, Stage: stage, Err: err})
	rec.report.ErrorsByKind[kind]++
}

func (rec *recorder) warn(isin, stage string, err error) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.report.Warnings = append(rec.report.Warnings, InstrumentError{ISIN: isin, Kind: errs.Kind(err), Stage: stage, Err: err})
}

func (rec *recorder) update(fn func(r *Report)) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	fn(rec.report)
}

func (rec *recorder) finish() *Report {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	sortErrors(rec.report.Errors)
	sortErrors(rec.report.Warnings)
	rec.report.FinishedAt = time.Now().UTC()
	return rec.report
}

func sortErrors(list []InstrumentError) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].ISIN != list[j].ISIN {
			return list[i].ISIN < list[j].ISIN
		}
		return list[i].Stage < list[j].Stage
	})
}
