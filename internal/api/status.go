package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/refdata/internal/ingest"
	"github.com/Checker-Finance/refdata/pkg/errs"
)

// FileStatus is the JSON view of one ingest.Report.
type FileStatus struct {
	Source          string         `json:"source"`
	Family          string         `json:"family"`
	Records         int            `json:"records"`
	Instruments     int            `json:"instruments"`
	Built           int            `json:"built"`
	Overwritten     int            `json:"overwritten"`
	Failed          int            `json:"failed"`
	Enriched        int            `json:"enriched"`
	PartialEnriched int            `json:"partialEnriched"`
	EntitiesCreated int            `json:"entitiesCreated"`
	Published       int            `json:"published"`
	Warnings        int            `json:"warnings"`
	NoData          bool           `json:"noData,omitempty"`
	ErrorsByKind    map[string]int `json:"errorsByKind,omitempty"`
	Error           string         `json:"error,omitempty"`
	ErrorKind       string         `json:"errorKind,omitempty"`
	Cancelled       bool           `json:"cancelled,omitempty"`
	DurationMS      int64          `json:"durationMs"`
}

// RunStatus remembers the reports of the latest ingestion run.
type RunStatus struct {
	mu       sync.RWMutex
	state    string
	started  time.Time
	finished time.Time
	files    []FileStatus
}

func NewRunStatus() *RunStatus {
	return &RunStatus{state: "idle"}
}

func (s *RunStatus) Start(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = "running"
	s.started = at
	s.finished = time.Time{}
	s.files = nil
}

// Finish stores the reports. err is the run-level error returned by
// ingest.Pipeline.IngestFiles.
func (s *RunStatus) Finish(at time.Time, reports []*ingest.Report, err error) {
	files := make([]FileStatus, 0, len(reports))
	for _, rep := range reports {
		files = append(files, toFileStatus(rep))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = at
	s.files = files
	switch {
	case err != nil:
		s.state = "aborted"
	default:
		s.state = "completed"
	}
}

func (s *RunStatus) Handler(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body := fiber.Map{
		"state": s.state,
		"files": s.files,
	}
	if !s.started.IsZero() {
		body["startedAt"] = s.started.UTC().Format(time.RFC3339)
	}
	if !s.finished.IsZero() {
		body["finishedAt"] = s.finished.UTC().Format(time.RFC3339)
	}
	return c.JSON(body)
}

func toFileStatus(rep *ingest.Report) FileStatus {
	fs := FileStatus{
		Source:          rep.Source,
		Family:          string(rep.Family),
		Records:         rep.Records,
		Instruments:     rep.Instruments,
		Built:           rep.Built,
		Overwritten:     rep.Overwritten,
		Failed:          rep.Failed,
		Enriched:        rep.Enriched,
		PartialEnriched: rep.PartialEnriched,
		EntitiesCreated: rep.EntitiesCreated,
		Published:       rep.Published,
		Warnings:        len(rep.Warnings),
		NoData:          rep.NoData,
		ErrorsByKind:    rep.ErrorsByKind,
		Cancelled:       rep.Cancelled,
		DurationMS:      rep.FinishedAt.Sub(rep.StartedAt).Milliseconds(),
	}
	if rep.Err != nil {
		fs.Error = rep.Err.Error()
		fs.ErrorKind = errs.Kind(rep.Err)
	}
	return fs
}
