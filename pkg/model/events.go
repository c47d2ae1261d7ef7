package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event envelope published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// InstrumentUpsertedEvent is emitted after an instrument has been built,
// persisted and (optionally) enriched.
type InstrumentUpsertedEvent struct {
	InstrumentID uuid.UUID      `json:"instrument_id"`
	ISIN         string         `json:"isin"`
	Type         InstrumentType `json:"type"`
	CFICode      string         `json:"cfi_code"`
	VenueCount   int            `json:"venue_count"`
	Overwritten  bool           `json:"overwritten"`
	FIGI         string         `json:"figi,omitempty"`
	IssuerLEI    string         `json:"issuer_lei,omitempty"`
	Enrichment   string         `json:"enrichment_state"`
	SourceFile   string         `json:"source_file"`
	Timestamp    time.Time      `json:"timestamp"`
}
