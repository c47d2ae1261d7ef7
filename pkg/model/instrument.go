package model

import (
	"time"

	"github.com/google/uuid"
)

// InstrumentType is the business-type discriminator of an instrument.
type InstrumentType string

const (
	TypeEquity               InstrumentType = "equity"
	TypeDebt                 InstrumentType = "debt"
	TypeFuture               InstrumentType = "future"
	TypeOption               InstrumentType = "option"
	TypeWarrant              InstrumentType = "warrant"
	TypeRights               InstrumentType = "rights"
	TypeSwap                 InstrumentType = "swap"
	TypeCollectiveInvestment InstrumentType = "collectiveInvestment"
	TypeStructured           InstrumentType = "structured"
	TypeOther                InstrumentType = "other"
)

// Valid returns true if the type is one of the known constants.
func (t InstrumentType) Valid() bool {
	switch t {
	case TypeEquity, TypeDebt, TypeFuture, TypeOption, TypeWarrant,
		TypeRights, TypeSwap, TypeCollectiveInvestment, TypeStructured, TypeOther:
		return true
	default:
		return false
	}
}

// Instrument is the canonical instrument entity. Attributes holds only fields
// recognized for Type; Unmapped holds the rest for diagnostics.
type Instrument struct {
	ID         uuid.UUID      `json:"id"`
	ISIN       string         `json:"isin"`
	Type       InstrumentType `json:"type"`
	FullName   string         `json:"full_name"`
	ShortName  string         `json:"short_name,omitempty"`
	Currency   string         `json:"currency,omitempty"`
	CFICode    string         `json:"cfi_code"`
	IssuerLEI  string         `json:"issuer_lei,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Unmapped   map[string]any `json:"unmapped,omitempty"`
	Venues     []VenueRecord  `json:"venues"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	GlobalID *GlobalIDMapping `json:"global_id,omitempty"`
	// LegalEntityLEI links the shared LegalEntityRef by identifier.
	LegalEntityLEI string `json:"legal_entity_lei,omitempty"`
}

// VenueRecord is one trading venue's view of an instrument.
type VenueRecord struct {
	ID                      uuid.UUID  `json:"id"`
	InstrumentID            uuid.UUID  `json:"instrument_id"`
	VenueID                 string     `json:"venue_id"`
	FirstTradeDate          *time.Time `json:"first_trade_date,omitempty"`
	TerminationDate         *time.Time `json:"termination_date,omitempty"`
	AdmissionApprovalDate   *time.Time `json:"admission_approval_date,omitempty"`
	RequestForAdmissionDate *time.Time `json:"request_for_admission_date,omitempty"`
	CompetentAuthority      string     `json:"competent_authority,omitempty"`
	IssuerRequest           bool       `json:"issuer_request"`
	FullName                string     `json:"full_name,omitempty"`
	CFICode                 string     `json:"cfi_code,omitempty"`
	Currency                string     `json:"currency,omitempty"`
}

// GlobalIDMapping is the cross-referenced identifier set resolved from the
// symbology service. Owned by exactly one instrument.
type GlobalIDMapping struct {
	FIGI          string `json:"figi"`
	CompositeFIGI string `json:"composite_figi,omitempty"`
	ShareClassID  string `json:"share_class_figi,omitempty"`
	Ticker        string `json:"ticker,omitempty"`
	SecurityType  string `json:"security_type,omitempty"`
	MarketSector  string `json:"market_sector,omitempty"`
	Name          string `json:"name,omitempty"`
	ExchangeCode  string `json:"exchange_code,omitempty"`
}

// LegalEntityRef is an organizational identity record keyed by LEI. Shared
// by reference between instruments.
type LegalEntityRef struct {
	LEI          string       `json:"lei"`
	LegalName    string       `json:"legal_name"`
	Jurisdiction string       `json:"jurisdiction,omitempty"`
	Status       string       `json:"status,omitempty"`
	LegalForm    string       `json:"legal_form,omitempty"`
	Registration Registration `json:"registration"`
	Addresses    []Address    `json:"addresses,omitempty"`
	RetrievedAt  time.Time    `json:"retrieved_at"`
}

// Registration is the registration sub-record of a legal entity.
type Registration struct {
	Status           string     `json:"status,omitempty"`
	InitialDate      *time.Time `json:"initial_date,omitempty"`
	LastUpdateDate   *time.Time `json:"last_update_date,omitempty"`
	NextRenewalDate  *time.Time `json:"next_renewal_date,omitempty"`
	ManagingLOU      string     `json:"managing_lou,omitempty"`
	ValidationSource string     `json:"validation_source,omitempty"`
}

// Address is one postal address of a legal entity.
type Address struct {
	Type       string   `json:"type"` // legal | headquarters
	Lines      []string `json:"lines,omitempty"`
	City       string   `json:"city,omitempty"`
	Region     string   `json:"region,omitempty"`
	Country    string   `json:"country,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
}
