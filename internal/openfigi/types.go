package openfigi

import "github.com/Checker-Finance/refdata/pkg/model"

// MappingJob is one element of a POST /v3/mapping request.
type MappingJob struct {
	IDType   string `json:"idType"`
	IDValue  string `json:"idValue"`
	MICCode  string `json:"micCode,omitempty"`
	ExchCode string `json:"exchCode,omitempty"`
}

// MappingResult is one element of the mapping response. Exactly one of
// Data, Warning or Error is set.
type MappingResult struct {
	Data    []Instrument `json:"data,omitempty"`
	Warning string       `json:"warning,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Instrument is a FIGI candidate.
type Instrument struct {
	FIGI                string `json:"figi"`
	Name                string `json:"name"`
	Ticker              string `json:"ticker"`
	ExchCode            string `json:"exchCode"`
	CompositeFIGI       string `json:"compositeFIGI"`
	ShareClassFIGI      string `json:"shareClassFIGI"`
	SecurityType        string `json:"securityType"`
	SecurityType2       string `json:"securityType2"`
	MarketSector        string `json:"marketSector"`
	SecurityDescription string `json:"securityDescription"`
}

// ToMapping converts a candidate into the instrument-owned mapping.
func (i Instrument) ToMapping() model.GlobalIDMapping {
	return model.GlobalIDMapping{
		FIGI:          i.FIGI,
		CompositeFIGI: i.CompositeFIGI,
		ShareClassID:  i.ShareClassFIGI,
		Ticker:        i.Ticker,
		SecurityType:  i.SecurityType,
		MarketSector:  i.MarketSector,
		Name:          i.Name,
		ExchangeCode:  i.ExchCode,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
