package gleif

import (
	"time"

	"github.com/Checker-Finance/refdata/pkg/model"
)

// LEIRecordResponse is the JSON:API envelope of GET /api/v1/lei-records/{lei}.
type LEIRecordResponse struct {
	Data LEIRecord `json:"data"`
}

type LEIRecord struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes RecordAttributes `json:"attributes"`
}

type RecordAttributes struct {
	LEI          string       `json:"lei"`
	Entity       Entity       `json:"entity"`
	Registration Registration `json:"registration"`
}

type Entity struct {
	LegalName           Name      `json:"legalName"`
	LegalAddress        Address   `json:"legalAddress"`
	HeadquartersAddress Address   `json:"headquartersAddress"`
	Jurisdiction        string    `json:"jurisdiction"`
	LegalForm           LegalForm `json:"legalForm"`
	Status              string    `json:"status"`
}

type Name struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

type Address struct {
	Language     string   `json:"language"`
	AddressLines []string `json:"addressLines"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	Country      string   `json:"country"`
	PostalCode   string   `json:"postalCode"`
}

func (a Address) empty() bool {
	return len(a.AddressLines) == 0 && a.City == "" && a.Country == ""
}

type LegalForm struct {
	ID    string `json:"id"`
	Other string `json:"other"`
}

type Registration struct {
	InitialRegistrationDate string `json:"initialRegistrationDate"`
	LastUpdateDate          string `json:"lastUpdateDate"`
	Status                  string `json:"status"`
	NextRenewalDate         string `json:"nextRenewalDate"`
	ManagingLOU             string `json:"managingLou"`
	CorroborationLevel      string `json:"corroborationLevel"`
}

type errorResponse struct {
	Errors []struct {
		Status string `json:"status"`
		Title  string `json:"title"`
	} `json:"errors"`
}

// ToLegalEntity converts the record into the shared entity reference.
func (r LEIRecord) ToLegalEntity(retrievedAt time.Time) model.LegalEntityRef {
	a := r.Attributes
	lei := a.LEI
	if lei == "" {
		lei = r.ID
	}
	form := a.Entity.LegalForm.ID
	if form == "" {
		form = a.Entity.LegalForm.Other
	}

	out := model.LegalEntityRef{
		LEI:          lei,
		LegalName:    a.Entity.LegalName.Name,
		Jurisdiction: a.Entity.Jurisdiction,
		Status:       a.Entity.Status,
		LegalForm:    form,
		Registration: model.Registration{
			Status:           a.Registration.Status,
			InitialDate:      parseTime(a.Registration.InitialRegistrationDate),
			LastUpdateDate:   parseTime(a.Registration.LastUpdateDate),
			NextRenewalDate:  parseTime(a.Registration.NextRenewalDate),
			ManagingLOU:      a.Registration.ManagingLOU,
			ValidationSource: a.Registration.CorroborationLevel,
		},
		RetrievedAt: retrievedAt.UTC(),
	}
	for _, addr := range []struct {
		kind string
		a    Address
	}{
		{"legal", a.Entity.LegalAddress},
		{"headquarters", a.Entity.HeadquartersAddress},
	} {
		if addr.a.empty() {
			continue
		}
		out.Addresses = append(out.Addresses, model.Address{
			Type:       addr.kind,
			Lines:      addr.a.AddressLines,
			City:       addr.a.City,
			Region:     addr.a.Region,
			Country:    addr.a.Country,
			PostalCode: addr.a.PostalCode,
		})
	}
	return out
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
