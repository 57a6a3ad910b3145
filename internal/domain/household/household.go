package household

import (
	"time"

	"github.com/shopspring/decimal"
)

type Household struct {
	ID                  string
	InternalCode        string
	ExternalHouseholdID string
	OwnerID             string
	HeadOfClientID      *string
	TotalAccountValue   decimal.Decimal
}

func (h *Household) HasHead() bool {
	return h.HeadOfClientID != nil && *h.HeadOfClientID != ""
}

type NewHousehold struct {
	OwnerID             string
	InternalCode        string
	ExternalHouseholdID string
}

type Client struct {
	ID              string
	HouseholdID     string
	FirstName       string
	MiddleName      string
	LastName        string
	DOB             *time.Time
	SSN             string
	TaxFilingStatus string
	MaritalStatus   string
	MobileNumber    string
	HomePhone       string
	Email           string
	HomeAddress     string
}

// NewClientFromRow builds an unsaved client for householdID from a normalized row.
func NewClientFromRow(householdID string, row ImportRow) Client {
	return Client{
		HouseholdID:     householdID,
		FirstName:       row.FirstName,
		MiddleName:      row.MiddleName,
		LastName:        row.LastName,
		DOB:             row.DOB,
		SSN:             row.SSN,
		TaxFilingStatus: row.TaxFilingStatus,
		MaritalStatus:   row.MaritalStatus,
		MobileNumber:    row.MobileNumber,
		HomePhone:       row.HomePhone,
		Email:           row.Email,
		HomeAddress:     row.HomeAddress,
	}
}

// ClientPatch holds the updatable client fields. A nil pointer means "leave as is".
type ClientPatch struct {
	MiddleName      *string
	DOB             *time.Time
	SSN             *string
	TaxFilingStatus *string
	MaritalStatus   *string
	MobileNumber    *string
	HomePhone       *string
	Email           *string
	HomeAddress     *string
}

// Fields lists the set fields in allow-list order.
func (p ClientPatch) Fields() []Field {
	fields := make([]Field, 0, len(UpdatableFields))
	for _, f := range UpdatableFields {
		if p.isSet(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (p ClientPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

func (p ClientPatch) isSet(f Field) bool {
	switch f {
	case FieldMiddleName:
		return p.MiddleName != nil
	case FieldDOB:
		return p.DOB != nil
	case FieldSSN:
		return p.SSN != nil
	case FieldTaxFilingStatus:
		return p.TaxFilingStatus != nil
	case FieldMaritalStatus:
		return p.MaritalStatus != nil
	case FieldMobileNumber:
		return p.MobileNumber != nil
	case FieldHomePhone:
		return p.HomePhone != nil
	case FieldEmail:
		return p.Email != nil
	case FieldHomeAddress:
		return p.HomeAddress != nil
	}
	return false
}

// Apply copies the set fields onto c.
func (p ClientPatch) Apply(c *Client) {
	if p.MiddleName != nil {
		c.MiddleName = *p.MiddleName
	}
	if p.DOB != nil {
		dob := *p.DOB
		c.DOB = &dob
	}
	if p.SSN != nil {
		c.SSN = *p.SSN
	}
	if p.TaxFilingStatus != nil {
		c.TaxFilingStatus = *p.TaxFilingStatus
	}
	if p.MaritalStatus != nil {
		c.MaritalStatus = *p.MaritalStatus
	}
	if p.MobileNumber != nil {
		c.MobileNumber = *p.MobileNumber
	}
	if p.HomePhone != nil {
		c.HomePhone = *p.HomePhone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.HomeAddress != nil {
		c.HomeAddress = *p.HomeAddress
	}
}

// HouseholdWithClients is the read model served to the review screen.
type HouseholdWithClients struct {
	Household Household
	Clients   []Client
}
