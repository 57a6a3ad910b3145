package household

import (
	"fmt"
	"time"
)

// Field names a canonical import column.
type Field string

const (
	FieldFirstName           Field = "firstName"
	FieldMiddleName          Field = "middleName"
	FieldLastName            Field = "lastName"
	FieldDOB                 Field = "dob"
	FieldSSN                 Field = "ssn"
	FieldTaxFilingStatus     Field = "taxFilingStatus"
	FieldMaritalStatus       Field = "maritalStatus"
	FieldMobileNumber        Field = "mobileNumber"
	FieldHomePhone           Field = "homePhone"
	FieldEmail               Field = "email"
	FieldHomeAddress         Field = "homeAddress"
	FieldExternalHouseholdID Field = "externalHouseholdId"
)

// AllFields is every field a column mapping may target.
var AllFields = []Field{
	FieldFirstName,
	FieldMiddleName,
	FieldLastName,
	FieldDOB,
	FieldSSN,
	FieldTaxFilingStatus,
	FieldMaritalStatus,
	FieldMobileNumber,
	FieldHomePhone,
	FieldEmail,
	FieldHomeAddress,
	FieldExternalHouseholdID,
}

// UpdatableFields is the allow-list applied when an import row matches an existing client.
var UpdatableFields = []Field{
	FieldMiddleName,
	FieldDOB,
	FieldSSN,
	FieldTaxFilingStatus,
	FieldMaritalStatus,
	FieldMobileNumber,
	FieldHomePhone,
	FieldEmail,
	FieldHomeAddress,
}

func (f Field) Valid() bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// ColumnMapping maps canonical fields to zero-based spreadsheet column indexes.
type ColumnMapping map[Field]int

// ParseColumnMapping converts a wire mapping into a typed one, rejecting unknown
// fields and negative indexes.
func ParseColumnMapping(raw map[string]int) (ColumnMapping, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyMapping
	}

	mapping := make(ColumnMapping, len(raw))
	for name, index := range raw {
		field := Field(name)
		if !field.Valid() {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidMapping, name)
		}
		if index < 0 {
			return nil, fmt.Errorf("%w: negative column index %d for %q", ErrInvalidMapping, index, name)
		}
		mapping[field] = index
	}
	return mapping, nil
}

// ImportRow is the normalized projection of one spreadsheet row.
type ImportRow struct {
	FirstName           string
	MiddleName          string
	LastName            string
	DOB                 *time.Time
	DOBRaw              string
	SSN                 string
	TaxFilingStatus     string
	MaritalStatus       string
	MobileNumber        string
	HomePhone           string
	Email               string
	HomeAddress         string
	ExternalHouseholdID string
}
