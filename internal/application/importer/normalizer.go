package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// Spreadsheet serial dates count days from this epoch.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"1-2-2006",
	"1/2/06",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Normalizer projects raw spreadsheet cells onto an ImportRow.
type Normalizer struct {
	mapping domain.ColumnMapping
}

func NewNormalizer(mapping domain.ColumnMapping) (*Normalizer, error) {
	if len(mapping) == 0 {
		return nil, domain.ErrEmptyMapping
	}
	for field, index := range mapping {
		if !field.Valid() {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidMapping, field)
		}
		if index < 0 {
			return nil, fmt.Errorf("%w: negative column index %d for %q", domain.ErrInvalidMapping, index, field)
		}
	}

	copied := make(domain.ColumnMapping, len(mapping))
	for field, index := range mapping {
		copied[field] = index
	}
	return &Normalizer{mapping: copied}, nil
}

func (n *Normalizer) Normalize(cells []any) domain.ImportRow {
	row := domain.ImportRow{
		FirstName:           n.text(cells, domain.FieldFirstName),
		MiddleName:          n.text(cells, domain.FieldMiddleName),
		LastName:            n.text(cells, domain.FieldLastName),
		SSN:                 n.text(cells, domain.FieldSSN),
		TaxFilingStatus:     n.text(cells, domain.FieldTaxFilingStatus),
		MaritalStatus:       n.text(cells, domain.FieldMaritalStatus),
		MobileNumber:        n.text(cells, domain.FieldMobileNumber),
		HomePhone:           n.text(cells, domain.FieldHomePhone),
		Email:               n.text(cells, domain.FieldEmail),
		HomeAddress:         n.text(cells, domain.FieldHomeAddress),
		ExternalHouseholdID: n.text(cells, domain.FieldExternalHouseholdID),
	}

	if cell, ok := n.cell(cells, domain.FieldDOB); ok {
		row.DOB, row.DOBRaw = dateCell(cell)
	}
	return row
}

func (n *Normalizer) cell(cells []any, field domain.Field) (any, bool) {
	index, ok := n.mapping[field]
	if !ok || index >= len(cells) {
		return nil, false
	}
	return cells[index], true
}

func (n *Normalizer) text(cells []any, field domain.Field) string {
	cell, ok := n.cell(cells, field)
	if !ok {
		return ""
	}
	return cellText(cell)
}

func cellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// dateCell returns the calendar date of a cell, or the trimmed source text when
// it cannot be read as a date.
func dateCell(cell any) (*time.Time, string) {
	switch v := cell.(type) {
	case nil:
		return nil, ""
	case float64:
		return serialDate(v)
	case float32:
		return serialDate(float64(v))
	case int:
		return serialDate(float64(v))
	case int64:
		return serialDate(float64(v))
	case time.Time:
		d := calendarDate(v)
		return &d, ""
	}

	raw := cellText(cell)
	if raw == "" {
		return nil, ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d := calendarDate(t)
			return &d, ""
		}
	}
	return nil, raw
}

func serialDate(serial float64) (*time.Time, string) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 {
		return nil, strconv.FormatFloat(serial, 'f', -1, 64)
	}
	d := spreadsheetEpoch.AddDate(0, 0, int(math.Floor(serial)))
	return &d, ""
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
