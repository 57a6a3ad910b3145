package importer

import (
	"strings"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

const (
	TaxSingle                    = "Single"
	TaxMarriedFilingJointly      = "Married Filing Jointly"
	TaxMarriedFilingSeparately   = "Married Filing Separately"
	TaxHeadOfHousehold           = "Head of Household"
	TaxQualifyingSurvivingSpouse = "Qualifying Surviving Spouse"
)

const (
	MaritalSingle              = "Single"
	MaritalMarried             = "Married"
	MaritalDivorced            = "Divorced"
	MaritalWidowed             = "Widowed"
	MaritalSeparated           = "Separated"
	MaritalDomesticPartnership = "Domestic Partnership"
)

var taxFilingSynonyms = map[string]string{
	"single": TaxSingle,
	"s":      TaxSingle,

	"married filing jointly": TaxMarriedFilingJointly,
	"married filing joint":   TaxMarriedFilingJointly,
	"married joint":          TaxMarriedFilingJointly,
	"married jointly":        TaxMarriedFilingJointly,
	"joint":                  TaxMarriedFilingJointly,
	"mfj":                    TaxMarriedFilingJointly,

	"married filing separately": TaxMarriedFilingSeparately,
	"married filing separate":   TaxMarriedFilingSeparately,
	"married separate":          TaxMarriedFilingSeparately,
	"married separately":        TaxMarriedFilingSeparately,
	"separate":                  TaxMarriedFilingSeparately,
	"mfs":                       TaxMarriedFilingSeparately,

	"head of household": TaxHeadOfHousehold,
	"head of house":     TaxHeadOfHousehold,
	"head household":    TaxHeadOfHousehold,
	"hoh":               TaxHeadOfHousehold,

	"qualifying surviving spouse": TaxQualifyingSurvivingSpouse,
	"qualifying widow":            TaxQualifyingSurvivingSpouse,
	"qualifying widower":          TaxQualifyingSurvivingSpouse,
	"qualifying widow(er)":        TaxQualifyingSurvivingSpouse,
	"surviving spouse":            TaxQualifyingSurvivingSpouse,
	"qss":                         TaxQualifyingSurvivingSpouse,
	"qw":                          TaxQualifyingSurvivingSpouse,
}

var maritalSynonyms = map[string]string{
	"single":        MaritalSingle,
	"s":             MaritalSingle,
	"never married": MaritalSingle,
	"unmarried":     MaritalSingle,

	"married": MaritalMarried,
	"m":       MaritalMarried,

	"divorced": MaritalDivorced,
	"d":        MaritalDivorced,

	"widowed": MaritalWidowed,
	"widow":   MaritalWidowed,
	"widower": MaritalWidowed,
	"w":       MaritalWidowed,

	"separated":         MaritalSeparated,
	"legally separated": MaritalSeparated,

	"domestic partnership": MaritalDomesticPartnership,
	"domestic partner":     MaritalDomesticPartnership,
	"civil union":          MaritalDomesticPartnership,
	"partnered":            MaritalDomesticPartnership,
	"dp":                   MaritalDomesticPartnership,
}

// NormalizeStatuses rewrites the tax filing and marital status of row to their
// canonical labels. Unrecognized text fails instead of defaulting.
func NormalizeStatuses(row domain.ImportRow) (domain.ImportRow, error) {
	tax, err := canonicalStatus(taxFilingSynonyms, "tax filing status", row.TaxFilingStatus)
	if err != nil {
		return row, err
	}
	marital, err := canonicalStatus(maritalSynonyms, "marital status", row.MaritalStatus)
	if err != nil {
		return row, err
	}

	row.TaxFilingStatus = tax
	row.MaritalStatus = marital
	return row, nil
}

func canonicalStatus(table map[string]string, field, value string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(value), " "))
	if key == "" {
		return "", nil
	}
	canonical, ok := table[key]
	if !ok {
		return "", &StatusNormalizationError{Field: field, Value: value}
	}
	return canonical, nil
}
