package importer

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

const isoDate = "2006-01-02"

var (
	digitPattern      = regexp.MustCompile(`[0-9]`)
	letterPattern     = regexp.MustCompile(`\p{L}`)
	personNamePattern = regexp.MustCompile(`^[\p{L} '\-]+$`)
	initialPattern    = regexp.MustCompile(`^\p{L}+\.?$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ssnPattern        = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
)

// rowRules mirrors the validated ImportRow fields. Each field reports at most
// its first failing rule; all fields are checked.
type rowRules struct {
	FirstName       string `validate:"nodigits,min=2,personname"`
	LastName        string `validate:"nodigits,min=2,personname"`
	MiddleName      string `validate:"omitempty,nodigits,middlename"`
	MobileNumber    string `validate:"omitempty,noletters"`
	HomePhone       string `validate:"omitempty,noletters"`
	MaritalStatus   string `validate:"omitempty,nodigits"`
	TaxFilingStatus string `validate:"omitempty,nodigits"`
	Email           string `validate:"omitempty,emailshape"`
	DOB             string `validate:"omitempty,calendardate,notfuture"`
	SSN             string `validate:"omitempty,ssn"`
}

var fieldLabels = map[string]string{
	"FirstName":       "First name",
	"LastName":        "Last name",
	"MiddleName":      "Middle name",
	"MobileNumber":    "Mobile number",
	"HomePhone":       "Home phone",
	"MaritalStatus":   "Marital status",
	"TaxFilingStatus": "Tax filing status",
	"Email":           "Email",
	"DOB":             "Date of birth",
	"SSN":             "SSN",
}

// FieldValidator applies the per-field business rules to a normalized row.
type FieldValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewFieldValidator(now func() time.Time) *FieldValidator {
	if now == nil {
		now = time.Now
	}

	v := &FieldValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
	v.register("nodigits", func(s string) bool { return !digitPattern.MatchString(s) })
	v.register("noletters", func(s string) bool { return !letterPattern.MatchString(s) })
	v.register("personname", personNamePattern.MatchString)
	v.register("middlename", validMiddleName)
	v.register("emailshape", emailPattern.MatchString)
	v.register("ssn", ssnPattern.MatchString)
	v.register("calendardate", func(s string) bool {
		_, err := time.Parse(isoDate, s)
		return err == nil
	})
	v.register("notfuture", v.notFuture)
	return v
}

func (v *FieldValidator) register(tag string, fn func(string) bool) {
	// Registration only fails on an empty tag or nil func.
	_ = v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

func (v *FieldValidator) notFuture(s string) bool {
	dob, err := time.Parse(isoDate, s)
	if err != nil {
		return true
	}
	return !dob.After(calendarDate(v.now()))
}

// Validate returns nil, a *RequiredFieldError, or a *ValidationError.
func (v *FieldValidator) Validate(row domain.ImportRow) error {
	var missing []string
	if strings.TrimSpace(row.FirstName) == "" {
		missing = append(missing, "First Name")
	}
	if strings.TrimSpace(row.LastName) == "" {
		missing = append(missing, "Last Name")
	}
	if len(missing) > 0 {
		return &RequiredFieldError{Fields: missing}
	}

	err := v.validate.Struct(rulesFor(row))
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Violations: []string{err.Error()}}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, violationMessage(fe))
	}
	return &ValidationError{Violations: violations}
}

func rulesFor(row domain.ImportRow) rowRules {
	dob := row.DOBRaw
	if row.DOB != nil {
		dob = row.DOB.Format(isoDate)
	}
	return rowRules{
		FirstName:       strings.TrimSpace(row.FirstName),
		LastName:        strings.TrimSpace(row.LastName),
		MiddleName:      strings.TrimSpace(row.MiddleName),
		MobileNumber:    row.MobileNumber,
		HomePhone:       row.HomePhone,
		MaritalStatus:   row.MaritalStatus,
		TaxFilingStatus: row.TaxFilingStatus,
		Email:           row.Email,
		DOB:             dob,
		SSN:             row.SSN,
	}
}

// Initials of up to two characters may end with a period.
func validMiddleName(s string) bool {
	if utf8.RuneCountInString(s) <= 2 && initialPattern.MatchString(s) {
		return true
	}
	return personNamePattern.MatchString(s)
}

func violationMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.StructField()]
	switch fe.Tag() {
	case "nodigits":
		return label + " must not contain numbers"
	case "noletters":
		return label + " must not contain letters"
	case "min":
		return label + " must be at least " + fe.Param() + " characters long"
	case "personname":
		return label + " may only contain letters, spaces, hyphens and apostrophes"
	case "middlename":
		return label + " may only contain letters, spaces, hyphens and apostrophes, or be an initial"
	case "emailshape":
		return "Invalid email format"
	case "ssn":
		return "SSN must be in the format XXX-XX-XXXX"
	case "calendardate":
		return label + " is not a valid date"
	case "notfuture":
		return label + " cannot be in the future"
	default:
		return label + " is invalid"
	}
}
