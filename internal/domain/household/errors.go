package household

import "errors"

var (
	ErrEmptyMapping      = errors.New("column mapping is empty")
	ErrInvalidMapping    = errors.New("invalid column mapping")
	ErrHouseholdNotFound = errors.New("household not found")
	ErrProgressNotFound  = errors.New("import progress not found")
)
