package household

import "errors"

var (
	ErrMissingOwner       = errors.New("missing owner id")
	ErrInvalidHouseholdID = errors.New("invalid household id")
	ErrHouseholdNotFound  = errors.New("household not found")
	ErrGetHousehold       = errors.New("failed to get household")
)
