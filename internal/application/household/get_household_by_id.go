package household

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type GetHouseholdByIDInput struct {
	OwnerID string
	ID      string
}

type GetHouseholdClientOutput struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name,omitempty"`
	LastName        string `json:"last_name"`
	DOB             string `json:"dob,omitempty"`
	TaxFilingStatus string `json:"tax_filing_status,omitempty"`
	MaritalStatus   string `json:"marital_status,omitempty"`
	MobileNumber    string `json:"mobile_number,omitempty"`
	HomePhone       string `json:"home_phone,omitempty"`
	Email           string `json:"email,omitempty"`
	HomeAddress     string `json:"home_address,omitempty"`
	IsHead          bool   `json:"is_head"`
}

type GetHouseholdByIDOutput struct {
	ID                  string                     `json:"id"`
	InternalCode        string                     `json:"internal_code"`
	ExternalHouseholdID string                     `json:"external_household_id,omitempty"`
	TotalAccountValue   string                     `json:"total_account_value"`
	Clients             []GetHouseholdClientOutput `json:"clients"`
}

type GetHouseholdByID interface {
	Execute(ctx context.Context, in GetHouseholdByIDInput) (GetHouseholdByIDOutput, error)
}

type getHouseholdByID struct {
	repo domain.HouseholdQueryRepository
}

func NewGetHouseholdByID(repo domain.HouseholdQueryRepository) GetHouseholdByID {
	return &getHouseholdByID{repo: repo}
}

func (uc *getHouseholdByID) Execute(ctx context.Context, in GetHouseholdByIDInput) (GetHouseholdByIDOutput, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return GetHouseholdByIDOutput{}, ErrMissingOwner
	}
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetHouseholdByIDOutput{}, ErrInvalidHouseholdID
	}

	aggregate, err := uc.repo.GetByID(ctx, in.OwnerID, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrHouseholdNotFound) {
			return GetHouseholdByIDOutput{}, ErrHouseholdNotFound
		}
		return GetHouseholdByIDOutput{}, fmt.Errorf("%w: %v", ErrGetHousehold, err)
	}

	h := aggregate.Household
	clients := make([]GetHouseholdClientOutput, 0, len(aggregate.Clients))
	for _, c := range aggregate.Clients {
		out := GetHouseholdClientOutput{
			ID:              c.ID,
			FirstName:       c.FirstName,
			MiddleName:      c.MiddleName,
			LastName:        c.LastName,
			TaxFilingStatus: c.TaxFilingStatus,
			MaritalStatus:   c.MaritalStatus,
			MobileNumber:    c.MobileNumber,
			HomePhone:       c.HomePhone,
			Email:           c.Email,
			HomeAddress:     c.HomeAddress,
			IsHead:          h.HeadOfClientID != nil && *h.HeadOfClientID == c.ID,
		}
		if c.DOB != nil {
			out.DOB = c.DOB.Format("2006-01-02")
		}
		clients = append(clients, out)
	}

	return GetHouseholdByIDOutput{
		ID:                  h.ID,
		InternalCode:        h.InternalCode,
		ExternalHouseholdID: h.ExternalHouseholdID,
		TotalAccountValue:   h.TotalAccountValue.StringFixed(2),
		Clients:             clients,
	}, nil
}
