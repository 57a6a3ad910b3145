package repository

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	"github.com/mohammadpnp/household-import/internal/infrastructure/db/models"
)

// HouseholdRepository is the gorm-backed document store used by imports.
type HouseholdRepository struct {
	db *gorm.DB
}

func NewHouseholdRepository(db *gorm.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

func (r *HouseholdRepository) FindClientsByName(ctx context.Context, ownerID, firstName, lastName string) ([]domain.Client, error) {
	var rows []models.Client

	err := r.db.WithContext(ctx).
		Joins("JOIN households ON households.id = clients.household_id").
		Where("households.owner_id = ?", ownerID).
		Where("LOWER(TRIM(clients.first_name)) = ?", strings.ToLower(strings.TrimSpace(firstName))).
		Where("LOWER(TRIM(clients.last_name)) = ?", strings.ToLower(strings.TrimSpace(lastName))).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "find clients by name")
	}

	clients := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, toDomainClient(row))
	}
	return clients, nil
}

func (r *HouseholdRepository) FindHouseholdByExternalID(ctx context.Context, ownerID, externalID string) (*domain.Household, error) {
	var row models.Household

	err := r.db.WithContext(ctx).
		First(&row, "owner_id = ? AND external_household_id = ?", ownerID, externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find household by external id")
	}

	h := toDomainHousehold(row)
	return &h, nil
}

func (r *HouseholdRepository) FindHouseholdByID(ctx context.Context, ownerID, householdID string) (*domain.Household, error) {
	var row models.Household

	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND owner_id = ?", householdID, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHouseholdNotFound
		}
		return nil, errors.Wrap(err, "find household by id")
	}

	h := toDomainHousehold(row)
	return &h, nil
}

func (r *HouseholdRepository) CreateHousehold(ctx context.Context, in domain.NewHousehold) (*domain.Household, error) {
	row := models.Household{
		ID:                  uuid.NewString(),
		InternalCode:        in.InternalCode,
		ExternalHouseholdID: nullableText(in.ExternalHouseholdID),
		OwnerID:             in.OwnerID,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "create household")
	}

	h := toDomainHousehold(row)
	return &h, nil
}

func (r *HouseholdRepository) CreateClient(ctx context.Context, client domain.Client) (domain.Client, error) {
	row := toDBClient(client)
	row.ID = uuid.NewString()

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Client{}, errors.Wrap(err, "create client")
	}
	return toDomainClient(row), nil
}

func (r *HouseholdRepository) UpdateClient(ctx context.Context, clientID string, patch domain.ClientPatch) (domain.Client, error) {
	var updated models.Client

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Client{}).
			Where("id = ?", clientID).
			Updates(patchColumns(patch))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&updated, "id = ?", clientID).Error
	})
	if err != nil {
		return domain.Client{}, errors.Wrapf(err, "update client %s", clientID)
	}
	return toDomainClient(updated), nil
}

func (r *HouseholdRepository) SaveHousehold(ctx context.Context, h *domain.Household) error {
	result := r.db.WithContext(ctx).
		Model(&models.Household{}).
		Where("id = ? AND owner_id = ?", h.ID, h.OwnerID).
		Updates(map[string]any{
			"head_of_client_id":   h.HeadOfClientID,
			"total_account_value": h.TotalAccountValue,
		})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "save household %s", h.ID)
	}
	if result.RowsAffected == 0 {
		return domain.ErrHouseholdNotFound
	}
	return nil
}

func patchColumns(patch domain.ClientPatch) map[string]any {
	columns := make(map[string]any)
	if patch.MiddleName != nil {
		columns["middle_name"] = *patch.MiddleName
	}
	if patch.DOB != nil {
		columns["dob"] = *patch.DOB
	}
	if patch.SSN != nil {
		columns["ssn"] = *patch.SSN
	}
	if patch.TaxFilingStatus != nil {
		columns["tax_filing_status"] = *patch.TaxFilingStatus
	}
	if patch.MaritalStatus != nil {
		columns["marital_status"] = *patch.MaritalStatus
	}
	if patch.MobileNumber != nil {
		columns["mobile_number"] = *patch.MobileNumber
	}
	if patch.HomePhone != nil {
		columns["home_phone"] = *patch.HomePhone
	}
	if patch.Email != nil {
		columns["email"] = *patch.Email
	}
	if patch.HomeAddress != nil {
		columns["home_address"] = *patch.HomeAddress
	}
	return columns
}

func toDomainHousehold(row models.Household) domain.Household {
	h := domain.Household{
		ID:                row.ID,
		InternalCode:      row.InternalCode,
		OwnerID:           row.OwnerID,
		HeadOfClientID:    row.HeadOfClientID,
		TotalAccountValue: row.TotalAccountValue,
	}
	if row.ExternalHouseholdID != nil {
		h.ExternalHouseholdID = *row.ExternalHouseholdID
	}
	return h
}

func toDomainClient(row models.Client) domain.Client {
	return domain.Client{
		ID:              row.ID,
		HouseholdID:     row.HouseholdID,
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

func toDBClient(c domain.Client) models.Client {
	return models.Client{
		ID:              c.ID,
		HouseholdID:     c.HouseholdID,
		FirstName:       c.FirstName,
		MiddleName:      c.MiddleName,
		LastName:        c.LastName,
		DOB:             c.DOB,
		SSN:             c.SSN,
		TaxFilingStatus: c.TaxFilingStatus,
		MaritalStatus:   c.MaritalStatus,
		MobileNumber:    c.MobileNumber,
		HomePhone:       c.HomePhone,
		Email:           c.Email,
		HomeAddress:     c.HomeAddress,
	}
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
