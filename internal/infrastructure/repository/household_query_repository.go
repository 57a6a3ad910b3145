package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	"github.com/mohammadpnp/household-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type HouseholdQueryRepository struct {
	db *gorm.DB
}

func NewHouseholdQueryRepository(db *gorm.DB) *HouseholdQueryRepository {
	return &HouseholdQueryRepository{db: db}
}

func (r *HouseholdQueryRepository) GetByID(ctx context.Context, ownerID, householdID string) (*domain.HouseholdWithClients, error) {
	var row models.Household

	err := r.db.WithContext(ctx).
		Preload("Clients", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&row, "id = ? AND owner_id = ?", householdID, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("get household by id: %w", err)
	}

	clients := make([]domain.Client, 0, len(row.Clients))
	for _, client := range row.Clients {
		clients = append(clients, toDomainClient(client))
	}

	return &domain.HouseholdWithClients{
		Household: toDomainHousehold(row),
		Clients:   clients,
	}, nil
}
