package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// NewHouseholdCode generates a system household code such as HH-3F9A1C07B2D4.
func NewHouseholdCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "HH-" + strings.ToUpper(id[:12])
}

// HouseholdGrouper maps external household ids to households for one run.
// A given external id yields at most one household per run; rows without one
// always get a fresh household.
type HouseholdGrouper struct {
	store   domain.Store
	ownerID string
	newCode func() string
	cache   map[string]*domain.Household
}

func NewHouseholdGrouper(store domain.Store, ownerID string, newCode func() string) *HouseholdGrouper {
	if newCode == nil {
		newCode = NewHouseholdCode
	}
	return &HouseholdGrouper{
		store:   store,
		ownerID: ownerID,
		newCode: newCode,
		cache:   make(map[string]*domain.Household),
	}
}

func (g *HouseholdGrouper) Resolve(ctx context.Context, externalID string) (*domain.Household, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return g.create(ctx, "")
	}

	if h, ok := g.cache[externalID]; ok {
		return h, nil
	}

	h, err := g.store.FindHouseholdByExternalID(ctx, g.ownerID, externalID)
	if err != nil {
		return nil, fmt.Errorf("find household %q: %w", externalID, err)
	}
	if h == nil {
		h, err = g.create(ctx, externalID)
		if err != nil {
			return nil, err
		}
	}

	g.cache[externalID] = h
	return h, nil
}

func (g *HouseholdGrouper) create(ctx context.Context, externalID string) (*domain.Household, error) {
	h, err := g.store.CreateHousehold(ctx, domain.NewHousehold{
		OwnerID:             g.ownerID,
		InternalCode:        g.newCode(),
		ExternalHouseholdID: externalID,
	})
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	return h, nil
}
