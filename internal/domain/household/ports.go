package household

import "context"

// Store is the document store the reconciliation engine reads and writes.
// Every lookup is scoped to ownerID.
type Store interface {
	FindClientsByName(ctx context.Context, ownerID, firstName, lastName string) ([]Client, error)
	FindHouseholdByExternalID(ctx context.Context, ownerID, externalID string) (*Household, error)
	FindHouseholdByID(ctx context.Context, ownerID, householdID string) (*Household, error)
	CreateHousehold(ctx context.Context, in NewHousehold) (*Household, error)
	CreateClient(ctx context.Context, client Client) (Client, error)
	UpdateClient(ctx context.Context, clientID string, patch ClientPatch) (Client, error)
	SaveHousehold(ctx context.Context, h *Household) error
}

type HouseholdQueryRepository interface {
	GetByID(ctx context.Context, ownerID, householdID string) (*HouseholdWithClients, error)
}

// ProgressChannel publishes progress events to the initiating user and keeps
// the latest snapshot for late subscribers.
type ProgressChannel interface {
	Publish(ctx context.Context, userID, event string, progress ImportProgress) error
	Current(ctx context.Context, userID string) (*ImportProgress, error)
	Clear(ctx context.Context, userID string) error
}

// ProgressStore keeps one progress snapshot per user.
type ProgressStore interface {
	Put(ctx context.Context, userID string, progress ImportProgress) error
	Get(ctx context.Context, userID string) (*ImportProgress, error)
	Delete(ctx context.Context, userID string) error
}

type RunRecorder interface {
	RecordRun(ctx context.Context, summary ImportRunSummary) error
}

type RunHistory interface {
	ListRecent(ctx context.Context, ownerID string, limit int) ([]ImportRunSummary, error)
}
