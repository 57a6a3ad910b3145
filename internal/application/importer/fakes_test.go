package importer_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// memoryStore is an in-memory document store with failure injection.
type memoryStore struct {
	mu         sync.Mutex
	households map[string]*domain.Household
	clients    map[string]*domain.Client
	seq        int

	createClientErr  error
	saveHouseholdErr error
	findErr          error
	findHouseholdErr error

	clientCreates    int
	clientUpdates    int
	householdCreates int
	householdSaves   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		households: make(map[string]*domain.Household),
		clients:    make(map[string]*domain.Client),
	}
}

func (s *memoryStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memoryStore) FindClientsByName(_ context.Context, ownerID, firstName, lastName string) ([]domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}

	var out []domain.Client
	for _, c := range s.clients {
		h := s.households[c.HouseholdID]
		if h == nil || h.OwnerID != ownerID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(c.FirstName), firstName) &&
			strings.EqualFold(strings.TrimSpace(c.LastName), lastName) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memoryStore) FindHouseholdByExternalID(_ context.Context, ownerID, externalID string) (*domain.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.households {
		if h.OwnerID == ownerID && h.ExternalHouseholdID == externalID {
			copied := *h
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) FindHouseholdByID(_ context.Context, ownerID, householdID string) (*domain.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findHouseholdErr != nil {
		return nil, s.findHouseholdErr
	}

	h, ok := s.households[householdID]
	if !ok || h.OwnerID != ownerID {
		return nil, domain.ErrHouseholdNotFound
	}
	copied := *h
	return &copied, nil
}

func (s *memoryStore) CreateHousehold(_ context.Context, in domain.NewHousehold) (*domain.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.householdCreates++
	h := &domain.Household{
		ID:                  s.nextID("hh"),
		InternalCode:        in.InternalCode,
		ExternalHouseholdID: in.ExternalHouseholdID,
		OwnerID:             in.OwnerID,
	}
	s.households[h.ID] = h
	copied := *h
	return &copied, nil
}

func (s *memoryStore) CreateClient(_ context.Context, c domain.Client) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createClientErr != nil {
		return domain.Client{}, s.createClientErr
	}

	s.clientCreates++
	c.ID = s.nextID("client")
	stored := c
	s.clients[c.ID] = &stored
	return c, nil
}

func (s *memoryStore) UpdateClient(_ context.Context, clientID string, patch domain.ClientPatch) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return domain.Client{}, fmt.Errorf("client %s not found", clientID)
	}
	s.clientUpdates++
	patch.Apply(c)
	return *c, nil
}

func (s *memoryStore) SaveHousehold(_ context.Context, h *domain.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveHouseholdErr != nil {
		return s.saveHouseholdErr
	}

	s.householdSaves++
	copied := *h
	s.households[h.ID] = &copied
	return nil
}

// seedClient stores a client under a new household owned by ownerID.
func (s *memoryStore) seedClient(ownerID string, c domain.Client) domain.Client {
	h, _ := s.CreateHousehold(context.Background(), domain.NewHousehold{OwnerID: ownerID, InternalCode: "HH-SEED"})
	c.HouseholdID = h.ID
	created, _ := s.CreateClient(context.Background(), c)
	return created
}

func (s *memoryStore) householdsOf(ownerID string) []domain.Household {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Household
	for _, h := range s.households {
		if h.OwnerID == ownerID {
			out = append(out, *h)
		}
	}
	return out
}

func (s *memoryStore) clientsIn(householdID string) []domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Client
	for _, c := range s.clients {
		if c.HouseholdID == householdID {
			out = append(out, *c)
		}
	}
	return out
}

func (s *memoryStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientCreates + s.clientUpdates + s.householdCreates + s.householdSaves
}

type publishedEvent struct {
	userID   string
	event    string
	progress domain.ImportProgress
}

// recordingChannel keeps every published event and the latest snapshot per user.
type recordingChannel struct {
	mu      sync.Mutex
	events  []publishedEvent
	current map[string]domain.ImportProgress
	err     error
}

func newRecordingChannel() *recordingChannel {
	return &recordingChannel{current: make(map[string]domain.ImportProgress)}
}

func (c *recordingChannel) Publish(_ context.Context, userID, event string, p domain.ImportProgress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, publishedEvent{userID: userID, event: event, progress: p})
	c.current[userID] = p
	return c.err
}

func (c *recordingChannel) Current(_ context.Context, userID string) (*domain.ImportProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.current[userID]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return &p, nil
}

func (c *recordingChannel) Clear(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.current, userID)
	return nil
}

func (c *recordingChannel) snapshot() []publishedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishedEvent(nil), c.events...)
}

func (c *recordingChannel) eventsNamed(name string) []publishedEvent {
	var out []publishedEvent
	for _, e := range c.snapshot() {
		if e.event == name {
			out = append(out, e)
		}
	}
	return out
}

type recordingRecorder struct {
	mu   sync.Mutex
	runs []domain.ImportRunSummary
}

func (r *recordingRecorder) RecordRun(_ context.Context, s domain.ImportRunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, s)
	return nil
}
