package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/moodytx/directory/internal/model"
)

// MemoryStore implements Store in memory. It backs local development and
// tests; the dataset is small enough that full scans cost nothing. Like
// the real backends it enforces no referential integrity and no name
// uniqueness.
type MemoryStore struct {
	mu         sync.Mutex
	seq        int
	categories map[string]model.Category
	businesses map[string]model.Business
	leases     map[string]memoryLease
}

type memoryLease struct {
	holder  string
	expires time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		categories: make(map[string]model.Category),
		businesses: make(map[string]model.Business),
		leases:     make(map[string]memoryLease),
	}
}

func (m *MemoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%03d", prefix, m.seq)
}

// --- Categories ---

func (m *MemoryStore) ListCategories(context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetCategory(_ context.Context, id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryStore) CreateCategory(_ context.Context, c model.Category) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = m.nextID("cat")
	}
	m.categories[c.ID] = c
	return c.ID, nil
}

func (m *MemoryStore) PatchCategory(_ context.Context, id string, p model.CategoryPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return eris.Errorf("memory: category not found: %s", id)
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
	m.categories[id] = c
	return nil
}

func (m *MemoryStore) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return eris.Errorf("memory: category not found: %s", id)
	}
	delete(m.categories, id)
	return nil
}

// --- Businesses ---

func (m *MemoryStore) ListBusinesses(context.Context) ([]model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Business, 0, len(m.businesses))
	for _, b := range m.businesses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ListBusinessesByCategory(ctx context.Context, categoryID string) ([]model.Business, error) {
	all, err := m.ListBusinesses(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Business
	for _, b := range all {
		if b.CategoryID == categoryID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetBusiness(_ context.Context, id string) (*model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *MemoryStore) CreateBusiness(_ context.Context, b model.Business) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = m.nextID("biz")
	}
	m.businesses[b.ID] = b
	return b.ID, nil
}

func (m *MemoryStore) PatchBusiness(_ context.Context, id string, p model.BusinessPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return eris.Errorf("memory: business not found: %s", id)
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Address != nil {
		b.Address = *p.Address
	}
	if p.PhoneNumber != nil {
		b.PhoneNumber = *p.PhoneNumber
	}
	if p.Website != nil {
		b.Website = *p.Website
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	if p.Hours != nil {
		b.Hours = *p.Hours
	}
	if p.Photos != nil {
		b.Photos = *p.Photos
	}
	if p.CategoryID != nil {
		b.CategoryID = *p.CategoryID
	}
	if p.LastUpdated != nil {
		b.LastUpdated = *p.LastUpdated
	}
	m.businesses[id] = b
	return nil
}

func (m *MemoryStore) DeleteBusiness(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.businesses[id]; !ok {
		return eris.Errorf("memory: business not found: %s", id)
	}
	delete(m.businesses, id)
	return nil
}

func (m *MemoryStore) DeleteAllBusinesses(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.businesses)
	m.businesses = make(map[string]model.Business)
	return n, nil
}

// --- Leases ---

func (m *MemoryStore) AcquireLease(_ context.Context, name, holder string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if l, ok := m.leases[name]; ok && l.expires.After(now) && l.holder != holder {
		return false, nil
	}
	m.leases[name] = memoryLease{holder: holder, expires: now.Add(ttl)}
	return true, nil
}

func (m *MemoryStore) ReleaseLease(_ context.Context, name, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leases[name]; ok && l.holder == holder {
		delete(m.leases, name)
	}
	return nil
}

// --- Lifecycle ---

func (m *MemoryStore) Migrate(context.Context) error { return nil }
func (m *MemoryStore) Close() error                  { return nil }
