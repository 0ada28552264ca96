package importer

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/internal/store"
	"github.com/moodytx/directory/internal/taxonomy"
)

// memStore wraps the in-memory store with fault knobs, so tests can
// force per-candidate failures mid-batch.
type memStore struct {
	*store.MemoryStore

	failCreateBusiness bool
	failPatchBusiness  bool
	failDeleteIDs      map[string]bool
}

func newMemStore() *memStore {
	return &memStore{MemoryStore: store.NewMemory()}
}

func (m *memStore) CreateBusiness(ctx context.Context, b model.Business) (string, error) {
	if m.failCreateBusiness {
		return "", eris.New("injected create failure")
	}
	return m.MemoryStore.CreateBusiness(ctx, b)
}

func (m *memStore) PatchBusiness(ctx context.Context, id string, p model.BusinessPatch) error {
	if m.failPatchBusiness {
		return eris.New("injected patch failure")
	}
	return m.MemoryStore.PatchBusiness(ctx, id, p)
}

func (m *memStore) DeleteBusiness(ctx context.Context, id string) error {
	if m.failDeleteIDs[id] {
		return eris.New("injected delete failure")
	}
	return m.MemoryStore.DeleteBusiness(ctx, id)
}

// seedCanonical creates the canonical categories and returns their ids
// keyed by name.
func seedCanonical(t *testing.T, st store.Store) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	for _, spec := range taxonomy.Canonical() {
		id, err := st.CreateCategory(context.Background(), model.Category{
			Name:  spec.Name,
			Icon:  spec.Icon,
			Order: spec.Order,
		})
		if err != nil {
			t.Fatalf("seed category %s: %v", spec.Name, err)
		}
		ids[spec.Name] = id
	}
	return ids
}
