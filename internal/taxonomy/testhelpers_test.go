package taxonomy

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/internal/store"
)

// memStore wraps the in-memory store with a fault knob, so tests can
// interrupt a reconcile mid-reassignment.
type memStore struct {
	*store.MemoryStore

	failPatchBusiness bool
}

func newMemStore() *memStore {
	return &memStore{MemoryStore: store.NewMemory()}
}

func (m *memStore) PatchBusiness(ctx context.Context, id string, p model.BusinessPatch) error {
	if m.failPatchBusiness {
		return eris.New("injected patch failure")
	}
	return m.MemoryStore.PatchBusiness(ctx, id, p)
}
