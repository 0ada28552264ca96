package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodytx/directory/internal/model"
)

func mustCreateCategory(t *testing.T, st *memStore, name string) string {
	t.Helper()
	id, err := st.CreateCategory(context.Background(), model.Category{Name: name})
	require.NoError(t, err)
	return id
}

func mustCreateBusiness(t *testing.T, st *memStore, name, categoryID string) string {
	t.Helper()
	id, err := st.CreateBusiness(context.Background(), model.Business{
		Name:       name,
		Address:    "123 Main St",
		CategoryID: categoryID,
		PlaceID:    "place-" + name,
	})
	require.NoError(t, err)
	return id
}

// assertNoOrphans checks the central invariant: every business points at
// an existing category.
func assertNoOrphans(t *testing.T, st *memStore) {
	t.Helper()
	ctx := context.Background()
	cats, err := st.ListCategories(ctx)
	require.NoError(t, err)
	ids := make(map[string]bool)
	for _, c := range cats {
		ids[c.ID] = true
	}
	businesses, err := st.ListBusinesses(ctx)
	require.NoError(t, err)
	for _, b := range businesses {
		assert.True(t, ids[b.CategoryID], "business %q references missing category %s", b.Name, b.CategoryID)
	}
}

func TestReconcile_EmptyStoreCreatesAllCanonical(t *testing.T) {
	st := newMemStore()
	res, err := NewReconciler(st).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(Canonical()), res.Created)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 0, res.BusinessesReassigned)

	cats, err := st.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, len(Canonical()))
	for i, spec := range Canonical() {
		assert.Equal(t, spec.Name, cats[i].Name)
		assert.Equal(t, spec.Order, cats[i].Order)
		assert.Equal(t, spec.Icon, cats[i].Icon)
	}
}

func TestReconcile_SecondRunMakesNoChanges(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	_, err := NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)

	res, err := NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 0, res.BusinessesReassigned)
	assert.Equal(t, len(Canonical()), res.Updated) // metadata-only patches
}

func TestReconcile_MergesDuplicateNames(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	first := mustCreateCategory(t, st, "Education")
	second := mustCreateCategory(t, st, "Education")
	mustCreateBusiness(t, st, "a", first)
	mustCreateBusiness(t, st, "b", second)
	mustCreateBusiness(t, st, "c", second)

	res, err := NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.BusinessesReassigned)

	// Exactly one Education category remains, holding all three.
	cats, err := st.ListCategories(ctx)
	require.NoError(t, err)
	var eduIDs []string
	for _, c := range cats {
		if c.Name == "Education" {
			eduIDs = append(eduIDs, c.ID)
		}
	}
	require.Len(t, eduIDs, 1)

	businesses, err := st.ListBusinessesByCategory(ctx, eduIDs[0])
	require.NoError(t, err)
	assert.Len(t, businesses, 3)
	assertNoOrphans(t, st)
}

func TestReconcile_NonCanonicalReassignedToFallback(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	retail := mustCreateCategory(t, st, "Retail")
	mustCreateBusiness(t, st, "a", retail)
	mustCreateBusiness(t, st, "b", retail)

	res, err := NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.BusinessesReassigned)

	cats, err := st.ListCategories(ctx)
	require.NoError(t, err)
	var fallbackID string
	for _, c := range cats {
		assert.NotEqual(t, "Retail", c.Name, "non-canonical category must be deleted")
		if c.Name == FallbackCategory {
			fallbackID = c.ID
		}
	}
	require.NotEmpty(t, fallbackID)

	businesses, err := st.ListBusinessesByCategory(ctx, fallbackID)
	require.NoError(t, err)
	assert.Len(t, businesses, 2)
	assertNoOrphans(t, st)
}

func TestReconcile_ConvergesFromMessyState(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	// Duplicates, legacy names, and a few canonical categories missing.
	r1 := mustCreateCategory(t, st, "Restaurants")
	r2 := mustCreateCategory(t, st, "Restaurants")
	legacy := mustCreateCategory(t, st, "Misc")
	mustCreateBusiness(t, st, "diner", r1)
	mustCreateBusiness(t, st, "cafe", r2)
	mustCreateBusiness(t, st, "odd", legacy)

	res, err := NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Canonical())-1, res.Created) // Restaurants existed
	assert.Equal(t, 2, res.Deleted)                  // duplicate + Misc

	cats, err := st.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(Canonical()))
	assertNoOrphans(t, st)

	// A second run converges to zero structural changes.
	res2, err := NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res2.Created)
	assert.Equal(t, 0, res2.Deleted)
}

func TestReconcile_UnwantedDeletedEvenWhenListed(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	old := mustCreateCategory(t, st, "Coming Soon")
	mustCreateBusiness(t, st, "soon", old)

	rec := NewReconciler(st)
	rec.Unwanted = []string{"Coming Soon"}
	res, err := rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BusinessesReassigned)

	cats, err := st.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, "Coming Soon", c.Name)
	}
	assertNoOrphans(t, st)
}

func TestRetireCategory_ReassignFailureLeavesCategory(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	retail := mustCreateCategory(t, st, "Retail")
	mustCreateBusiness(t, st, "a", retail)
	st.failPatchBusiness = true

	_, err := NewReconciler(st).Reconcile(ctx)
	require.Error(t, err)

	// The category with an unreassigned business must survive the
	// failed run; nothing is orphaned.
	cat, err := st.GetCategory(ctx, retail)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assertNoOrphans(t, st)

	// After the fault clears, a re-run finishes the job.
	st.failPatchBusiness = false
	_, err = NewReconciler(st).Reconcile(ctx)
	require.NoError(t, err)
	cat, err = st.GetCategory(ctx, retail)
	require.NoError(t, err)
	assert.Nil(t, cat)
	assertNoOrphans(t, st)
}
