package taxonomy

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/internal/store"
)

// ReconcileResult summarizes one taxonomy reconciliation run.
type ReconcileResult struct {
	Created              int `json:"created"`
	Updated              int `json:"updated"`
	Deleted              int `json:"deleted"`
	BusinessesReassigned int `json:"businesses_reassigned"`
}

// Reconciler converges the categories collection to the canonical list.
//
// The store has no cross-call transactions, so the reconciler is written
// to leave a valid state behind at every step: a category is only ever
// deleted after all of its businesses have been reassigned. Re-running
// after an interruption is safe and converges to the same end state.
type Reconciler struct {
	store store.Store
	log   *zap.Logger

	// Unwanted lists legacy category names to delete first, ahead of
	// the general non-canonical sweep. Optional.
	Unwanted []string
}

// NewReconciler creates a taxonomy reconciler.
func NewReconciler(st store.Store) *Reconciler {
	return &Reconciler{store: st, log: zap.L()}
}

// Reconcile makes the categories collection exactly match Canonical():
// creates missing canonical categories, patches metadata on existing
// ones, merges duplicate names, and deletes non-canonical categories
// after reassigning their businesses to the fallback category.
func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	existing, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: list categories")
	}

	// Store order is arbitrary but stable; the first id per name becomes
	// the canonical id, the rest are duplicates to merge away.
	byName := make(map[string][]model.Category)
	for _, c := range existing {
		byName[c.Name] = append(byName[c.Name], c)
	}

	res := &ReconcileResult{}
	canonicalIDs := make(map[string]string, len(canonical))

	for _, spec := range canonical {
		dups := byName[spec.Name]
		if len(dups) == 0 {
			id, err := r.store.CreateCategory(ctx, model.Category{
				Name:        spec.Name,
				Icon:        spec.Icon,
				ImageURL:    spec.ImageURL,
				Description: spec.Description,
				Order:       spec.Order,
			})
			if err != nil {
				return res, eris.Wrapf(err, "taxonomy: create category %q", spec.Name)
			}
			canonicalIDs[spec.Name] = id
			res.Created++
			r.log.Info("created canonical category",
				zap.String("name", spec.Name),
				zap.String("id", id),
			)
			continue
		}

		keeper := dups[0]
		canonicalIDs[spec.Name] = keeper.ID
		if err := r.store.PatchCategory(ctx, keeper.ID, canonicalPatch(spec)); err != nil {
			return res, eris.Wrapf(err, "taxonomy: patch category %q", spec.Name)
		}
		res.Updated++

		for _, dup := range dups[1:] {
			moved, err := r.retireCategory(ctx, dup, keeper.ID)
			if err != nil {
				return res, err
			}
			res.BusinessesReassigned += moved
			res.Deleted++
			r.log.Info("merged duplicate category",
				zap.String("name", spec.Name),
				zap.String("duplicate_id", dup.ID),
				zap.String("canonical_id", keeper.ID),
				zap.Int("businesses_moved", moved),
			)
		}
	}

	fallbackID := canonicalIDs[FallbackCategory]
	if fallbackID == "" {
		return res, eris.Errorf("taxonomy: fallback category %q missing after create pass", FallbackCategory)
	}

	// Explicitly unwanted names go first, then everything else that is
	// not canonical. Names already consumed as duplicates above no
	// longer exist, so the sweep below naturally skips them.
	leftover := make([]model.Category, 0)
	for name, cats := range byName {
		if IsCanonical(name) {
			continue
		}
		leftover = append(leftover, cats...)
	}
	sort.Slice(leftover, func(i, j int) bool { return leftover[i].Name < leftover[j].Name })
	ordered := orderUnwantedFirst(leftover, r.Unwanted)

	for _, c := range ordered {
		moved, err := r.retireCategory(ctx, c, fallbackID)
		if err != nil {
			return res, err
		}
		res.BusinessesReassigned += moved
		res.Deleted++
		r.log.Info("deleted non-canonical category",
			zap.String("name", c.Name),
			zap.String("id", c.ID),
			zap.Int("businesses_moved", moved),
		)
	}

	return res, nil
}

// retireCategory moves every business referencing c to targetID, then
// deletes c. Reassignment is a precondition for deletion, never a
// parallel step: if this is interrupted midway the category survives
// with a subset of its businesses and a re-run finishes the job.
func (r *Reconciler) retireCategory(ctx context.Context, c model.Category, targetID string) (int, error) {
	businesses, err := r.store.ListBusinessesByCategory(ctx, c.ID)
	if err != nil {
		return 0, eris.Wrapf(err, "taxonomy: list businesses for category %q", c.Name)
	}

	now := model.NowMillis()
	for _, b := range businesses {
		patch := model.BusinessPatch{CategoryID: &targetID, LastUpdated: &now}
		if err := r.store.PatchBusiness(ctx, b.ID, patch); err != nil {
			return 0, eris.Wrapf(err, "taxonomy: reassign business %q", b.Name)
		}
	}

	if err := r.store.DeleteCategory(ctx, c.ID); err != nil {
		return len(businesses), eris.Wrapf(err, "taxonomy: delete category %q", c.Name)
	}
	return len(businesses), nil
}

func canonicalPatch(spec CategorySpec) model.CategoryPatch {
	return model.CategoryPatch{
		Icon:        &spec.Icon,
		ImageURL:    &spec.ImageURL,
		Description: &spec.Description,
		Order:       &spec.Order,
	}
}

func orderUnwantedFirst(cats []model.Category, unwanted []string) []model.Category {
	if len(unwanted) == 0 {
		return cats
	}
	priority := make(map[string]bool, len(unwanted))
	for _, n := range unwanted {
		priority[n] = true
	}
	ordered := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		if priority[c.Name] {
			ordered = append(ordered, c)
		}
	}
	for _, c := range cats {
		if !priority[c.Name] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
