package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/internal/store"
	"github.com/moodytx/directory/internal/taxonomy"
)

// Result summarizes one import run.
type Result struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Deleted int `json:"deleted,omitempty"`
}

// Reconciler merges candidate records into the businesses collection,
// keyed on placeId. A candidate whose placeId is already stored patches
// the existing row in place (the data stays fresh); a new placeId
// inserts. Running the same candidate list twice never creates a second
// row for the same placeId.
type Reconciler struct {
	store store.Store
	log   *zap.Logger

	// Replace deletes every stored business before importing.
	Replace bool
}

// NewReconciler creates an import reconciler.
func NewReconciler(st store.Store) *Reconciler {
	return &Reconciler{store: st, log: zap.L()}
}

// Run reconciles candidates against the store in input order. Failures
// on one candidate are logged and counted, never fatal to the batch.
func (r *Reconciler) Run(ctx context.Context, candidates []model.Candidate) (*Result, error) {
	res := &Result{}

	if r.Replace {
		n, err := r.store.DeleteAllBusinesses(ctx)
		if err != nil {
			return res, eris.Wrap(err, "importer: delete all businesses")
		}
		res.Deleted = n
		r.log.Info("replaced existing businesses", zap.Int("deleted", n))
	}

	categoryIDs, err := r.loadCategoryIDs(ctx)
	if err != nil {
		return res, err
	}

	existing, err := r.store.ListBusinesses(ctx)
	if err != nil {
		return res, eris.Wrap(err, "importer: list businesses")
	}
	byPlaceID := make(map[string]model.Business, len(existing))
	for _, b := range existing {
		byPlaceID[b.PlaceID] = b
	}

	for _, c := range candidates {
		if c.PlaceID == "" {
			r.log.Warn("candidate without place_id", zap.String("name", c.Name))
			res.Failed++
			continue
		}

		if prev, ok := byPlaceID[c.PlaceID]; ok {
			if err := r.refresh(ctx, prev, c, categoryIDs); err != nil {
				r.log.Error("refresh failed",
					zap.String("place_id", c.PlaceID),
					zap.String("name", c.Name),
					zap.Error(err),
				)
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		inserted, err := r.insert(ctx, c, categoryIDs)
		if err != nil {
			r.log.Error("insert failed",
				zap.String("place_id", c.PlaceID),
				zap.String("name", c.Name),
				zap.Error(err),
			)
			res.Failed++
			continue
		}
		if inserted == nil {
			res.Skipped++
			continue
		}
		// Register the insert so the same placeId recurring later in
		// this batch (possible across different source queries) becomes
		// an update, not a duplicate row.
		byPlaceID[c.PlaceID] = *inserted
		res.Added++
	}

	r.log.Info("import reconcile complete",
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (r *Reconciler) loadCategoryIDs(ctx context.Context) (map[string]string, error) {
	cats, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "importer: list categories")
	}
	ids := make(map[string]string, len(cats))
	for _, c := range cats {
		// First id per name wins; the taxonomy reconciler removes
		// duplicates, but an import may run against a pre-reconciled
		// collection.
		if _, ok := ids[c.Name]; !ok {
			ids[c.Name] = c.ID
		}
	}
	return ids, nil
}

// insert classifies and creates a new business. Returns nil (no error)
// when the candidate's category cannot be resolved to a stored id; a
// business must never be inserted with an invalid category reference.
func (r *Reconciler) insert(ctx context.Context, c model.Candidate, categoryIDs map[string]string) (*model.Business, error) {
	categoryName := taxonomy.Classify(c.Types, c.Name, c.Address)
	categoryID, ok := categoryIDs[categoryName]
	if !ok {
		r.log.Warn("no stored category for candidate, skipping",
			zap.String("name", c.Name),
			zap.String("category", categoryName),
		)
		return nil, nil
	}

	b := model.Business{
		Name:        c.Name,
		Address:     c.Address,
		PhoneNumber: c.PhoneNumber,
		Website:     c.Website,
		Description: c.Description,
		Rating:      c.Rating,
		Hours:       c.Hours,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Photos:      c.Photos,
		CategoryID:  categoryID,
		PlaceID:     c.PlaceID,
		LastUpdated: model.NowMillis(),
	}
	id, err := r.store.CreateBusiness(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return &b, nil
}

// refresh patches the mutable fields of an existing business from the
// candidate and bumps lastUpdated. The category is re-resolved so a
// reclassified business moves on its next import.
func (r *Reconciler) refresh(ctx context.Context, prev model.Business, c model.Candidate, categoryIDs map[string]string) error {
	now := model.NowMillis()
	patch := model.BusinessPatch{
		Address:     &c.Address,
		PhoneNumber: &c.PhoneNumber,
		Website:     &c.Website,
		Rating:      &c.Rating,
		Hours:       &c.Hours,
		LastUpdated: &now,
	}
	if len(c.Photos) > 0 {
		patch.Photos = &c.Photos
	}
	categoryName := taxonomy.Classify(c.Types, c.Name, c.Address)
	if id, ok := categoryIDs[categoryName]; ok && id != prev.CategoryID {
		patch.CategoryID = &id
	}
	return r.store.PatchBusiness(ctx, prev.ID, patch)
}
