package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/store"
)

// CleanupResult summarizes one placeholder purge.
type CleanupResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// Cleanup deletes businesses recognized as placeholder/sample data by
// their placeId prefix. Per-row failures are logged and counted; the
// sweep continues.
func Cleanup(ctx context.Context, st store.Store) (*CleanupResult, error) {
	businesses, err := st.ListBusinesses(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "importer: cleanup: list businesses")
	}

	res := &CleanupResult{Total: len(businesses)}
	for _, b := range businesses {
		if !b.IsSample() {
			continue
		}
		if err := st.DeleteBusiness(ctx, b.ID); err != nil {
			zap.L().Error("cleanup delete failed",
				zap.String("id", b.ID),
				zap.String("name", b.Name),
				zap.Error(err),
			)
			res.Failed++
			continue
		}
		res.Deleted++
		zap.L().Info("deleted sample business",
			zap.String("name", b.Name),
			zap.String("place_id", b.PlaceID),
		)
	}
	return res, nil
}
