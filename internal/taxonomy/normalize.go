package taxonomy

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/internal/store"
)

// NormalizeResult summarizes one image URL normalization run.
type NormalizeResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// NormalizeImageURLs rewrites every category imageUrl that is a
// root-relative path into prefix + path. Categories already holding an
// absolute URL (or no URL) are skipped.
//
// The predicate is exactly "starts with /". Checking against the prefix
// instead would double-prefix on a later run with a different prefix.
func NormalizeImageURLs(ctx context.Context, st store.Store, prefix string) (*NormalizeResult, error) {
	if prefix == "" {
		return nil, eris.New("taxonomy: normalize: empty URL prefix")
	}
	prefix = strings.TrimSuffix(prefix, "/")

	cats, err := st.ListCategories(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: normalize: list categories")
	}

	res := &NormalizeResult{Total: len(cats)}
	for _, c := range cats {
		if !strings.HasPrefix(c.ImageURL, "/") {
			res.Skipped++
			continue
		}
		absolute := prefix + c.ImageURL
		if err := st.PatchCategory(ctx, c.ID, model.CategoryPatch{ImageURL: &absolute}); err != nil {
			return res, eris.Wrapf(err, "taxonomy: normalize category %q", c.Name)
		}
		res.Updated++
		zap.L().Debug("normalized category image url",
			zap.String("category", c.Name),
			zap.String("image_url", absolute),
		)
	}
	return res, nil
}
