package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/importer"
	"github.com/moodytx/directory/pkg/places"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import businesses from the Places API",
	Long:  "Runs the configured search queries against the Places API and reconciles the results into the store, keyed on placeId. Re-running refreshes existing rows instead of duplicating them.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("places"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client := places.NewClient(cfg.Places.APIKey,
			places.WithBaseURL(cfg.Places.BaseURL),
			places.WithLocationBias(cfg.Places.Latitude, cfg.Places.Longitude, cfg.Places.RadiusMeters),
			places.WithRateLimit(cfg.Places.RateLimit),
		)
		adapter := importer.NewAdapter(client, cfg.Site.Town, cfg.Site.Zip, cfg.Site.Queries)

		return withMaintenanceLease(ctx, st, func() error {
			candidates, err := adapter.Fetch(ctx)
			if err != nil {
				return eris.Wrap(err, "fetch candidates")
			}

			rec := importer.NewReconciler(st)
			rec.Replace = importReplace
			res, err := rec.Run(ctx, candidates)
			if err != nil {
				return eris.Wrap(err, "import reconcile")
			}

			zap.L().Info("import complete",
				zap.Int("added", res.Added),
				zap.Int("updated", res.Updated),
				zap.Int("skipped", res.Skipped),
				zap.Int("failed", res.Failed),
				zap.Int("deleted", res.Deleted),
			)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "delete all existing businesses before importing")
	rootCmd.AddCommand(importCmd)
}
