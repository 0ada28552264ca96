package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/importer"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import businesses from a static YAML dataset",
	Long:  "Loads a curated candidate dataset and runs it through the same reconciler as a live import, so seeding is idempotent too.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		candidates, err := importer.LoadDataset(seedFile)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return withMaintenanceLease(ctx, st, func() error {
			res, err := importer.NewReconciler(st).Run(ctx, candidates)
			if err != nil {
				return eris.Wrap(err, "seed reconcile")
			}
			zap.L().Info("seed complete",
				zap.String("file", seedFile),
				zap.Int("added", res.Added),
				zap.Int("updated", res.Updated),
				zap.Int("skipped", res.Skipped),
				zap.Int("failed", res.Failed),
			)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "path to YAML dataset (required)")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
