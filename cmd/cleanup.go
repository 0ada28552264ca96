package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/importer"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete placeholder sample businesses",
	Long:  "Removes businesses whose placeId carries a recognized sample-data prefix, left over from seeding or demos.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return withMaintenanceLease(ctx, st, func() error {
			res, err := importer.Cleanup(ctx, st)
			if err != nil {
				return eris.Wrap(err, "cleanup")
			}
			zap.L().Info("cleanup complete",
				zap.Int("deleted", res.Deleted),
				zap.Int("failed", res.Failed),
				zap.Int("total", res.Total),
			)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
