package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/taxonomy"
)

var normalizePrefix string

var normalizeCmd = &cobra.Command{
	Use:   "normalize-images",
	Short: "Rewrite relative category image paths to absolute URLs",
	Long:  "Prefixes every root-relative category imageUrl with the site base URL. Already-absolute URLs are untouched, so re-running never double-prefixes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		prefix := normalizePrefix
		if prefix == "" {
			if err := cfg.Validate("normalize"); err != nil {
				return err
			}
			prefix = cfg.Site.BaseURL
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return withMaintenanceLease(ctx, st, func() error {
			res, err := taxonomy.NormalizeImageURLs(ctx, st, prefix)
			if err != nil {
				return eris.Wrap(err, "normalize images")
			}
			zap.L().Info("image normalization complete",
				zap.Int("updated", res.Updated),
				zap.Int("skipped", res.Skipped),
				zap.Int("total", res.Total),
			)
			return nil
		})
	},
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizePrefix, "prefix", "", "URL prefix (default from site.base_url)")
	rootCmd.AddCommand(normalizeCmd)
}
