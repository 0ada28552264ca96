package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the directory to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cats, err := st.ListCategories(ctx)
		if err != nil {
			return eris.Wrap(err, "export: list categories")
		}
		businesses, err := st.ListBusinesses(ctx)
		if err != nil {
			return eris.Wrap(err, "export: list businesses")
		}

		if err := export.WriteXLSX(exportOut, cats, businesses); err != nil {
			return err
		}
		zap.L().Info("export complete",
			zap.String("file", exportOut),
			zap.Int("categories", len(cats)),
			zap.Int("businesses", len(businesses)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "directory.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
