package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/taxonomy"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Inspect and reconcile the category taxonomy",
}

var categoriesUnwanted []string

var categoriesReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Converge stored categories to the canonical list",
	Long:  "Creates missing canonical categories, merges duplicates by name, and deletes non-canonical categories after reassigning their businesses to the fallback. Safe to re-run; a second run makes no further changes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return withMaintenanceLease(ctx, st, func() error {
			rec := taxonomy.NewReconciler(st)
			rec.Unwanted = categoriesUnwanted
			res, err := rec.Reconcile(ctx)
			if err != nil {
				return eris.Wrap(err, "taxonomy reconcile")
			}
			zap.L().Info("taxonomy reconcile complete",
				zap.Int("created", res.Created),
				zap.Int("updated", res.Updated),
				zap.Int("deleted", res.Deleted),
				zap.Int("businesses_reassigned", res.BusinessesReassigned),
			)
			return nil
		})
	},
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored categories with business counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cats, err := st.ListCategories(ctx)
		if err != nil {
			return eris.Wrap(err, "list categories")
		}
		businesses, err := st.ListBusinesses(ctx)
		if err != nil {
			return eris.Wrap(err, "list businesses")
		}
		counts := make(map[string]int)
		for _, b := range businesses {
			counts[b.CategoryID]++
		}

		fmt.Printf("%-5s %-30s %-10s %s\n", "Order", "Name", "Count", "ID")
		fmt.Println("---------------------------------------------------------------------")
		for _, c := range cats {
			marker := ""
			if !taxonomy.IsCanonical(c.Name) {
				marker = " (non-canonical)"
			}
			fmt.Printf("%-5d %-30s %-10d %s%s\n", c.Order, c.Name, counts[c.ID], c.ID, marker)
		}
		return nil
	},
}

func init() {
	categoriesReconcileCmd.Flags().StringSliceVar(&categoriesUnwanted, "unwanted", nil, "legacy category names to delete first")
	categoriesCmd.AddCommand(categoriesReconcileCmd)
	categoriesCmd.AddCommand(categoriesListCmd)
	rootCmd.AddCommand(categoriesCmd)
}
