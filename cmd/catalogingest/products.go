package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

type supplierCatalog struct {
	SupplierID int64                    `json:"supplier_id"`
	Total      int                      `json:"total"`
	Products   []internal.CatalogRecord `json:"products"`
}

func newProductsCmd() *cobra.Command {
	var (
		supplierID int64
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List a supplier's catalog, newest first",
		Example: `  catalogingest products --supplier 7 --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.SupplierProducts(cmd.Context(), supplierID, limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(supplierCatalog{SupplierID: supplierID, Total: len(rows), Products: rows})
		},
	}

	cmd.Flags().Int64Var(&supplierID, "supplier", 0, "supplier id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of products (0 lists all)")
	return cmd
}
