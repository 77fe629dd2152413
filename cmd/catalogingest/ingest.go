package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/discovery"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/ingest"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
)

func newIngestCmd() *cobra.Command {
	var (
		input      string
		supplierID int64
		operatorID int64
		out        string
		dryRun     bool
		priceMin   float64
		priceMax   float64
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a discovery file for one supplier",
		Example: `  # Ingest a crawler dump for supplier 7
  catalogingest ingest --input crawl.json --supplier 7

  # Preview against the current catalog without writing
  catalogingest ingest --input precos.xlsx --supplier 7 --dry-run --out summary.xlsx

  # Only keep offers between 5 000 and 250 000
  catalogingest ingest --input crawl.json --supplier 7 --price-min 5000 --price-max 250000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errors.New("--input is required")
			}
			if supplierID <= 0 {
				return errors.New("--supplier must be a positive id")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if operatorID <= 0 {
				operatorID = a.Cfg.DefaultOperatorID
			}

			items, err := discovery.LoadFile(input)
			if err != nil {
				return err
			}

			minPrice, maxPrice := a.Cfg.PriceMin, a.Cfg.PriceMax
			if cmd.Flags().Changed("price-min") {
				minPrice = &priceMin
			}
			if cmd.Flags().Changed("price-max") {
				maxPrice = &priceMax
			}
			if kept := ingest.FilterByPrice(items, minPrice, maxPrice); len(kept) < len(items) {
				a.Log.Info("items outside price range skipped", logger.Int("dropped", len(items)-len(kept)))
				items = kept
			}

			store := a.Store
			if dryRun {
				mem, err := a.DryRunStore(cmd.Context(), supplierID)
				if err != nil {
					return err
				}
				store = mem
			}

			summary, err := a.Ingestor(store).Ingest(cmd.Context(), items, supplierID, operatorID)
			if err != nil {
				return err
			}

			if out != "" {
				if err := ingest.ExportSummaryToXLSX(summary, out); err != nil {
					return err
				}
				a.Log.Info("summary exported", logger.String("path", out))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "discovery file (.json, .xlsx, .html, .eml, .pdf)")
	cmd.Flags().Int64Var(&supplierID, "supplier", 0, "supplier id")
	cmd.Flags().Int64Var(&operatorID, "operator", 0, "operator id recorded as creator (default DEFAULT_OPERATOR_ID)")
	cmd.Flags().StringVar(&out, "out", "", "optional xlsx summary path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "ingest into an in-memory copy of the supplier catalog")
	cmd.Flags().Float64Var(&priceMin, "price-min", 0, "skip items priced below this (default PRICE_MIN)")
	cmd.Flags().Float64Var(&priceMax, "price-max", 0, "skip items priced above this (default PRICE_MAX)")
	return cmd
}
