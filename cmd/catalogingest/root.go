package main

import (
	"github.com/spf13/cobra"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/app"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogingest",
		Short: "Merge discovered supplier products into the product catalog",
		Long: `catalogingest normalizes crawler and supplier price lists into catalog
records, skipping products the supplier already has.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newIngestCmd(),
		newPriceCmd(),
		newModelCmd(),
		newRunsCmd(),
		newProductsCmd(),
		newListenCmd(),
		newFetchMailCmd(),
	)
	return cmd
}

// openApp loads .env and the environment, then opens the configured backends.
func openApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}
