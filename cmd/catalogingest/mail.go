package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchMailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-mail",
		Short: "Drop supplier e-mails from MAIL_PROVIDER into INBOX_DIR",
		Long: `Fetches up to MAIL_FETCH_MAX messages from MAIL_LABEL and writes those whose
sender is listed in MAIL_SUPPLIERS (address=id or @domain=id) into INBOX_DIR,
where the listener picks them up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			fetcher, err := a.MailFetcher(cmd.Context())
			if err != nil {
				return err
			}
			res, err := fetcher.FetchAndDrop(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mail fetch done provider=%s fetched=%d dropped=%d unmatched=%d\n",
				a.Cfg.MailProvider, res.Fetched, res.Dropped, res.Unmatched)
			return nil
		},
	}
}
