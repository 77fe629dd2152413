package main

import (
	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Watch INBOX_DIR and ingest new discovery files",
		Long: `Polls INBOX_DIR every LISTENER_INTERVAL_SEC seconds. Files must be named
<supplierId>_<anything>.<ext>; ingested files move to INBOX_DIR/processed.
With MAIL_PROVIDER set, each cycle first drops mail attachments into the inbox.
Runs until interrupted (SIGINT or SIGTERM).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.Listener(cmd.Context())
			if err != nil {
				return err
			}
			return svc.Run(cmd.Context())
		},
	}
}
