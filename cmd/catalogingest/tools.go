package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/ingest"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price TEXT...",
		Short: "Print the normalized value of each price text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				value := "null"
				if p := util.NormalizePrice(&raw); p != nil {
					value = strconv.FormatFloat(*p, 'f', -1, 64)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q\t%s\n", raw, value)
			}
			return nil
		},
	}
}

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model TEXT",
		Short: "Print the model tokens extracted from a product name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), ingest.ExtractModel(strings.Join(args, " ")))
			return nil
		},
	}
}
