package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Deliver pending responses to the collector now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			before := a.eng.Pending().Len()
			res, err := a.eng.Flush(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "flush: %s (%d pending before, %d after)\n", res, before, a.eng.Pending().Len())
			return err
		},
	}
}
