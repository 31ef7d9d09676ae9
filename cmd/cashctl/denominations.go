package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDenominationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "denominations",
		Short: "Print the denomination table and check greedy change is minimal",
		RunE: func(cmd *cobra.Command, args []string) error {
			denoms, err := loadDenominations()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range denoms.All() {
				fmt.Fprintf(out, "%-5s %7d  %s\n", d.Kind, d.Value, d.Asset)
			}
			if denoms.IsCanonical() {
				fmt.Fprintln(out, "canonical: greedy change is always minimal")
			} else {
				fmt.Fprintln(out, "WARNING: table is not canonical, greedy change can use extra pieces")
			}
			return nil
		},
	}
}
