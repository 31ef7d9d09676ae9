package main

import (
	"fmt"
	"strconv"
	"strings"

	"gastropos/internal/cash"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newChangeCmd() *cobra.Command {
	var (
		due       string
		given     string
		noDeclare bool
	)

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Quote the change owed for a cash payment",
		Example: `  cashctl change --due 23699.5 --given 20000:1,5000:1
  cashctl change --due 15000 --no-declare`,
		RunE: func(cmd *cobra.Command, args []string) error {
			amountDue, err := decimal.NewFromString(due)
			if err != nil || amountDue.IsNegative() {
				return fmt.Errorf("invalid --due %q", due)
			}

			denoms, err := loadDenominations()
			if err != nil {
				return err
			}

			counts := cash.NewCounts(denoms)
			if !noDeclare {
				if err := parseGiven(counts, given); err != nil {
					return err
				}
			}

			snap := cash.Compute(cash.OrderContext{}, amountDue, !noDeclare, counts.Map(), denoms)
			printSnapshot(cmd, snap, denoms)
			return nil
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "amount due")
	cmd.Flags().StringVar(&given, "given", "", "declared pieces as value:count pairs, comma separated")
	cmd.Flags().BoolVar(&noDeclare, "no-declare", false, "assume exact payment without declaring pieces")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

// parseGiven reads "20000:1,5000:2" into counts.
func parseGiven(counts *cash.Counts, given string) error {
	for _, pair := range strings.Split(given, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		rawValue, rawCount, ok := strings.Cut(pair, ":")
		if !ok {
			rawCount = "1"
		}
		value, err := strconv.ParseInt(strings.TrimSpace(rawValue), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid denomination %q", rawValue)
		}
		if err := counts.SetCount(cash.Amount(value), strings.TrimSpace(rawCount)); err != nil {
			return fmt.Errorf("%s: %w", rawValue, err)
		}
	}
	return nil
}

func printSnapshot(cmd *cobra.Command, snap cash.Snapshot, denoms *cash.Denominations) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Total a pagar:  %s\n", snap.AmountDue.StringFixed(2))
	fmt.Fprintf(out, "Total recibido: %s\n", snap.TotalReceived.StringFixed(2))
	if !snap.Sufficient {
		fmt.Fprintln(out, "El dinero entregado no es suficiente.")
		return
	}
	fmt.Fprintf(out, "Cambio:         %d\n", snap.Change)

	for _, value := range denoms.Values() {
		if n := snap.Breakdown.Counts[value]; n > 0 {
			fmt.Fprintf(out, "  %6d x %d\n", value, n)
		}
	}
	if snap.Breakdown.Remainder > 0 {
		fmt.Fprintf(out, "  sin cambio exacto: %d\n", snap.Breakdown.Remainder)
	}
}
