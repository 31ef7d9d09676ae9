package main

import (
	"fmt"
	"os"

	"gastropos/internal/config"
	"gastropos/internal/db"
	"gastropos/internal/ledger"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Export the cash closing report for a period as xlsx",
		Example: `  cashctl report --from 2026-03-01 --to 2026-03-01 --out cierre.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := ledger.ParseRange(from, to)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			denoms, err := loadDenominations()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.ConnectPostgres(ctx, cfg.Database.URL, nil)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			service := ledger.NewService(ledger.NewPostgresRepository(pool), denoms, nil)
			sum, err := service.Summary(ctx, start, end)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("cierre-%s.xlsx", start.Format("20060102"))
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := ledger.Export(sum, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d pagos, efectivo neto %s -> %s\n",
				sum.Payments, sum.NetCash.StringFixed(2), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "end date, inclusive when given as a date")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
