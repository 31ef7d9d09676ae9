package main

import (
	"gastropos/internal/cash"
	"gastropos/internal/config"

	"github.com/spf13/cobra"
)

// denominationsFile is shared by every command that needs the cash table.
var denominationsFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cashctl",
		Short:         "Cash drawer tooling for the POS",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(
		&denominationsFile,
		"denominations",
		"",
		"YAML denomination table (defaults to DENOMINATIONS_FILE or the built-in table)",
	)

	root.AddCommand(
		newChangeCmd(),
		newDenominationsCmd(),
		newReportCmd(),
		newTokenCmd(),
	)
	return root
}

func loadDenominations() (*cash.Denominations, error) {
	if denominationsFile != "" {
		return cash.LoadDenominations(denominationsFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Cash.Denominations()
}
