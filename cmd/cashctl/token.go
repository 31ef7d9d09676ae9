package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gastropos/internal/auth"
	"gastropos/internal/config"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		user  string
		email string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed token for a POS terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			role = strings.ToUpper(role)
			if role != auth.RoleCashier && role != auth.RoleAdmin {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET not set")
			}

			token, err := auth.GenerateToken([]byte(cfg.Auth.JWTSecret), user, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&role, "role", auth.RoleCashier, "CASHIER or ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
