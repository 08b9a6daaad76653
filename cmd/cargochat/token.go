package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/config"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/handler"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		envFile string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the session diagnostics endpoints",
		Long:  "Signs an HS256 token with ADMIN_JWT_SECRET. Send it as 'Authorization: Bearer <token>' to /api/chat/sessions and /api/chat/metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg := config.Load()
			if cfg.AdminJWTSecret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}

			token, err := handler.SignAdminToken([]byte(cfg.AdminJWTSecret), subject, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.Flags().StringVar(&subject, "subject", "ops", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
