package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khoahotran/auto-featured-image/pkg/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var ownerFlag string
	var scopes []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}

			ownerID := uuid.New()
			if ownerFlag != "" {
				if ownerID, err = uuid.Parse(ownerFlag); err != nil {
					return fmt.Errorf("invalid owner id %q: %w", ownerFlag, err)
				}
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenLifespan
			}

			token, err := auth.NewJWTService(cfg.Auth.JWTSecret, ttl).GenerateToken(ownerID, scopes...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerFlag, "owner", "", "Owner id embedded in the token (random when empty)")
	cmd.Flags().StringSliceVar(&scopes, "scope", auth.AllScopes, "Scopes granted to the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.token_lifespan)")
	return cmd
}
