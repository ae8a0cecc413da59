package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartdiet/smartdiet/internal/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Long:  "token signs an access token with AUTH_SIGNING_KEY so the API server started with the same key accepts it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			svc := auth.NewJWTService(auth.JWTConfig{
				SigningKey: cfg.AuthSigningKey,
				Issuer:     cfg.AuthIssuer,
				Audience:   cfg.AuthAudience,
			})
			token, expiresAt, err := svc.Issue(subject, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w (set AUTH_SIGNING_KEY)", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "owner", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	return cmd
}
