package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/internal/cli/credentials"
	"github.com/marmos91/dittomds/internal/controlplane/api/auth"
	"github.com/marmos91/dittomds/pkg/config"
)

var (
	tokenRole    string
	tokenSubject string
	tokenTTL     time.Duration
	tokenSave    bool
	tokenContext string
	tokenServer  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token",
	Long: `Issue a bearer token for the dmds API, signed with the configured secret.

Tokens carry a role: "admin" for operators using dmdsctl, "pool" for data
servers posting readiness and transfer notifications.

Examples:
  # Print an admin token valid for the configured duration
  dmds token

  # Issue a pool token for 30 days
  dmds token --role pool --subject pool-a --ttl 720h

  # Issue an admin token and save it as the current dmdsctl context
  dmds token --save`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "Token role (admin|pool)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "dmds-admin", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: api.jwt.token_duration)")
	tokenCmd.Flags().BoolVar(&tokenSave, "save", false, "Save the token as a dmdsctl context")
	tokenCmd.Flags().StringVar(&tokenContext, "context", credentials.DefaultContextName, "Context name used with --save")
	tokenCmd.Flags().StringVar(&tokenServer, "server", "", "Server URL stored with --save (default: http://localhost:<api.port>)")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if !cfg.API.HasJWTSecret() {
		return errors.New("no API secret configured; the API runs without authentication and needs no token")
	}

	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.API.GetJWTSecret(),
		TokenDuration: cfg.API.JWT.TokenDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	token, expiresAt, err := svc.GenerateToken(tokenSubject, tokenRole, tokenTTL)
	if err != nil {
		return err
	}

	if !tokenSave {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	}

	serverURL := tokenServer
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", cfg.API.Port)
	}

	store, err := credentials.NewStore()
	if err != nil {
		return err
	}
	if err := store.Login(tokenContext, &credentials.Context{
		ServerURL: serverURL,
		Token:     token,
		Role:      tokenRole,
		ExpiresAt: expiresAt,
	}); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token saved to context %q (%s), expires %s\n",
		tokenContext, serverURL, expiresAt.Local().Format(time.RFC3339))
	return nil
}
