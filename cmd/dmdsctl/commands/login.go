package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/credentials"
	"github.com/marmos91/dittomds/internal/cli/prompt"
	"github.com/marmos91/dittomds/internal/controlplane/api/auth"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

var (
	loginContext string
	loginNoToken bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save a dmds server and token",
	Long: `Verify a token against a dmds server and save both as a context.

Tokens are issued on the server host with 'dmds token'. When --token is not
given the token is read from a masked prompt. Servers running without an
API secret need no token; use --no-token for them.

Examples:
  # Login to a server
  dmdsctl login --server http://mds1:8080

  # Login with a token on the command line
  dmdsctl login --server http://mds1:8080 --token "$(dmds token)"

  # Save a second server under its own name
  dmdsctl login --server http://mds2:8080 --context mds2`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginContext, "context", "", "Context name (default: current context or \"default\")")
	loginCmd.Flags().BoolVar(&loginNoToken, "no-token", false, "Save the server without a token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	serverURL := cmdutil.Flags.ServerURL
	if serverURL == "" {
		ctx, err := store.Current()
		if err != nil || ctx.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify server URL:\n" +
				"  dmdsctl login --server http://localhost:8080")
		}
		serverURL = ctx.ServerURL
	}
	serverURL, err = normalizeServerURL(serverURL)
	if err != nil {
		return err
	}

	token := cmdutil.Flags.Token
	if token == "" && !loginNoToken {
		token, err = prompt.Secret("Token")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	saved := &credentials.Context{ServerURL: serverURL, Token: token}
	if token != "" {
		claims, err := auth.ParseUnverified(token)
		if err != nil {
			return fmt.Errorf("token is not a dmds token: %w", err)
		}
		saved.Role = claims.Role
		if claims.ExpiresAt != nil {
			saved.ExpiresAt = claims.ExpiresAt.Time
		}
		if saved.IsExpired() {
			return fmt.Errorf("token expired at %s", saved.ExpiresAt.Local().Format(time.RFC3339))
		}
	}

	fmt.Printf("Logging in to %s...\n", serverURL)
	if err := verifyLogin(apiclient.New(serverURL).WithToken(token), saved.Role); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	name := loginContext
	if name == "" {
		name = store.CurrentName()
	}
	if err := store.Login(name, saved); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Logged in to %s", serverURL))
	if saved.Role != "" {
		fmt.Printf("  Role:    %s\n", saved.Role)
	}
	if !saved.ExpiresAt.IsZero() {
		fmt.Printf("  Expires: %s\n", saved.ExpiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

// verifyLogin makes an authenticated call the role is allowed to make. Pool
// tokens cannot read admin routes, so only reachability is checked for them.
func verifyLogin(client *apiclient.Client, role string) error {
	if role == auth.RolePool {
		_, err := client.Health()
		return err
	}
	_, err := client.GetInfo()
	return err
}

func normalizeServerURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		u, err = url.Parse("http://" + raw)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("invalid server URL: %q", raw)
		}
	}
	return u.String(), nil
}
