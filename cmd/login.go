package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authadapter "github.com/bnema/fireteam-cli/internal/adapters/auth"
	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app, root *rootOptions) *cobra.Command {
	var code string
	var redirectURI string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Bungie.net with the browser authorization flow",
		Long: "Prints the Bungie.net authorization URL and waits for the redirect on the local callback server. " +
			"Pass --code to finish with an authorization code copied from the redirect instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.cfg.RequireAPIKey(); err != nil {
				return err
			}
			if err := app.cfg.RequireOAuthClient(); err != nil {
				return err
			}

			ctx := app.withLogger(cmd.Context())
			if strings.TrimSpace(code) == "" {
				received, err := waitForAuthorizationCode(ctx, cmd, app, redirectURI)
				if err != nil {
					return err
				}
				code = received
			}

			return completeLogin(ctx, cmd, app, root.sessionID(), code)
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the redirect URL (skips the callback server)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Redirect URI to send; defaults to the one registered for the application")

	return cmd
}

func waitForAuthorizationCode(ctx context.Context, cmd *cobra.Command, app *app, redirectURI string) (string, error) {
	state, err := authadapter.NewState()
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}

	server, err := authadapter.StartCallbackServer(app.cfg.Auth.ListenAddr, state)
	if err != nil {
		return "", fmt.Errorf("start callback server: %w", err)
	}

	authURL, err := authadapter.BuildAuthorizationURL(authadapter.AuthorizationRequest{
		AuthURL:     app.cfg.Bungie.AuthURL,
		ClientID:    app.cfg.ClientID,
		State:       state,
		RedirectURI: redirectURI,
	})
	if err != nil {
		_ = server.Close()
		return "", fmt.Errorf("build authorization url: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to sign in:\n%s\n", authURL)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Waiting for the redirect on %s\n", server.RedirectURI())

	code, err := server.WaitForCode(ctx, app.cfg.Auth.Timeout)
	if err != nil {
		return "", fmt.Errorf("wait for oauth callback: %w", err)
	}
	return code, nil
}

// completeLogin exchanges the code, resolves the signed-in membership and
// stores the session.
func completeLogin(ctx context.Context, cmd *cobra.Command, app *app, id domain.SessionID, code string) error {
	cred, err := app.tokens.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	credentials := app.newCredentialManager(id)
	credentials.Establish(cred)
	client, err := app.newClient(credentials)
	if err != nil {
		return err
	}

	identity, name, err := client.GetCurrentMembership(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnresolvableIdentity) {
			return fmt.Errorf("this Bungie.net account has no Destiny 2 membership: %w", err)
		}
		return fmt.Errorf("resolve current membership: %w", err)
	}

	// A refresh during the membership lookup rotates the tokens.
	if err := app.sessions.SignIn(ctx, application.SignInCommand{
		ID:          id,
		Identity:    identity,
		DisplayName: name,
		Credential:  credentials.Current(),
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s) in session %s\n", name, identity, id)
	return nil
}

func newLogoutCmd(app *app, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := root.sessionID()
			if err := app.sessions.SignOut(app.withLogger(cmd.Context()), id); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed out of session %s\n", id)
			return nil
		},
	}
}
