package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/abdulachik/xstudio/internal/auth"
	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/poster"
)

var loginTimeout time.Duration

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize an X account",
	Long: `Run the OAuth2 authorization code flow with PKCE against X. Open the
printed URL, approve access, and the token is saved under TOKEN_DIR for the
authorized username. Refreshed tokens are written back automatically.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the browser callback")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	a, err := openApp(ctx, func(c *config.Config) error {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.XClientID == "" {
			return fmt.Errorf("X_CLIENT_ID is required for login")
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer a.Close()

	login, url := auth.BeginLogin(a.OAuth())
	fmt.Println("Open this URL in your browser to authorize xstudio:")
	fmt.Println()
	fmt.Println(url)
	fmt.Println()
	slog.Info("waiting for callback", "redirect_url", a.Config.XRedirectURL)

	cb, err := auth.WaitForCallback(ctx, a.Config.XRedirectURL)
	if err != nil {
		return fmt.Errorf("wait for callback: %w", err)
	}

	tok, err := login.Exchange(ctx, cb.State, cb.Code)
	if err != nil {
		return err
	}

	x := poster.NewXPoster(poster.XConfig{})
	username, err := x.ValidateCredentials(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}

	if err := a.TokenStore().Save(username, tok); err != nil {
		return err
	}

	fmt.Printf("Logged in as @%s\n", username)
	if !strings.EqualFold(a.Config.XUsername, username) {
		fmt.Printf("Set X_USERNAME=%s to post as this account.\n", username)
	}
	return nil
}
