package commands

import (
	"fmt"

	"github.com/opsgate/orgcache/pkg/auth"
)

type AuthCmd struct {
	Login  LoginCmd  `cmd:"" help:"Authenticate with GitHub using device flow."`
	Logout LogoutCmd `cmd:"" help:"Remove stored authentication credentials."`
	Info   InfoCmd   `cmd:"" help:"Show info about the currently logged-in user."`

	GithubClientID string `env:"ORGCACHE_GITHUB_CLIENT_ID" help:"GitHub OAuth App Client ID." short:"c"`
}

type LoginCmd struct{}

func (c *LoginCmd) Run(ctx *cliCtx, parent *AuthCmd) error {
	if parent.GithubClientID == "" {
		return fmt.Errorf("GitHub Client ID must be provided via --github-client-id flag or ORGCACHE_GITHUB_CLIENT_ID env var")
	}

	provider := auth.NewGithubProvider(auth.Config{GithubClientID: parent.GithubClientID}, ctx.OSKeyring)

	ctx.Logger.Info("Starting GitHub device login flow...")
	if err := provider.Login(ctx); err != nil {
		ctx.Logger.Error("Authentication failed", "error", err)
		return fmt.Errorf("authentication failed: %w", err)
	}
	ctx.Logger.Info("Authentication successful.")
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cliCtx, parent *AuthCmd) error {
	provider := auth.NewGithubProvider(auth.Config{GithubClientID: parent.GithubClientID}, ctx.OSKeyring)
	if err := provider.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

type InfoCmd struct{}

func (c *InfoCmd) Run(ctx *cliCtx, parent *AuthCmd) error {
	provider := auth.NewGithubProvider(auth.Config{GithubClientID: parent.GithubClientID}, ctx.OSKeyring)
	login, err := provider.GetLogin(ctx)
	if err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}
	fmt.Printf("Logged in as %s\n", login)
	return nil
}
