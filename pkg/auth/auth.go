// Package auth implements the GitHub device-flow login used by the CLI,
// storing the resulting token in the OS keyring where the credential router
// picks it up.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/opsgate/orgcache/pkg/oskeyring"
)

const (
	// ServiceName is the keyring service entries are stored under.
	ServiceName = "orgcache"
	// GithubToken is the keyring key for the access token.
	GithubToken = "github_token"
	// GithubLogin is the keyring key for the authenticated login.
	GithubLogin = "github_login"
)

var ErrTokenNotFound = errors.New("authentication token not found in keyring")

// Config holds the OAuth app identity for the device flow.
type Config struct {
	GithubClientID string
}

// GithubProvider performs the GitHub device flow and manages the stored
// token.
type GithubProvider struct {
	Config  Config
	keyring oskeyring.Service
}

func NewGithubProvider(cfg Config, keyring oskeyring.Service) *GithubProvider {
	return &GithubProvider{Config: cfg, keyring: keyring}
}

func (p *GithubProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: p.Config.GithubClientID,
		Scopes:   []string{"read:org"},
		Endpoint: githuboauth.Endpoint,
	}
}

// Login runs the device flow and stores the token and login in the keyring.
func (p *GithubProvider) Login(ctx context.Context) error {
	if p.Config.GithubClientID == "" {
		return errors.New("GitHub Client ID is required for authentication")
	}

	oauthConfig := p.oauthConfig()

	deviceCode, err := oauthConfig.DeviceAuth(ctx)
	if err != nil {
		return fmt.Errorf("failed to request device code: %w", err)
	}

	fmt.Printf("Please visit %s and enter the code: %s\n", deviceCode.VerificationURI, deviceCode.UserCode)
	fmt.Println("Waiting for the authentication to complete...")

	token, err := oauthConfig.DeviceAccessToken(ctx, deviceCode)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	if err := p.keyring.Set(ServiceName, GithubToken, token.AccessToken); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}

	login, err := fetchLogin(ctx, token.AccessToken)
	if err != nil {
		// The token is stored; the login is a convenience and can be
		// fetched again later.
		fmt.Printf("Warning: failed to fetch GitHub login after login: %v\n", err)
		return nil
	}
	if err := p.keyring.Set(ServiceName, GithubLogin, login); err != nil {
		fmt.Printf("Warning: failed to store GitHub login in keyring: %v\n", err)
	}
	return nil
}

func fetchLogin(ctx context.Context, token string) (string, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("fetching authenticated user: %w", err)
	}
	if user.GetLogin() == "" {
		return "", errors.New("authenticated user has no login")
	}
	return user.GetLogin(), nil
}

// GetToken retrieves the stored token.
func (p *GithubProvider) GetToken(ctx context.Context) (string, error) {
	token, err := p.keyring.Get(ServiceName, GithubToken)
	if err != nil {
		if errors.Is(err, oskeyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to get token from keyring: %w", err)
	}
	return token, nil
}

// GetLogin retrieves the stored login, fetching it from GitHub when the
// keyring only holds a token.
func (p *GithubProvider) GetLogin(ctx context.Context) (string, error) {
	login, err := p.keyring.Get(ServiceName, GithubLogin)
	if err == nil && login != "" {
		return login, nil
	}
	if err != nil && !errors.Is(err, oskeyring.ErrNotFound) {
		return "", fmt.Errorf("failed to get login from keyring: %w", err)
	}

	token, err := p.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot fetch login without token: %w", err)
	}
	login, err = fetchLogin(ctx, token)
	if err != nil {
		return "", err
	}
	if err := p.keyring.Set(ServiceName, GithubLogin, login); err != nil {
		fmt.Printf("Warning: failed to store GitHub login in keyring: %v\n", err)
	}
	return login, nil
}

// Logout removes the stored token and login.
func (p *GithubProvider) Logout(ctx context.Context) error {
	var combined error
	if err := p.keyring.Delete(ServiceName, GithubToken); err != nil {
		combined = fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	if err := p.keyring.Delete(ServiceName, GithubLogin); err != nil {
		if combined == nil {
			combined = fmt.Errorf("failed to delete login from keyring: %w", err)
		} else {
			combined = fmt.Errorf("%w; failed to delete login from keyring: %v", combined, err)
		}
	}
	return combined
}
